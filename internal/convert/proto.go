// Package convert translates between domain entities and protobuf messages.
package convert

import (
	"fmt"
	"time"

	pb "microblog/gen/go/blog/v1"
	"microblog/internal/model"
)

// Timestamps cross the wire as RFC3339 strings on both protocols.
func ts(t time.Time) string { return t.UTC().Format(time.RFC3339) }

func parseTS(s string) (time.Time, error) { return time.Parse(time.RFC3339, s) }

// ToProtoUser converts a domain user. The password hash is never serialized.
func ToProtoUser(u model.User) *pb.User {
	return &pb.User{
		Id:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: ts(u.CreatedAt),
	}
}

// FromProtoUser converts a protobuf user into the domain shape.
func FromProtoUser(in *pb.User) (model.User, error) {
	if in == nil {
		return model.User{}, fmt.Errorf("nil User")
	}
	created, err := parseTS(in.GetCreatedAt())
	if err != nil {
		return model.User{}, fmt.Errorf("invalid created_at: %w", err)
	}
	return model.User{
		ID:        in.GetId(),
		Username:  in.GetUsername(),
		Email:     in.GetEmail(),
		CreatedAt: created,
	}, nil
}

// ToProtoPost converts a domain post.
func ToProtoPost(p model.Post) *pb.Post {
	return &pb.Post{
		Id:        p.ID,
		Title:     p.Title,
		Content:   p.Content,
		AuthorId:  p.AuthorID,
		CreatedAt: ts(p.CreatedAt),
		UpdatedAt: ts(p.UpdatedAt),
	}
}

// ToProtoPosts converts a slice of posts.
func ToProtoPosts(ps []model.Post) []*pb.Post {
	out := make([]*pb.Post, 0, len(ps))
	for _, p := range ps {
		out = append(out, ToProtoPost(p))
	}
	return out
}

// FromProtoPost converts a protobuf post into the domain shape.
func FromProtoPost(in *pb.Post) (model.Post, error) {
	if in == nil {
		return model.Post{}, fmt.Errorf("nil Post")
	}
	created, err := parseTS(in.GetCreatedAt())
	if err != nil {
		return model.Post{}, fmt.Errorf("invalid created_at: %w", err)
	}
	updated, err := parseTS(in.GetUpdatedAt())
	if err != nil {
		return model.Post{}, fmt.Errorf("invalid updated_at: %w", err)
	}
	return model.Post{
		ID:        in.GetId(),
		Title:     in.GetTitle(),
		Content:   in.GetContent(),
		AuthorID:  in.GetAuthorId(),
		CreatedAt: created,
		UpdatedAt: updated,
	}, nil
}

// FromProtoPosts converts a slice of protobuf posts.
func FromProtoPosts(in []*pb.Post) ([]model.Post, error) {
	out := make([]model.Post, 0, len(in))
	for i, p := range in {
		m, err := FromProtoPost(p)
		if err != nil {
			return nil, fmt.Errorf("post[%d]: %w", i, err)
		}
		out = append(out, m)
	}
	return out, nil
}

// FromProtoPatch extracts the partial update intent; absent fields stay nil.
func FromProtoPatch(in *pb.UpdatePostRequest) model.PostPatch {
	return model.PostPatch{Title: in.Title, Content: in.Content}
}

// ToProtoPatch fills the optional request fields from a patch.
func ToProtoPatch(id int64, patch model.PostPatch) *pb.UpdatePostRequest {
	return &pb.UpdatePostRequest{Id: id, Title: patch.Title, Content: patch.Content}
}
