package convert

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/protoadapt"

	pb "microblog/gen/go/blog/v1"
	"microblog/internal/model"
)

func TestPostRoundTrip(t *testing.T) {
	t.Parallel()

	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	updated := created.Add(time.Hour)
	p := model.Post{ID: 7, Title: "T", Content: "C", AuthorID: 3, CreatedAt: created, UpdatedAt: updated}

	got, err := FromProtoPost(ToProtoPost(p))
	require.NoError(t, err)
	require.Equal(t, p, got)
}

func TestUserRoundTrip_NoPasswordHashOnWire(t *testing.T) {
	t.Parallel()

	u := model.User{ID: 1, Username: "alice", Email: "alice@x.com",
		PasswordHash: "$argon2id$...", CreatedAt: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)}

	msg := ToProtoUser(u)
	got, err := FromProtoUser(msg)
	require.NoError(t, err)
	require.Empty(t, got.PasswordHash)
	require.Equal(t, u.Username, got.Username)
	require.Equal(t, u.CreatedAt, got.CreatedAt)
}

func TestFromProtoPost_BadTimestamp(t *testing.T) {
	t.Parallel()

	_, err := FromProtoPost(&pb.Post{Id: 1, CreatedAt: "yesterday"})
	require.Error(t, err)
}

func TestFromProtoNil(t *testing.T) {
	t.Parallel()

	_, err := FromProtoPost(nil)
	require.Error(t, err)
	_, err = FromProtoUser(nil)
	require.Error(t, err)
}

// Field presence of the optional update fields must survive wire encoding:
// "absent" and "set to empty string" are different intents.
func TestUpdatePatch_PresenceOverTheWire(t *testing.T) {
	t.Parallel()

	empty := ""
	req := ToProtoPatch(9, model.PostPatch{Content: &empty})

	raw, err := proto.Marshal(protoadapt.MessageV2Of(req))
	require.NoError(t, err)

	var back pb.UpdatePostRequest
	require.NoError(t, proto.Unmarshal(raw, protoadapt.MessageV2Of(&back)))

	patch := FromProtoPatch(&back)
	require.Nil(t, patch.Title, "absent title must stay absent")
	require.NotNil(t, patch.Content, "explicit empty content must stay present")
	require.Equal(t, "", *patch.Content)
	require.Equal(t, int64(9), back.GetId())
}
