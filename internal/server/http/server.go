// Package httpserver exposes the blog JSON API over HTTP.
package httpserver

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"microblog/internal/model"
	"microblog/internal/service"
	"microblog/internal/token"
)

// Server wires services into HTTP handlers.
type Server struct {
	auth   service.AuthService
	posts  service.PostService
	tokens *token.Service
	log    *zap.Logger
}

// New constructs an HTTP server with injected services.
func New(auth service.AuthService, posts service.PostService, tokens *token.Service, log *zap.Logger) *Server {
	return &Server{auth: auth, posts: posts, tokens: tokens, log: log}
}

// Router builds the chi router with all API routes mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(loggingMiddleware(s.log))
	r.Use(chimw.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("OK"))
	})

	r.Route("/api", func(api chi.Router) {
		api.Post("/auth/register", s.register)
		api.Post("/auth/login", s.login)

		api.Get("/posts", s.listPosts)
		api.Get("/posts/{id}", s.getPost)

		api.Group(func(authed chi.Router) {
			authed.Use(authMiddleware(s.tokens))
			authed.Post("/posts", s.createPost)
			authed.Put("/posts/{id}", s.updatePost)
			authed.Delete("/posts/{id}", s.deletePost)
		})
	})

	return r
}

// --- Auth ---

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	res, err := s.auth.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		respondDomainErr(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, authResponse{Token: res.Token, User: toUserDTO(res.User)})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	res, err := s.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		respondDomainErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, authResponse{Token: res.Token, User: toUserDTO(res.User)})
}

// --- Posts ---

type createPostRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (s *Server) createPost(w http.ResponseWriter, r *http.Request) {
	ident, ok := identityFromCtx(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "authorization token required")
		return
	}
	var req createPostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	p, err := s.posts.Create(r.Context(), ident.UserID, req.Title, req.Content)
	if err != nil {
		respondDomainErr(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, toPostDTO(*p))
}

func (s *Server) getPost(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid post id")
		return
	}
	p, err := s.posts.Get(r.Context(), id)
	if err != nil {
		respondDomainErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toPostDTO(*p))
}

func (s *Server) listPosts(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", service.DefaultListLimit)
	offset := queryInt(r, "offset", 0)

	ps, err := s.posts.List(r.Context(), limit, offset)
	if err != nil {
		respondDomainErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toPostDTOs(ps))
}

type updatePostRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

func (s *Server) updatePost(w http.ResponseWriter, r *http.Request) {
	ident, ok := identityFromCtx(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "authorization token required")
		return
	}
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid post id")
		return
	}
	var req updatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	p, err := s.posts.Update(r.Context(), ident.UserID, id, model.PostPatch{Title: req.Title, Content: req.Content})
	if err != nil {
		respondDomainErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toPostDTO(*p))
}

func (s *Server) deletePost(w http.ResponseWriter, r *http.Request) {
	ident, ok := identityFromCtx(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "authorization token required")
		return
	}
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid post id")
		return
	}
	if err := s.posts.Delete(r.Context(), ident.UserID, id); err != nil {
		respondDomainErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func queryInt(r *http.Request, name string, def int64) int64 {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return def
	}
	return v
}
