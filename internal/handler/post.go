package handler

import (
	"log/slog"
	"net/http"

	"github.com/msomdec/devconnector/internal/service"
)

// PostHandler exposes posts and their likes and comments.
type PostHandler struct {
	posts  *service.PostService
	logger *slog.Logger
}

// NewPostHandler creates a new PostHandler.
func NewPostHandler(posts *service.PostService, logger *slog.Logger) *PostHandler {
	return &PostHandler{posts: posts, logger: logger}
}

func (h *PostHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	var req textRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}

	post, err := h.posts.Create(r.Context(), user.ID, req.Text)
	if err != nil {
		writeServiceError(w, h.logger, "create post", err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, post)
}

// HandleList returns every post, newest first.
func (h *PostHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.List(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, "list posts", err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, posts)
}

func (h *PostHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	post, err := h.posts.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, h.logger, "get post", err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, post)
}

func (h *PostHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if err := h.posts.Delete(r.Context(), user.ID, r.PathValue("id")); err != nil {
		writeServiceError(w, h.logger, "delete post", err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, messageResponse{Message: "post removed"})
}

// HandleLike responds with the post's likes after the change.
func (h *PostHandler) HandleLike(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	likes, err := h.posts.Like(r.Context(), user.ID, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, h.logger, "like post", err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, likes)
}

func (h *PostHandler) HandleUnlike(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	likes, err := h.posts.Unlike(r.Context(), user.ID, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, h.logger, "unlike post", err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, likes)
}

// HandleAddComment responds with the post's comments after the change.
func (h *PostHandler) HandleAddComment(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	var req textRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}

	comments, err := h.posts.AddComment(r.Context(), user.ID, r.PathValue("id"), req.Text)
	if err != nil {
		writeServiceError(w, h.logger, "add comment", err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, comments)
}

func (h *PostHandler) HandleRemoveComment(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	comments, err := h.posts.RemoveComment(r.Context(), user.ID, r.PathValue("id"), r.PathValue("comment_id"))
	if err != nil {
		writeServiceError(w, h.logger, "remove comment", err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, comments)
}
