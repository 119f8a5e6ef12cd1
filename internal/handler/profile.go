package handler

import (
	"log/slog"
	"net/http"

	"github.com/msomdec/devconnector/internal/service"
)

// ProfileHandler exposes profile reads and mutations.
type ProfileHandler struct {
	profiles *service.ProfileService
	logger   *slog.Logger
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(profiles *service.ProfileService, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, logger: logger}
}

// HandleMe returns the caller's own profile.
func (h *ProfileHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	p, err := h.profiles.Me(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, h.logger, "get my profile", err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, toProfileDTO(p))
}

// HandleUpsert creates or updates the caller's profile.
func (h *ProfileHandler) HandleUpsert(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	var req profileRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}
	in, err := req.toInput()
	if err != nil {
		writeServiceError(w, h.logger, "upsert profile", err)
		return
	}

	p, err := h.profiles.Upsert(r.Context(), user.ID, in)
	if err != nil {
		writeServiceError(w, h.logger, "upsert profile", err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, toProfileDTO(p))
}

func (h *ProfileHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.profiles.List(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, "list profiles", err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, toProfileDTOs(profiles))
}

func (h *ProfileHandler) HandleByUser(w http.ResponseWriter, r *http.Request) {
	p, err := h.profiles.ByUser(r.Context(), r.PathValue("user_id"))
	if err != nil {
		writeServiceError(w, h.logger, "get profile by user", err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, toProfileDTO(p))
}

// HandleDeleteAccount removes the caller's profile and then their account.
func (h *ProfileHandler) HandleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if err := h.profiles.DeleteAccount(r.Context(), user.ID); err != nil {
		writeServiceError(w, h.logger, "delete account", err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, messageResponse{Message: "user deleted"})
}

func (h *ProfileHandler) HandleAddExperience(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	var req experienceRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}
	in, err := req.toInput()
	if err != nil {
		writeServiceError(w, h.logger, "add experience", err)
		return
	}

	p, err := h.profiles.AddExperience(r.Context(), user.ID, in)
	if err != nil {
		writeServiceError(w, h.logger, "add experience", err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, toProfileDTO(p))
}

func (h *ProfileHandler) HandleRemoveExperience(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	p, err := h.profiles.RemoveExperience(r.Context(), user.ID, r.PathValue("exp_id"))
	if err != nil {
		writeServiceError(w, h.logger, "remove experience", err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, toProfileDTO(p))
}

func (h *ProfileHandler) HandleAddEducation(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	var req educationRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}
	in, err := req.toInput()
	if err != nil {
		writeServiceError(w, h.logger, "add education", err)
		return
	}

	p, err := h.profiles.AddEducation(r.Context(), user.ID, in)
	if err != nil {
		writeServiceError(w, h.logger, "add education", err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, toProfileDTO(p))
}

func (h *ProfileHandler) HandleRemoveEducation(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	p, err := h.profiles.RemoveEducation(r.Context(), user.ID, r.PathValue("edu_id"))
	if err != nil {
		writeServiceError(w, h.logger, "remove education", err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, toProfileDTO(p))
}

// HandleGitHubRepos lists a GitHub user's most recent public repositories.
func (h *ProfileHandler) HandleGitHubRepos(w http.ResponseWriter, r *http.Request) {
	repos, err := h.profiles.PublicRepos(r.Context(), r.PathValue("username"))
	if err != nil {
		writeServiceError(w, h.logger, "fetch github repos", err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, repos)
}
