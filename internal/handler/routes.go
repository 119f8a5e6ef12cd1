package handler

import (
	"log/slog"
	"net/http"

	"github.com/msomdec/devconnector/internal/service"
)

// RegisterRoutes sets up all HTTP routes on the given mux. limiter guards
// the login and registration endpoints; metrics may be nil.
func RegisterRoutes(
	mux *http.ServeMux,
	auth *service.AuthService,
	profiles *service.ProfileService,
	posts *service.PostService,
	db Pinger,
	limiter *service.TokenBucket,
	metrics *Metrics,
	logger *slog.Logger,
) {
	authH := NewAuthHandler(auth, logger)
	profileH := NewProfileHandler(profiles, logger)
	postH := NewPostHandler(posts, logger)

	protected := func(h http.HandlerFunc) http.Handler {
		return RequireAuth(auth, logger, h)
	}
	limited := func(h http.HandlerFunc) http.Handler {
		return RateLimit(limiter, logger, h)
	}

	mux.HandleFunc("GET /healthz", HandleHealthz(db, logger))
	if metrics != nil {
		mux.Handle("GET /metrics", metrics.Handler())
	}

	// Accounts
	mux.Handle("POST /api/users", limited(authH.HandleRegister))
	mux.Handle("POST /api/auth", limited(authH.HandleLogin))
	mux.Handle("GET /api/auth", protected(authH.HandleMe))

	// Profiles
	mux.Handle("GET /api/profile/me", protected(profileH.HandleMe))
	mux.Handle("POST /api/profile", protected(profileH.HandleUpsert))
	mux.HandleFunc("GET /api/profile", profileH.HandleList)
	mux.HandleFunc("GET /api/profile/user/{user_id}", profileH.HandleByUser)
	mux.Handle("DELETE /api/profile", protected(profileH.HandleDeleteAccount))
	mux.Handle("PUT /api/profile/experience", protected(profileH.HandleAddExperience))
	mux.Handle("DELETE /api/profile/experience/{exp_id}", protected(profileH.HandleRemoveExperience))
	mux.Handle("PUT /api/profile/education", protected(profileH.HandleAddEducation))
	mux.Handle("DELETE /api/profile/education/{edu_id}", protected(profileH.HandleRemoveEducation))
	mux.HandleFunc("GET /api/profile/github/{username}", profileH.HandleGitHubRepos)

	// Posts
	mux.Handle("POST /api/posts", protected(postH.HandleCreate))
	mux.Handle("GET /api/posts", protected(postH.HandleList))
	mux.Handle("GET /api/posts/{id}", protected(postH.HandleGet))
	mux.Handle("DELETE /api/posts/{id}", protected(postH.HandleDelete))
	mux.Handle("PUT /api/posts/like/{id}", protected(postH.HandleLike))
	mux.Handle("PUT /api/posts/unlike/{id}", protected(postH.HandleUnlike))
	mux.Handle("POST /api/posts/comment/{id}", protected(postH.HandleAddComment))
	mux.Handle("DELETE /api/posts/comment/{id}/{comment_id}", protected(postH.HandleRemoveComment))
}
