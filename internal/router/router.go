package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"go-discussion-board/internal/config"
	"go-discussion-board/internal/handler"
	"go-discussion-board/internal/middleware"
)

type Handlers struct {
	Auth    *handler.AuthHandler
	User    *handler.UserHandler
	Post    *handler.PostHandler
	Comment *handler.CommentHandler
}

// New builds the route table. Visibility is explicit here and nowhere else:
// the public group below is the complete list of unauthenticated routes;
// everything else requires a valid bearer token.
func New(cfg *config.Config, authMiddleware *middleware.AuthMiddleware, h Handlers) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.SecurityHeaders)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(middleware.Timeout(cfg.RequestTimeout))

		// Public routes.
		api.Group(func(public chi.Router) {
			public.Post("/auth/register", h.Auth.Register)
			public.Get("/posts", h.Post.List)
			public.Get("/posts/{post_id}", h.Post.Get)
		})

		// Everything below requires authentication.
		api.Group(func(protected chi.Router) {
			protected.Use(authMiddleware.RequireAuth)

			protected.Get("/auth/me", h.Auth.Me)
			protected.Patch("/users/me", h.User.UpdateMe)
			protected.Get("/posts/my-posts", h.Post.ListMine)
			protected.Post("/posts", h.Post.Create)
			protected.Patch("/posts/{post_id}", h.Post.Update)
			protected.Delete("/posts/{post_id}", h.Post.Delete)
			protected.Post("/comments", h.Comment.Create)
		})
	})

	return r
}
