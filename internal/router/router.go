package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"campus-records/internal/config"
	"campus-records/internal/handler"
	"campus-records/internal/middleware"
)

type Handlers struct {
	Auth    *handler.AuthHandler
	User    *handler.UserHandler
	Role    *handler.RoleHandler
	Student *handler.StudentHandler
}

// New assembles the HTTP surface. Authentication and authorization are
// chain-wide: the authenticator attaches the principal (or leaves the
// request anonymous) and the policy table decides access per route, so
// the route declarations below carry no per-route auth wrappers.
func New(cfg *config.Config, authMiddleware *middleware.AuthMiddleware, policy *middleware.Policy, h Handlers) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.SecurityHeaders)
	r.Use(authMiddleware.Authenticate)
	r.Use(policy.Enforce)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api", func(api chi.Router) {
		api.Use(middleware.Timeout(cfg.RequestTimeout))

		api.Route("/auth", func(auth chi.Router) {
			auth.Post("/login", h.Auth.Login)
			auth.Get("/me", h.Auth.Me)
		})

		api.Route("/users", func(users chi.Router) {
			users.Post("/", h.User.Create)
			users.Get("/", h.User.List)
			users.Get("/active", h.User.ListActive)
			users.Get("/search", h.User.Search)
			users.Get("/role/{roleName}", h.User.ListByRole)
			users.Get("/username/{username}", h.User.GetByUsername)
			users.Get("/{id}", h.User.Get)
			users.Put("/{id}", h.User.Update)
			users.Delete("/{id}", h.User.Delete)
			users.Patch("/{id}/roles", h.User.AssignRoles)
			users.Patch("/{id}/toggle-status", h.User.ToggleStatus)
		})

		api.Route("/students", func(students chi.Router) {
			students.Get("/", h.Student.List)
			students.Get("/{id}", h.Student.Get)
			students.Post("/", h.Student.Create)
			students.Put("/{id}", h.Student.Update)
			students.Delete("/{id}", h.Student.Delete)
		})

		api.Route("/roles", func(roles chi.Router) {
			roles.Get("/", h.Role.List)
			roles.Get("/{id}", h.Role.Get)
			roles.Post("/", h.Role.Create)
			roles.Put("/{id}", h.Role.Update)
			roles.Delete("/{id}", h.Role.Delete)
		})
	})

	return r
}
