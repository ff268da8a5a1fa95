package router

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/examhub/examhub-api/internal/api/admin"
	"github.com/examhub/examhub-api/internal/api/auth"
	"github.com/examhub/examhub-api/internal/api/faculty"
	"github.com/examhub/examhub-api/internal/api/student"
	"github.com/examhub/examhub-api/internal/api/testseries"
	"github.com/examhub/examhub-api/internal/types"
)

// Handlers bundles the feature handlers wired in main.
type Handlers struct {
	Auth       *auth.AuthHandler
	Admin      *admin.AdminHandler
	Faculty    *faculty.FacultyHandler
	Student    *student.StudentHandler
	TestSeries *testseries.TestSeriesHandler
}

// New mounts the full /api/v1 surface. Registration, faculty discovery, and
// the admin bootstrap flow stay public; everything else sits behind the
// bearer-token Authenticate middleware.
func New(logger *slog.Logger, issuer *auth.TokenIssuer, h Handlers) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authenticate := auth.Authenticate(logger, issuer)

	r.Route("/api/v1", func(r chi.Router) {
		// Public surface.
		r.Group(func(r chi.Router) {
			r.Post("/auth/login", h.Auth.Login)
			r.Post("/auth/forgot-password", h.Auth.ForgotPassword)
			r.Post("/auth/reset-password", h.Auth.ResetPassword)

			r.Post("/student/register", h.Student.Register)

			r.Get("/admin/exists", h.Admin.Exists)
			r.Post("/admin/create-first-admin", h.Admin.CreateFirstAdmin)
			r.Post("/admin/create-admin", h.Admin.CreateAdmin)

			r.Post("/faculty/create-faculty", h.Faculty.Create)
			r.Get("/faculty/all-faculties", h.Faculty.List)
		})

		// Protected surface.
		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Get("/auth/me", h.Auth.Me)

			r.Route("/student", func(r chi.Router) {
				r.Use(auth.RequireRole(types.RoleStudent))
				r.Get("/profile", h.Student.GetProfile)
				r.Put("/profile", h.Student.UpdateProfile)
				r.Post("/avatar", h.Student.UploadAvatar)
			})

			r.Route("/faculty", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(auth.RequireRole(types.RoleFaculty))
					r.Get("/profile", h.Faculty.GetProfile)
					r.Put("/profile", h.Faculty.UpdateProfile)
					r.Post("/avatar", h.Faculty.UploadAvatar)
				})
				r.Group(func(r chi.Router) {
					r.Use(auth.RequireRole(types.RoleAdmin))
					r.Get("/{id}", h.Faculty.Get)
					r.Put("/{id}", h.Faculty.Update)
					r.Delete("/{id}", h.Faculty.Delete)
				})
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(auth.RequireRole(types.RoleAdmin))
				r.Get("/profile", h.Admin.GetProfile)
				r.Put("/profile", h.Admin.UpdateProfile)
				r.Post("/avatar", h.Admin.UploadAvatar)
				r.Delete("/{id}", h.Admin.Delete)
			})

			r.Route("/tests", func(r chi.Router) {
				r.Post("/create", h.TestSeries.Create)
				r.Get("/my-tests", h.TestSeries.ListMine)
				r.Get("/{id}", h.TestSeries.Get)
				r.Delete("/{id}", h.TestSeries.Delete)
				r.Post("/{id}/questions", h.TestSeries.AddQuestion)
				r.Delete("/{testID}/questions/{questionID}", h.TestSeries.DeleteQuestion)
			})
		})
	})

	return r
}
