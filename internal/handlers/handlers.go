package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"ArchiveDesk/internal/config"
	"ArchiveDesk/internal/middleware"
	"ArchiveDesk/internal/repo"
)

type Handler struct {
	Router chi.Router
}

// NewHandler собирает роутер stub-API архива: все маршруты под /api, файлы под /files.
func NewHandler(archive *repo.Archive, logger *zap.SugaredLogger, cfg *config.Config) *Handler {
	r := chi.NewRouter()

	r.Use(middleware.WithGzip)
	r.Use(middleware.WithLogging)
	r.Use(middleware.WithAuth(cfg.AuthSecret))

	a := &ArchiveHandler{Archive: archive, Logger: logger, Config: cfg}

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", a.Login)

		r.Get("/departments", a.ListDepartments)
		r.Get("/departments/{id}", a.GetDepartment)
		r.Get("/collections", a.ListCollections)
		r.Get("/collections/{id}", a.GetCollection)
		r.Get("/records", a.ListRecords)
		r.With(requireUser).Get("/records/restricted", a.ListRestricted)
		r.With(requireRole("admin", "archivist")).Get("/records/confidential", a.ListConfidential)
		r.Get("/records/{id}", a.GetRecord)

		// мутации только для вошедших пользователей
		r.Group(func(r chi.Router) {
			r.Use(requireUser)
			r.Post("/departments", a.CreateDepartment)
			r.Put("/departments/{id}", a.UpdateDepartment)
			r.Delete("/departments/{id}", a.DeleteDepartment)
			r.Post("/collections", a.CreateCollection)
			r.Put("/collections/{id}", a.UpdateCollection)
			r.Delete("/collections/{id}", a.DeleteCollection)
			r.Post("/records", a.CreateRecord)
			r.Put("/records/{id}", a.UpdateRecord)
			r.Delete("/records/{id}", a.DeleteRecord)
		})

		for _, kind := range []string{repo.KindNews, repo.KindEvent, repo.KindNotice} {
			p := &PublicationHandler{Archive: archive, Kind: kind}
			r.Get("/"+kind, p.List)
			r.Get("/"+kind+"/{id}", p.Get)
			r.With(requireUser).Post("/"+kind, p.Create)
			r.With(requireUser).Put("/"+kind+"/{id}", p.Update)
			r.With(requireUser).Delete("/"+kind+"/{id}", p.Delete)
		}
	})
	r.Get("/files/{id}/{name}", a.GetFile)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		fail(w, http.StatusNotFound, "Route not found")
	})
	return &Handler{Router: r}
}

func requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := middleware.IdentityFromContext(r.Context()); !ok {
			fail(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func requireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := middleware.IdentityFromContext(r.Context())
			if !ok {
				fail(w, http.StatusUnauthorized, "Authentication required")
				return
			}
			for _, role := range roles {
				if id.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			fail(w, http.StatusForbidden, "Insufficient permissions")
		})
	}
}
