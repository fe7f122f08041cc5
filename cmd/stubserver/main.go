package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"ArchiveDesk/internal/config"
	"ArchiveDesk/internal/handlers"
	"ArchiveDesk/internal/middleware"
	"ArchiveDesk/internal/model"
	"ArchiveDesk/internal/repo"
)

func main() {
	cfg := config.NewConfig()

	// создаём предустановленный регистратор zap
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}

	// делаем регистратор SugaredLogger
	sugar := logger.Sugar()
	middleware.SetLogger(sugar) // передаём логгер в middleware
	//сброс буфера логгера
	defer func() {
		_ = logger.Sync()
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	db, err := repo.InitDB(cfg.DatabaseDSN)
	if err != nil {
		sugar.Fatalw("failed to initialize database", "error", err)
	}
	archive := repo.NewArchive(db)
	if err := seed(ctx, archive); err != nil {
		sugar.Fatalw("failed to seed archive", "error", err)
	}

	h := handlers.NewHandler(archive, sugar, cfg)
	srv := &http.Server{Addr: cfg.StubAddr, Handler: h.Router, ReadHeaderTimeout: 10 * time.Second}

	sugar.Infow("Starting stub archive API",
		"addr", cfg.StubAddr,
		"database", dsnKind(cfg.DatabaseDSN),
	)

	go func() {
		<-ctx.Done()
		shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
		defer stop()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		sugar.Fatalw("Server failed", "error", err)
	}
}

// seed создаёт учётные записи по ролям и стартовую структуру архива.
func seed(ctx context.Context, a *repo.Archive) error {
	for _, u := range []struct{ login, role string }{
		{"admin", "admin"},
		{"archivist", "archivist"},
		{"reader", "viewer"},
	} {
		if _, ok := a.Authenticate(ctx, u.login, u.login); ok {
			continue
		}
		if _, err := a.AddUser(ctx, u.login, u.login, u.role); err != nil {
			return err
		}
	}
	deps, err := a.Departments(ctx)
	if err != nil || len(deps) > 0 {
		return err
	}
	desc := "Central records office"
	_, err = a.SaveDepartment(ctx, "", model.DepartmentInput{Name: "Registry", Description: &desc})
	return err
}

func dsnKind(dsn string) string {
	if dsn == "" {
		return "in-memory sqlite"
	}
	return "external"
}
