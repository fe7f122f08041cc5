package bootstrap

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"ArchiveDesk/internal/cli/api"
	fsrepo "ArchiveDesk/internal/cli/repo/fs"
	"ArchiveDesk/internal/cli/state"
	"ArchiveDesk/internal/config"
)

// NewLogger строит zap-логгер CLI в stderr с уровнем из конфига.
// Пустой уровень даёт no-op логгер.
func NewLogger(level string) (*zap.SugaredLogger, error) {
	if level == "" {
		return zap.NewNop().Sugar(), nil
	}
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	zc := zap.NewDevelopmentConfig()
	zc.Level = zap.NewAtomicLevelAt(lvl)
	zc.OutputPaths = []string{"stderr"}
	zc.DisableStacktrace = true
	l, err := zc.Build()
	if err != nil {
		return nil, err
	}
	return l.Sugar(), nil
}

// Open собирает корневое состояние клиента: логгер, API-клиент, хранилища,
// восстанавливает сохранённую сессию и включает автоскрытие ошибок.
// cleanup необходимо вызвать по завершении команды.
func Open(cfg *config.Config) (*state.Root, func(), error) {
	logger, err := NewLogger(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	client := api.New(cfg.APIURL, api.WithTimeout(cfg.RequestTimeout), api.WithLogger(logger))
	root := state.New(client, fsrepo.AuthFSStore{Path: cfg.TokenFile}, logger)

	if _, err := root.Auth.Restore(); err != nil {
		// без сессии команды работают анонимно
		logger.Debugw("no stored session", "error", err)
	}

	stop := func() {}
	if cfg.ErrorDismiss > 0 {
		stop = root.AutoDismissErrors(cfg.ErrorDismiss)
	}
	cleanup := func() {
		stop()
		_ = logger.Sync()
	}
	return root, cleanup, nil
}
