// Command archivedesk — консольный клиент API архива документов.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"ArchiveDesk/internal/cli/commands"
	"ArchiveDesk/internal/config"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	cfg := config.NewConfig()
	if cfg.Version {
		printVersion(cfg)
		return
	}

	// Ctrl+C отменяет текущий запрос к API, хранилища фиксируют ошибку
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := commands.Dispatch(ctx, cfg, flag.Args())
	cancel()
	os.Exit(code)
}

func printVersion(cfg *config.Config) {
	fmt.Printf("ArchiveDesk CLI %s (built %s)\nAPI: %s\nToken file: %s\n", version, buildDate, cfg.APIURL, cfg.TokenFile)
}
