package commands

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"ArchiveDesk/internal/config"
)

// fakeCmd позволяет управлять возвратом ошибок из Run
type fakeCmd struct {
	name, usage, desc string
	run               func(ctx context.Context, cfg *config.Config, args []string) error
}

func (f fakeCmd) Name() string        { return f.name }
func (f fakeCmd) Description() string { return f.desc }
func (f fakeCmd) Usage() string       { return f.usage }
func (f fakeCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	return f.run(ctx, cfg, args)
}

// перехват stdout на время теста
func withStdoutCapture(t *testing.T, fn func()) string {
	t.Helper()
	old := Out
	var buf bytes.Buffer
	Out = &buf
	defer func() { Out = old }()
	fn()
	return buf.String()
}

func TestDispatcher_HelpAndUnknown(t *testing.T) {
	out := withStdoutCapture(t, func() { _ = Dispatch(context.Background(), &config.Config{}, []string{}) })
	if !strings.Contains(out, "ArchiveDesk CLI") {
		t.Fatalf("global help expected")
	}
	for _, name := range []string{"login", "departments", "record-add", "gov-add", "publish", "stats"} {
		if !strings.Contains(out, name) {
			t.Fatalf("help must list %q", name)
		}
	}

	out = withStdoutCapture(t, func() { _ = Dispatch(context.Background(), &config.Config{}, []string{"help"}) })
	if !strings.Contains(out, "Usage:") {
		t.Fatalf("usage expected")
	}

	var code int
	out = withStdoutCapture(t, func() { code = Dispatch(context.Background(), &config.Config{}, []string{"help", "login"}) })
	if code != 0 || !strings.Contains(out, "login <login> <password>") {
		t.Fatalf("expected login usage, got %d %q", code, out)
	}

	out = withStdoutCapture(t, func() { _ = Dispatch(context.Background(), &config.Config{}, []string{"help", "nope"}) })
	if !strings.Contains(out, "Unknown command") {
		t.Fatalf("unknown command message expected")
	}

	withStdoutCapture(t, func() { code = Dispatch(context.Background(), &config.Config{}, []string{"no-such"}) })
	if code != 2 {
		t.Fatalf("expected 2 for unknown command, got %d", code)
	}
}

func TestDispatcher_RunPaths(t *testing.T) {
	// зарегистрируем временную команду
	cmdOK := fakeCmd{name: "x", usage: "x", desc: "", run: func(_ context.Context, _ *config.Config, _ []string) error { return nil }}
	RegisterCmd(cmdOK)
	if code := Dispatch(context.Background(), &config.Config{}, []string{"x"}); code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}

	cmdUsage := fakeCmd{name: "u", usage: "u <arg>", desc: "", run: func(_ context.Context, _ *config.Config, _ []string) error { return ErrUsage }}
	RegisterCmd(cmdUsage)
	out := withStdoutCapture(t, func() { _ = Dispatch(context.Background(), &config.Config{}, []string{"u"}) })
	if !strings.Contains(out, "Usage: archivedesk u <arg>") {
		t.Fatalf("usage text expected")
	}

	cmdDetail := fakeCmd{name: "d", usage: "d <id>", run: func(_ context.Context, _ *config.Config, _ []string) error {
		return fmt.Errorf("%w: id is missing", ErrUsage)
	}}
	RegisterCmd(cmdDetail)
	var code int
	out = withStdoutCapture(t, func() { code = Dispatch(context.Background(), &config.Config{}, []string{"d"}) })
	if code != 2 || !strings.Contains(out, "d: id is missing\nUsage: archivedesk d <id>") {
		t.Fatalf("usage detail expected, got %d %q", code, out)
	}

	cmdErr := fakeCmd{name: "e", usage: "e", desc: "", run: func(_ context.Context, _ *config.Config, _ []string) error { return fmt.Errorf("boom") }}
	RegisterCmd(cmdErr)
	out = withStdoutCapture(t, func() { _ = Dispatch(context.Background(), &config.Config{}, []string{"e"}) })
	if !strings.Contains(out, "e error: boom") {
		t.Fatalf("error line expected, got: %s", out)
	}
	for _, n := range []string{"x", "u", "d", "e"} {
		delete(registry, n)
	}
}

func TestFormatGlobalUsage_Sections(t *testing.T) {
	RegisterCmd(fakeCmd{name: "zz-extra", usage: "zz-extra", desc: "extra", run: nil})
	defer delete(registry, "zz-extra")

	out := FormatGlobalUsage()
	order := []string{"Global flags:", "Сессия:", "Подразделения:", "Коллекции:", "Записи:", "Новости, события, объявления:", "Сводка:", "Прочее:"}
	last := -1
	for _, h := range order {
		i := strings.Index(out, h)
		if i <= last {
			t.Fatalf("section %q missing or out of order in:\n%s", h, out)
		}
		last = i
	}
	if !strings.Contains(out[last:], "zz-extra") {
		t.Fatalf("unsectioned command must be listed under Прочее")
	}
	if strings.Count(out, "record-edit [") != 1 {
		t.Fatalf("record-edit must be listed once")
	}
}

func TestParseFlags_ErrorCarriesDetail(t *testing.T) {
	fs := newFlags("t")
	fs.Int("limit", 0, "")
	err := parseFlags(fs, []string{"--limit", "x"})
	if !errors.Is(err, ErrUsage) || !strings.Contains(err.Error(), "limit") {
		t.Fatalf("expected usage error with flag detail, got %v", err)
	}
}
