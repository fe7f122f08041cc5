package commands

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"ArchiveDesk/internal/cli/api"
	"ArchiveDesk/internal/cli/bootstrap"
	"ArchiveDesk/internal/cli/service"
	"ArchiveDesk/internal/cli/state"
	"ArchiveDesk/internal/config"
)

// openState поднимает корневое состояние клиента для одной команды.
var openState = func(cfg *config.Config) (*state.Root, func(), error) {
	return bootstrap.Open(cfg)
}

// newFlags создаёт FlagSet подкоманды; ошибки разбора превращаются в ErrUsage.
func newFlags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	return nil
}

// report returns the message the store recorded for a failed operation;
// validation errors never reach the store and are returned as is.
func report(err error, storeMsg, fallback string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, service.ErrValidation) {
		return err
	}
	if storeMsg != "" {
		return errors.New(storeMsg)
	}
	return errors.New(api.Message(err, fallback))
}

// requireSession fails when nobody is signed in.
func requireSession(root *state.Root) error {
	if state.Session(root) == nil {
		return errors.New("not logged in: run login first")
	}
	return nil
}

// listFlag собирает повторяющийся флаг (--tag a --tag b) и значения через запятую.
type listFlag []string

func (l *listFlag) String() string { return strings.Join(*l, ",") }

func (l *listFlag) Set(v string) error {
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			*l = append(*l, p)
		}
	}
	return nil
}

// optString отличает «флаг не задан» от пустого значения.
type optString struct {
	value string
	set   bool
}

func (o *optString) String() string { return o.value }

func (o *optString) Set(v string) error {
	o.value, o.set = v, true
	return nil
}

func (o *optString) ptr() *string {
	if !o.set {
		return nil
	}
	v := o.value
	return &v
}

// optTime принимает RFC 3339 или дату YYYY-MM-DD.
type optTime struct {
	value *time.Time
}

func (o *optTime) String() string {
	if o.value == nil {
		return ""
	}
	return o.value.Format(time.RFC3339)
}

func (o *optTime) Set(v string) error {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, v); err == nil {
			o.value = &t
			return nil
		}
	}
	return fmt.Errorf("invalid time %q (want RFC3339 or YYYY-MM-DD)", v)
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
