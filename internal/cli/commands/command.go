package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"ArchiveDesk/internal/config"
)

// ErrUsage is returned by a command when arguments are invalid and usage should be shown.
var ErrUsage = errors.New("usage")

// Command represents a CLI subcommand.
type Command interface {
	// Name returns the command name as typed by the user, e.g. "login".
	Name() string
	// Description is a short human-readable description shown in help.
	Description() string
	// Usage returns the exact usage string, e.g. "login <login> <password>".
	Usage() string
	// Run executes the command with provided args (without the command name).
	Run(ctx context.Context, cfg *config.Config, args []string) error
}

// registry holds available commands by name.
var registry = map[string]Command{}

// Out — общий writer для вывода CLI. По умолчанию os.Stdout, но в тестах может переназначаться.
var Out io.Writer = os.Stdout

// RegisterCmd adds a command to the registry. Should be called from init() of each command.
func RegisterCmd(cmd Command) {
	registry[cmd.Name()] = cmd
}

// Get returns a command by name.
func Get(name string) (Command, bool) {
	c, ok := registry[name]
	return c, ok
}

// List returns all registered commands sorted by name.
func List() []Command {
	list := make([]Command, 0, len(registry))
	for _, c := range registry {
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name() < list[j].Name() })
	return list
}

// sections — разделы справки в порядке вывода; команда без раздела попадает в "Прочее".
var sections = []struct {
	title string
	names []string
}{
	{"Сессия", []string{"login", "logout", "whoami"}},
	{"Подразделения", []string{"departments", "department-add", "department-edit", "department-rm"}},
	{"Коллекции", []string{"collections", "collection-add", "collection-edit", "collection-rm"}},
	{"Записи", []string{"records", "record", "record-add", "record-edit", "record-rm"}},
	{"Новости, события, объявления", []string{"news", "events", "notices", "gov-add", "gov-rm", "publish", "unpublish"}},
	{"Сводка", []string{"stats"}},
}

// FormatGlobalUsage builds the help text: global flags, then commands grouped by section.
// The usage column is as wide as the longest usage that still fits usageWidth.
func FormatGlobalUsage() string {
	const usageWidth = 52
	var b strings.Builder
	b.WriteString("ArchiveDesk CLI: departments, collections, records and governance of the document archive\n\n")
	b.WriteString("Usage:\n  archivedesk [global flags] <command> [flags] [args]\n  archivedesk help <command>\n\n")
	b.WriteString("Global flags:\n")
	b.WriteString("  -api-url <host:port|URL>  archive API (API_URL)\n")
	b.WriteString("  -token-file <path>        session token file (TOKEN_FILE)\n")
	b.WriteString("  -timeout <dur>            per-request timeout (REQUEST_TIMEOUT)\n")
	b.WriteString("  -error-dismiss <dur>      hide store errors after dur, 0 keeps them (ERROR_DISMISS)\n")
	b.WriteString("  -log-level <level>        debug, info, warn, error; empty is silent (LOG_LEVEL)\n")

	width := 0
	for _, c := range List() {
		if n := len(c.Usage()); n > width && n <= usageWidth {
			width = n
		}
	}

	seen := map[string]bool{}
	writeGroup := func(title string, cmds []Command) {
		if len(cmds) == 0 {
			return
		}
		fmt.Fprintf(&b, "\n%s:\n", title)
		for _, c := range cmds {
			u := c.Usage()
			if len(u) > width {
				// длинный usage — на своей строке, описание ниже
				fmt.Fprintf(&b, "  %s\n  %-*s %s\n", u, width, "", c.Description())
				continue
			}
			fmt.Fprintf(&b, "  %-*s %s\n", width, u, c.Description())
		}
	}
	for _, sec := range sections {
		var cmds []Command
		for _, n := range sec.names {
			if c, ok := Get(n); ok {
				cmds = append(cmds, c)
				seen[n] = true
			}
		}
		writeGroup(sec.title, cmds)
	}
	var rest []Command
	for _, c := range List() {
		if !seen[c.Name()] {
			rest = append(rest, c)
		}
	}
	writeGroup("Прочее", rest)
	return b.String()
}
