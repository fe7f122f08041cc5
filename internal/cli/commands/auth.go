package commands

import (
	"context"
	"fmt"

	"ArchiveDesk/internal/cli/state"
	"ArchiveDesk/internal/config"
)

type loginCmd struct{}

func (loginCmd) Name() string        { return "login" }
func (loginCmd) Description() string { return "Войти и сохранить токен" }
func (loginCmd) Usage() string       { return "login <login> <password>" }

func (loginCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 2 {
		return ErrUsage
	}
	root, done, err := openState(cfg)
	if err != nil {
		return err
	}
	defer done()

	sess, err := root.Auth.Login(ctx, args[0], args[1])
	if err != nil {
		return report(err, root.Auth.State().Error, "Login failed")
	}
	fmt.Fprintf(Out, "Logged in as %s (%s)\n", sess.Login, orDash(sess.Role))
	return nil
}

type logoutCmd struct{}

func (logoutCmd) Name() string { return "logout" }
func (logoutCmd) Description() string {
	return "Выйти и удалить сохранённый токен"
}
func (logoutCmd) Usage() string { return "logout" }

func (logoutCmd) Run(_ context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	root, done, err := openState(cfg)
	if err != nil {
		return err
	}
	defer done()
	if err := root.Auth.Logout(); err != nil {
		return err
	}
	fmt.Fprintln(Out, "Logged out")
	return nil
}

type whoamiCmd struct{}

func (whoamiCmd) Name() string { return "whoami" }
func (whoamiCmd) Description() string {
	return "Показать текущего пользователя"
}
func (whoamiCmd) Usage() string { return "whoami" }

func (whoamiCmd) Run(_ context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	root, done, err := openState(cfg)
	if err != nil {
		return err
	}
	defer done()

	sess := state.Session(root)
	if sess == nil {
		fmt.Fprintln(Out, "Not logged in")
		return nil
	}
	fmt.Fprintf(Out, "Login: %s\nRole: %s\n", sess.Login, orDash(sess.Role))
	if !sess.ExpiresAt.IsZero() {
		fmt.Fprintf(Out, "Expires: %s\n", formatTime(&sess.ExpiresAt))
	}
	fmt.Fprintf(Out, "API: %s\n", root.Client.BaseURL())
	return nil
}

func init() {
	RegisterCmd(loginCmd{})
	RegisterCmd(logoutCmd{})
	RegisterCmd(whoamiCmd{})
}
