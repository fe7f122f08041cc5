package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"ArchiveDesk/internal/cli/api"
	"ArchiveDesk/internal/cli/auth"
	"ArchiveDesk/internal/cli/repo"
	"ArchiveDesk/internal/model"
)

// ErrNoSession is returned by Restore when no usable token is stored.
var ErrNoSession = errors.New("not logged in")

// AuthState — состояние входа пользователя.
type AuthState struct {
	Session *auth.Session
	Loading bool
	Error   string
}

// Auth управляет входом: получает токен, сохраняет его и подставляет в API-клиент.
type Auth struct {
	client *api.Client
	tokens repo.TokenStore
	logger *zap.SugaredLogger
	now    func() time.Time

	dmu       sync.Mutex // порядок доставки уведомлений, как в store.Store
	mu        sync.Mutex
	state     AuthState
	listeners map[int]func(string)
	nextID    int
}

func NewAuth(client *api.Client, tokens repo.TokenStore, logger *zap.SugaredLogger) *Auth {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Auth{
		client:    client,
		tokens:    tokens,
		logger:    logger.With("resource", "auth"),
		now:       time.Now,
		listeners: map[int]func(string){},
	}
}

// State returns a copy of the auth state.
func (a *Auth) State() AuthState {
	a.mu.Lock()
	defer a.mu.Unlock()
	st := a.state
	if st.Session != nil {
		s := *st.Session
		st.Session = &s
	}
	return st
}

// Err returns the current auth error, "" if none.
func (a *Auth) Err() string { return a.State().Error }

// Session returns the active session or nil.
func (a *Auth) Session() *auth.Session { return a.State().Session }

// Login выполняет вход, сохраняет токен и активирует сессию.
func (a *Auth) Login(ctx context.Context, login, password string) (*auth.Session, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, invalid("login and password are required")
	}
	a.setPending()

	var res model.LoginResult
	err := a.client.Post(ctx, "/auth/login", map[string]string{"login": login, "password": password}, &res)
	if err == nil && res.Token == "" {
		err = errors.New("server returned no token")
	}
	var sess *auth.Session
	if err == nil {
		sess, err = auth.ParseSession(res.Token)
	}
	if err != nil {
		a.setRejected(api.Message(err, "Login failed"))
		a.logger.Warnw("login failed", "login", login, "error", err)
		return nil, err
	}
	if sess.Login == "" {
		sess.Login = res.User.Login
	}
	if sess.Role == "" {
		sess.Role = res.User.Role
	}
	if sess.UserID == "" {
		sess.UserID = res.User.ID
	}
	if a.tokens != nil {
		if err := a.tokens.Save(res.Token); err != nil {
			a.setRejected("Failed to store session")
			return nil, fmt.Errorf("saving auth: %w", err)
		}
	}
	a.client.SetToken(res.Token)
	a.setSession(sess)
	a.logger.Infow("logged in", "login", sess.Login, "role", sess.Role)
	return sess, nil
}

// Restore поднимает сохранённую сессию; просроченный токен удаляется.
func (a *Auth) Restore() (*auth.Session, error) {
	if a.tokens == nil {
		return nil, ErrNoSession
	}
	tok, err := a.tokens.Load()
	if err != nil {
		return nil, ErrNoSession
	}
	sess, err := auth.ParseSession(tok)
	if err != nil {
		_ = a.tokens.Clear()
		return nil, fmt.Errorf("%w: %v", ErrNoSession, err)
	}
	if sess.Expired(a.now()) {
		_ = a.tokens.Clear()
		return nil, fmt.Errorf("%w: session expired", ErrNoSession)
	}
	a.client.SetToken(tok)
	a.setSession(sess)
	return sess, nil
}

// Logout clears the stored token and the session.
func (a *Auth) Logout() error {
	a.client.SetToken("")
	a.setSession(nil)
	if a.tokens == nil {
		return nil
	}
	return a.tokens.Clear()
}

// ClearError resets the auth error.
func (a *Auth) ClearError() {
	a.dmu.Lock()
	defer a.dmu.Unlock()
	a.mu.Lock()
	changed := a.state.Error != ""
	a.state.Error = ""
	a.mu.Unlock()
	if changed {
		a.notify("")
	}
}

// OnError subscribes fn to error changes.
func (a *Auth) OnError(fn func(msg string)) (cancel func()) {
	a.mu.Lock()
	id := a.nextID
	a.nextID++
	a.listeners[id] = fn
	a.mu.Unlock()
	return func() {
		a.mu.Lock()
		delete(a.listeners, id)
		a.mu.Unlock()
	}
}

func (a *Auth) setPending() {
	a.dmu.Lock()
	defer a.dmu.Unlock()
	a.mu.Lock()
	a.state.Loading = true
	a.state.Error = ""
	a.mu.Unlock()
	a.notify("")
}

func (a *Auth) setRejected(msg string) {
	a.dmu.Lock()
	defer a.dmu.Unlock()
	a.mu.Lock()
	a.state.Loading = false
	a.state.Error = msg
	a.mu.Unlock()
	a.notify(msg)
}

func (a *Auth) setSession(s *auth.Session) {
	a.dmu.Lock()
	defer a.dmu.Unlock()
	a.mu.Lock()
	a.state = AuthState{Session: s}
	a.mu.Unlock()
	a.notify("")
}

func (a *Auth) notify(msg string) {
	a.mu.Lock()
	fns := make([]func(string), 0, len(a.listeners))
	for _, fn := range a.listeners {
		fns = append(fns, fn)
	}
	a.mu.Unlock()
	for _, fn := range fns {
		fn(msg)
	}
}
