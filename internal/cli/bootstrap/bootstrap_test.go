package bootstrap

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"ArchiveDesk/internal/cli/auth"
	"ArchiveDesk/internal/cli/repo/fs"
	"ArchiveDesk/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		APIURL:         "http://127.0.0.1:1/api",
		RequestTimeout: time.Second,
		TokenFile:      filepath.Join(t.TempDir(), "token"),
		ErrorDismiss:   time.Second,
		LogLevel:       "error",
	}
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	_, err := NewLogger("loud")
	assert.Error(t, err)
}

func TestNewLogger_EmptyLevelIsNop(t *testing.T) {
	l, err := NewLogger("")
	require.NoError(t, err)
	assert.False(t, l.Desugar().Core().Enabled(zapcore.ErrorLevel))

	l, err = NewLogger("warn")
	require.NoError(t, err)
	assert.True(t, l.Desugar().Core().Enabled(zapcore.WarnLevel))
	assert.False(t, l.Desugar().Core().Enabled(zapcore.InfoLevel))
}

func TestOpen_ErrorDismiss(t *testing.T) {
	cfg := testConfig(t)
	cfg.ErrorDismiss = 20 * time.Millisecond
	root, done, err := Open(cfg)
	require.NoError(t, err)
	defer done()

	require.Error(t, root.Departments.FetchList(context.Background(), nil))
	assert.NotEmpty(t, root.Departments.Store().Err())
	assert.Eventually(t, func() bool { return root.Departments.Store().Err() == "" }, time.Second, 5*time.Millisecond)
}

func TestOpen_ErrorDismissDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.ErrorDismiss = 0
	root, done, err := Open(cfg)
	require.NoError(t, err)
	defer done()

	require.Error(t, root.Departments.FetchList(context.Background(), nil))
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, "Failed to fetch departments", root.Departments.Store().Err())
}

func TestOpen_WithoutStoredToken(t *testing.T) {
	root, done, err := Open(testConfig(t))
	require.NoError(t, err)
	defer done()

	assert.Nil(t, root.Auth.Session())
	assert.Empty(t, root.Client.Token())
	assert.Equal(t, "http://127.0.0.1:1/api", root.Client.BaseURL())
}

func TestOpen_RestoresStoredSession(t *testing.T) {
	cfg := testConfig(t)
	tok, err := auth.IssueToken("s", "u-1", "alice", "archivist", time.Hour)
	require.NoError(t, err)
	require.NoError(t, fs.AuthFSStore{Path: cfg.TokenFile}.Save(tok))

	root, done, err := Open(cfg)
	require.NoError(t, err)
	defer done()

	sess := root.Auth.Session()
	require.NotNil(t, sess)
	assert.Equal(t, "alice", sess.Login)
	assert.Equal(t, tok, root.Client.Token())
}

func TestOpen_DropsExpiredToken(t *testing.T) {
	cfg := testConfig(t)
	tok, err := auth.IssueToken("s", "u-1", "alice", "archivist", -time.Minute)
	require.NoError(t, err)
	store := fs.AuthFSStore{Path: cfg.TokenFile}
	require.NoError(t, store.Save(tok))

	root, done, err := Open(cfg)
	require.NoError(t, err)
	defer done()

	assert.Nil(t, root.Auth.Session())
	_, err = store.Load()
	assert.Error(t, err, "expired token must be removed")
}
