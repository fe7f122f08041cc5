package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ArchiveDesk/internal/config"
	"ArchiveDesk/internal/model"
	"ArchiveDesk/internal/repo"
)

const testSecret = "test-secret"

type env struct {
	srv     *httptest.Server
	archive *repo.Archive
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db, err := repo.InitDB("")
	require.NoError(t, err)
	a := repo.NewArchive(db)
	_, err = a.AddUser(context.Background(), "admin", "admin", "admin")
	require.NoError(t, err)
	_, err = a.AddUser(context.Background(), "reader", "reader", "viewer")
	require.NoError(t, err)
	cfg := &config.Config{AuthSecret: testSecret, TokenTTL: time.Hour}
	h := NewHandler(a, zap.NewNop().Sugar(), cfg)
	srv := httptest.NewServer(h.Router)
	t.Cleanup(srv.Close)
	return &env{srv: srv, archive: a}
}

func (e *env) do(t *testing.T, method, path, token string, body io.Reader, contentType string) (int, model.Envelope) {
	t.Helper()
	req, err := http.NewRequest(method, e.srv.URL+path, body)
	require.NoError(t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	var env model.Envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func (e *env) doJSON(t *testing.T, method, path, token string, v any) (int, model.Envelope) {
	t.Helper()
	var body io.Reader
	if v != nil {
		raw, err := json.Marshal(v)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	return e.do(t, method, path, token, body, "application/json")
}

func (e *env) login(t *testing.T, login string) string {
	t.Helper()
	code, env := e.doJSON(t, http.MethodPost, "/api/auth/login", "", map[string]string{"login": login, "password": login})
	require.Equal(t, http.StatusOK, code)
	var res model.LoginResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	require.NotEmpty(t, res.Token)
	return res.Token
}

func TestLogin(t *testing.T) {
	e := newEnv(t)

	code, env := e.doJSON(t, http.MethodPost, "/api/auth/login", "", map[string]string{"login": "admin", "password": "admin"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "success", env.Status)
	var res model.LoginResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, "admin", res.User.Login)
	assert.Equal(t, "admin", res.User.Role)

	code, env = e.doJSON(t, http.MethodPost, "/api/auth/login", "", map[string]string{"login": "admin", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "error", env.Status)
	assert.Equal(t, "Invalid login or password", env.Message)
}

func TestDepartments_CRUD(t *testing.T) {
	e := newEnv(t)
	tok := e.login(t, "admin")

	code, env := e.doJSON(t, http.MethodPost, "/api/departments", "", map[string]string{"name": "Registry"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Authentication required", env.Message)

	code, env = e.doJSON(t, http.MethodPost, "/api/departments", tok, map[string]string{"name": "Registry"})
	require.Equal(t, http.StatusCreated, code)
	var d model.Department
	require.NoError(t, json.Unmarshal(env.Data, &d))
	assert.Equal(t, "Registry", d.Name)
	require.NotEmpty(t, d.ID)

	code, env = e.doJSON(t, http.MethodPut, "/api/departments/"+d.ID, tok, map[string]string{"name": "Records Office"})
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(env.Data, &d))
	assert.Equal(t, "Records Office", d.Name)

	code, env = e.doJSON(t, http.MethodGet, "/api/departments", "", nil)
	require.Equal(t, http.StatusOK, code)
	var list []model.Department
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list, 1)

	code, _ = e.doJSON(t, http.MethodDelete, "/api/departments/"+d.ID, tok, nil)
	assert.Equal(t, http.StatusOK, code)

	code, env = e.doJSON(t, http.MethodGet, "/api/departments/"+d.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Department not found", env.Message)
}

func TestCollections_ValidationError(t *testing.T) {
	e := newEnv(t)
	tok := e.login(t, "admin")

	code, env := e.doJSON(t, http.MethodPost, "/api/collections", tok, map[string]any{"title": "Maps"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "At least one department is required", env.Message)

	code, env = e.do(t, http.MethodPost, "/api/collections", tok, strings.NewReader("{"), "application/json")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Invalid JSON body", env.Message)
}

func TestRecords_MultipartCreateAndFile(t *testing.T) {
	e := newEnv(t)
	tok := e.login(t, "admin")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("title", "Charter"))
	require.NoError(t, mw.WriteField("accessLevel", "PUBLIC"))
	require.NoError(t, mw.WriteField("subjectTags", `["history","law"]`))
	part, err := mw.CreateFormFile("files", "charter.pdf")
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.4"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	code, env := e.do(t, http.MethodPost, "/api/records", tok, &buf, mw.FormDataContentType())
	require.Equal(t, http.StatusCreated, code, env.Message)
	var rec model.Record
	require.NoError(t, json.Unmarshal(env.Data, &rec))
	assert.Equal(t, "Charter", rec.Title)
	assert.Equal(t, model.AccessPublic, rec.AccessLevel)
	assert.Equal(t, []string{"history", "law"}, model.Terms(rec.SubjectTags))
	require.Len(t, rec.FileAssets, 1)
	asset := rec.FileAssets[0]
	assert.Equal(t, "charter.pdf", asset.Filename)
	assert.Equal(t, "8", asset.Size)
	assert.True(t, strings.HasPrefix(asset.StoragePath, e.srv.URL+"/files/"+asset.ID+"/"))

	resp, err := e.srv.Client().Get(asset.StoragePath)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "%PDF-1.4", string(body))
}

func TestRecords_JSONUpdateAndFilters(t *testing.T) {
	e := newEnv(t)
	tok := e.login(t, "admin")

	dep, err := e.archive.SaveDepartment(context.Background(), "", model.DepartmentInput{Name: "Registry"})
	require.NoError(t, err)
	col, err := e.archive.SaveCollection(context.Background(), "", model.CollectionInput{Title: "Deeds", DepartmentIDs: []string{dep.ID}})
	require.NoError(t, err)

	for _, title := range []string{"A", "B", "C"} {
		code, env := e.doJSON(t, http.MethodPost, "/api/records", tok, map[string]any{
			"title": title, "accessLevel": "RESTRICTED", "collectionId": col.ID,
		})
		require.Equal(t, http.StatusCreated, code, env.Message)
	}

	code, env := e.doJSON(t, http.MethodGet, "/api/records?departmentId="+dep.ID+"&limit=2", "", nil)
	require.Equal(t, http.StatusOK, code)
	var recs []model.Record
	require.NoError(t, json.Unmarshal(env.Data, &recs))
	require.Len(t, recs, 2)
	assert.Equal(t, "Deeds", recs[0].Collection.Title)

	code, env = e.doJSON(t, http.MethodPut, "/api/records/"+recs[0].ID, tok, map[string]any{"accessLevel": "confidential"})
	require.Equal(t, http.StatusOK, code)
	var rec model.Record
	require.NoError(t, json.Unmarshal(env.Data, &rec))
	assert.Equal(t, model.AccessConfidential, rec.AccessLevel)
	assert.Equal(t, "A", rec.Title)

	code, env = e.doJSON(t, http.MethodGet, "/api/records?limit=x", "", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Invalid limit", env.Message)
}

func TestRecords_TierAccess(t *testing.T) {
	e := newEnv(t)
	admin := e.login(t, "admin")
	reader := e.login(t, "reader")

	code, _ := e.doJSON(t, http.MethodGet, "/api/records/restricted", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = e.doJSON(t, http.MethodGet, "/api/records/restricted", reader, nil)
	assert.Equal(t, http.StatusOK, code)

	code, env := e.doJSON(t, http.MethodGet, "/api/records/confidential", reader, nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "Insufficient permissions", env.Message)

	code, _ = e.doJSON(t, http.MethodGet, "/api/records/confidential", admin, nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestPublications_PublishCycle(t *testing.T) {
	e := newEnv(t)
	tok := e.login(t, "admin")

	code, env := e.doJSON(t, http.MethodPost, "/api/events", tok, map[string]any{
		"title": "Open day", "location": "Hall A",
	})
	require.Equal(t, http.StatusCreated, code, env.Message)
	var ev model.Event
	require.NoError(t, json.Unmarshal(env.Data, &ev))
	assert.Equal(t, model.StatusDraft, ev.Status)
	assert.Nil(t, ev.PublishedAt)
	assert.Equal(t, "Hall A", ev.Location)

	code, env = e.doJSON(t, http.MethodPut, "/api/events/"+ev.ID, tok, map[string]any{"status": "published"})
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(env.Data, &ev))
	assert.Equal(t, model.StatusPublished, ev.Status)
	assert.NotNil(t, ev.PublishedAt)

	code, env = e.doJSON(t, http.MethodPut, "/api/events/"+ev.ID, tok, map[string]any{"status": "archived"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Invalid status", env.Message)

	code, env = e.doJSON(t, http.MethodGet, "/api/news", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `[]`, string(env.Data))

	code, _ = e.doJSON(t, http.MethodDelete, "/api/events/"+ev.ID, tok, nil)
	assert.Equal(t, http.StatusOK, code)
	code, _ = e.doJSON(t, http.MethodDelete, "/api/events/"+ev.ID, tok, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestUnknownRoute(t *testing.T) {
	e := newEnv(t)
	code, env := e.doJSON(t, http.MethodGet, "/api/nowhere", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "error", env.Status)
}
