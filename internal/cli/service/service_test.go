package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ArchiveDesk/internal/cli/api"
	"ArchiveDesk/internal/model"
)

// captured — запрос, который увидел фейковый API.
type captured struct {
	Method      string
	Path        string
	Query       string
	ContentType string
	Body        []byte
}

// fakeAPI отвечает конвертами и запоминает запросы.
type fakeAPI struct {
	t        *testing.T
	mu       sync.Mutex
	requests []captured
	routes   map[string]func(w http.ResponseWriter, r *http.Request)
}

func newFakeAPI(t *testing.T) (*fakeAPI, *api.Client) {
	t.Helper()
	f := &fakeAPI{t: t, routes: map[string]func(http.ResponseWriter, *http.Request){}}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return f, api.New(srv.URL + "/api")
}

func (f *fakeAPI) handle(methodPath string, fn func(w http.ResponseWriter, r *http.Request)) {
	f.routes[methodPath] = fn
}

func (f *fakeAPI) reply(methodPath string, status int, message string, data any) {
	f.handle(methodPath, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, status, message, data)
	})
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.requests = append(f.requests, captured{
		Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery,
		ContentType: r.Header.Get("Content-Type"), Body: body,
	})
	f.mu.Unlock()
	r.Body = io.NopCloser(strings.NewReader(string(body)))

	fn, ok := f.routes[r.Method+" "+r.URL.Path]
	if !ok {
		writeEnvelope(w, http.StatusNotFound, "Route not found", nil)
		return
	}
	fn(w, r)
}

func (f *fakeAPI) last() captured {
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(f.t, f.requests)
	return f.requests[len(f.requests)-1]
}

func (f *fakeAPI) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func writeEnvelope(w http.ResponseWriter, status int, message string, data any) {
	st := "success"
	if status >= 400 {
		st = "error"
	}
	raw, _ := json.Marshal(data)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.Envelope{Status: st, Message: message, Data: raw})
}

func ptr[T any](v T) *T { return &v }

var nop = zap.NewNop().Sugar()

func TestDepartments_FetchListReplacesItems(t *testing.T) {
	f, client := newFakeAPI(t)
	f.reply("GET /api/departments", http.StatusOK, "", []model.Department{{ID: "d1", Name: "Registry"}, {ID: "d2", Name: "Library"}})
	deps := NewDepartments(client, nop)

	require.NoError(t, deps.FetchList(context.Background(), nil))
	st := deps.Store().Snapshot()
	assert.False(t, st.Loading)
	assert.Empty(t, st.Error)
	require.Len(t, st.Items, 2)
	assert.Equal(t, "Library", st.Items[1].Name)

	f.reply("GET /api/departments", http.StatusOK, "", []model.Department{{ID: "d3", Name: "Maps"}})
	require.NoError(t, deps.FetchList(context.Background(), nil))
	assert.Equal(t, []string{"d3"}, ids(deps.Store().Items()))
}

func TestDepartments_ServerErrorRecordedInStore(t *testing.T) {
	f, client := newFakeAPI(t)
	f.reply("GET /api/departments", http.StatusOK, "", []model.Department{{ID: "d1"}})
	deps := NewDepartments(client, nop)
	require.NoError(t, deps.FetchList(context.Background(), nil))

	f.reply("GET /api/departments", http.StatusInternalServerError, "Database unavailable", nil)
	err := deps.FetchList(context.Background(), nil)
	require.Error(t, err)
	st := deps.Store().Snapshot()
	assert.Equal(t, "Database unavailable", st.Error)
	assert.False(t, st.Loading)
	assert.Len(t, st.Items, 1, "items survive a failed fetch")

	f.reply("GET /api/departments", http.StatusBadGateway, "", nil)
	require.Error(t, deps.FetchList(context.Background(), nil))
	assert.Equal(t, "Failed to fetch departments", deps.Store().Err())
}

func TestDepartments_ValidationDoesNotTouchStoreOrServer(t *testing.T) {
	f, client := newFakeAPI(t)
	deps := NewDepartments(client, nop)

	_, err := deps.Create(context.Background(), model.DepartmentInput{Name: "   "})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = deps.Update(context.Background(), "d1", model.DepartmentInput{})
	assert.ErrorIs(t, err, ErrValidation)
	assert.ErrorIs(t, deps.Delete(context.Background(), " "), ErrValidation)

	assert.Zero(t, f.count())
	assert.Empty(t, deps.Store().Err())
}

func TestDepartments_CreateUpdateDelete(t *testing.T) {
	f, client := newFakeAPI(t)
	deps := NewDepartments(client, nop)
	ctx := context.Background()

	f.reply("POST /api/departments", http.StatusCreated, "", model.Department{ID: "d1", Name: "Registry"})
	d, err := deps.Create(ctx, model.DepartmentInput{Name: "Registry"})
	require.NoError(t, err)
	assert.Equal(t, "d1", d.ID)
	assert.JSONEq(t, `{"name":"Registry"}`, string(f.last().Body))

	f.reply("PUT /api/departments/d1", http.StatusOK, "", model.Department{ID: "d1", Name: "Records Office"})
	_, err = deps.Update(ctx, "d1", model.DepartmentInput{Description: ptr("")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"description":""}`, string(f.last().Body))
	assert.Equal(t, "Records Office", deps.Store().Items()[0].Name)

	f.reply("DELETE /api/departments/d1", http.StatusOK, "", nil)
	require.NoError(t, deps.Delete(ctx, "d1"))
	assert.Empty(t, deps.Store().Items())
}

func TestCollections_CreateCompactsDepartmentIDs(t *testing.T) {
	f, client := newFakeAPI(t)
	cols := NewCollections(client, nop)
	f.reply("POST /api/collections", http.StatusCreated, "", model.Collection{ID: "c1", Title: "Deeds"})

	_, err := cols.Create(context.Background(), model.CollectionInput{Title: "Deeds", DepartmentIDs: []string{" ", ""}})
	require.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "select at least one department")

	_, err = cols.Create(context.Background(), model.CollectionInput{Title: " Deeds ", DepartmentIDs: []string{"d1", " d2", "d1"}})
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(f.last().Body, &body))
	assert.Equal(t, "Deeds", body["title"])
	assert.Equal(t, []any{"d1", "d2"}, body["departmentIds"])

	_, err = cols.Update(context.Background(), "c1", model.CollectionInput{DepartmentIDs: []string{}})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRecords_FetchListEncodesQuery(t *testing.T) {
	f, client := newFakeAPI(t)
	recs := NewRecords(client, nop)
	f.reply("GET /api/records", http.StatusOK, "", []model.Record{{ID: "r1", AccessLevel: model.AccessPublic}})
	f.reply("GET /api/records/restricted", http.StatusOK, "", []model.Record{{ID: "r2", AccessLevel: model.AccessRestricted}})

	require.NoError(t, recs.FetchList(context.Background(), RecordQuery{CollectionID: "c1", DepartmentID: "d1", Limit: 5}))
	assert.Equal(t, "collectionId=c1&departmentId=d1&limit=5", f.last().Query)
	assert.Equal(t, []string{"r1"}, ids(recs.Store().Items()))

	require.NoError(t, recs.FetchRestricted(context.Background()))
	assert.Equal(t, "/api/records/restricted", f.last().Path)
	assert.Equal(t, []string{"r2"}, ids(recs.Store().Items()))

	assert.ErrorIs(t, recs.FetchList(context.Background(), RecordQuery{Limit: -1}), ErrValidation)
}

func TestRecords_CreateWithoutFilesSendsJSON(t *testing.T) {
	f, client := newFakeAPI(t)
	recs := NewRecords(client, nop)
	f.reply("POST /api/records", http.StatusCreated, "", model.Record{ID: "r1", Title: "Charter", AccessLevel: model.AccessPublic})

	_, err := recs.Create(context.Background(), model.RecordInput{Title: ptr("Charter")})
	require.ErrorIs(t, err, ErrValidation)

	rec, err := recs.Create(context.Background(), model.RecordInput{
		Title:       ptr("Charter"),
		AccessLevel: ptr(model.AccessPublic),
		SubjectTags: []string{"history"},
	})
	require.NoError(t, err)
	assert.Equal(t, "r1", rec.ID)

	req := f.last()
	assert.Equal(t, "application/json", req.ContentType)
	assert.JSONEq(t, `{"title":"Charter","description":"","collectionId":"","accessLevel":"PUBLIC","subjectTags":["history"]}`, string(req.Body))
	assert.Len(t, recs.Store().Items(), 1)
}

func TestRecords_CreateWithFilesSendsMultipart(t *testing.T) {
	f, client := newFakeAPI(t)
	recs := NewRecords(client, nop)
	f.handle("POST /api/records", func(w http.ResponseWriter, r *http.Request) {
		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			writeEnvelope(w, http.StatusBadRequest, "bad form", nil)
			return
		}
		assert.Equal(t, "Charter", r.FormValue("title"))
		assert.Equal(t, "RESTRICTED", r.FormValue("accessLevel"))
		assert.Equal(t, `["history","law"]`, r.FormValue("subjectTags"))
		assert.Equal(t, []string{""}, r.MultipartForm.Value["description"])
		assert.Equal(t, []string{""}, r.MultipartForm.Value["collectionId"])
		assert.Len(t, r.MultipartForm.File["files"], 2)
		writeEnvelope(w, http.StatusCreated, "", model.Record{
			ID: "r1", Title: "Charter", AccessLevel: model.AccessRestricted,
			FileAssets: []model.FileAsset{{ID: "f1"}, {ID: "f2"}},
		})
	})

	rec, err := recs.Create(context.Background(), model.RecordInput{
		Title:       ptr("Charter"),
		AccessLevel: ptr(model.AccessRestricted),
		SubjectTags: []string{"history", "law"},
		Files: []model.Upload{
			{Filename: "a.pdf", ContentType: "application/pdf", Content: strings.NewReader("%PDF")},
			{Filename: "b.txt", Content: strings.NewReader("b")},
		},
	})
	require.NoError(t, err)
	assert.Len(t, rec.FileAssets, 2)
	assert.True(t, strings.HasPrefix(f.last().ContentType, "multipart/form-data; boundary="))
}

func TestRecords_FileValidation(t *testing.T) {
	f, client := newFakeAPI(t)
	recs := NewRecords(client, nop)
	_, err := recs.Update(context.Background(), "r1", model.RecordInput{
		Files: []model.Upload{{Filename: "x.txt"}},
	})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = recs.Update(context.Background(), "r1", model.RecordInput{AccessLevel: ptr(model.AccessLevel("SECRET"))})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Zero(t, f.count())
}

func TestRecords_FetchByIDNotFound(t *testing.T) {
	f, client := newFakeAPI(t)
	recs := NewRecords(client, nop)
	f.reply("GET /api/records/r1", http.StatusOK, "", model.Record{ID: "r1", Title: "Charter"})

	rec, err := recs.FetchByID(context.Background(), "r1")
	require.NoError(t, err)
	cur, ok := recs.Store().Current()
	require.True(t, ok)
	assert.Equal(t, rec, cur)

	_, err = recs.FetchByID(context.Background(), "gone")
	require.Error(t, err)
	assert.True(t, api.IsNotFound(err))
	assert.Equal(t, "Route not found", recs.Store().Err())
	_, ok = recs.Store().Current()
	assert.False(t, ok)
}

func TestFilterRecords(t *testing.T) {
	items := []model.Record{
		{ID: "1", Title: "Town charter", AccessLevel: model.AccessPublic},
		{ID: "2", Title: "Map", Description: "Old CHARTER map", AccessLevel: model.AccessRestricted},
		{ID: "3", Title: "Deed", AccessLevel: model.AccessPublic, SubjectTags: []model.SubjectTag{{Term: "Charters"}}},
		{ID: "4", Title: "Ledger", AccessLevel: model.AccessConfidential},
	}
	assert.Equal(t, []string{"1", "2", "3"}, ids(FilterRecords(items, RecordFilter{Query: " charter "})))
	assert.Equal(t, []string{"1", "3"}, ids(FilterRecords(items, RecordFilter{Query: "charter", AccessLevel: model.AccessPublic})))
	assert.Len(t, FilterRecords(items, RecordFilter{}), 4)
	assert.Equal(t, "Town charter", items[0].Title)
}

func TestPublications_CreateDefaultsToDraftAndPublish(t *testing.T) {
	f, client := newFakeAPI(t)
	news := NewNews(client, nop)
	assert.Equal(t, "news", news.Kind())
	f.reply("POST /api/news", http.StatusCreated, "", model.News{Publication: model.Publication{ID: "n1", Title: "Hi", Status: model.StatusDraft}})
	f.reply("PUT /api/news/n1", http.StatusOK, "", model.News{Publication: model.Publication{ID: "n1", Title: "Hi", Status: model.StatusPublished}})

	_, err := news.Create(context.Background(), model.PublicationInput{Title: ptr(" Hi ")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"Hi","status":"draft"}`, string(f.last().Body))

	n, err := news.Publish(context.Background(), "n1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusPublished, n.Status)
	assert.JSONEq(t, `{"status":"published"}`, string(f.last().Body))
	assert.Equal(t, model.StatusPublished, news.Store().Items()[0].Status)

	_, err = news.Update(context.Background(), "n1", model.PublicationInput{Status: ptr(model.Status("archived"))})
	assert.ErrorIs(t, err, ErrValidation)
}

func ids[T model.Entity](items []T) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.GetID())
	}
	return out
}

func TestEvents_EndBeforeStartRejected(t *testing.T) {
	f, client := newFakeAPI(t)
	events := NewEvents(client, nop)
	start := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(-time.Hour)

	_, err := events.Create(context.Background(), model.PublicationInput{Title: ptr("Open day"), StartsAt: &start, EndsAt: &end})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Zero(t, f.count())
}

func TestRecords_UpdateEmptyTagsClears(t *testing.T) {
	f, client := newFakeAPI(t)
	recs := NewRecords(client, nop)
	f.reply("PUT /api/records/r1", http.StatusOK, "", model.Record{ID: "r1", Title: "Charter"})

	_, err := recs.Update(context.Background(), "r1", model.RecordInput{SubjectTags: []string{}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"subjectTags":[]}`, string(f.last().Body))

	_, err = recs.Update(context.Background(), "r1", model.RecordInput{Title: ptr("Charter")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"Charter"}`, string(f.last().Body))
}
