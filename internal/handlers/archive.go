package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"ArchiveDesk/internal/cli/auth"
	"ArchiveDesk/internal/config"
	"ArchiveDesk/internal/model"
	"ArchiveDesk/internal/repo"
)

// maxUploadBytes ограничивает размер multipart-формы записи.
const maxUploadBytes = 32 << 20

// ArchiveHandler обслуживает вход, подразделения, коллекции, записи и файлы.
type ArchiveHandler struct {
	Archive *repo.Archive
	Logger  *zap.SugaredLogger
	Config  *config.Config
}

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// Login выдаёт JWT при верных учётных данных.
func (h *ArchiveHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	user, found := h.Archive.Authenticate(r.Context(), req.Login, req.Password)
	if !found {
		fail(w, http.StatusUnauthorized, "Invalid login or password")
		return
	}
	tok, err := auth.IssueToken(h.Config.AuthSecret, user.ID, user.Login, user.Role, h.Config.TokenTTL)
	if err != nil {
		h.Logger.Errorw("issue token", "error", err)
		fail(w, http.StatusInternalServerError, "Failed to issue token")
		return
	}
	ok(w, http.StatusOK, "Logged in", model.LoginResult{Token: tok, User: user})
}

func (h *ArchiveHandler) ListDepartments(w http.ResponseWriter, r *http.Request) {
	list, err := h.Archive.Departments(r.Context())
	if err != nil {
		failErr(w, err, "")
		return
	}
	ok(w, http.StatusOK, "", list)
}

func (h *ArchiveHandler) GetDepartment(w http.ResponseWriter, r *http.Request) {
	d, err := h.Archive.Department(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		failErr(w, err, "Department not found")
		return
	}
	ok(w, http.StatusOK, "", d)
}

func (h *ArchiveHandler) CreateDepartment(w http.ResponseWriter, r *http.Request) {
	h.saveDepartment(w, r, "")
}

func (h *ArchiveHandler) UpdateDepartment(w http.ResponseWriter, r *http.Request) {
	h.saveDepartment(w, r, chi.URLParam(r, "id"))
}

func (h *ArchiveHandler) saveDepartment(w http.ResponseWriter, r *http.Request, id string) {
	var in model.DepartmentInput
	if !decodeJSON(w, r, &in) {
		return
	}
	d, err := h.Archive.SaveDepartment(r.Context(), id, in)
	if err != nil {
		failErr(w, err, "Department not found")
		return
	}
	ok(w, statusFor(id), "Department saved", d)
}

func (h *ArchiveHandler) DeleteDepartment(w http.ResponseWriter, r *http.Request) {
	if err := h.Archive.DeleteDepartment(r.Context(), chi.URLParam(r, "id")); err != nil {
		failErr(w, err, "Department not found")
		return
	}
	ok(w, http.StatusOK, "Department deleted", nil)
}

func (h *ArchiveHandler) ListCollections(w http.ResponseWriter, r *http.Request) {
	list, err := h.Archive.Collections(r.Context())
	if err != nil {
		failErr(w, err, "")
		return
	}
	ok(w, http.StatusOK, "", list)
}

func (h *ArchiveHandler) GetCollection(w http.ResponseWriter, r *http.Request) {
	c, err := h.Archive.Collection(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		failErr(w, err, "Collection not found")
		return
	}
	ok(w, http.StatusOK, "", c)
}

func (h *ArchiveHandler) CreateCollection(w http.ResponseWriter, r *http.Request) {
	h.saveCollection(w, r, "")
}

func (h *ArchiveHandler) UpdateCollection(w http.ResponseWriter, r *http.Request) {
	h.saveCollection(w, r, chi.URLParam(r, "id"))
}

func (h *ArchiveHandler) saveCollection(w http.ResponseWriter, r *http.Request, id string) {
	var in model.CollectionInput
	if !decodeJSON(w, r, &in) {
		return
	}
	c, err := h.Archive.SaveCollection(r.Context(), id, in)
	if err != nil {
		failErr(w, err, "Collection not found")
		return
	}
	ok(w, statusFor(id), "Collection saved", c)
}

func (h *ArchiveHandler) DeleteCollection(w http.ResponseWriter, r *http.Request) {
	if err := h.Archive.DeleteCollection(r.Context(), chi.URLParam(r, "id")); err != nil {
		failErr(w, err, "Collection not found")
		return
	}
	ok(w, http.StatusOK, "Collection deleted", nil)
}

// ListRecords поддерживает фильтры collectionId, departmentId и limit.
func (h *ArchiveHandler) ListRecords(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := repo.RecordFilter{CollectionID: q.Get("collectionId"), DepartmentID: q.Get("departmentId")}
	if s := q.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			fail(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		f.Limit = n
	}
	h.writeRecords(w, r, f)
}

func (h *ArchiveHandler) ListRestricted(w http.ResponseWriter, r *http.Request) {
	h.writeRecords(w, r, repo.RecordFilter{AccessLevel: model.AccessRestricted})
}

func (h *ArchiveHandler) ListConfidential(w http.ResponseWriter, r *http.Request) {
	h.writeRecords(w, r, repo.RecordFilter{AccessLevel: model.AccessConfidential})
}

func (h *ArchiveHandler) writeRecords(w http.ResponseWriter, r *http.Request, f repo.RecordFilter) {
	list, err := h.Archive.Records(r.Context(), f)
	if err != nil {
		failErr(w, err, "")
		return
	}
	ok(w, http.StatusOK, "", list)
}

func (h *ArchiveHandler) GetRecord(w http.ResponseWriter, r *http.Request) {
	rec, err := h.Archive.Record(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		failErr(w, err, "Record not found")
		return
	}
	ok(w, http.StatusOK, "", rec)
}

func (h *ArchiveHandler) CreateRecord(w http.ResponseWriter, r *http.Request) {
	h.saveRecord(w, r, "")
}

func (h *ArchiveHandler) UpdateRecord(w http.ResponseWriter, r *http.Request) {
	h.saveRecord(w, r, chi.URLParam(r, "id"))
}

type recordRequest struct {
	Title        *string  `json:"title"`
	Description  *string  `json:"description"`
	CollectionID *string  `json:"collectionId"`
	AccessLevel  *string  `json:"accessLevel"`
	SubjectTags  []string `json:"subjectTags"`
}

// saveRecord принимает JSON или multipart/form-data (поля + части files).
func (h *ArchiveHandler) saveRecord(w http.ResponseWriter, r *http.Request, id string) {
	var ch repo.RecordChanges
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mt == "multipart/form-data" {
		var err error
		if ch, err = h.parseRecordForm(r); err != nil {
			fail(w, http.StatusBadRequest, err.Error())
			return
		}
	} else {
		var req recordRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		ch = repo.RecordChanges{
			Title:        req.Title,
			Description:  req.Description,
			CollectionID: req.CollectionID,
			AccessLevel:  req.AccessLevel,
			SubjectTags:  req.SubjectTags,
		}
	}
	rec, err := h.Archive.SaveRecord(r.Context(), id, ch)
	if err != nil {
		failErr(w, err, "Record not found")
		return
	}
	ok(w, statusFor(id), "Record saved", rec)
}

func (h *ArchiveHandler) parseRecordForm(r *http.Request) (repo.RecordChanges, error) {
	var ch repo.RecordChanges
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return ch, fmt.Errorf("Invalid multipart form")
	}
	form := r.MultipartForm
	field := func(name string) *string {
		if v, ok := form.Value[name]; ok && len(v) > 0 {
			s := v[0]
			return &s
		}
		return nil
	}
	ch.Title = field("title")
	ch.Description = field("description")
	ch.CollectionID = field("collectionId")
	ch.AccessLevel = field("accessLevel")
	if raw := field("subjectTags"); raw != nil && *raw != "" {
		if err := json.Unmarshal([]byte(*raw), &ch.SubjectTags); err != nil {
			return ch, fmt.Errorf("subjectTags must be a JSON array of strings")
		}
	}
	base := baseURL(r)
	for _, fh := range form.File["files"] {
		f, err := fh.Open()
		if err != nil {
			return ch, fmt.Errorf("Failed to read %s", fh.Filename)
		}
		content, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			return ch, fmt.Errorf("Failed to read %s", fh.Filename)
		}
		id := uuid.NewString()
		ct := fh.Header.Get("Content-Type")
		if ct == "" {
			ct = "application/octet-stream"
		}
		ch.Files = append(ch.Files, repo.StoredFile{
			Asset: model.FileAsset{
				ID:          id,
				Filename:    fh.Filename,
				StoragePath: base + "/files/" + id + "/" + url.PathEscape(fh.Filename),
				Size:        strconv.Itoa(len(content)),
				MimeType:    ct,
			},
			Content: content,
		})
	}
	return ch, nil
}

func (h *ArchiveHandler) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	if err := h.Archive.DeleteRecord(r.Context(), chi.URLParam(r, "id")); err != nil {
		failErr(w, err, "Record not found")
		return
	}
	ok(w, http.StatusOK, "Record deleted", nil)
}

// GetFile отдаёт содержимое загруженного файла.
func (h *ArchiveHandler) GetFile(w http.ResponseWriter, r *http.Request) {
	f, err := h.Archive.File(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "file not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", f.Asset.MimeType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("inline", map[string]string{"filename": f.Asset.Filename}))
	_, _ = w.Write(f.Content)
}

func statusFor(id string) int {
	if id == "" {
		return http.StatusCreated
	}
	return http.StatusOK
}

func baseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + strings.TrimSuffix(r.Host, "/")
}
