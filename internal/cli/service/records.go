package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"ArchiveDesk/internal/cli/api"
	"ArchiveDesk/internal/model"
)

// RecordQuery — серверные фильтры списка записей.
type RecordQuery struct {
	CollectionID string
	DepartmentID string
	Limit        int
}

// Values encodes the non-empty filters as query parameters.
func (q RecordQuery) Values() url.Values {
	v := url.Values{}
	if q.CollectionID != "" {
		v.Set("collectionId", q.CollectionID)
	}
	if q.DepartmentID != "" {
		v.Set("departmentId", q.DepartmentID)
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	return v
}

// Records — синхронизация записей (/records) с загрузкой файлов.
type Records struct {
	*Resource[model.Record]
}

func NewRecords(client *api.Client, logger *zap.SugaredLogger) *Records {
	return &Records{newResource[model.Record](client, logger, "/records", "record", "records")}
}

// FetchList загружает записи с серверными фильтрами.
func (r *Records) FetchList(ctx context.Context, q RecordQuery) error {
	if q.Limit < 0 {
		return invalid("limit must not be negative")
	}
	return r.fetchListAt(ctx, r.path, q.Values())
}

// FetchRestricted replaces the list with records of the RESTRICTED tier.
func (r *Records) FetchRestricted(ctx context.Context) error {
	return r.fetchListAt(ctx, r.path+"/restricted", nil)
}

// FetchConfidential replaces the list with records of the CONFIDENTIAL tier.
func (r *Records) FetchConfidential(ctx context.Context) error {
	return r.fetchListAt(ctx, r.path+"/confidential", nil)
}

// Create проверяет обязательные поля и отправляет запись JSON'ом или multipart'ом (если есть файлы).
func (r *Records) Create(ctx context.Context, in model.RecordInput) (model.Record, error) {
	if in.Title == nil || blank(*in.Title) {
		return model.Record{}, invalid("record title is required")
	}
	if in.AccessLevel == nil {
		return model.Record{}, invalid("access level is required")
	}
	if err := validateRecordInput(in); err != nil {
		return model.Record{}, err
	}
	empty := ""
	if in.Description == nil {
		in.Description = &empty
	}
	if in.CollectionID == nil {
		in.CollectionID = &empty
	}
	item, err := r.store.RunCreate(ctx, "Failed to create record", func(ctx context.Context) (model.Record, error) {
		return r.send(ctx, http.MethodPost, r.path, in)
	})
	r.logResult("create", item.ID, err)
	return item, err
}

// Update sends only the set fields; attachments switch the body to multipart.
func (r *Records) Update(ctx context.Context, id string, in model.RecordInput) (model.Record, error) {
	if blank(id) {
		return model.Record{}, invalid("record id is required")
	}
	if in.Title != nil && blank(*in.Title) {
		return model.Record{}, invalid("record title must not be empty")
	}
	if err := validateRecordInput(in); err != nil {
		return model.Record{}, err
	}
	item, err := r.store.RunUpdate(ctx, id, "Failed to update record", func(ctx context.Context) (model.Record, error) {
		return r.send(ctx, http.MethodPut, r.itemPath(id), in)
	})
	r.logResult("update", id, err)
	return item, err
}

func validateRecordInput(in model.RecordInput) error {
	if in.AccessLevel != nil && !in.AccessLevel.Valid() {
		return invalid("invalid access level %q", *in.AccessLevel)
	}
	for i, f := range in.Files {
		if blank(f.Filename) {
			return invalid("file #%d has no name", i+1)
		}
		if f.Content == nil {
			return invalid("file %s has no content", f.Filename)
		}
	}
	return nil
}

func (r *Records) send(ctx context.Context, method, path string, in model.RecordInput) (model.Record, error) {
	var rec model.Record
	if len(in.Files) == 0 {
		var err error
		if method == http.MethodPost {
			err = r.client.Post(ctx, path, recordBody(in), &rec)
		} else {
			err = r.client.Put(ctx, path, recordBody(in), &rec)
		}
		return rec, err
	}
	form, err := recordForm(in)
	if err != nil {
		return rec, err
	}
	err = r.client.SendMultipart(ctx, method, path, form, &rec)
	return rec, err
}

// recordJSON — JSON-тело записи; ключа files в нём нет.
type recordJSON struct {
	Title        *string            `json:"title,omitempty"`
	Description  *string            `json:"description,omitempty"`
	CollectionID *string            `json:"collectionId,omitempty"`
	AccessLevel  *model.AccessLevel `json:"accessLevel,omitempty"`
	SubjectTags  *[]string          `json:"subjectTags,omitempty"` // пустой срез очищает теги
}

func recordBody(in model.RecordInput) recordJSON {
	body := recordJSON{
		Title:        in.Title,
		Description:  in.Description,
		CollectionID: in.CollectionID,
		AccessLevel:  in.AccessLevel,
	}
	if in.SubjectTags != nil {
		tags := in.SubjectTags
		body.SubjectTags = &tags
	}
	return body
}

// recordForm строит multipart-форму: скалярные поля, теги JSON-массивом и по части на файл.
func recordForm(in model.RecordInput) (*api.Multipart, error) {
	m := api.NewMultipart()
	if in.Title != nil {
		m.Field("title", *in.Title)
	}
	if in.Description != nil {
		m.Field("description", *in.Description)
	}
	if in.CollectionID != nil {
		m.Field("collectionId", *in.CollectionID)
	}
	if in.AccessLevel != nil {
		m.Field("accessLevel", string(*in.AccessLevel))
	}
	if in.SubjectTags != nil {
		b, err := json.Marshal(in.SubjectTags)
		if err != nil {
			return nil, fmt.Errorf("encode subjectTags: %w", err)
		}
		m.Field("subjectTags", string(b))
	}
	for _, f := range in.Files {
		m.File("files", f.Filename, f.ContentType, f.Content)
	}
	return m, nil
}

// RecordFilter — клиентский фильтр уже загруженного списка.
type RecordFilter struct {
	Query       string
	AccessLevel model.AccessLevel // пусто — любой уровень
}

// FilterRecords returns the records matching f without modifying items.
// Query matches title, description or tag terms, case-insensitively.
func FilterRecords(items []model.Record, f RecordFilter) []model.Record {
	q := strings.ToLower(strings.TrimSpace(f.Query))
	out := make([]model.Record, 0, len(items))
	for _, rec := range items {
		if f.AccessLevel != "" && rec.AccessLevel != f.AccessLevel {
			continue
		}
		if q != "" && !recordMatches(rec, q) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

func recordMatches(rec model.Record, q string) bool {
	if strings.Contains(strings.ToLower(rec.Title), q) || strings.Contains(strings.ToLower(rec.Description), q) {
		return true
	}
	for _, t := range rec.SubjectTags {
		if strings.Contains(strings.ToLower(t.Term), q) {
			return true
		}
	}
	return false
}
