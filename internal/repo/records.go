package repo

import (
	"context"
	"slices"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"ArchiveDesk/internal/model"
)

// RecordFilter narrows Records.
type RecordFilter struct {
	CollectionID string
	DepartmentID string
	AccessLevel  model.AccessLevel
	Limit        int
}

// Records lists records matching f in creation order.
func (a *Archive) Records(ctx context.Context, f RecordFilter) ([]model.Record, error) {
	db := a.db.WithContext(ctx)
	cols, err := a.collectionRows(db)
	if err != nil {
		return nil, err
	}
	q := db.Model(&recordRow{}).Order("seq")
	if f.CollectionID != "" {
		q = q.Where("collection_id = ?", f.CollectionID)
	}
	if f.DepartmentID != "" {
		var ids []string
		for _, c := range cols {
			if slices.Contains(c.DepartmentIDs, f.DepartmentID) {
				ids = append(ids, c.ID)
			}
		}
		if len(ids) == 0 {
			return []model.Record{}, nil
		}
		q = q.Where("collection_id IN ?", ids)
	}
	if f.AccessLevel != "" {
		q = q.Where("access_level = ?", string(f.AccessLevel))
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	var rows []recordRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	refs := collectionRefs(cols)
	out := make([]model.Record, 0, len(rows))
	for _, r := range rows {
		out = append(out, recordView(r, refs[r.CollectionID]))
	}
	return out, nil
}

// Record returns one record.
func (a *Archive) Record(ctx context.Context, id string) (model.Record, error) {
	return a.record(a.db.WithContext(ctx), id)
}

func (a *Archive) record(db *gorm.DB, id string) (model.Record, error) {
	var r recordRow
	if err := db.Where("id = ?", id).First(&r).Error; err != nil {
		return model.Record{}, notFound(err)
	}
	var ref *model.CollectionRef
	if r.CollectionID != "" {
		var c collectionRow
		if err := db.Where("id = ?", r.CollectionID).First(&c).Error; err == nil {
			ref = &model.CollectionRef{ID: c.ID, Title: c.Title}
		}
	}
	return recordView(r, ref), nil
}

// RecordChanges — поля записи от клиента; nil — не менять.
type RecordChanges struct {
	Title        *string
	Description  *string
	CollectionID *string
	AccessLevel  *string
	SubjectTags  []string
	Files        []StoredFile
}

// SaveRecord создаёт (id == "") или обновляет запись. Новые файлы дописываются к существующим.
func (a *Archive) SaveRecord(ctx context.Context, id string, ch RecordChanges) (model.Record, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	db := a.db.WithContext(ctx)

	var level model.AccessLevel
	if ch.AccessLevel != nil {
		l, err := model.ParseAccessLevel(*ch.AccessLevel)
		if err != nil {
			return model.Record{}, invalidf("Invalid access level")
		}
		level = l
	}
	if ch.CollectionID != nil && *ch.CollectionID != "" {
		var n int64
		if err := db.Model(&collectionRow{}).Where("id = ?", *ch.CollectionID).Count(&n).Error; err != nil {
			return model.Record{}, err
		}
		if n == 0 {
			return model.Record{}, invalidf("Unknown collection %s", *ch.CollectionID)
		}
	}

	var r recordRow
	if id == "" {
		if ch.Title == nil || strings.TrimSpace(*ch.Title) == "" {
			return model.Record{}, invalidf("Record title is required")
		}
		if level == "" {
			return model.Record{}, invalidf("Access level is required")
		}
		r.ID = uuid.NewString()
	} else if err := db.Where("id = ?", id).First(&r).Error; err != nil {
		return model.Record{}, notFound(err)
	}
	if ch.Title != nil {
		r.Title = strings.TrimSpace(*ch.Title)
	}
	if ch.Description != nil {
		r.Description = *ch.Description
	}
	if ch.CollectionID != nil {
		r.CollectionID = *ch.CollectionID
	}
	if level != "" {
		r.AccessLevel = string(level)
	}
	if ch.SubjectTags != nil {
		r.Tags = make([]model.SubjectTag, 0, len(ch.SubjectTags))
		for _, term := range ch.SubjectTags {
			term = strings.TrimSpace(term)
			if term == "" {
				continue
			}
			tagID, err := a.tagID(db, term)
			if err != nil {
				return model.Record{}, err
			}
			r.Tags = append(r.Tags, model.SubjectTag{ID: tagID, Term: term})
		}
	}
	now := a.now()
	for _, f := range ch.Files {
		asset := f.Asset
		asset.CreatedAt, asset.UpdatedAt = now, now
		row := fileRow{ID: asset.ID, RecordID: r.ID, Filename: asset.Filename, MimeType: asset.MimeType, Content: f.Content}
		if err := db.Create(&row).Error; err != nil {
			return model.Record{}, err
		}
		r.Files = append(r.Files, asset)
	}
	if err := db.Save(&r).Error; err != nil {
		return model.Record{}, err
	}
	return a.record(db, r.ID)
}

// DeleteRecord removes a record and its files.
func (a *Archive) DeleteRecord(ctx context.Context, id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	db := a.db.WithContext(ctx)

	res := db.Where("id = ?", id).Delete(&recordRow{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return db.Where("record_id = ?", id).Delete(&fileRow{}).Error
}

// File returns stored file content by asset id.
func (a *Archive) File(ctx context.Context, id string) (StoredFile, error) {
	var f fileRow
	if err := a.db.WithContext(ctx).Where("id = ?", id).First(&f).Error; err != nil {
		return StoredFile{}, notFound(err)
	}
	return StoredFile{
		Asset:   model.FileAsset{ID: f.ID, Filename: f.Filename, MimeType: f.MimeType},
		Content: f.Content,
	}, nil
}

// tagID возвращает стабильный id термина, создавая его при первом использовании.
func (a *Archive) tagID(db *gorm.DB, term string) (string, error) {
	t := tagRow{Key: strings.ToLower(term)}
	err := db.Where(tagRow{Key: t.Key}).Attrs(tagRow{ID: uuid.NewString()}).FirstOrCreate(&t).Error
	return t.ID, err
}

func collectionRefs(cols []collectionRow) map[string]*model.CollectionRef {
	refs := make(map[string]*model.CollectionRef, len(cols))
	for _, c := range cols {
		refs[c.ID] = &model.CollectionRef{ID: c.ID, Title: c.Title}
	}
	return refs
}

func recordView(r recordRow, col *model.CollectionRef) model.Record {
	return model.Record{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		AccessLevel: model.AccessLevel(r.AccessLevel),
		Collection:  col,
		FileAssets:  append([]model.FileAsset(nil), r.Files...),
		SubjectTags: append([]model.SubjectTag(nil), r.Tags...),
		Timestamps:  model.Timestamps{CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt},
	}
}
