package repo

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"ArchiveDesk/internal/model"
)

// Publication kinds.
const (
	KindNews   = "news"
	KindEvent  = "events"
	KindNotice = "notices"
)

func knownKind(kind string) bool {
	return kind == KindNews || kind == KindEvent || kind == KindNotice
}

// Publication — общая форма новостей, событий и объявлений на стороне сервера.
type Publication struct {
	model.Publication
	Body        string
	Description string
	Location    string
	StartsAt    *time.Time
	EndsAt      *time.Time
	ExpiresAt   *time.Time
}

func publicationView(p publicationRow) Publication {
	return Publication{
		Publication: model.Publication{
			ID: p.ID, Title: p.Title, Status: model.Status(p.Status), PublishedAt: p.PublishedAt,
			Timestamps: model.Timestamps{CreatedAt: p.CreatedAt, UpdatedAt: p.UpdatedAt},
		},
		Body:        p.Body,
		Description: p.Description,
		Location:    p.Location,
		StartsAt:    p.StartsAt,
		EndsAt:      p.EndsAt,
		ExpiresAt:   p.ExpiresAt,
	}
}

// Publications lists entities of kind, newest first.
func (a *Archive) Publications(ctx context.Context, kind string) ([]Publication, error) {
	if !knownKind(kind) {
		return nil, ErrNotFound
	}
	var rows []publicationRow
	if err := a.db.WithContext(ctx).Where("kind = ?", kind).Order("seq desc").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]Publication, 0, len(rows))
	for _, p := range rows {
		out = append(out, publicationView(p))
	}
	return out, nil
}

// PublicationByID returns one entity of kind.
func (a *Archive) PublicationByID(ctx context.Context, kind, id string) (Publication, error) {
	var p publicationRow
	if err := a.db.WithContext(ctx).Where("kind = ? AND id = ?", kind, id).First(&p).Error; err != nil {
		return Publication{}, notFound(err)
	}
	return publicationView(p), nil
}

// SavePublication создаёт или обновляет сущность; publishedAt ставится при публикации
// и снимается при возврате в черновик.
func (a *Archive) SavePublication(ctx context.Context, kind, id string, in model.PublicationInput) (Publication, error) {
	if !knownKind(kind) {
		return Publication{}, ErrNotFound
	}
	if in.Status != nil && !in.Status.Valid() {
		return Publication{}, invalidf("Invalid status")
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	db := a.db.WithContext(ctx)

	var p publicationRow
	if id == "" {
		if in.Title == nil || strings.TrimSpace(*in.Title) == "" {
			return Publication{}, invalidf("Title is required")
		}
		p = publicationRow{ID: uuid.NewString(), Kind: kind, Status: string(model.StatusDraft)}
	} else if err := db.Where("kind = ? AND id = ?", kind, id).First(&p).Error; err != nil {
		return Publication{}, notFound(err)
	}
	if in.Title != nil {
		p.Title = strings.TrimSpace(*in.Title)
	}
	if in.Body != nil {
		p.Body = *in.Body
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Location != nil {
		p.Location = *in.Location
	}
	if in.StartsAt != nil {
		p.StartsAt = in.StartsAt
	}
	if in.EndsAt != nil {
		p.EndsAt = in.EndsAt
	}
	if in.ExpiresAt != nil {
		p.ExpiresAt = in.ExpiresAt
	}
	if in.Status != nil && string(*in.Status) != p.Status {
		p.Status = string(*in.Status)
		if *in.Status == model.StatusPublished {
			now := a.now()
			p.PublishedAt = &now
		} else {
			p.PublishedAt = nil
		}
	}
	if err := db.Save(&p).Error; err != nil {
		return Publication{}, err
	}
	return publicationView(p), nil
}

// DeletePublication removes an entity of kind.
func (a *Archive) DeletePublication(ctx context.Context, kind, id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	res := a.db.WithContext(ctx).Where("kind = ? AND id = ?", kind, id).Delete(&publicationRow{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Render converts p into the client-facing shape of its kind.
func (p Publication) Render(kind string) any {
	switch kind {
	case KindEvent:
		return model.Event{Publication: p.Publication, Description: p.Description,
			StartsAt: p.StartsAt, EndsAt: p.EndsAt, Location: p.Location}
	case KindNotice:
		return model.Notice{Publication: p.Publication, Body: p.Body, ExpiresAt: p.ExpiresAt}
	default:
		return model.News{Publication: p.Publication, Body: p.Body}
	}
}
