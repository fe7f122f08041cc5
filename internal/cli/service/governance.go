package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"ArchiveDesk/internal/cli/api"
	"ArchiveDesk/internal/model"
)

// Publications — синхронизация сущностей управления (новости, события, объявления).
// Все три устроены одинаково и отличаются только путём и набором полей.
type Publications[T model.Entity] struct {
	*Resource[T]
	kind string
}

func NewNews(client *api.Client, logger *zap.SugaredLogger) *Publications[model.News] {
	return &Publications[model.News]{newResource[model.News](client, logger, "/news", "news item", "news"), "news"}
}

func NewEvents(client *api.Client, logger *zap.SugaredLogger) *Publications[model.Event] {
	return &Publications[model.Event]{newResource[model.Event](client, logger, "/events", "event", "events"), "event"}
}

func NewNotices(client *api.Client, logger *zap.SugaredLogger) *Publications[model.Notice] {
	return &Publications[model.Notice]{newResource[model.Notice](client, logger, "/notices", "notice", "notices"), "notice"}
}

// Kind returns "news", "event" or "notice".
func (p *Publications[T]) Kind() string { return p.kind }

// Create requires a title; new entities are drafts unless a status is given.
func (p *Publications[T]) Create(ctx context.Context, in model.PublicationInput) (T, error) {
	var zero T
	if in.Title == nil || blank(*in.Title) {
		return zero, invalid("%s title is required", p.noun)
	}
	if in.Status == nil {
		draft := model.StatusDraft
		in.Status = &draft
	}
	if err := validatePublication(in); err != nil {
		return zero, err
	}
	t := strings.TrimSpace(*in.Title)
	in.Title = &t
	return p.createJSON(ctx, in)
}

// Update sends the set fields.
func (p *Publications[T]) Update(ctx context.Context, id string, in model.PublicationInput) (T, error) {
	var zero T
	if blank(id) {
		return zero, invalid("%s id is required", p.noun)
	}
	if in.Title != nil && blank(*in.Title) {
		return zero, invalid("%s title must not be empty", p.noun)
	}
	if err := validatePublication(in); err != nil {
		return zero, err
	}
	return p.updateJSON(ctx, id, in)
}

// Publish sets status=published; the server stamps publishedAt.
func (p *Publications[T]) Publish(ctx context.Context, id string) (T, error) {
	st := model.StatusPublished
	return p.Update(ctx, id, model.PublicationInput{Status: &st})
}

// Unpublish returns the entity to draft.
func (p *Publications[T]) Unpublish(ctx context.Context, id string) (T, error) {
	st := model.StatusDraft
	return p.Update(ctx, id, model.PublicationInput{Status: &st})
}

func validatePublication(in model.PublicationInput) error {
	if in.Status != nil && !in.Status.Valid() {
		return invalid("invalid status %q (allowed: draft, published)", *in.Status)
	}
	if in.StartsAt != nil && in.EndsAt != nil && in.EndsAt.Before(*in.StartsAt) {
		return invalid("event must not end before it starts")
	}
	return nil
}
