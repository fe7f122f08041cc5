package model

import "time"

// Status of a governance entity.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

func (s Status) Valid() bool { return s == StatusDraft || s == StatusPublished }

// Publication — общие поля новостей, событий и объявлений.
// PublishedAt выставляет сервер; клиент только отображает.
type Publication struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Status      Status     `json:"status"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
	Timestamps
}

func (p Publication) GetID() string { return p.ID }

type News struct {
	Publication
	Body  string      `json:"body,omitempty"`
	Files []FileAsset `json:"files,omitempty"`
}

type Event struct {
	Publication
	Description string     `json:"description,omitempty"`
	StartsAt    *time.Time `json:"startsAt,omitempty"`
	EndsAt      *time.Time `json:"endsAt,omitempty"`
	Location    string     `json:"location,omitempty"`
}

type Notice struct {
	Publication
	Body      string     `json:"body,omitempty"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

// Expired reports whether the notice is past its expiry at now.
func (n Notice) Expired(now time.Time) bool {
	return n.ExpiresAt != nil && !now.Before(*n.ExpiresAt)
}

// PublicationInput is the create/update payload shared by news, events and notices.
// Fields irrelevant to a kind are left nil and omitted.
type PublicationInput struct {
	Title       *string    `json:"title,omitempty"`
	Status      *Status    `json:"status,omitempty"`
	Body        *string    `json:"body,omitempty"`
	Description *string    `json:"description,omitempty"`
	StartsAt    *time.Time `json:"startsAt,omitempty"`
	EndsAt      *time.Time `json:"endsAt,omitempty"`
	Location    *string    `json:"location,omitempty"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
}
