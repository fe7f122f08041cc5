package model

import "io"

// Record — единица хранения архива: метаданные, уровень доступа и приложенные файлы.
type Record struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	AccessLevel AccessLevel    `json:"accessLevel"`
	Collection  *CollectionRef `json:"collection,omitempty"` // nil — запись без коллекции
	FileAssets  []FileAsset    `json:"fileAssets,omitempty"`
	SubjectTags []SubjectTag   `json:"subjectTags,omitempty"`
	Timestamps
}

func (r Record) GetID() string { return r.ID }

// RecordInput is the create/update payload. Nil pointers are left out of the request;
// a non-nil empty SubjectTags clears the record's tags.
type RecordInput struct {
	Title        *string
	Description  *string
	CollectionID *string
	AccessLevel  *AccessLevel
	SubjectTags  []string
	Files        []Upload
}

// Upload — бинарное вложение, отправляемое частью multipart-запроса.
type Upload struct {
	Filename    string
	ContentType string
	Content     io.Reader
}
