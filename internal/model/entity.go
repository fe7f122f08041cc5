package model

import (
	"encoding/json"
	"time"
)

// Entity — общий контракт сущностей архива: стабильный строковый идентификатор.
type Entity interface {
	GetID() string
}

// Envelope — обёртка, в которой API архива отдаёт любой ответ.
type Envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Timestamps are assigned by the server and never sent by the client.
type Timestamps struct {
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
