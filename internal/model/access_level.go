package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// AccessLevel — уровень доступа записи.
type AccessLevel string

const (
	AccessPublic       AccessLevel = "PUBLIC"
	AccessRestricted   AccessLevel = "RESTRICTED"
	AccessConfidential AccessLevel = "CONFIDENTIAL"
)

// Valid reports whether l is one of the three known levels.
func (l AccessLevel) Valid() bool {
	switch l {
	case AccessPublic, AccessRestricted, AccessConfidential:
		return true
	}
	return false
}

// ParseAccessLevel accepts any letter case.
func ParseAccessLevel(s string) (AccessLevel, error) {
	l := AccessLevel(strings.ToUpper(strings.TrimSpace(s)))
	if !l.Valid() {
		return "", fmt.Errorf("invalid access level %q (allowed: PUBLIC, RESTRICTED, CONFIDENTIAL)", s)
	}
	return l, nil
}

func (l *AccessLevel) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	// частично заполненные вложенные записи могут прийти без уровня
	if s == "" {
		*l = ""
		return nil
	}
	parsed, err := ParseAccessLevel(s)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// Roles that may open confidential records.
var confidentialRoles = map[string]bool{"admin": true, "archivist": true}

// Permits решает, может ли пользователь с ролью role (пустая — гость) открыть и скачать файлы записи.
func (l AccessLevel) Permits(authenticated bool, role string) bool {
	switch l {
	case AccessPublic:
		return true
	case AccessRestricted:
		return authenticated
	case AccessConfidential:
		return authenticated && confidentialRoles[strings.ToLower(role)]
	}
	return false
}
