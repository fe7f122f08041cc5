package model

import (
	"bytes"
	"encoding/json"
)

// SubjectTag — тематический тег записи. Каноническая форма {id, term};
// старый формат (голая строка) приводится к ней при декодировании.
type SubjectTag struct {
	ID   string `json:"id,omitempty"`
	Term string `json:"term"`
}

func (t *SubjectTag) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var term string
		if err := json.Unmarshal(b, &term); err != nil {
			return err
		}
		*t = SubjectTag{Term: term}
		return nil
	}
	type plain SubjectTag
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*t = SubjectTag(p)
	return nil
}

// Terms returns the tag terms in order.
func Terms(tags []SubjectTag) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		out = append(out, t.Term)
	}
	return out
}
