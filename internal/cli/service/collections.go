package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"ArchiveDesk/internal/cli/api"
	"ArchiveDesk/internal/model"
)

// Collections — синхронизация коллекций (/collections).
type Collections struct {
	*Resource[model.Collection]
}

func NewCollections(client *api.Client, logger *zap.SugaredLogger) *Collections {
	return &Collections{newResource[model.Collection](client, logger, "/collections", "collection", "collections")}
}

// Create требует название и хотя бы одно подразделение.
func (c *Collections) Create(ctx context.Context, in model.CollectionInput) (model.Collection, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return model.Collection{}, invalid("collection title is required")
	}
	in.DepartmentIDs = compact(in.DepartmentIDs)
	if len(in.DepartmentIDs) == 0 {
		return model.Collection{}, invalid("select at least one department")
	}
	return c.createJSON(ctx, in)
}

// Update keeps the department rule: an explicit empty department list is rejected.
func (c *Collections) Update(ctx context.Context, id string, in model.CollectionInput) (model.Collection, error) {
	if blank(id) {
		return model.Collection{}, invalid("collection id is required")
	}
	in.Title = strings.TrimSpace(in.Title)
	if in.DepartmentIDs != nil {
		in.DepartmentIDs = compact(in.DepartmentIDs)
		if len(in.DepartmentIDs) == 0 {
			return model.Collection{}, invalid("select at least one department")
		}
	}
	if in.Title == "" && in.Description == nil && in.DepartmentIDs == nil {
		return model.Collection{}, invalid("nothing to update")
	}
	return c.updateJSON(ctx, id, in)
}

// compact trims ids and drops blanks and duplicates, keeping order.
func compact(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
