package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"ArchiveDesk/internal/cli/api"
	"ArchiveDesk/internal/model"
)

// Departments — синхронизация подразделений (/departments).
type Departments struct {
	*Resource[model.Department]
}

func NewDepartments(client *api.Client, logger *zap.SugaredLogger) *Departments {
	return &Departments{newResource[model.Department](client, logger, "/departments", "department", "departments")}
}

// Create requires a non-blank name.
func (d *Departments) Create(ctx context.Context, in model.DepartmentInput) (model.Department, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return model.Department{}, invalid("department name is required")
	}
	return d.createJSON(ctx, in)
}

// Update sends only the fields that are set.
func (d *Departments) Update(ctx context.Context, id string, in model.DepartmentInput) (model.Department, error) {
	if blank(id) {
		return model.Department{}, invalid("department id is required")
	}
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" && in.Description == nil {
		return model.Department{}, invalid("nothing to update")
	}
	return d.updateJSON(ctx, id, in)
}
