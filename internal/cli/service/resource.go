package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"ArchiveDesk/internal/cli/api"
	"ArchiveDesk/internal/cli/store"
	"ArchiveDesk/internal/model"
)

// ErrValidation оборачивает ошибки клиентской валидации: запрос в API не отправляется,
// состояние хранилища не меняется.
var ErrValidation = errors.New("validation failed")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// Resource — синхронизирующие функции одного ресурса REST API поверх его хранилища.
type Resource[T model.Entity] struct {
	client *api.Client
	store  *store.Store[T]
	logger *zap.SugaredLogger

	path   string // например "/departments"
	noun   string // "department"
	plural string // "departments"
}

func newResource[T model.Entity](client *api.Client, logger *zap.SugaredLogger, path, noun, plural string) *Resource[T] {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Resource[T]{
		client: client,
		store:  store.New[T](plural),
		logger: logger.With("resource", plural),
		path:   path,
		noun:   noun,
		plural: plural,
	}
}

// Store returns the underlying resource store.
func (r *Resource[T]) Store() *store.Store[T] { return r.store }

// ClearError resets the store error.
func (r *Resource[T]) ClearError() { r.store.ClearError() }

// FetchList загружает список; query передаётся серверу как фильтры.
func (r *Resource[T]) FetchList(ctx context.Context, query url.Values) error {
	return r.fetchListAt(ctx, r.path, query)
}

func (r *Resource[T]) fetchListAt(ctx context.Context, path string, query url.Values) error {
	err := r.store.RunList(ctx, "Failed to fetch "+r.plural, func(ctx context.Context) ([]T, error) {
		var items []T
		if err := r.client.Get(ctx, path, query, &items); err != nil {
			return nil, err
		}
		return items, nil
	})
	r.logResult("list", "", err)
	return err
}

// FetchByID loads one entity into the Current slot.
func (r *Resource[T]) FetchByID(ctx context.Context, id string) (T, error) {
	if strings.TrimSpace(id) == "" {
		var zero T
		return zero, invalid("%s id is required", r.noun)
	}
	item, err := r.store.RunCurrent(ctx, "Failed to fetch "+r.noun, func(ctx context.Context) (T, error) {
		var item T
		err := r.client.Get(ctx, r.itemPath(id), nil, &item)
		return item, err
	})
	r.logResult("get", id, err)
	return item, err
}

// Delete removes the entity on the server and then from the list.
func (r *Resource[T]) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return invalid("%s id is required", r.noun)
	}
	err := r.store.RunDelete(ctx, id, "Failed to delete "+r.noun, func(ctx context.Context) error {
		return r.client.Delete(ctx, r.itemPath(id), nil)
	})
	r.logResult("delete", id, err)
	return err
}

func (r *Resource[T]) createJSON(ctx context.Context, payload any) (T, error) {
	item, err := r.store.RunCreate(ctx, "Failed to create "+r.noun, func(ctx context.Context) (T, error) {
		var item T
		err := r.client.Post(ctx, r.path, payload, &item)
		return item, err
	})
	r.logResult("create", item.GetID(), err)
	return item, err
}

func (r *Resource[T]) updateJSON(ctx context.Context, id string, changes any) (T, error) {
	item, err := r.store.RunUpdate(ctx, id, "Failed to update "+r.noun, func(ctx context.Context) (T, error) {
		var item T
		err := r.client.Put(ctx, r.itemPath(id), changes, &item)
		return item, err
	})
	r.logResult("update", id, err)
	return item, err
}

func (r *Resource[T]) itemPath(id string) string {
	return r.path + "/" + url.PathEscape(id)
}

func (r *Resource[T]) logResult(op, id string, err error) {
	if err != nil {
		r.logger.Warnw("sync failed", "op", op, "id", id, "error", err)
		return
	}
	r.logger.Debugw("sync done", "op", op, "id", id)
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }
