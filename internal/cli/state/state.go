// Package state собирает хранилища всех ресурсов в один корневой контейнер процесса.
package state

import (
	"time"

	"go.uber.org/zap"

	"ArchiveDesk/internal/cli/api"
	"ArchiveDesk/internal/cli/auth"
	"ArchiveDesk/internal/cli/repo"
	"ArchiveDesk/internal/cli/service"
	"ArchiveDesk/internal/cli/store"
	"ArchiveDesk/internal/model"
)

// Root — корневой контейнер состояния. Хранилища не разделяют изменяемых данных;
// каждое меняется только своими синхронизирующими функциями.
type Root struct {
	Client      *api.Client
	Auth        *service.Auth
	Departments *service.Departments
	Collections *service.Collections
	Records     *service.Records
	News        *service.Publications[model.News]
	Events      *service.Publications[model.Event]
	Notices     *service.Publications[model.Notice]
}

// New wires every resource to the same API client.
func New(client *api.Client, tokens repo.TokenStore, logger *zap.SugaredLogger) *Root {
	return &Root{
		Client:      client,
		Auth:        service.NewAuth(client, tokens, logger),
		Departments: service.NewDepartments(client, logger),
		Collections: service.NewCollections(client, logger),
		Records:     service.NewRecords(client, logger),
		News:        service.NewNews(client, logger),
		Events:      service.NewEvents(client, logger),
		Notices:     service.NewNotices(client, logger),
	}
}

// AutoDismissErrors clears every store error interval after it appears.
func (r *Root) AutoDismissErrors(interval time.Duration) (stop func()) {
	sources := []store.ErrorSource{
		r.Auth,
		r.Departments.Store(),
		r.Collections.Store(),
		r.Records.Store(),
		r.News.Store(),
		r.Events.Store(),
		r.Notices.Store(),
	}
	stops := make([]func(), 0, len(sources))
	for _, s := range sources {
		stops = append(stops, store.AutoDismiss(s, interval))
	}
	return func() {
		for _, s := range stops {
			s()
		}
	}
}

// Snapshot — согласованный срез состояния всех хранилищ для отображения.
type Snapshot struct {
	Auth        service.AuthState
	Departments store.State[model.Department]
	Collections store.State[model.Collection]
	Records     store.State[model.Record]
	News        store.State[model.News]
	Events      store.State[model.Event]
	Notices     store.State[model.Notice]
}

// Snapshot copies the state of every store.
func (r *Root) Snapshot() Snapshot {
	return Snapshot{
		Auth:        r.Auth.State(),
		Departments: Departments(r),
		Collections: Collections(r),
		Records:     Records(r),
		News:        News(r),
		Events:      Events(r),
		Notices:     Notices(r),
	}
}

func Departments(r *Root) store.State[model.Department] { return r.Departments.Store().Snapshot() }
func Collections(r *Root) store.State[model.Collection] { return r.Collections.Store().Snapshot() }
func Records(r *Root) store.State[model.Record]         { return r.Records.Store().Snapshot() }
func News(r *Root) store.State[model.News]              { return r.News.Store().Snapshot() }
func Events(r *Root) store.State[model.Event]           { return r.Events.Store().Snapshot() }
func Notices(r *Root) store.State[model.Notice]         { return r.Notices.Store().Snapshot() }

// CurrentRecord returns the record open in the detail view.
func CurrentRecord(r *Root) (model.Record, bool) { return r.Records.Store().Current() }

// Session returns the signed-in session or nil.
func Session(r *Root) *auth.Session { return r.Auth.Session() }
