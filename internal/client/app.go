package client

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/MKhiriev/go-note-keeper/internal/adapter"
	"github.com/MKhiriev/go-note-keeper/internal/config"
	"github.com/MKhiriev/go-note-keeper/internal/logger"
	"github.com/MKhiriev/go-note-keeper/internal/notifier"
	"github.com/MKhiriev/go-note-keeper/internal/service"
	"github.com/MKhiriev/go-note-keeper/internal/store"
	"github.com/MKhiriev/go-note-keeper/internal/utils"
	"github.com/MKhiriev/go-note-keeper/models"
)

// App is one running tab: storage, notifier endpoint and client services.
type App struct {
	Services *service.ClientServices

	cfg      *config.ClientConfig
	storages *store.ClientStorages
	hub      *notifier.Hub
	bridge   *notifier.ProfileBridge
	endpoint *notifier.Endpoint

	mu        sync.RWMutex
	listeners []func(models.Event)

	logger *logger.Logger
}

// NewApp opens the local store, connects the notifier and wires the client
// services. remote may be nil, in which case the HTTP authority from cfg is
// used. When cfg.Notifier.ProfileDir is set, events are relayed to the other
// tabs of that profile.
func NewApp(ctx context.Context, cfg *config.ClientConfig, remote adapter.RemoteAuthority, log *logger.Logger) (*App, error) {
	var err error
	if remote == nil {
		remote, err = adapter.NewHTTPRemoteAuthority(cfg.Adapter, log)
		if err != nil {
			return nil, fmt.Errorf("create remote authority: %w", err)
		}
	}

	storages, err := store.NewClientStorages(ctx, cfg.Storage, log)
	if err != nil {
		return nil, fmt.Errorf("create local storage: %w", err)
	}

	a := &App{
		cfg:      cfg,
		storages: storages,
		hub:      notifier.NewHub(log),
		logger:   log,
	}

	a.endpoint = a.hub.Join("tab:"+utils.NewUUIDGenerator().Generate(), a.dispatch)

	if cfg.Notifier.ProfileDir != "" {
		a.bridge, err = notifier.NewProfileBridge(a.hub, cfg.Notifier.ProfileDir, cfg.Notifier.EventTTL, log)
		if err == nil {
			err = a.bridge.Start(ctx)
		}
		if err != nil {
			a.endpoint.Close()
			return nil, errors.Join(fmt.Errorf("start profile bridge: %w", err), storages.Close())
		}
	}

	a.Services = service.NewClientServices(storages.LocalStore, remote, a.endpoint, cfg.Workers, log)

	return a, nil
}

// Subscribe registers fn for events published by other tabs. fn runs on the
// notifier delivery goroutine.
func (a *App) Subscribe(fn func(models.Event)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.listeners = append(a.listeners, fn)
}

func (a *App) dispatch(evt models.Event) {
	a.mu.RLock()
	listeners := a.listeners
	a.mu.RUnlock()

	for _, fn := range listeners {
		fn(evt)
	}
}

// Close waits for background pushes and deletes, stops the sync job and
// releases every resource.
func (a *App) Close() error {
	a.Services.SyncJob.Stop()
	a.Services.Reconciler.Wait()

	var errs []error
	if a.bridge != nil {
		errs = append(errs, a.bridge.Close())
	}
	a.endpoint.Close()
	errs = append(errs, a.storages.Close())

	return errors.Join(errs...)
}
