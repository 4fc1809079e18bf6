package service

import (
	"github.com/MKhiriev/go-note-keeper/internal/adapter"
	"github.com/MKhiriev/go-note-keeper/internal/config"
	"github.com/MKhiriev/go-note-keeper/internal/logger"
	"github.com/MKhiriev/go-note-keeper/internal/store"
	"github.com/MKhiriev/go-note-keeper/internal/utils"
)

type ClientServices struct {
	Reconciler Reconciler
	Lifecycle  Lifecycle
	SyncJob    SyncJob
}

// NewClientServices wires the client services of one tab. publisher is the
// tab's notifier endpoint and may be nil.
func NewClientServices(
	localStore store.LocalStore,
	remote adapter.RemoteAuthority,
	publisher Publisher,
	cfg config.ClientWorkers,
	logger *logger.Logger,
) *ClientServices {
	reconciler := NewReconciler(localStore, remote, publisher, ReconcilerOptions{
		PushConcurrency: cfg.PushConcurrency,
	}, logger)

	return &ClientServices{
		Reconciler: reconciler,
		Lifecycle:  NewLifecycle(localStore, reconciler, utils.NewUUIDGenerator(), nil, logger),
		SyncJob:    NewSyncJob(reconciler, cfg.RetryInterval, logger),
	}
}
