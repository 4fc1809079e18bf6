package service

import (
	"fmt"

	"github.com/MKhiriev/go-note-keeper/internal/config"
	"github.com/MKhiriev/go-note-keeper/internal/logger"
	"github.com/MKhiriev/go-note-keeper/internal/store"
)

type Services struct {
	AuthorityService AuthorityService
	AppInfoService   AppInfoService
}

func NewServices(storages *store.Storages, cfg *config.ServerConfig, logger *logger.Logger) (*Services, error) {
	appInfo, err := NewAppInfoService(cfg.Version, logger)
	if err != nil {
		return nil, fmt.Errorf("error creating app info service: %w", err)
	}

	authority := NewAuthorityValidationService().Wrap(
		NewAuthorityService(storages.NoteRepository, logger),
	)

	return &Services{
		AuthorityService: authority,
		AppInfoService:   appInfo,
	}, nil
}
