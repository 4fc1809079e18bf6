package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/MKhiriev/go-note-keeper/internal/config"
	"github.com/MKhiriev/go-note-keeper/internal/logger"
	"github.com/MKhiriev/go-note-keeper/internal/utils"
	"github.com/MKhiriev/go-note-keeper/internal/validators"
	"github.com/MKhiriev/go-note-keeper/models"
)

const (
	notesPath = "/notes"
	notePath  = "/notes/{id}"
)

type httpRemoteAuthority struct {
	client *utils.HTTPClient
	ids    *utils.UUIDGenerator

	logger *logger.Logger
}

// upsertResponse mirrors models.UpsertResult with the note left raw so it
// goes through the same validation as FetchAll entries.
type upsertResponse struct {
	Status models.UpsertStatus `json:"status"`
	Note   json.RawMessage     `json:"note"`
}

// NewHTTPRemoteAuthority constructs the HTTP/JSON implementation of
// [RemoteAuthority]. The base URL may omit the scheme, in which case http is
// assumed. Every request is bounded by cfg.RequestTimeout.
func NewHTTPRemoteAuthority(cfg config.ClientAdapter, log *logger.Logger) (RemoteAuthority, error) {
	baseURL, err := normalizeBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid adapter http address: %w", err)
	}

	return &httpRemoteAuthority{
		client: utils.NewHTTPClient(baseURL, cfg.RequestTimeout),
		ids:    utils.NewUUIDGenerator(),
		logger: log,
	}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

func (h *httpRemoteAuthority) FetchAll(ctx context.Context) ([]models.Note, error) {
	ctx = h.withTraceID(ctx)

	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		Get(notesPath)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch notes: %w", ErrConnectivity, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	notes, invalid, err := validators.ParseNotes(resp.Body())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}

	for _, inv := range invalid {
		h.logger.Warn().Err(inv).Str("func", "httpRemoteAuthority.FetchAll").Msg("skipping invalid remote note")
	}

	return notes, nil
}

func (h *httpRemoteAuthority) Upsert(ctx context.Context, note models.Note) (models.UpsertResult, error) {
	ctx = h.withTraceID(ctx)

	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(note).
		Post(notesPath)
	if err != nil {
		return models.UpsertResult{}, fmt.Errorf("%w: upsert note: %w", ErrConnectivity, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.UpsertResult{}, err
	}

	var body upsertResponse
	if err = json.Unmarshal(resp.Body(), &body); err != nil {
		return models.UpsertResult{}, fmt.Errorf("%w: decode upsert response: %w", ErrInvalidResponse, err)
	}

	if body.Status != models.UpsertAccepted && body.Status != models.UpsertRejected {
		return models.UpsertResult{}, fmt.Errorf("%w: unknown upsert status %q", ErrInvalidResponse, body.Status)
	}

	resolved, err := validators.ParseNote(body.Note)
	if err != nil {
		return models.UpsertResult{}, fmt.Errorf("%w: resolved note: %w", ErrInvalidResponse, err)
	}
	if resolved.ID != note.ID {
		return models.UpsertResult{}, fmt.Errorf("%w: resolved note id %q, pushed %q", ErrInvalidResponse, resolved.ID, note.ID)
	}

	return models.UpsertResult{Status: body.Status, Note: resolved}, nil
}

func (h *httpRemoteAuthority) HardDelete(ctx context.Context, id string) error {
	ctx = h.withTraceID(ctx)

	resp, err := h.client.R().
		SetContext(ctx).
		SetPathParam("id", id).
		Delete(notePath)
	if err != nil {
		return fmt.Errorf("%w: delete note: %w", ErrConnectivity, err)
	}

	return mapHTTPError(resp)
}

func (h *httpRemoteAuthority) withTraceID(ctx context.Context) context.Context {
	if _, ok := utils.GetTraceIDFromContext(ctx); ok {
		return ctx
	}
	return utils.WithTraceID(ctx, h.ids.Generate())
}
