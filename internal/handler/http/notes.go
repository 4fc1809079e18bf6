package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MKhiriev/go-note-keeper/internal/app"
	"github.com/MKhiriev/go-note-keeper/internal/logger"
	"github.com/MKhiriev/go-note-keeper/internal/utils"
	"github.com/MKhiriev/go-note-keeper/internal/validators"
)

func (h *Handler) listNotes(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	notes, err := h.services.AuthorityService.List(r.Context())
	if err != nil {
		log.Err(err).Str("func", "*Handler.listNotes").Msg("error listing notes")
		utils.WriteJSONError(w, r, app.MsgListNotesFailed, statusFromError(err))
		return
	}

	utils.WriteJSON(w, notes, http.StatusOK)
}

func (h *Handler) upsertNote(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxNoteBodySize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			utils.WriteJSONError(w, r, app.MsgNoteTooLarge, http.StatusRequestEntityTooLarge)
			return
		}
		log.Err(err).Str("func", "*Handler.upsertNote").Msg("error reading request body")
		utils.WriteJSONError(w, r, app.MsgReadBodyFailed, http.StatusBadRequest)
		return
	}

	note, err := validators.ParseNote(body)
	if err != nil {
		log.Warn().Err(err).Str("func", "*Handler.upsertNote").Msg("invalid note was passed")
		utils.WriteJSONError(w, r, app.MsgInvalidNote, http.StatusBadRequest)
		return
	}

	result, err := h.services.AuthorityService.Upsert(r.Context(), note)
	if err != nil {
		log.Err(err).Str("func", "*Handler.upsertNote").Str("note_id", note.ID).Msg("error upserting note")
		utils.WriteJSONError(w, r, app.MsgUpsertFailed, statusFromError(err))
		return
	}

	utils.WriteJSON(w, result, http.StatusOK)
}

func (h *Handler) deleteNote(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	id := chi.URLParam(r, "id")

	if err := h.services.AuthorityService.Delete(r.Context(), id); err != nil {
		log.Err(err).Str("func", "*Handler.deleteNote").Str("note_id", id).Msg("error deleting note")
		utils.WriteJSONError(w, r, app.MsgDeleteNoteFailed, statusFromError(err))
		return
	}

	w.WriteHeader(http.StatusOK)
}
