package http

import (
	"errors"
	"net/http"

	"github.com/MKhiriev/go-note-keeper/internal/service"
	"github.com/MKhiriev/go-note-keeper/internal/store"
	"github.com/MKhiriev/go-note-keeper/internal/validators"
)

var errorStatusMap = []struct {
	target error
	status int
}{
	{service.ErrInvalidDataProvided, http.StatusBadRequest},
	{validators.ErrInvalidNote, http.StatusBadRequest},

	{store.ErrNoteNotFound, http.StatusNotFound},

	{store.ErrCorruptRecord, http.StatusInternalServerError},
	{store.ErrStorage, http.StatusInternalServerError},
}

func statusFromError(err error) int {
	for _, e := range errorStatusMap {
		if errors.Is(err, e.target) {
			return e.status
		}
	}
	return http.StatusInternalServerError
}
