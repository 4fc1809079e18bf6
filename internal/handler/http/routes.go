package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MKhiriev/go-note-keeper/internal/app"
	"github.com/MKhiriev/go-note-keeper/internal/utils"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID)
	router.Use(h.withLogging)
	router.Use(withGZip)

	router.Get("/notes", h.listNotes)
	router.Post("/notes", h.upsertNote)
	router.Delete("/notes/{id}", h.deleteNote)
	router.Get("/version", h.getServerVersion)

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteJSONError(w, r, app.MsgNotFound, http.StatusNotFound)
	})
	router.MethodNotAllowed(CheckHTTPMethod(router))

	return router
}
