package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSON(t *testing.T) {
	tests := []struct {
		name       string
		data       any
		statusCode int
		wantBody   string
	}{
		{name: "map", data: map[string]string{"key": "value"}, statusCode: http.StatusOK, wantBody: `{"key":"value"}`},
		{name: "custom status", data: []int{1, 2}, statusCode: http.StatusCreated, wantBody: `[1,2]`},
		{name: "nil", data: nil, statusCode: http.StatusOK, wantBody: `null`},
		{name: "empty struct", data: struct{}{}, statusCode: http.StatusOK, wantBody: `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			n, err := WriteJSON(w, tt.data, tt.statusCode)
			require.NoError(t, err)
			assert.Equal(t, len(tt.wantBody), n)
			assert.Equal(t, tt.statusCode, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			assert.Equal(t, tt.wantBody, w.Body.String())
		})
	}
}

func TestWriteJSON_InvalidData(t *testing.T) {
	w := httptest.NewRecorder()

	// channels cannot be marshaled to JSON
	_, err := WriteJSON(w, make(chan int), http.StatusOK)
	assert.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestWriteJSONError(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r = r.WithContext(WithTraceID(r.Context(), "t-1"))
	w := httptest.NewRecorder()

	WriteJSONError(w, r, "bad note", http.StatusBadRequest)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"bad note","traceId":"t-1"}`, w.Body.String())
}
