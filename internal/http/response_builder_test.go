package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHTMXResponseBuilder_Basic(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().
		Status(http.StatusAccepted).
		BodyHTML("<p>ok</p>").
		Write(w)

	if w.Code != http.StatusAccepted {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusAccepted)
	}
	if w.Body.String() != "<p>ok</p>" {
		t.Errorf("Body = %q", w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
	if w.Header().Get("HX-Trigger") != "" {
		t.Error("HX-Trigger should not be set without triggers")
	}
}

func TestHTMXResponseBuilder_Triggers(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().
		TriggerDatasetLoaded("abc", 12).
		TriggerSuccessNotification("Datos cargados").
		Write(w)

	var got map[string]map[string]any
	if err := json.Unmarshal([]byte(w.Header().Get("HX-Trigger")), &got); err != nil {
		t.Fatalf("HX-Trigger is not JSON: %v", err)
	}
	if got[EventDatasetLoaded]["id"] != "abc" || got[EventDatasetLoaded]["rows"] != float64(12) {
		t.Errorf("dataset trigger = %v", got[EventDatasetLoaded])
	}
	if got[EventShowNotification]["type"] != "success" || got[EventShowNotification]["duration"] != float64(3000) {
		t.Errorf("notification trigger = %v", got[EventShowNotification])
	}
}

func TestErrorResponseEscapes(t *testing.T) {
	tests := []struct {
		name   string
		build  *HTMXResponseBuilder
		status int
	}{
		{"bad request", ErrorResponse(http.StatusBadRequest, "<b>x</b>"), http.StatusBadRequest},
		{"too large", ErrorResponse(http.StatusRequestEntityTooLarge, "<b>x</b>"), http.StatusRequestEntityTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.build.Write(w)
			if w.Code != tt.status {
				t.Fatalf("status = %d", w.Code)
			}
			if !strings.Contains(w.Body.String(), "&lt;b&gt;x&lt;/b&gt;") {
				t.Fatalf("message not escaped: %s", w.Body.String())
			}
		})
	}
}

func TestWriteJSONError(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/summary", nil)
	writeJSONError(w, r, http.StatusBadRequest, "invalid date", "start")

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	var body apiError
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error != "invalid date" || len(body.Invalid) != 1 || body.Invalid[0] != "start" {
		t.Fatalf("body = %+v", body)
	}
}
