package pointersim

import (
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/compasskit/compassd/internal/types"
	"github.com/compasskit/compassd/pkg/config"
	"go.uber.org/zap"
)

func newTestSource(updates chan types.HeadingUpdate) *Source {
	return &Source{
		config:  config.SourceData{Name: "sim"},
		updates: updates,
		logger:  zap.NewNop().Sugar(),
	}
}

func postPointer(t *testing.T, s *Source, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/pointer", strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.handlePointer(rec, req)
	return rec
}

func TestHandlePointerDrag(t *testing.T) {
	updates := make(chan types.HeadingUpdate, 10)
	s := newTestSource(updates)

	rec := postPointer(t, s, `{"x":150,"y":100,"centerX":100,"centerY":100,"buttons":1,"type":"move"}`)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}

	select {
	case u := <-updates:
		if math.Abs(u.Heading-90) > 1e-9 {
			t.Errorf("Heading = %v, want 90", u.Heading)
		}
		if !u.Simulated || u.AccuracyHint != "simulated" {
			t.Errorf("update not tagged simulated: %+v", u)
		}
	default:
		t.Fatal("no update produced for held drag")
	}
}

func TestHandlePointerRelease(t *testing.T) {
	updates := make(chan types.HeadingUpdate, 10)
	s := newTestSource(updates)

	postPointer(t, s, `{"x":100,"y":150,"centerX":100,"centerY":100,"buttons":0,"type":"up"}`)

	select {
	case u := <-updates:
		if math.Abs(u.Heading-180) > 1e-9 {
			t.Errorf("Heading = %v, want 180", u.Heading)
		}
	default:
		t.Fatal("release position must be processed")
	}
}

func TestHandlePointerHoverDiscarded(t *testing.T) {
	updates := make(chan types.HeadingUpdate, 10)
	s := newTestSource(updates)

	rec := postPointer(t, s, `{"x":150,"y":100,"centerX":100,"centerY":100,"buttons":0,"type":"move"}`)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if len(updates) != 0 {
		t.Fatal("hover without button must not produce an update")
	}
}

func TestHandlePointerMalformed(t *testing.T) {
	updates := make(chan types.HeadingUpdate, 10)
	s := newTestSource(updates)

	rec := postPointer(t, s, `{"x":`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if len(updates) != 0 {
		t.Fatal("malformed body must not produce an update")
	}
}
