package restserver

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/compasskit/compassd/internal/compass"
	"github.com/compasskit/compassd/internal/constants"
	"github.com/compasskit/compassd/internal/types"
	"github.com/compasskit/compassd/pkg/responseformat"
)

// Handlers contains all HTTP handlers for the REST server
type Handlers struct {
	controller *Controller
	formatter  *responseformat.Formatter
}

// NewHandlers creates a new handlers instance
func NewHandlers(ctrl *Controller) *Handlers {
	return &Handlers{
		controller: ctrl,
		formatter:  responseformat.NewFormatter(),
	}
}

// GetReadout handles requests for the current compass readout
func (h *Handlers) GetReadout(w http.ResponseWriter, req *http.Request) {
	h.formatter.WriteResponse(w, req, h.controller.engine.Readout(), nil)
}

// GetLog handles requests for the observation log, newest first
func (h *Handlers) GetLog(w http.ResponseWriter, req *http.Request) {
	entries := h.controller.engine.LogEntries()
	h.formatter.WriteResponse(w, req, map[string]any{
		"count":   len(entries),
		"entries": entries,
	}, nil)
}

// GetLogCSV exports the observation log as CSV, newest first
func (h *Handlers) GetLogCSV(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="compass-log.csv"`)

	cw := csv.NewWriter(w)
	cw.Write([]string{"timestamp", "heading", "cardinal", "mode"})
	for _, entry := range h.controller.engine.LogEntries() {
		cw.Write([]string{
			entry.Timestamp.Format(time.RFC3339),
			fmt.Sprintf("%g", entry.Heading),
			entry.Cardinal,
			entry.Mode,
		})
	}
	cw.Flush()
}

// GetStats handles requests for circular statistics over the log
func (h *Handlers) GetStats(w http.ResponseWriter, req *http.Request) {
	h.formatter.WriteResponse(w, req, h.controller.engine.LogStats(), nil)
}

// GetHealth reports daemon liveness and version
func (h *Handlers) GetHealth(w http.ResponseWriter, req *http.Request) {
	h.formatter.WriteResponse(w, req, map[string]string{
		"status":  "ok",
		"version": constants.Version,
	}, nil)
}

// PutSettings replaces display settings. Fields that fail validation keep
// their previous values; the response reflects what was actually applied.
func (h *Handlers) PutSettings(w http.ResponseWriter, req *http.Request) {
	var requested types.Settings
	if err := json.NewDecoder(req.Body).Decode(&requested); err != nil {
		h.formatter.WriteError(w, req, http.StatusBadRequest, "malformed settings payload")
		return
	}

	h.controller.engine.Dispatch(compass.SetSettingsEvent{Settings: requested})
	h.formatter.WriteResponse(w, req, h.controller.engine.CurrentSettings(), nil)
}

type declinationRequest struct {
	Declination  *float64 `json:"declination"`
	UseTrueNorth *bool    `json:"useTrueNorth"`
}

// PutDeclination sets the magnetic declination and the true-north toggle
func (h *Handlers) PutDeclination(w http.ResponseWriter, req *http.Request) {
	var dr declinationRequest
	if err := json.NewDecoder(req.Body).Decode(&dr); err != nil {
		h.formatter.WriteError(w, req, http.StatusBadRequest, "declination must be a number")
		return
	}
	if dr.Declination == nil || math.IsNaN(*dr.Declination) || math.IsInf(*dr.Declination, 0) {
		h.formatter.WriteError(w, req, http.StatusBadRequest, "declination must be a number")
		return
	}

	snap := h.controller.engine.Snapshot()
	useTrueNorth := snap.UseTrueNorth
	if dr.UseTrueNorth != nil {
		useTrueNorth = *dr.UseTrueNorth
	}

	h.controller.engine.Dispatch(compass.SetCorrectionEvent{
		Declination:  *dr.Declination,
		UseTrueNorth: useTrueNorth,
	})
	h.formatter.WriteResponse(w, req, h.controller.engine.Readout(), nil)
}

// PostLogClear empties the observation log
func (h *Handlers) PostLogClear(w http.ResponseWriter, req *http.Request) {
	h.controller.engine.Dispatch(compass.ClearLogEvent{})
	w.WriteHeader(http.StatusNoContent)
}

type pinRequest struct {
	Timestamp time.Time `json:"ts"`
}

// PostLogPin re-seeds the displayed angle from a logged entry
func (h *Handlers) PostLogPin(w http.ResponseWriter, req *http.Request) {
	var pr pinRequest
	if err := json.NewDecoder(req.Body).Decode(&pr); err != nil || pr.Timestamp.IsZero() {
		h.formatter.WriteError(w, req, http.StatusBadRequest, "ts must be an RFC 3339 timestamp")
		return
	}

	h.controller.engine.Dispatch(compass.PinEvent{Timestamp: pr.Timestamp})
	h.formatter.WriteResponse(w, req, h.controller.engine.Readout(), nil)
}
