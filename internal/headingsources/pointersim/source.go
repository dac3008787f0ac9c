// Package pointersim simulates a compass heading from pointer drags on a
// client-rendered dial, for hosts without orientation sensors. Clients
// POST pointer positions with the dial center; heading is the angle of
// the pointer around that center, up = 0°, clockwise positive. Drags are
// only processed while the button is held, plus once on release.
package pointersim

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/compasskit/compassd/internal/headingsources"
	"github.com/compasskit/compassd/internal/log"
	"github.com/compasskit/compassd/internal/types"
	"github.com/compasskit/compassd/pkg/config"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// pointerEvent is the POSTed input shape.
type pointerEvent struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	CenterX float64 `json:"centerX"`
	CenterY float64 `json:"centerY"`
	Buttons int     `json:"buttons"`
	Type    string  `json:"type"` // "move", "up", "dblclick"
}

// Source serves the pointer simulation HTTP endpoint.
type Source struct {
	ctx     context.Context
	wg      *sync.WaitGroup
	config  config.SourceData
	server  http.Server
	updates chan<- types.HeadingUpdate
	logger  *zap.SugaredLogger
}

// NewSource creates a pointer simulation source from device configuration
func NewSource(ctx context.Context, wg *sync.WaitGroup, configProvider config.ConfigProvider, sourceName string, updates chan<- types.HeadingUpdate, logger *zap.SugaredLogger) headingsources.HeadingSource {
	source := &Source{
		ctx:     ctx,
		wg:      wg,
		updates: updates,
		logger:  logger,
	}

	cfgData, err := configProvider.LoadConfig()
	if err != nil {
		logger.Fatalf("pointer simulation source [%s] failed to load config: %v", sourceName, err)
	}

	var sourceConfig *config.SourceData
	for _, s := range cfgData.Sources {
		if s.Name == sourceName {
			sourceConfig = &s
			break
		}
	}

	if sourceConfig == nil {
		logger.Fatalf("pointer simulation source [%s] not found in configuration", sourceName)
	}

	source.config = *sourceConfig

	if source.config.Port == "" {
		logger.Fatalf("pointer simulation source [%s] must define a port", source.config.Name)
	}

	return source
}

func (s *Source) SourceName() string {
	return s.config.Name
}

// StartHeadingSource starts the pointer event listener
func (s *Source) StartHeadingSource() error {
	router := mux.NewRouter()
	router.HandleFunc("/pointer", s.handlePointer).Methods(http.MethodPost)

	listenAddr := s.config.ListenAddr
	s.server = http.Server{
		Addr:        fmt.Sprintf("%s:%s", listenAddr, s.config.Port),
		Handler:     router,
		ReadTimeout: 10 * time.Second,
	}

	log.Infof("Starting pointer simulation source [%v] on %v...", s.config.Name, s.server.Addr)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Errorf("pointer simulation listener error: %v", err)
		}
	}()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		<-s.ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.server.Shutdown(shutdownCtx)
	}()

	return nil
}

// handlePointer turns a POSTed pointer position into a heading update.
// Hover events (no button held, not a release) are discarded by the
// adapter and acknowledged without effect.
func (s *Source) handlePointer(w http.ResponseWriter, req *http.Request) {
	var ev pointerEvent
	if err := json.NewDecoder(req.Body).Decode(&ev); err != nil {
		http.Error(w, "malformed pointer event", http.StatusBadRequest)
		return
	}

	released := ev.Type == "up"
	update, ok := headingsources.NormalizeEvent(headingsources.PointerDragReading{
		Timestamp: time.Now(),
		Source:    s.config.Name,
		X:         ev.X,
		Y:         ev.Y,
		CenterX:   ev.CenterX,
		CenterY:   ev.CenterY,
		Active:    ev.Buttons > 0 && !released,
		Released:  released,
	})
	if ok {
		s.updates <- update
	}

	w.WriteHeader(http.StatusNoContent)
}
