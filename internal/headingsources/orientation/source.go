// Package orientation receives generic orientation-angle readings
// streamed as JSON lines over TCP. Clients report a rotation around the
// vertical axis (0-360, device frame) and whether the frame is absolute.
// The angle is used as a heading best-effort; no frame-of-reference
// correction is attempted.
package orientation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/compasskit/compassd/internal/headingsources"
	"github.com/compasskit/compassd/internal/log"
	"github.com/compasskit/compassd/internal/types"
	"github.com/compasskit/compassd/pkg/config"
	"github.com/panjf2000/gnet/v2"
	"go.uber.org/zap"
)

// Packet describes one line of client output.
type Packet struct {
	Alpha    *float64 `json:"alpha"`
	Absolute bool     `json:"absolute"`
}

// Source is a gnet event handler serving the orientation ingest listener.
type Source struct {
	gnet.BuiltinEventEngine

	ctx       context.Context
	wg        *sync.WaitGroup
	eng       gnet.Engine
	config    config.SourceData
	protoAddr string
	updates   chan<- types.HeadingUpdate
	throttle  *headingsources.Throttle
	logger    *zap.SugaredLogger
}

// NewSource creates an orientation source from device configuration
func NewSource(ctx context.Context, wg *sync.WaitGroup, configProvider config.ConfigProvider, sourceName string, updates chan<- types.HeadingUpdate, logger *zap.SugaredLogger) headingsources.HeadingSource {
	source := &Source{
		ctx:      ctx,
		wg:       wg,
		updates:  updates,
		throttle: headingsources.NewThrottle(),
		logger:   logger,
	}

	cfgData, err := configProvider.LoadConfig()
	if err != nil {
		logger.Fatalf("orientation source [%s] failed to load config: %v", sourceName, err)
	}

	var sourceConfig *config.SourceData
	for _, s := range cfgData.Sources {
		if s.Name == sourceName {
			sourceConfig = &s
			break
		}
	}

	if sourceConfig == nil {
		logger.Fatalf("orientation source [%s] not found in configuration", sourceName)
	}

	source.config = *sourceConfig

	if source.config.Port == "" {
		logger.Fatalf("orientation source [%s] must define a port", source.config.Name)
	}

	listenAddr := source.config.ListenAddr
	if listenAddr == "" {
		listenAddr = "0.0.0.0"
	}
	source.protoAddr = fmt.Sprintf("tcp://%s:%s", listenAddr, source.config.Port)

	return source
}

func (s *Source) SourceName() string {
	return s.config.Name
}

// StartHeadingSource launches the gnet event loop and a watcher that
// stops it on shutdown.
func (s *Source) StartHeadingSource() error {
	log.Infof("Starting orientation source [%v] on %v...", s.config.Name, s.protoAddr)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := gnet.Run(s, s.protoAddr, gnet.WithMulticore(false)); err != nil {
			log.Errorf("orientation source [%v] event loop exited: %v", s.config.Name, err)
		}
	}()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		<-s.ctx.Done()
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.eng.Stop(stopCtx)
	}()

	return nil
}

// OnBoot saves the engine handle so the watcher goroutine can stop it.
func (s *Source) OnBoot(eng gnet.Engine) gnet.Action {
	s.eng = eng
	log.Infof("orientation listener [%v] booted", s.config.Name)
	return gnet.None
}

// OnOpen seeds the per-connection line buffer.
func (s *Source) OnOpen(c gnet.Conn) ([]byte, gnet.Action) {
	c.SetContext([]byte(nil))
	return nil, gnet.None
}

// OnTraffic consumes whatever bytes are available, splits them into
// lines, and feeds complete lines through the adapter. A partial
// trailing line is kept on the connection until more data arrives.
func (s *Source) OnTraffic(c gnet.Conn) gnet.Action {
	buf, err := c.Next(-1)
	if err != nil {
		return gnet.Close
	}

	pending, _ := c.Context().([]byte)
	pending = append(pending, buf...)

	for {
		idx := bytes.IndexByte(pending, '\n')
		if idx < 0 {
			break
		}
		line := bytes.TrimSpace(pending[:idx])
		pending = pending[idx+1:]
		if len(line) == 0 {
			continue
		}
		s.handleLine(line)
	}

	c.SetContext(pending)
	return gnet.None
}

// OnClose drops the buffered partial line with the connection.
func (s *Source) OnClose(c gnet.Conn, err error) gnet.Action {
	if err != nil {
		log.Debugf("orientation client disconnected from [%v]: %v", s.config.Name, err)
	}
	return gnet.None
}

func (s *Source) handleLine(line []byte) {
	var pkt Packet
	if err := json.Unmarshal(line, &pkt); err != nil {
		s.logger.Debugf("orientation [%s] JSON parse error: %v", s.config.Name, err)
		return
	}

	now := time.Now()
	if !s.throttle.Allow(now) {
		return
	}

	update, ok := headingsources.NormalizeEvent(headingsources.OrientationReading{
		Timestamp: now,
		Source:    s.config.Name,
		Alpha:     pkt.Alpha,
		Absolute:  pkt.Absolute,
	})
	if !ok {
		return
	}

	s.updates <- update
}
