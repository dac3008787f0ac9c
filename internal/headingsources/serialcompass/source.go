// Package serialcompass reads a platform compass-heading sensor attached
// over a serial line (or a TCP serial bridge). The sensor emits one JSON
// object per line carrying a direct compass heading and an optional
// accuracy estimate.
package serialcompass

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/compasskit/compassd/internal/headingsources"
	"github.com/compasskit/compassd/internal/log"
	"github.com/compasskit/compassd/internal/types"
	"github.com/compasskit/compassd/pkg/config"
	serial "github.com/tarm/goserial"
	"go.uber.org/zap"
)

// Packet describes one line of sensor output.
type Packet struct {
	CompassHeading *float64 `json:"compass_heading"`
	Accuracy       *float64 `json:"accuracy"`
}

// Source holds our connection along with some mutexes for operation
type Source struct {
	ctx         context.Context
	wg          *sync.WaitGroup
	netConn     net.Conn
	rwc         io.ReadWriteCloser
	config      config.SourceData
	sourceName  string
	updates     chan<- types.HeadingUpdate
	throttle    *headingsources.Throttle
	logger      *zap.SugaredLogger
	connectedMu sync.RWMutex
	connected   bool
}

// NewSource creates a serial compass source from device configuration
func NewSource(ctx context.Context, wg *sync.WaitGroup, configProvider config.ConfigProvider, sourceName string, updates chan<- types.HeadingUpdate, logger *zap.SugaredLogger) headingsources.HeadingSource {
	source := &Source{
		ctx:        ctx,
		wg:         wg,
		sourceName: sourceName,
		updates:    updates,
		throttle:   headingsources.NewThrottle(),
		logger:     logger,
	}

	cfgData, err := configProvider.LoadConfig()
	if err != nil {
		logger.Fatalf("serial compass source [%s] failed to load config: %v", sourceName, err)
	}

	var sourceConfig *config.SourceData
	for _, s := range cfgData.Sources {
		if s.Name == sourceName {
			sourceConfig = &s
			break
		}
	}

	if sourceConfig == nil {
		logger.Fatalf("serial compass source [%s] not found in configuration", sourceName)
	}

	source.config = *sourceConfig

	if source.config.SerialDevice == "" && (source.config.Hostname == "" || source.config.Port == "") {
		logger.Fatalf("serial compass source [%s] must define either a serial device or hostname+port", source.config.Name)
	}

	// 9600 baud covers the common magnetometer breakout boards.
	if source.config.Baud == 0 {
		source.config.Baud = 9600
	}

	return source
}

func (s *Source) SourceName() string {
	return s.config.Name
}

// StartHeadingSource connects to the sensor and launches the reader goroutine
func (s *Source) StartHeadingSource() error {
	log.Infof("Starting serial compass source [%v]...", s.config.Name)

	s.connect()

	s.wg.Add(1)
	go s.readPackets()

	return nil
}

// connect opens the serial device or TCP bridge, retrying until the
// context is cancelled.
func (s *Source) connect() {
	var err error
	for {
		select {
		case <-s.ctx.Done():
			return
		default:
		}

		if s.config.SerialDevice != "" {
			sc := &serial.Config{Name: s.config.SerialDevice, Baud: s.config.Baud}
			s.rwc, err = serial.OpenPort(sc)
		} else {
			s.netConn, err = net.DialTimeout("tcp", fmt.Sprintf("%v:%v", s.config.Hostname, s.config.Port), 10*time.Second)
			s.rwc = s.netConn
		}

		if err == nil {
			log.Infof("Connected to compass sensor [%v]", s.config.Name)
			s.setConnected(true)
			return
		}

		log.Errorf("could not connect to compass sensor [%v]: %v; retrying in 5s", s.config.Name, err)
		select {
		case <-s.ctx.Done():
			return
		case <-time.After(5 * time.Second):
		}
	}
}

// readPackets runs the line parser, reconnecting on error.
func (s *Source) readPackets() {
	defer s.wg.Done()
	for {
		select {
		case <-s.ctx.Done():
			log.Info("cancellation request received. Cancelling serial compass reader.")
			return
		default:
			err := s.parsePackets()
			if err != nil {
				s.logger.Error(err)
				s.setConnected(false)
				if s.rwc != nil {
					s.rwc.Close()
				}
				s.logger.Info("attempting to reconnect...")
				s.connect()
			} else {
				return
			}
		}
	}
}

// parsePackets decodes JSON lines from the sensor, normalizes them
// through the adapter, and sends accepted updates to the engine.
func (s *Source) parsePackets() error {
	scanner := bufio.NewScanner(s.rwc)

	for scanner.Scan() {
		if s.netConn != nil {
			s.netConn.SetReadDeadline(time.Now().Add(30 * time.Second))
		}
		select {
		case <-s.ctx.Done():
			return nil
		default:
		}

		var pkt Packet
		if err := json.Unmarshal(scanner.Bytes(), &pkt); err != nil {
			return fmt.Errorf("error unmarshalling sensor JSON: %v", err)
		}

		now := time.Now()
		if !s.throttle.Allow(now) {
			continue
		}

		update, ok := headingsources.NormalizeEvent(headingsources.PlatformCompassReading{
			Timestamp:      now,
			Source:         s.config.Name,
			CompassHeading: pkt.CompassHeading,
			Accuracy:       pkt.Accuracy,
		})
		if !ok {
			log.Debugf("discarding packet without usable heading from [%v]", s.config.Name)
			continue
		}

		log.Debugf("serial compass [%s] heading=%.1f hint=%q", s.config.Name, update.Heading, update.AccuracyHint)
		s.updates <- update
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading from compass sensor: %v", err)
	}
	return fmt.Errorf("compass sensor stream ended")
}

func (s *Source) setConnected(c bool) {
	s.connectedMu.Lock()
	s.connected = c
	s.connectedMu.Unlock()
}
