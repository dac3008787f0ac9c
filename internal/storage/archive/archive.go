// Package archive writes recorded heading samples to a TimescaleDB
// hypertable for long-term analysis.
package archive

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/compasskit/compassd/internal/log"
	"github.com/compasskit/compassd/internal/types"
	"github.com/jackc/pgtype"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"go.uber.org/zap"
)

// Storage holds the connection for a TimescaleDB archive backend
type Storage struct {
	ArchiveDBConn *gorm.DB
}

// We declare the Tabler interface for purposes of customizing the table name in the DB
type Tabler interface {
	TableName() string
}

// HeadingRow is the persisted shape of a recorded heading sample.
type HeadingRow struct {
	Timestamp time.Time    `gorm:"column:time"`
	Heading   float64      `gorm:"column:heading"`
	Cardinal  string       `gorm:"column:cardinal"`
	Mode      string       `gorm:"column:mode"`
	Meta      pgtype.JSONB `gorm:"column:meta;type:jsonb"`
}

// TableName implements the Tabler interface
func (HeadingRow) TableName() string {
	return "compass_headings"
}

func rowFromSample(s types.HeadingSample) (HeadingRow, error) {
	row := HeadingRow{
		Timestamp: s.Timestamp,
		Heading:   s.Heading,
		Cardinal:  s.Cardinal,
		Mode:      s.Mode,
	}
	err := row.Meta.Set(map[string]interface{}{
		"cardinal": s.Cardinal,
		"mode":     s.Mode,
	})
	if err != nil {
		return row, fmt.Errorf("could not build meta column: %w", err)
	}
	return row, nil
}

// StartStorageEngine creates a goroutine loop to receive samples and send
// them off to TimescaleDB
func (t *Storage) StartStorageEngine(ctx context.Context, wg *sync.WaitGroup) chan<- types.HeadingSample {
	log.Info("starting TimescaleDB archive engine...")
	sampleChan := make(chan types.HeadingSample, 10)
	go t.processSamples(ctx, wg, sampleChan)
	return sampleChan
}

func (t *Storage) processSamples(ctx context.Context, wg *sync.WaitGroup, schan <-chan types.HeadingSample) {
	wg.Add(1)
	defer wg.Done()

	for {
		select {
		case s := <-schan:
			if err := t.StoreSample(s); err != nil {
				log.Error("could not store heading sample:", err)
			}
		case <-ctx.Done():
			log.Info("cancellation request received. Stopping archive engine.")
			return
		}
	}
}

// StoreSample stores one heading sample in TimescaleDB
func (t *Storage) StoreSample(s types.HeadingSample) error {
	row, err := rowFromSample(s)
	if err != nil {
		return err
	}
	return t.ArchiveDBConn.Create(&row).Error
}

// New sets up a new TimescaleDB archive backend
func New(ctx context.Context, connectionString string) (*Storage, error) {
	t := Storage{}

	dbLogger := gormlogger.New(
		zap.NewStdLog(log.GetZapLogger()),
		gormlogger.Config{
			SlowThreshold: time.Second,
			LogLevel:      gormlogger.Warn,
		},
	)

	log.Info("connecting to TimescaleDB...")
	var err error
	t.ArchiveDBConn, err = gorm.Open(postgres.Open(connectionString), &gorm.Config{Logger: dbLogger})
	if err != nil {
		log.Warn("warning: unable to create a TimescaleDB connection:", err)
		return &Storage{}, err
	}

	log.Info("creating heading archive table...")
	err = t.ArchiveDBConn.WithContext(ctx).Exec(createTableSQL).Error
	if err != nil {
		log.Warn("warning: could not create table in database")
		return &Storage{}, err
	}

	log.Info("creating TimescaleDB extension...")
	err = t.ArchiveDBConn.WithContext(ctx).Exec(createExtensionSQL).Error
	if err != nil {
		log.Warn("warning: could not create TimescaleDB extension")
		return &Storage{}, err
	}

	log.Info("creating hypertable...")
	err = t.ArchiveDBConn.WithContext(ctx).Exec(createHypertableSQL).Error
	if err != nil {
		log.Warn("warning: could not create hypertable")
		return &Storage{}, err
	}

	return &t, nil
}
