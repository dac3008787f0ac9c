package managers

import (
	"context"
	"fmt"
	"sync"

	"github.com/compasskit/compassd/internal/headingsources"
	"github.com/compasskit/compassd/internal/headingsources/orientation"
	"github.com/compasskit/compassd/internal/headingsources/pointersim"
	"github.com/compasskit/compassd/internal/headingsources/serialcompass"
	"github.com/compasskit/compassd/internal/log"
	"github.com/compasskit/compassd/internal/types"
	"github.com/compasskit/compassd/pkg/config"
	"go.uber.org/zap"
)

// SourceManager creates and starts all configured heading sources.
type SourceManager struct {
	ctx            context.Context
	wg             *sync.WaitGroup
	configProvider config.ConfigProvider
	updates        chan<- types.HeadingUpdate
	logger         *zap.SugaredLogger
	sources        map[string]headingsources.HeadingSource
}

// NewSourceManager creates a SourceManager populated with all enabled heading sources
func NewSourceManager(ctx context.Context, wg *sync.WaitGroup, configProvider config.ConfigProvider, updates chan<- types.HeadingUpdate, logger *zap.SugaredLogger) (*SourceManager, error) {
	cfgData, err := configProvider.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error loading configuration: %v", err)
	}

	sm := &SourceManager{
		ctx:            ctx,
		wg:             wg,
		configProvider: configProvider,
		updates:        updates,
		logger:         logger,
		sources:        make(map[string]headingsources.HeadingSource),
	}

	for _, sourceConfig := range cfgData.Sources {
		if !sourceConfig.Enabled {
			logger.Infof("Skipping disabled source [%s]", sourceConfig.Name)
			continue
		}
		source, err := sm.createSourceFromConfig(sourceConfig)
		if err != nil {
			return nil, fmt.Errorf("error creating heading source [%s]: %w", sourceConfig.Name, err)
		}
		sm.sources[sourceConfig.Name] = source
	}

	return sm, nil
}

// StartSources starts every configured heading source.
func (sm *SourceManager) StartSources() error {
	for name, source := range sm.sources {
		sm.logger.Infof("Starting heading source [%v]...", name)
		if err := source.StartHeadingSource(); err != nil {
			return fmt.Errorf("failed to start heading source [%s]: %w", name, err)
		}
	}
	return nil
}

// createSourceFromConfig creates the appropriate heading source based on source type
func (sm *SourceManager) createSourceFromConfig(sc config.SourceData) (headingsources.HeadingSource, error) {
	switch sc.Type {
	case "serialcompass":
		log.Infof("Initializing serial compass source [%v]", sc.Name)
		return serialcompass.NewSource(sm.ctx, sm.wg, sm.configProvider, sc.Name, sm.updates, sm.logger), nil
	case "orientation":
		log.Infof("Initializing orientation stream source [%v]", sc.Name)
		return orientation.NewSource(sm.ctx, sm.wg, sm.configProvider, sc.Name, sm.updates, sm.logger), nil
	case "pointersim":
		log.Infof("Initializing pointer simulation source [%v]", sc.Name)
		return pointersim.NewSource(sm.ctx, sm.wg, sm.configProvider, sc.Name, sm.updates, sm.logger), nil
	default:
		return nil, fmt.Errorf("unknown heading source type: %s", sc.Type)
	}
}
