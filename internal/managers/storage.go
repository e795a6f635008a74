// Package managers wires configured components into running goroutines.
package managers

import (
	"context"
	"fmt"
	"sync"

	"github.com/seismotools/raypath/internal/log"
	"github.com/seismotools/raypath/internal/storage"
	"github.com/seismotools/raypath/internal/storage/postgres"
	"github.com/seismotools/raypath/internal/types"
	"github.com/seismotools/raypath/pkg/config"
)

// StorageManager fans completed traces out to the configured archive
// backends
type StorageManager struct {
	Engines          []StorageEngine
	TraceDistributor chan types.TraceRecord
}

// StorageEngine holds a backend storage engine's interface as well as a
// channel for passing traces to the engine
type StorageEngine struct {
	Engine storage.TraceStorer
	C      chan<- types.TraceRecord
}

// NewStorageManager creates a StorageManager object, populated with all
// configured storage engines
func NewStorageManager(ctx context.Context, wg *sync.WaitGroup, provider config.ConfigProvider) (*StorageManager, error) {
	s := StorageManager{}

	// Channel for passing completed traces to the distributor
	s.TraceDistributor = make(chan types.TraceRecord, 20)

	go s.startTraceDistributor(ctx, wg)

	storageConfig, err := provider.GetStorageConfig()
	if err != nil {
		return nil, fmt.Errorf("could not load storage configuration: %v", err)
	}

	if storageConfig.Postgres != nil && storageConfig.Postgres.ConnectionString != "" {
		if err := s.AddEngine(ctx, wg, "postgres", storageConfig); err != nil {
			return &s, fmt.Errorf("could not add Postgres storage backend: %v", err)
		}
	}

	return &s, nil
}

// GetTraceDistributor returns the trace distributor channel
func (s *StorageManager) GetTraceDistributor() chan types.TraceRecord {
	return s.TraceDistributor
}

// AddEngine adds a new StorageEngine of name engineName to our Storage
// object
func (s *StorageManager) AddEngine(ctx context.Context, wg *sync.WaitGroup, engineName string, c *config.StorageData) error {
	var err error

	switch engineName {
	case "postgres":
		se := StorageEngine{}
		se.Engine, err = postgres.New(ctx, c.Postgres.ConnectionString)
		if err != nil {
			return err
		}
		se.C = se.Engine.StartStorageEngine(ctx, wg)
		s.Engines = append(s.Engines, se)
	}

	return nil
}

// startTraceDistributor receives completed traces from the tracer surfaces
// and fans them out to the various storage backends
func (s *StorageManager) startTraceDistributor(ctx context.Context, wg *sync.WaitGroup) {
	wg.Add(1)
	defer wg.Done()

	for {
		select {
		case t := <-s.TraceDistributor:
			for _, e := range s.Engines {
				select {
				case e.C <- t:
				default:
					log.Warn("storage engine channel full; dropping trace", t.ID)
				}
			}
		case <-ctx.Done():
			log.Info("cancellation request received; cancelling trace distributor")
			return
		}
	}
}
