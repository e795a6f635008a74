// Package postgres implements the Postgres trace archive backend.
package postgres

import (
	"context"
	"sync"

	"github.com/seismotools/raypath/internal/database"
	"github.com/seismotools/raypath/internal/log"
	"github.com/seismotools/raypath/internal/types"
	"gorm.io/gorm"
)

// Storage holds the connection to a Postgres trace archive
type Storage struct {
	PostgresConn *gorm.DB
}

// StartStorageEngine creates a goroutine loop to receive completed traces
// and write them to the archive
func (p *Storage) StartStorageEngine(ctx context.Context, wg *sync.WaitGroup) chan<- types.TraceRecord {
	log.Info("starting Postgres storage engine...")
	traceChan := make(chan types.TraceRecord, 10)
	go p.processTraces(ctx, wg, traceChan)
	return traceChan
}

func (p *Storage) processTraces(ctx context.Context, wg *sync.WaitGroup, tchan <-chan types.TraceRecord) {
	wg.Add(1)
	defer wg.Done()

	for {
		select {
		case t := <-tchan:
			if err := p.StoreTrace(t); err != nil {
				log.Error("could not archive trace:", err)
			}
		case <-ctx.Done():
			log.Info("cancellation request received; cancelling trace processor")
			return
		}
	}
}

// StoreTrace stores a completed trace in the archive
func (p *Storage) StoreTrace(t types.TraceRecord) error {
	return p.PostgresConn.Create(&t).Error
}

// New sets up a new Postgres storage backend
func New(ctx context.Context, connectionString string) (*Storage, error) {
	var err error
	p := Storage{}

	log.Info("connecting to Postgres trace archive...")
	p.PostgresConn, err = database.CreateConnection(connectionString)
	if err != nil {
		log.Warn("warning: unable to create a Postgres connection:", err)
		return &Storage{}, err
	}

	log.Info("creating traces table...")
	err = p.PostgresConn.WithContext(ctx).Exec(createTableSQL).Error
	if err != nil {
		log.Warn("warning: could not create traces table")
		return &Storage{}, err
	}

	return &p, nil
}
