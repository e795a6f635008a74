// Package storage defines interfaces and implementations for trace archive
// storage backends.
package storage

import (
	"context"
	"sync"

	"github.com/seismotools/raypath/internal/types"
)

// TraceStorer is an interface that provides a few standardized methods for
// various storage backends
type TraceStorer interface {
	StartStorageEngine(context.Context, *sync.WaitGroup) chan<- types.TraceRecord
}
