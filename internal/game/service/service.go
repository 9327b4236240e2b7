// Package service implements the game engine operations: the session
// registry, the state update sequencer, the crafting engine, the event
// propagation graph, and the entity CRUD surface. Every multi-entity
// mutation runs inside one store transaction.
package service

import (
	"time"

	"github.com/cheeseisland/engine/internal/game/storage"
	"github.com/cheeseisland/engine/internal/platform/id"
)

const (
	defaultListPageSize = 20
	maxListPageSize     = 100
)

// Service exposes the engine operations over one transactional store.
type Service struct {
	store       storage.Store
	clock       func() time.Time
	idGenerator func() (string, error)
}

// NewService creates a Service with default dependencies.
func NewService(store storage.Store) *Service {
	return &Service{
		store:       store,
		clock:       time.Now,
		idGenerator: id.NewID,
	}
}

func clampPageSize(pageSize int) int {
	if pageSize <= 0 {
		return defaultListPageSize
	}
	if pageSize > maxListPageSize {
		return maxListPageSize
	}
	return pageSize
}
