package repomanager

import (
	"context"

	"github.com/dmitrijs2005/capacitanet/internal/server/config"
	"github.com/dmitrijs2005/capacitanet/internal/server/repositories/records"
)

// MemoryRepositoryManager keeps everything in process memory. Data is lost
// on restart.
type MemoryRepositoryManager struct {
	base
}

func NewMemoryRepositoryManager(cfg *config.Config) *MemoryRepositoryManager {
	return &MemoryRepositoryManager{base: newBase(records.NewMemoryRepository(), cfg)}
}

func (m *MemoryRepositoryManager) RunMigrations(ctx context.Context) error { return nil }

func (m *MemoryRepositoryManager) Close() error { return nil }
