package repository

import (
	"context"
	"sync"

	"github.com/abelzeko/petrodata/internal/entities"
)

// MemoryReportRepository keeps reports in process memory. Used by tests and
// throwaway sessions.
type MemoryReportRepository struct {
	mu  sync.RWMutex
	set *reportSet
}

// NewMemoryReportRepository creates a repository pre-loaded with reports.
func NewMemoryReportRepository(reports ...entities.DailyReport) *MemoryReportRepository {
	return &MemoryReportRepository{set: newReportSet(reports)}
}

// List returns a copy of the reports in storage order.
func (m *MemoryReportRepository) List(_ context.Context) []entities.DailyReport {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.set.list()
}

// Upsert replaces the report with the same identity triple in place, or appends it.
func (m *MemoryReportRepository) Upsert(_ context.Context, report entities.DailyReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.set.upsert(report)
	return nil
}

// SaveReports upserts every report in order.
func (m *MemoryReportRepository) SaveReports(_ context.Context, reports []entities.DailyReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range reports {
		m.set.upsert(r)
	}
	return nil
}

// Delete removes the report with id, if any.
func (m *MemoryReportRepository) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.set.remove(id)
	return nil
}

// Close is a no-op.
func (m *MemoryReportRepository) Close() error { return nil }
