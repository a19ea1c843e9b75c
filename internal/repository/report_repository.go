// Package repository provides data access implementations
package repository

import (
	"context"

	"github.com/abelzeko/petrodata/internal/entities"
)

// ReportsSlot is the name of the single storage slot holding every report.
const ReportsSlot = "petrodata_reports"

// ReportRepository defines the persistence operations for daily reports.
// Every mutation rewrites the whole collection in one write.
type ReportRepository interface {
	// List returns all reports in storage order. An absent or unreadable
	// collection yields an empty list.
	List(ctx context.Context) []entities.DailyReport
	// Upsert replaces the report with the same identity triple in place, or appends it.
	Upsert(ctx context.Context, report entities.DailyReport) error
	// SaveReports upserts a batch of reports with a single write.
	SaveReports(ctx context.Context, reports []entities.DailyReport) error
	// Delete removes the report with the given ID. Unknown IDs are a no-op.
	Delete(ctx context.Context, id string) error
	Close() error
}

// SeedIfEmpty persists generate() when the repository holds no reports.
// It reports whether seeding happened.
func SeedIfEmpty(ctx context.Context, repo ReportRepository, generate func() []entities.DailyReport) (bool, error) {
	if len(repo.List(ctx)) > 0 {
		return false, nil
	}
	if err := repo.SaveReports(ctx, generate()); err != nil {
		return false, err
	}
	return true, nil
}

// reportSet keeps reports in storage order with an index on the identity
// triple, so a key can never appear twice.
type reportSet struct {
	reports []entities.DailyReport
	index   map[entities.Key]int
}

func newReportSet(reports []entities.DailyReport) *reportSet {
	s := &reportSet{
		reports: make([]entities.DailyReport, 0, len(reports)),
		index:   make(map[entities.Key]int, len(reports)),
	}
	for _, r := range reports {
		s.upsert(r)
	}
	return s
}

// upsert returns true when an existing report was replaced.
func (s *reportSet) upsert(r entities.DailyReport) bool {
	k := r.Key()
	if i, ok := s.index[k]; ok {
		s.reports[i] = r
		return true
	}
	s.index[k] = len(s.reports)
	s.reports = append(s.reports, r)
	return false
}

// remove drops every report carrying id and returns how many were dropped.
func (s *reportSet) remove(id string) int {
	kept := s.reports[:0]
	removed := 0
	for _, r := range s.reports {
		if r.ID == id {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	if removed == 0 {
		return 0
	}
	s.reports = kept
	s.index = make(map[entities.Key]int, len(kept))
	for i, r := range kept {
		s.index[r.Key()] = i
	}
	return removed
}

func (s *reportSet) list() []entities.DailyReport {
	out := make([]entities.DailyReport, len(s.reports))
	copy(out, s.reports)
	return out
}
