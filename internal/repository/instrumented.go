package repository

import (
	"context"

	"github.com/abelzeko/petrodata/internal/entities"
	"github.com/abelzeko/petrodata/internal/observability"
)

type instrumentedRepository struct {
	ReportRepository
	metrics *observability.Metrics
}

// WithMetrics wraps repo so every operation is counted.
func WithMetrics(repo ReportRepository, m *observability.Metrics) ReportRepository {
	if m == nil {
		return repo
	}
	return &instrumentedRepository{ReportRepository: repo, metrics: m}
}

func (i *instrumentedRepository) List(ctx context.Context) []entities.DailyReport {
	reports := i.ReportRepository.List(ctx)
	i.metrics.StoreOperations.WithLabelValues("list", "success").Inc()
	i.metrics.StoredReports.Set(float64(len(reports)))
	return reports
}

func (i *instrumentedRepository) Upsert(ctx context.Context, report entities.DailyReport) error {
	return i.observe("upsert", i.ReportRepository.Upsert(ctx, report))
}

func (i *instrumentedRepository) SaveReports(ctx context.Context, reports []entities.DailyReport) error {
	return i.observe("save", i.ReportRepository.SaveReports(ctx, reports))
}

func (i *instrumentedRepository) Delete(ctx context.Context, id string) error {
	return i.observe("delete", i.ReportRepository.Delete(ctx, id))
}

func (i *instrumentedRepository) observe(op string, err error) error {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	i.metrics.StoreOperations.WithLabelValues(op, outcome).Inc()
	return err
}
