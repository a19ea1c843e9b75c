package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/abelzeko/petrodata/internal/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepository(t *testing.T) (*SQLiteReportRepository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS slots")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	repo, err := NewSQLiteReportRepositoryWithDB(db)
	require.NoError(t, err)
	return repo, mock
}

func TestSQLiteReportRepository_ListQueryError(t *testing.T) {
	repo, mock := newMockRepository(t)
	mock.ExpectQuery(regexp.QuoteMeta(selectSlotSQL)).
		WithArgs(ReportsSlot).
		WillReturnError(errors.New("disk I/O error"))

	assert.Empty(t, repo.List(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteReportRepository_UpsertWriteErrorRollsBack(t *testing.T) {
	repo, mock := newMockRepository(t)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(selectSlotSQL)).
		WithArgs(ReportsSlot).
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow("[]"))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO slots")).
		WithArgs(ReportsSlot, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnError(errors.New("database is locked"))
	mock.ExpectRollback()

	err := repo.Upsert(context.Background(), report("East Mesa", "W-1", "2024-03-01", 1))
	assert.ErrorContains(t, err, "failed to write reports")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteReportRepository_UpsertWritesWholeCollection(t *testing.T) {
	repo, mock := newMockRepository(t)
	existing := `[{"id":"East Mesa-W-1-2024-03-01","date":"2024-03-01","fieldName":"East Mesa","wellId":"W-1","oilProducedBbl":1,"gasProducedMcf":0,"waterProducedBbl":0,"employeesAffected":0,"weatherCondition":"Sunny","notes":"","timestamp":0}]`

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(selectSlotSQL)).
		WithArgs(ReportsSlot).
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(existing))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO slots")).
		WithArgs(ReportsSlot, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Upsert(context.Background(), report("East Mesa", "W-2", "2024-03-01", 2)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithMetrics(t *testing.T) {
	ctx := context.Background()
	m := observability.NewMetricsForTesting()
	repo := WithMetrics(NewMemoryReportRepository(), m)

	require.NoError(t, repo.Upsert(ctx, report("East Mesa", "W-1", "2024-03-01", 1)))
	require.NoError(t, repo.Delete(ctx, "missing"))
	assert.Len(t, repo.List(ctx), 1)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.StoreOperations.WithLabelValues("upsert", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StoreOperations.WithLabelValues("delete", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StoredReports))
}
