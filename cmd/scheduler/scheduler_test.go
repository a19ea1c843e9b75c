package main

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/abelzeko/petrodata/internal/entities"
	"github.com/abelzeko/petrodata/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewScheduler_InvalidSpec(t *testing.T) {
	_, err := newScheduler("every morning", func() {})
	assert.Error(t, err)
}

func TestNewScheduler_RegistersJob(t *testing.T) {
	c, err := newScheduler("0 6 * * *", func() {})
	require.NoError(t, err)

	entries := c.Entries()
	require.Len(t, entries, 1)

	from := time.Date(2024, time.March, 15, 7, 0, 0, 0, time.Local)
	next := entries[0].Schedule.Next(from)
	assert.Equal(t, time.Date(2024, time.March, 16, 6, 0, 0, 0, time.Local), next)
}

func TestNewScheduler_RunsJob(t *testing.T) {
	ran := make(chan struct{}, 1)
	c, err := newScheduler("@every 1s", func() {
		select {
		case ran <- struct{}{}:
		default:
		}
	})
	require.NoError(t, err)

	c.Start()
	defer c.Stop()

	select {
	case <-ran:
	case <-time.After(3 * time.Second):
		t.Fatal("scheduled job did not run")
	}
}

func TestRun_InvalidScheduleReturnsError(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	dbPath := filepath.Join(dir, "petrodata.db")
	t.Setenv("PETRODATA_DB_PATH", dbPath)
	t.Setenv("PETRODATA_SEED_ON_START", "false")
	t.Setenv("PETRODATA_AUDIT_SCHEDULE", "every morning")
	for _, key := range []string{"PETRODATA_API_KEY", "API_KEY", "GEMINI_API_KEY", "OPENAI_API_KEY"} {
		t.Setenv(key, "")
	}

	err := run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid audit schedule")

	// The store was closed on the way out and can be reopened.
	repo, err := repository.NewSQLiteReportRepository(dbPath)
	require.NoError(t, err)
	require.NoError(t, repo.Upsert(context.Background(), entities.DailyReport{
		ID: "East Mesa-W-1-2024-03-01", Date: entities.MustParseDate("2024-03-01"),
		FieldName: "East Mesa", WellID: "W-1", WeatherCondition: entities.WeatherSunny,
	}))
	require.NoError(t, repo.Close())
}
