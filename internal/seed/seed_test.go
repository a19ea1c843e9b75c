package seed

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/abelzeko/petrodata/internal/entities"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGenerator(t *testing.T) *Generator {
	t.Helper()
	clock := clockwork.NewFakeClockAt(time.Date(2024, time.March, 31, 9, 30, 0, 0, time.UTC))
	g := NewGenerator(clock)
	g.Rand = rand.New(rand.NewPCG(1, 2))
	return g
}

func TestGenerate_Shape(t *testing.T) {
	reports := newTestGenerator(t).Generate()
	require.Len(t, reports, historyDays*wellsPerDay)

	assert.Equal(t, "2024-02-01", reports[0].Date.String())
	assert.Equal(t, "2024-03-31", reports[len(reports)-1].Date.String())

	perDay := map[string]map[string]bool{}
	for _, r := range reports {
		require.NoError(t, r.Validate())
		assert.Equal(t, entities.ReportID(r.FieldName, r.WellID, r.Date), r.ID)
		assert.Contains(t, wells, r.WellID)
		assert.Contains(t, fields, r.FieldName)
		assert.Equal(t, r.Date, entities.DateOf(time.UnixMilli(r.Timestamp).UTC()))

		if perDay[r.Date.String()] == nil {
			perDay[r.Date.String()] = map[string]bool{}
		}
		assert.False(t, perDay[r.Date.String()][r.WellID], "well reported twice on one day")
		perDay[r.Date.String()][r.WellID] = true
	}
	assert.Len(t, perDay, historyDays)
}

func TestGenerate_WeatherIsAreawide(t *testing.T) {
	reports := newTestGenerator(t).Generate()
	byDay := map[string]entities.WeatherCondition{}
	for _, r := range reports {
		if w, ok := byDay[r.Date.String()]; ok {
			assert.Equal(t, w, r.WeatherCondition)
		}
		byDay[r.Date.String()] = r.WeatherCondition
	}
}

func TestGenerate_IncidentsFollowStorms(t *testing.T) {
	g := newTestGenerator(t)
	// Every day stormy.
	g.Thresholds = WeatherThresholds{Sunny: -1, Cloudy: -1, Rainy: -1}

	incidents := 0
	for _, r := range g.Generate() {
		assert.Equal(t, entities.WeatherStormy, r.WeatherCondition)
		assert.LessOrEqual(t, r.OilProducedBbl, 1600*stormFactor)
		if r.EmployeesAffected > 0 {
			incidents++
			assert.LessOrEqual(t, r.OilProducedBbl, 1600*stormFactor*injuryFactor)
			assert.Equal(t, "Safety incident reported. Pump check required.", r.Notes)
		}
	}
	assert.Positive(t, incidents)
}

func TestGenerate_NoIncidentsWithoutStorms(t *testing.T) {
	g := newTestGenerator(t)
	g.Thresholds = WeatherThresholds{Sunny: 2, Cloudy: 2, Rainy: 2}

	for _, r := range g.Generate() {
		assert.Equal(t, entities.WeatherSunny, r.WeatherCondition)
		assert.Zero(t, r.EmployeesAffected)
		assert.GreaterOrEqual(t, r.OilProducedBbl, 800.0)
		assert.Equal(t, "Routine operations.", r.Notes)
	}
}
