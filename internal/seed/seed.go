// Package seed generates a plausible synthetic report history for an empty store.
package seed

import (
	"math"
	"math/rand/v2"

	"github.com/abelzeko/petrodata/internal/entities"
	"github.com/jonboulle/clockwork"
)

const (
	historyDays  = 60
	wellsPerDay  = 3
	stormFactor  = 0.7 // production kept on a stormy day
	injuryFactor = 0.5 // production kept after a safety incident
)

var (
	fields = []string{"East Mesa", "North Unit", "South Ridge", "West Field"}
	wells  = []string{"W-1001", "W-1002", "W-1003", "W-1004", "W-1005"}
)

// WeatherThresholds maps a uniform roll to the day's weather. A roll at or
// below Sunny is sunny, then Cloudy, then Rainy, anything above is stormy.
type WeatherThresholds struct {
	Sunny  float64
	Cloudy float64
	Rainy  float64
}

// DefaultThresholds gives roughly 70% sunny, 15% cloudy, 10% rainy and 5% stormy days.
var DefaultThresholds = WeatherThresholds{Sunny: 0.70, Cloudy: 0.85, Rainy: 0.95}

// Generator produces the sample history. Output is not reproducible unless
// Rand is seeded deterministically.
type Generator struct {
	Clock      clockwork.Clock
	Rand       *rand.Rand
	Thresholds WeatherThresholds
}

// NewGenerator returns a generator on the given clock with a random source.
func NewGenerator(clock clockwork.Clock) *Generator {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Generator{
		Clock:      clock,
		Rand:       rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		Thresholds: DefaultThresholds,
	}
}

// Generate returns reports for three random wells on each of the last 60
// days, oldest first, ending today.
func (g *Generator) Generate() []entities.DailyReport {
	now := g.Clock.Now()
	reports := make([]entities.DailyReport, 0, historyDays*wellsPerDay)

	for i := 0; i < historyDays; i++ {
		instant := now.AddDate(0, 0, -(historyDays - 1 - i))
		date := entities.DateOf(instant)
		weather := g.weather(g.Rand.Float64())

		for _, w := range g.Rand.Perm(len(wells))[:wellsPerDay] {
			wellID := wells[w]
			fieldName := fields[g.Rand.IntN(len(fields))]

			employeesAffected := 0
			// Incidents only happen on stormy days.
			if weather == entities.WeatherStormy && g.Rand.Float64() > 0.6 {
				employeesAffected = 1
			}

			oil := 800 + g.Rand.Float64()*800
			if weather == entities.WeatherStormy {
				oil *= stormFactor
			}
			if employeesAffected > 0 {
				oil *= injuryFactor
			}

			notes := "Routine operations."
			if employeesAffected > 0 {
				notes = "Safety incident reported. Pump check required."
			}

			reports = append(reports, entities.DailyReport{
				ID:                entities.ReportID(fieldName, wellID, date),
				Date:              date,
				FieldName:         fieldName,
				WellID:            wellID,
				OilProducedBbl:    math.Floor(oil),
				GasProducedMcf:    math.Floor(1000 + g.Rand.Float64()*500),
				WaterProducedBbl:  math.Floor(600 + g.Rand.Float64()*400),
				EmployeesAffected: employeesAffected,
				WeatherCondition:  weather,
				Notes:             notes,
				Timestamp:         instant.UnixMilli(),
			})
		}
	}
	return reports
}

func (g *Generator) weather(roll float64) entities.WeatherCondition {
	switch {
	case roll <= g.Thresholds.Sunny:
		return entities.WeatherSunny
	case roll <= g.Thresholds.Cloudy:
		return entities.WeatherCloudy
	case roll <= g.Thresholds.Rainy:
		return entities.WeatherRainy
	default:
		return entities.WeatherStormy
	}
}
