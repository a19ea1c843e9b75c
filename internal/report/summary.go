package report

import (
	"sort"

	"github.com/abelzeko/petrodata/internal/entities"
	"github.com/shopspring/decimal"
)

// NotApplicable is the dominant weather of an empty period.
const NotApplicable = "N/A"

// Summary holds the aggregates of a set of reports. It is always recomputed
// from the reports and never stored.
type Summary struct {
	Records                int     `json:"records"`
	TotalOil               float64 `json:"totalOilBbl"`
	TotalGas               float64 `json:"totalGasMcf"`
	TotalWater             float64 `json:"totalWaterBbl"`
	TotalEmployeesAffected int     `json:"totalEmployeesAffected"`
	ActiveWellCount        int     `json:"activeWells"`
	DominantWeather        string  `json:"dominantWeather"`
}

// PeriodReport is a filtered subset together with its aggregates.
type PeriodReport struct {
	Kind    PeriodKind             `json:"kind"`
	Anchor  entities.Date          `json:"anchor"`
	From    entities.Date          `json:"from"`
	To      entities.Date          `json:"to"`
	Reports []entities.DailyReport `json:"reports"`
	Summary Summary                `json:"summary"`
}

// Build filters reports to the period and summarises the result.
func Build(reports []entities.DailyReport, kind PeriodKind, anchor entities.Date) PeriodReport {
	subset := Filter(reports, kind, anchor)
	from, to := Window(kind, anchor)
	return PeriodReport{
		Kind:    kind,
		Anchor:  anchor,
		From:    from,
		To:      to,
		Reports: subset,
		Summary: Summarize(subset),
	}
}

// Summarize computes every aggregate over reports.
func Summarize(reports []entities.DailyReport) Summary {
	return Summary{
		Records:                len(reports),
		TotalOil:               TotalOil(reports),
		TotalGas:               sum(reports, func(r entities.DailyReport) float64 { return r.GasProducedMcf }),
		TotalWater:             sum(reports, func(r entities.DailyReport) float64 { return r.WaterProducedBbl }),
		TotalEmployeesAffected: TotalEmployeesAffected(reports),
		ActiveWellCount:        ActiveWellCount(reports),
		DominantWeather:        DominantWeather(reports),
	}
}

// TotalOil sums oil production in barrels.
func TotalOil(reports []entities.DailyReport) float64 {
	return sum(reports, func(r entities.DailyReport) float64 { return r.OilProducedBbl })
}

// sum adds in decimal so totals of fractional barrels do not drift.
func sum(reports []entities.DailyReport, value func(entities.DailyReport) float64) float64 {
	total := decimal.Zero
	for _, r := range reports {
		total = total.Add(decimal.NewFromFloat(value(r)))
	}
	return total.InexactFloat64()
}

// TotalEmployeesAffected sums safety incidents.
func TotalEmployeesAffected(reports []entities.DailyReport) int {
	total := 0
	for _, r := range reports {
		total += r.EmployeesAffected
	}
	return total
}

// ActiveWellCount counts distinct well IDs.
func ActiveWellCount(reports []entities.DailyReport) int {
	seen := make(map[string]struct{}, len(reports))
	for _, r := range reports {
		seen[r.WellID] = struct{}{}
	}
	return len(seen)
}

// DominantWeather returns the most frequent weather condition. Ties go to the
// condition declared first in entities.WeatherConditions. Values outside the
// enumeration rank after it, in order of first appearance.
func DominantWeather(reports []entities.DailyReport) string {
	if len(reports) == 0 {
		return NotApplicable
	}

	counts := make(map[entities.WeatherCondition]int)
	order := append([]entities.WeatherCondition(nil), entities.WeatherConditions...)
	for _, r := range reports {
		if _, ok := counts[r.WeatherCondition]; !ok && !r.WeatherCondition.Valid() {
			order = append(order, r.WeatherCondition)
		}
		counts[r.WeatherCondition]++
	}

	best := order[0]
	for _, c := range order[1:] {
		if counts[c] > counts[best] {
			best = c
		}
	}
	return string(best)
}

// Recent returns up to n reports, newest timestamp first. The input is not modified.
func Recent(reports []entities.DailyReport, n int) []entities.DailyReport {
	sorted := make([]entities.DailyReport, len(reports))
	copy(sorted, reports)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp > sorted[j].Timestamp
	})
	if n >= 0 && n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}
