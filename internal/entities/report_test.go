package entities

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validReport() DailyReport {
	return DailyReport{
		ID:               "East Mesa-W-1001-2024-03-01",
		Date:             NewDate(2024, time.March, 1),
		FieldName:        "East Mesa",
		WellID:           "W-1001",
		OilProducedBbl:   1200.5,
		GasProducedMcf:   1100,
		WaterProducedBbl: 700,
		WeatherCondition: WeatherSunny,
	}
}

func TestReportID(t *testing.T) {
	id := ReportID("East Mesa", "W-1001", NewDate(2024, time.March, 1))
	assert.Equal(t, "East Mesa-W-1001-2024-03-01", id)
	assert.Equal(t, id, validReport().Key().String())
}

func TestValidate(t *testing.T) {
	require.NoError(t, validReport().Validate())

	t.Run("missing well", func(t *testing.T) {
		r := validReport()
		r.WellID = "  "
		assert.ErrorIs(t, r.Validate(), ErrMissingIdentity)
	})

	t.Run("missing date", func(t *testing.T) {
		r := validReport()
		r.Date = Date{}
		assert.ErrorIs(t, r.Validate(), ErrMissingIdentity)
	})

	t.Run("negative oil", func(t *testing.T) {
		r := validReport()
		r.OilProducedBbl = -1
		assert.ErrorIs(t, r.Validate(), ErrNegativeQuantity)
	})

	t.Run("negative employees", func(t *testing.T) {
		r := validReport()
		r.EmployeesAffected = -2
		assert.ErrorIs(t, r.Validate(), ErrNegativeQuantity)
	})

	t.Run("unknown weather", func(t *testing.T) {
		r := validReport()
		r.WeatherCondition = "Foggy"
		assert.ErrorIs(t, r.Validate(), ErrInvalidWeather)
	})
}

func TestParseWeatherCondition(t *testing.T) {
	w, err := ParseWeatherCondition("stormy")
	require.NoError(t, err)
	assert.Equal(t, WeatherStormy, w)

	_, err = ParseWeatherCondition("Hail")
	assert.ErrorIs(t, err, ErrInvalidWeather)
}

func TestDate(t *testing.T) {
	t.Run("parse plain date", func(t *testing.T) {
		d, err := ParseDate("2024-03-01")
		require.NoError(t, err)
		assert.Equal(t, "2024-03-01", d.String())
	})

	t.Run("parse instant strips time", func(t *testing.T) {
		d, err := ParseDate("2024-03-01T17:45:00Z")
		require.NoError(t, err)
		assert.True(t, d.Equal(NewDate(2024, time.March, 1)))
	})

	t.Run("reject garbage", func(t *testing.T) {
		_, err := ParseDate("01/03/2024")
		assert.Error(t, err)
	})

	t.Run("add days across month", func(t *testing.T) {
		assert.Equal(t, "2024-02-24", NewDate(2024, time.March, 1).AddDays(-6).String())
	})
}

func TestDailyReportJSON(t *testing.T) {
	data, err := json.Marshal(validReport())
	require.NoError(t, err)
	assert.Contains(t, string(data), `"date":"2024-03-01"`)
	assert.Contains(t, string(data), `"wellId":"W-1001"`)

	var decoded DailyReport
	require.NoError(t, json.Unmarshal([]byte(`{"id":"x","date":"2024-03-02","fieldName":"North Unit","wellId":"W-2","weatherCondition":"Rainy","timestamp":1709337600000}`), &decoded))
	assert.Equal(t, NewDate(2024, time.March, 2), decoded.Date)
	assert.Equal(t, WeatherRainy, decoded.WeatherCondition)
	assert.Equal(t, int64(1709337600000), decoded.Timestamp)
}
