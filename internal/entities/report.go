// Package entities contains the core domain objects for the petrodata application
package entities

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingIdentity is returned when date, field name or well ID is absent.
	ErrMissingIdentity = errors.New("Date, Field Name, and Well ID are required.")
	// ErrNegativeQuantity is returned when a production or safety figure is below zero.
	ErrNegativeQuantity = errors.New("quantities must not be negative")
	// ErrInvalidWeather is returned for a weather value outside the fixed enumeration.
	ErrInvalidWeather = errors.New("invalid weather condition")
)

// DailyReport is one observation for one well on one calendar day
type DailyReport struct {
	ID                string           `json:"id"`
	Date              Date             `json:"date"`
	FieldName         string           `json:"fieldName"`
	WellID            string           `json:"wellId"`
	OilProducedBbl    float64          `json:"oilProducedBbl"`
	GasProducedMcf    float64          `json:"gasProducedMcf"`
	WaterProducedBbl  float64          `json:"waterProducedBbl"`
	EmployeesAffected int              `json:"employeesAffected"` // Safety incident count
	WeatherCondition  WeatherCondition `json:"weatherCondition"`
	Notes             string           `json:"notes"`
	Timestamp         int64            `json:"timestamp"` // Epoch millis, used for recency only
}

// Key is the identity triple of a report. At most one report exists per key.
type Key struct {
	FieldName string
	WellID    string
	Date      string
}

// String renders the key in the same shape as ReportID.
func (k Key) String() string {
	return k.FieldName + "-" + k.WellID + "-" + k.Date
}

// Key returns the identity triple of the report
func (r DailyReport) Key() Key {
	return Key{FieldName: r.FieldName, WellID: r.WellID, Date: r.Date.String()}
}

// ReportID derives the deterministic report ID from its identity fields.
func ReportID(fieldName, wellID string, date Date) string {
	return Key{FieldName: fieldName, WellID: wellID, Date: date.String()}.String()
}

// Validate checks the data model invariants.
func (r DailyReport) Validate() error {
	if r.Date.IsZero() || strings.TrimSpace(r.FieldName) == "" || strings.TrimSpace(r.WellID) == "" {
		return ErrMissingIdentity
	}
	if r.OilProducedBbl < 0 || r.GasProducedMcf < 0 || r.WaterProducedBbl < 0 || r.EmployeesAffected < 0 {
		return fmt.Errorf("%w: well %s on %s", ErrNegativeQuantity, r.WellID, r.Date)
	}
	if !r.WeatherCondition.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidWeather, r.WeatherCondition)
	}
	return nil
}
