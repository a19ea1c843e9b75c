package entities

import (
	"fmt"
	"strings"
)

// WeatherCondition is the areawide weather recorded with a report
type WeatherCondition string

const (
	WeatherSunny  WeatherCondition = "Sunny"
	WeatherCloudy WeatherCondition = "Cloudy"
	WeatherRainy  WeatherCondition = "Rainy"
	WeatherStormy WeatherCondition = "Stormy"
	WeatherSnowy  WeatherCondition = "Snowy"
	WeatherWindy  WeatherCondition = "Windy"
	WeatherClear  WeatherCondition = "Clear"
)

// WeatherConditions lists the closed enumeration in declaration order.
var WeatherConditions = []WeatherCondition{
	WeatherSunny,
	WeatherCloudy,
	WeatherRainy,
	WeatherStormy,
	WeatherSnowy,
	WeatherWindy,
	WeatherClear,
}

// Valid reports whether w belongs to the enumeration.
func (w WeatherCondition) Valid() bool {
	for _, c := range WeatherConditions {
		if w == c {
			return true
		}
	}
	return false
}

// ParseWeatherCondition matches s case-insensitively against the enumeration.
func ParseWeatherCondition(s string) (WeatherCondition, error) {
	s = strings.TrimSpace(s)
	for _, c := range WeatherConditions {
		if strings.EqualFold(s, string(c)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidWeather, s)
}
