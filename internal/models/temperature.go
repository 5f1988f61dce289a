package models

import "fmt"

// TemperatureScale selects the unit sensor readings are reported in.
type TemperatureScale int

const (
	Celsius TemperatureScale = iota
	Kelvin
	Fahrenheit
)

// ParseTemperatureScale maps a configuration string to a scale.
func ParseTemperatureScale(s string) (TemperatureScale, error) {
	switch s {
	case "", "celsius", "c":
		return Celsius, nil
	case "kelvin", "k":
		return Kelvin, nil
	case "fahrenheit", "f":
		return Fahrenheit, nil
	default:
		return Celsius, fmt.Errorf("unknown temperature scale %q", s)
	}
}

// FromCelsius converts a Celsius reading into this scale.
func (t TemperatureScale) FromCelsius(c float64) float64 {
	switch t {
	case Kelvin:
		return c + 273.15
	case Fahrenheit:
		return c*1.8 + 32.0
	default:
		return c
	}
}

// Symbol returns the display suffix for the scale.
func (t TemperatureScale) Symbol() string {
	switch t {
	case Kelvin:
		return "K"
	case Fahrenheit:
		return "°F"
	default:
		return "°C"
	}
}
