package models

// Metric names one of the device's numeric channels.
type Metric string

const (
	MetricTemperature Metric = "temperature"
	MetricHumidity    Metric = "humidity"
	MetricSmokeLevel  Metric = "smoke_level"
)

// Metrics lists every numeric channel in display order.
var Metrics = []Metric{MetricTemperature, MetricHumidity, MetricSmokeLevel}

// Unit returns the display unit of m.
func (m Metric) Unit() string {
	switch m {
	case MetricTemperature:
		return "°C"
	case MetricHumidity:
		return "%"
	case MetricSmokeLevel:
		return "ppm"
	default:
		return ""
	}
}

// Label returns a human-readable name for m.
func (m Metric) Label() string {
	switch m {
	case MetricTemperature:
		return "Temperature"
	case MetricHumidity:
		return "Humidity"
	case MetricSmokeLevel:
		return "Smoke"
	default:
		return string(m)
	}
}
