package models

// Snapshot is the device's current instantaneous reading.
type Snapshot struct {
	Temperature float64 `json:"temperature"` // °C
	Humidity    float64 `json:"humidity"`    // %, 0..100
	SmokeLevel  float64 `json:"smoke_level"` // ppm, >= 0
	FanOn       bool    `json:"fan_on"`
	FanSpeed    float64 `json:"fan_speed"`            // fraction, 0.0..1.0
	WarningOn   bool    `json:"warning_on,omitempty"` // not reported by every deployment
}

// Value returns the reading for m, or 0 for an unknown metric.
func (s Snapshot) Value(m Metric) float64 {
	switch m {
	case MetricTemperature:
		return s.Temperature
	case MetricHumidity:
		return s.Humidity
	case MetricSmokeLevel:
		return s.SmokeLevel
	default:
		return 0
	}
}
