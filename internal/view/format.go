package view

import (
	"fmt"
	"time"
)

// Layouts for chart labels and table cells.
const (
	TimeLabelLayout = "15:04:05"
	FullDateLayout  = "2006-01-02 15:04:05"
)

func formatValue(v float64) string {
	return fmt.Sprintf("%.1f", v)
}

// fanSpeedPercent converts a 0..1 fraction to a whole percent.
func fanSpeedPercent(fraction float64) string {
	return fmt.Sprintf("%.0f", fraction*100)
}

func fanLabel(on bool) string {
	if on {
		return "ON"
	}
	return "OFF"
}

func inZone(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		return t
	}
	return t.In(loc)
}
