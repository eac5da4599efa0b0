// Package threshold maps metric readings to presentation severity tiers.
package threshold

import "workshop_monitor/internal/models"

// Tier is the severity class of a single reading.
type Tier string

const (
	TierUnknown  Tier = ""
	TierLow      Tier = "LOW"
	TierNormal   Tier = "NORMAL"
	TierHigh     Tier = "HIGH"
	TierWarning  Tier = "WARNING"
	TierCritical Tier = "CRITICAL"
)

// BandKind selects how a Band's bounds are read.
type BandKind int

const (
	// Range classifies below Lower as Low and above Upper as High.
	Range BandKind = iota
	// Severity classifies below Lower as Normal, below Upper as Warning,
	// and anything else as Critical.
	Severity
)

// Band holds the bounds for one metric.
type Band struct {
	Kind  BandKind
	Lower float64
	Upper float64
}

// Classify returns the tier of v within b.
func (b Band) Classify(v float64) Tier {
	switch b.Kind {
	case Severity:
		switch {
		case v < b.Lower:
			return TierNormal
		case v < b.Upper:
			return TierWarning
		default:
			return TierCritical
		}
	default:
		switch {
		case v < b.Lower:
			return TierLow
		case v > b.Upper:
			return TierHigh
		default:
			return TierNormal
		}
	}
}

// DefaultBands are the stock workshop thresholds.
var DefaultBands = map[models.Metric]Band{
	models.MetricTemperature: {Kind: Range, Lower: 18, Upper: 28},
	models.MetricHumidity:    {Kind: Range, Lower: 30, Upper: 70},
	models.MetricSmokeLevel:  {Kind: Severity, Lower: 50, Upper: 100},
}

// Classifier classifies readings against a fixed set of bands.
type Classifier struct {
	bands map[models.Metric]Band
}

// NewClassifier returns a Classifier using DefaultBands with overrides applied.
func NewClassifier(overrides map[models.Metric]Band) Classifier {
	bands := make(map[models.Metric]Band, len(DefaultBands))
	for m, b := range DefaultBands {
		bands[m] = b
	}
	for m, b := range overrides {
		bands[m] = b
	}
	return Classifier{bands: bands}
}

// Classify returns the tier of value for metric, or TierUnknown when the
// metric has no band.
func (c Classifier) Classify(metric models.Metric, value float64) Tier {
	bands := c.bands
	if bands == nil {
		bands = DefaultBands
	}
	b, ok := bands[metric]
	if !ok {
		return TierUnknown
	}
	return b.Classify(value)
}

// Band returns the band configured for metric.
func (c Classifier) Band(metric models.Metric) (Band, bool) {
	bands := c.bands
	if bands == nil {
		bands = DefaultBands
	}
	b, ok := bands[metric]
	return b, ok
}

// Classify classifies value with DefaultBands.
func Classify(metric models.Metric, value float64) Tier {
	return Classifier{}.Classify(metric, value)
}
