package service

import "pondwatch"

// The pond is judged against two distinct ranges per metric. The display
// band drives the low/normal/high label shown next to a metric; the wider
// safety band drives the danger condition. Violating only the display band
// yields warning. Water level is in centimeters throughout.

// Band is a closed value range.
type Band struct {
	Min float64
	Max float64
}

// Contains reports whether v lies inside the band (inclusive).
func (b Band) Contains(v float64) bool {
	return v >= b.Min && v <= b.Max
}

// MetricBands pairs the tight display band with the wider safety band.
type MetricBands struct {
	Display Band
	Safety  Band
}

// Bands is the central threshold table for all three metrics.
type Bands struct {
	Temperature MetricBands
	PH          MetricBands
	WaterLevel  MetricBands
}

// DefaultBands returns the canonical threshold table.
func DefaultBands() Bands {
	return Bands{
		Temperature: MetricBands{
			Display: Band{Min: 24, Max: 31},
			Safety:  Band{Min: 15, Max: 35},
		},
		PH: MetricBands{
			Display: Band{Min: 6, Max: 8},
			Safety:  Band{Min: 5.5, Max: 8.5},
		},
		WaterLevel: MetricBands{
			Display: Band{Min: 5, Max: 30},
			Safety:  Band{Min: 5, Max: 55},
		},
	}
}

func (b Bands) forMetric(m pondwatch.Metric) (MetricBands, bool) {
	switch m {
	case pondwatch.MetricTemperature:
		return b.Temperature, true
	case pondwatch.MetricPH:
		return b.PH, true
	case pondwatch.MetricWaterLevel:
		return b.WaterLevel, true
	default:
		return MetricBands{}, false
	}
}

// StatusOf labels a value against the metric's display band.
// Unknown metrics read as normal rather than failing; the evaluator is
// advisory and must never abort a render.
func (b Bands) StatusOf(m pondwatch.Metric, value float64) pondwatch.MetricStatus {
	mb, ok := b.forMetric(m)
	if !ok {
		return pondwatch.StatusNormal
	}
	switch {
	case value < mb.Display.Min:
		return pondwatch.StatusLow
	case value > mb.Display.Max:
		return pondwatch.StatusHigh
	default:
		return pondwatch.StatusNormal
	}
}

// AggregateCondition derives the overall pond condition: danger if any
// metric breaks its safety band, warning if any metric leaves its display
// band, otherwise normal.
func (b Bands) AggregateCondition(temp, ph, waterLevel float64) pondwatch.Condition {
	if !b.Temperature.Safety.Contains(temp) ||
		!b.PH.Safety.Contains(ph) ||
		!b.WaterLevel.Safety.Contains(waterLevel) {
		return pondwatch.ConditionDanger
	}
	if !b.Temperature.Display.Contains(temp) ||
		!b.PH.Display.Contains(ph) ||
		!b.WaterLevel.Display.Contains(waterLevel) {
		return pondwatch.ConditionWarning
	}
	return pondwatch.ConditionNormal
}

// ConditionFor evaluates a full reading.
func (b Bands) ConditionFor(r pondwatch.SensorReading) pondwatch.Condition {
	return b.AggregateCondition(r.Temperature, r.PH, r.WaterLevel)
}
