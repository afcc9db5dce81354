package pondwatch

import "time"

// Metric identifies one of the monitored pond metrics.
type Metric string

const (
	MetricTemperature Metric = "temperature"
	MetricPH          Metric = "pH"
	MetricWaterLevel  Metric = "waterLevel"
)

// MetricStatus labels a single metric against its display band.
type MetricStatus string

const (
	StatusLow    MetricStatus = "low"
	StatusNormal MetricStatus = "normal"
	StatusHigh   MetricStatus = "high"
)

// Condition is the aggregate pond condition derived from all metrics.
type Condition string

const (
	ConditionNormal  Condition = "normal"
	ConditionWarning Condition = "warning"
	ConditionDanger  Condition = "danger"
)

// Alert types. PondStatus alerts carry the aggregate condition; the metric
// types carry a single-metric display-band breach.
const (
	AlertTypePondStatus  = "pondStatus"
	AlertTypeTemperature = "temperature"
	AlertTypePH          = "pH"
	AlertTypeWaterLevel  = "waterLevel"
)

// SensorReading is the latest sample pushed by the pond device.
// Water level is in centimeters.
type SensorReading struct {
	Temperature float64   `json:"temperature"` // °C
	PH          float64   `json:"ph"`
	WaterLevel  float64   `json:"water_level"` // cm
	ObservedAt  time.Time `json:"observed_at"`
}

// AlertRecord is a persisted notification entry.
type AlertRecord struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Type      string    `json:"type"` // pondStatus | temperature | pH | waterLevel
	Timestamp string    `json:"timestamp"`
	CreatedAt int64     `json:"created_at"` // epoch ms, sort key
	Expiry    int64     `json:"expiry"`     // epoch ms, CreatedAt + TTL
	IsRead    bool      `json:"is_read"`
	Condition Condition `json:"condition"`
}

// Expired reports whether the record is past its time-to-live.
func (a AlertRecord) Expired(now time.Time) bool {
	return a.Expiry < now.UnixMilli()
}

// ControlState mirrors the actuator/mode document written by the device
// and toggled by operators.
type ControlState struct {
	Mode    bool      `json:"mode"`    // automatic control
	Cutoff  bool      `json:"cutoff"`  // safe mode
	Heater  bool      `json:"heater"`
	Peltier bool      `json:"peltier"` // cooler
	Pump    bool      `json:"pump"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HourlyAverage is one bucket of the aggregated reading history.
type HourlyAverage struct {
	Hour        time.Time `json:"hour"`
	Temperature float64   `json:"temperature"`
	PH          float64   `json:"ph"`
	WaterLevel  float64   `json:"water_level"`
	Samples     int       `json:"samples"`
}

type User struct {
	ID           int    `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"` // don’t expose hash
}
