package models

import "time"

// Грубая классификация достоверности синтезированного значения.
const (
	QualityGood      = "good"
	QualityUncertain = "uncertain"
	QualityBad       = "bad"
)

// SensorReading — одно значение датчика, синтезированное на такте.
// Живет в пределах такта: после форматирования не сохраняется.
type SensorReading struct {
	Key       string                 `json:"key"`
	Value     interface{}            `json:"value"` // число, строка или bool
	Quality   string                 `json:"quality"`
	Unit      string                 `json:"unit,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Meta      map[string]interface{} `json:"meta,omitempty"` // фаза, пороги и пр.
}
