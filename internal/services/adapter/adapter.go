package adapter

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/iwtcode/cncSimulator/internal/domain/entities"
	"github.com/iwtcode/cncSimulator/internal/domain/models"
	"github.com/iwtcode/cncSimulator/pkg/errors"
)

// FormatAdapter преобразует показание датчика в одно или несколько
// сообщений проводного формата выбранной схемы. Без состояния.
type FormatAdapter struct {
	schema string
}

// NewFormatAdapter создает адаптер для одной из схем:
// models.SchemaISA95 или models.SchemaFlat.
func NewFormatAdapter(schema string) *FormatAdapter {
	return &FormatAdapter{schema: schema}
}

// Schema возвращает активную схему адаптера.
func (a *FormatAdapter) Schema() string { return a.schema }

// isa95Payload — богатый payload иерархической схемы: значение с полными
// метаданными в каждом сообщении.
type isa95Payload struct {
	Value       interface{}            `json:"value"`
	TimestampMs int64                  `json:"timestamp_ms"`
	Unit        string                 `json:"unit,omitempty"`
	Quality     string                 `json:"quality"`
	Phase       string                 `json:"phase,omitempty"`
	Meta        map[string]interface{} `json:"meta,omitempty"`
}

// flatPayload — минимальный payload компактной схемы.
type flatPayload struct {
	Value       interface{} `json:"value"`
	TimestampMs int64       `json:"timestamp_ms"`
}

// flatMetaPayload — внеполосные метаданные компактной схемы, публикуются
// отдельным сообщением только при деградации качества.
type flatMetaPayload struct {
	Unit        string `json:"unit,omitempty"`
	Quality     string `json:"quality"`
	TimestampMs int64  `json:"timestamp_ms"`
}

// Adapt превращает показание в сообщения проводного формата. Сообщение,
// не прошедшее проверку, не публикуется: возвращается ValidationError,
// вызывающая сторона учитывает его в метриках.
func (a *FormatAdapter) Adapt(profile *entities.MachineProfile, reading models.SensorReading) ([]models.WireMessage, error) {
	if err := a.validate(profile, reading); err != nil {
		return nil, err
	}

	tsMs := reading.Timestamp.UnixMilli()

	switch a.schema {
	case models.SchemaFlat:
		address := a.flatAddress(profile, reading.Key)
		payload, err := json.Marshal(flatPayload{Value: reading.Value, TimestampMs: tsMs})
		if err != nil {
			return nil, &errors.ValidationError{SensorKey: reading.Key, Reason: "payload is not serializable: " + err.Error()}
		}
		msgs := []models.WireMessage{{Address: address, Payload: payload, Schema: a.schema}}

		// Метаданные уходят внеполосно, и только когда качество деградировало.
		if reading.Quality != models.QualityGood {
			metaPayload, err := json.Marshal(flatMetaPayload{Unit: reading.Unit, Quality: reading.Quality, TimestampMs: tsMs})
			if err == nil {
				msgs = append(msgs, models.WireMessage{Address: address + ".meta", Payload: metaPayload, Schema: a.schema})
			}
		}
		return msgs, nil

	default: // models.SchemaISA95
		phase := ""
		if p, ok := reading.Meta["phase"].(string); ok {
			phase = p
		}
		payload, err := json.Marshal(isa95Payload{
			Value:       reading.Value,
			TimestampMs: tsMs,
			Unit:        reading.Unit,
			Quality:     reading.Quality,
			Phase:       phase,
			Meta:        reading.Meta,
		})
		if err != nil {
			return nil, &errors.ValidationError{SensorKey: reading.Key, Reason: "payload is not serializable: " + err.Error()}
		}
		return []models.WireMessage{{Address: a.isa95Address(profile, reading.Key), Payload: payload, Schema: a.schema}}, nil
	}
}

// isa95Address строит иерархический адрес: сегменты расположения, id станка,
// контрактный сегмент _historian и ключ датчика в snake_case.
func (a *FormatAdapter) isa95Address(profile *entities.MachineProfile, key string) string {
	segments := []string{
		"umh", "v1",
		profile.Enterprise, profile.Site, profile.Area, profile.WorkCell,
		profile.MachineID, "_historian", toSnake(key),
	}
	return strings.Join(segments, "/")
}

// flatAddress строит компактный точечный адрес с ключом датчика через дефис.
func (a *FormatAdapter) flatAddress(profile *entities.MachineProfile, key string) string {
	segments := []string{
		profile.Enterprise, profile.Site, profile.Area, profile.WorkCell,
		profile.MachineID, toHyphen(key),
	}
	return strings.Join(segments, ".")
}

// validate отклоняет показание без значения, с неконечной временной меткой
// или с пустыми идентификационными полями.
func (a *FormatAdapter) validate(profile *entities.MachineProfile, reading models.SensorReading) error {
	if reading.Value == nil {
		return &errors.ValidationError{SensorKey: reading.Key, Reason: "value is missing"}
	}
	if v, ok := reading.Value.(float64); ok && (math.IsNaN(v) || math.IsInf(v, 0)) {
		return &errors.ValidationError{SensorKey: reading.Key, Reason: "value is not a finite number"}
	}
	if reading.Timestamp.IsZero() {
		return &errors.ValidationError{SensorKey: reading.Key, Reason: "timestamp is missing"}
	}
	if reading.Key == "" {
		return &errors.ValidationError{SensorKey: reading.Key, Reason: "sensor key is empty"}
	}
	for _, seg := range profile.LocationPath() {
		if seg == "" {
			return &errors.ValidationError{SensorKey: reading.Key, Reason: "location path segment is empty"}
		}
	}
	if profile.MachineID == "" {
		return &errors.ValidationError{SensorKey: reading.Key, Reason: "machine id is empty"}
	}
	return nil
}

func toSnake(key string) string  { return strings.ReplaceAll(key, "-", "_") }
func toHyphen(key string) string { return strings.ReplaceAll(key, "_", "-") }
