package models

// Целевая схема проводного формата исходящих сообщений.
const (
	SchemaISA95 = "isa95" // иерархический адрес, богатый payload
	SchemaFlat  = "flat"  // компактный точечный адрес, {value, timestamp_ms}
	SchemaBoth  = "both"  // публикация в обеих схемах одновременно
)

// WireMessage — готовое к публикации сообщение: адрес назначения
// (иерархический путь или точечный ключ) и сериализованный payload.
// Потребляется публикатором и далее не хранится.
type WireMessage struct {
	Address string `json:"address"`
	Payload []byte `json:"payload"`
	Schema  string `json:"schema"`
}
