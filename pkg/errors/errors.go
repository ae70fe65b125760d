package errors

import (
	"errors"
	"fmt"
)

const (
	InternalServerError = "internal server error"
	BadRequest          = "bad request"
	NotFound            = "not_found"
	Conflict            = "conflict"

	InvalidDataCode         = 402
	ConflictErrorCode       = 409
	InternalServerErrorCode = 500
	NotFoundErrorCode       = 404
)

// Ошибки жизненного цикла симуляции. Возвращаются сразу, без повторов.
var (
	ErrAlreadyRunning = errors.New("simulation is already running")
	ErrNotRunning     = errors.New("simulation is not running")
)

var (
	ErrDataNotFound = errors.New("data not found")
	ErrInternal     = errors.New("internal error")
)

// ConnectionError означает, что первичная проверка соединения с приёмником
// провалилась. Фатальна для запуска симуляции и не повторяется ядром.
type ConnectionError struct {
	Broker string
	Err    error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("failed to connect to sink '%s': %v", e.Broker, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// DeliveryError означает, что доставка сообщения не удалась после исчерпания
// всех повторных попыток. Содержит адрес назначения и последнюю причину.
type DeliveryError struct {
	Destination string
	Attempts    int
	Err         error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("delivery to '%s' failed after %d attempt(s): %v", e.Destination, e.Attempts, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// ValidationError означает, что сформированное сообщение не прошло проверку
// перед публикацией. Такое сообщение отбрасывается и учитывается в метриках,
// повторная отправка не выполняется.
type ValidationError struct {
	SensorKey string
	Reason    string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid message for sensor '%s': %s", e.SensorKey, e.Reason)
}

// AppError представляет собой стандартизированную структуру ошибки для API.
type AppError struct {
	Code         int    `json:"code"`    // HTTP статус код
	Message      string `json:"message"` // Сообщение для клиента
	Err          error  `json:"-"`       // Внутренняя ошибка, не для клиента
	IsUserFacing bool   `json:"-"`       // Флаг, указывающий, можно ли показывать `Err`
}

func (a *AppError) Error() string {
	if a == nil {
		return ""
	}
	if a.Err != nil {
		return fmt.Sprintf("%s (code: %d): %v", a.Message, a.Code, a.Err)
	}
	return fmt.Sprintf("%s (code: %d)", a.Message, a.Code)
}

// NewAppError создает новый экземпляр AppError.
func NewAppError(httpCode int, message string, err error, isUserFacing bool) *AppError {
	return &AppError{
		Code:         httpCode,
		Message:      message,
		Err:          err,
		IsUserFacing: isUserFacing,
	}
}
