package models

// MessageResponse — стандартный успешный ответ API.
type MessageResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ErrorResponse — стандартный ответ API с ошибкой.
type ErrorResponse struct {
	Status string      `json:"status"`
	Error  ErrorDetail `json:"error"`
}

// ErrorDetail содержит код и сообщение ошибки.
type ErrorDetail struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// MachineStatusInfo — строка ответа для списка станков: паспортные данные
// плюс текущее состояние цикла.
type MachineStatusInfo struct {
	MachineID      string `json:"machine_id"`
	DisplayName    string `json:"display_name"`
	Classification string `json:"classification"`
	Location       string `json:"location"`
	Phase          Phase  `json:"phase"`
	PartsProduced  int64  `json:"parts_produced"`
}
