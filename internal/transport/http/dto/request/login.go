package request

type LoginRequest struct {
	Secret string `json:"secret" validate:"required"`
}

type NotifyRequest struct {
	Event   string      `json:"event" validate:"required"`
	Payload interface{} `json:"payload"`
}
