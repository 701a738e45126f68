package model

// Response is the envelope for every JSON reply of the HTTP surface.
type Response struct {
	Data    interface{} `json:"data,omitempty"`
	Error   *string     `json:"error,omitempty"`
	Message string      `json:"message"`
}

func SuccessResponse(data interface{}) Response {
	return Response{Data: data, Message: "Success"}
}

func ErrorResponse(message, errMsg string) Response {
	return Response{Error: &errMsg, Message: message}
}
