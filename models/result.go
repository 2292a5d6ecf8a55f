package models

// Result is the uniform outcome of every backend call. Failures are carried
// in Success/Message rather than returned as Go errors.
type Result[T any] struct {
	Success    bool   `json:"success"`
	Message    string `json:"message,omitempty"`
	StatusCode int    `json:"statusCode,omitempty"`
	Data       T      `json:"data,omitempty"`
}

func Ok[T any](data T, message string, status int) Result[T] {
	return Result[T]{Success: true, Data: data, Message: message, StatusCode: status}
}

func Fail[T any](message string, status int) Result[T] {
	return Result[T]{Success: false, Message: message, StatusCode: status}
}
