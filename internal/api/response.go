// Package api defines the uniform response envelope shared by all handlers.
package api

import "github.com/gofiber/fiber/v2"

// ErrorBody is the error half of the envelope.
type ErrorBody struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

type successEnvelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

type errorEnvelope struct {
	Success bool      `json:"success"`
	Error   ErrorBody `json:"error"`
}

// Success writes {success: true, data}.
func Success(c *fiber.Ctx, status int, data any) error {
	return c.Status(status).JSON(successEnvelope{Success: true, Data: data})
}

// Fail writes {success: false, error: {message, code, details}}.
func Fail(c *fiber.Ctx, status int, message, code string, details any) error {
	return c.Status(status).JSON(errorEnvelope{
		Error: ErrorBody{Message: message, Code: code, Details: details},
	})
}
