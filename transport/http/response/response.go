package response

import (
	"encoding/json"
	"net/http"

	"karaoke/shared/constant"
	"karaoke/shared/failure"
	"karaoke/shared/logger"
)

type Data[T any] struct {
	Success bool   `json:"success"`
	Data    *T     `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Meta    any    `json:"meta,omitempty"`
}

type Error struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Kind    string `json:"kind"`
}

type Message struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// WithMessage sends a response with a simple text message
func WithMessage(writer http.ResponseWriter, code int, message string) {
	response(writer, code, Message{Success: code < http.StatusBadRequest, Message: message})
}

// WithJSON sends a response containing a JSON object
func WithJSON(writer http.ResponseWriter, code int, jsonPayload any) {
	response(writer, code, Data[any]{Success: true, Data: &jsonPayload})
}

// WithData sends a JSON object together with a message
func WithData(writer http.ResponseWriter, code int, message string, jsonPayload any) {
	response(writer, code, Data[any]{Success: true, Data: &jsonPayload, Message: message})
}

// WithMeta sends a JSON object with its listing metadata next to it
func WithMeta(writer http.ResponseWriter, code int, jsonPayload, meta any) {
	response(writer, code, Data[any]{Success: true, Data: &jsonPayload, Meta: meta})
}

// WithError sends a response with an error message. Server side failures
// never leak their cause to the client.
func WithError(writer http.ResponseWriter, err error) {
	code := failure.GetCode(err)

	message := failure.MessageOf(err)
	if code >= http.StatusInternalServerError {
		message = constant.ResponseErrorInternal
	}

	response(writer, code, Error{Message: message, Kind: string(failure.KindOf(err))})
}

// WithRequestLimitExceeded sends a default response for when the request limit is exceeded
func WithRequestLimitExceeded(writer http.ResponseWriter) {
	WithMessage(writer, http.StatusTooManyRequests, constant.ResponseErrorRequestLimitExceeded)
}

// WithPreparingShutdown sends a default response for when the server is preparing to shut down
func WithPreparingShutdown(writer http.ResponseWriter) {
	WithMessage(writer, http.StatusServiceUnavailable, constant.ResponseErrorPrepareShutdown)
}

// WithUnhealthy sends a default response for when the server is unhealthy
func WithUnhealthy(writer http.ResponseWriter) {
	WithMessage(writer, http.StatusServiceUnavailable, constant.ResponseErrorUnhealthy)
}

func response(writer http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		logger.ErrorWithStack(err)

		return
	}

	writer.Header().Set(constant.RequestHeaderContentType, constant.ContentTypeJSON)
	writer.WriteHeader(code)
	_, err = writer.Write(response)

	if err != nil {
		logger.ErrorWithStack(err)
	}
}
