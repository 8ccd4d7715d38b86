package backend

import (
	"errors"
	"fmt"
	"net/http"
)

// User-facing messages, keyed by failure class. The marketplace UI is
// Portuguese; no error codes are exposed to the end user.
const (
	MsgUnauthenticated = "Sessão expirada. Faça login novamente."
	MsgValidation      = "Dados inválidos. Verifique os campos e tente novamente."
	MsgRateLimited     = "Muitas requisições. Aguarde um instante e tente novamente."
	MsgServer          = "Erro no servidor. Tente novamente em alguns instantes."
	MsgUnavailable     = "Não foi possível conectar ao servidor. Verifique sua conexão."
	MsgOperationFailed = "Não foi possível concluir a operação. Tente novamente."
)

// APIError is a normalized failure from the remote marketplace API.
// Message is safe to show to the end user; Detail is for logs only.
type APIError struct {
	Status  int
	Message string
	Detail  string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s (status %d: %s)", e.Message, e.Status, e.Detail)
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
}

// normalizeStatus maps an HTTP error status to a user-facing message.
func normalizeStatus(status int, detail string) *APIError {
	msg := MsgOperationFailed
	switch {
	case status == http.StatusUnauthorized:
		msg = MsgUnauthenticated
	case status == http.StatusUnprocessableEntity:
		msg = MsgValidation
	case status == http.StatusTooManyRequests:
		msg = MsgRateLimited
	case status >= 500:
		msg = MsgServer
	}
	return &APIError{Status: status, Message: msg, Detail: detail}
}

// UserMessage extracts the Portuguese user-facing message from any error
// produced by this package. Transport failures without a response fall back
// to the connectivity message.
func UserMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return MsgUnavailable
}
