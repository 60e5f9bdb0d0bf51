package gateway

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"joyeria_admin/internal/apperr"
)

// Error décrit une réponse non-2xx de l'API distante
type Error struct {
	Op      string
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return fmt.Sprintf("%s: HTTP %d: %s", e.Op, e.Status, e.Message)
}

func statusError(op string, status int, body []byte) error {
	msg := extractMessage(body)
	if msg == "" {
		msg = http.StatusText(status)
	}
	gwErr := &Error{Op: op, Status: status, Message: msg}

	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &apperr.AppError{Kind: apperr.Unauthorized, PublicMsg: msg, Err: gwErr}
	case http.StatusNotFound:
		return &apperr.AppError{Kind: apperr.NotFound, PublicMsg: msg, Err: gwErr}
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return &apperr.AppError{Kind: apperr.Invalid, PublicMsg: msg, Err: gwErr}
	case http.StatusConflict:
		return &apperr.AppError{Kind: apperr.Conflict, PublicMsg: msg, Err: gwErr}
	default:
		return &apperr.AppError{Kind: apperr.Internal, PublicMsg: "Le serveur de la boutique a renvoyé une erreur.", Err: gwErr}
	}
}

func transportError(op string, err error) error {
	return &apperr.AppError{
		Kind:      apperr.Internal,
		PublicMsg: "Impossible de joindre le serveur de la boutique.",
		Err:       fmt.Errorf("%s: %w", op, err),
	}
}

// extractMessage lit {"error": "..."} ou {"message": "..."} ; sinon le corps brut tronqué
func extractMessage(body []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &payload) == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	return truncate(strings.TrimSpace(string(body)), maxMessageLen)
}

const maxMessageLen = 200

// truncate coupe s à n octets au plus sans couper un caractère UTF-8
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
