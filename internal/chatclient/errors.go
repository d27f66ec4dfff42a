package chatclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"
)

// ErrorKind clasifica cualquier fallo del cliente en un conjunto cerrado.
type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindAuth       ErrorKind = "auth"
	KindNetwork    ErrorKind = "network"
	KindServer     ErrorKind = "server"
	KindCanceled   ErrorKind = "canceled"
)

// Error es la forma normalizada de los errores de transporte y de backend.
type Error struct {
	Kind    ErrorKind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.Status != 0:
		return fmt.Sprintf("%s error (%d): %s", e.Kind, e.Status, e.Message)
	case e.Message != "":
		return fmt.Sprintf("%s error: %s", e.Kind, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
	default:
		return string(e.Kind) + " error"
	}
}

func (e *Error) Unwrap() error { return e.Err }

var (
	ErrEmptyMessage = &Error{Kind: KindValidation, Message: "message text is empty"}
	ErrSendInFlight = errors.New("a message is already being sent")
	ErrNotRetryable = errors.New("message is not a failed user message")
	ErrClosed       = errors.New("chat view is closed")

	errEmptyReply = errors.New("empty reply from character")
)

const (
	msgSendFailed = "Unable to send message. Please try again."
	msgNetwork    = "Unable to connect to the server. Please check your internet connection."
	msgAuth       = "Your session has expired. Please log in again."
	msgLoadFailed = "Failed to load chat history. Starting fresh."
)

// KindOf devuelve la clase de err. Errores ajenos al cliente cuentan como server.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	if errors.Is(err, context.Canceled) {
		return KindCanceled
	}
	return KindServer
}

// IsCanceled informa si err proviene de una cancelacion.
func IsCanceled(err error) bool {
	return KindOf(err) == KindCanceled
}

// UserMessage traduce err al texto del banner. Las cancelaciones no producen texto.
func UserMessage(err error) string {
	switch KindOf(err) {
	case "", KindCanceled:
		return ""
	case KindNetwork:
		return msgNetwork
	case KindAuth:
		return msgAuth
	}
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return msgSendFailed
}

func transportError(ctx context.Context, err error) *Error {
	if errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled) {
		return &Error{Kind: KindCanceled, Err: err}
	}
	return &Error{Kind: KindNetwork, Err: err}
}

func responseError(status int, body []byte) *Error {
	kind := KindServer
	switch {
	case status == http.StatusUnauthorized:
		kind = KindAuth
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		kind = KindValidation
	}
	return &Error{Kind: kind, Status: status, Message: payloadMessage(status, body)}
}

const maxPlainMessage = 200

// payloadMessage extrae un texto legible de {"error": ...}, {"detail": ...},
// un string JSON o un cuerpo de texto plano.
func payloadMessage(status int, body []byte) string {
	body = []byte(strings.TrimSpace(string(body)))
	if len(body) > 0 {
		var obj map[string]any
		if err := json.Unmarshal(body, &obj); err == nil {
			for _, key := range []string{"error", "detail", "message"} {
				if v, ok := obj[key]; ok {
					if msg := flatten(v); msg != "" {
						return msg
					}
				}
			}
			if len(obj) > 0 {
				return string(body)
			}
		}
		var s string
		if err := json.Unmarshal(body, &s); err == nil && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
		if body[0] != '{' && body[0] != '[' && body[0] != '<' {
			return truncateRunes(string(body), maxPlainMessage)
		}
	}
	return http.StatusText(status)
}

// truncateRunes corta s a n runas sin partir un caracter multibyte.
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func flatten(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case nil:
		return ""
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			if s := flatten(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, "; ")
	case map[string]any:
		if msg, ok := t["msg"]; ok {
			return flatten(msg)
		}
		if msg, ok := t["message"]; ok {
			return flatten(msg)
		}
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(raw)
}
