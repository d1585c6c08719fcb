package auth

import (
	"errors"
	"strings"
)

// ErrorKind classifies a failed sign-in reported by the identity provider.
type ErrorKind string

const (
	InvalidCredentials ErrorKind = "INVALID_CREDENTIALS"
	UserNotFound       ErrorKind = "USER_NOT_FOUND"
	ServerError        ErrorKind = "SERVER_ERROR"
	NetworkError       ErrorKind = "NETWORK_ERROR"
	UnknownError       ErrorKind = "UNKNOWN_ERROR"
)

// SignInError is the user-facing description of a failed sign-in.
type SignInError struct {
	Kind    ErrorKind `json:"type"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
}

// StatusError carries the HTTP status the identity provider answered with.
type StatusError struct {
	Status int
	Err    error
}

func (e *StatusError) Error() string { return e.Err.Error() }
func (e *StatusError) Unwrap() error { return e.Err }

var (
	userNotFoundKeywords = []string{"user not found", "no user"}
	credentialKeywords   = []string{"invalid", "incorrect", "credentials", "not found"}
	networkKeywords      = []string{"network", "fetch", "econnrefused"}
	serverKeywords       = []string{"server", "internal"}
)

// ClassifySignInError maps err onto a SignInError by keyword matching on its
// text. "user not found" is checked before the broader "not found" so that
// missing accounts are not reported as bad passwords.
func ClassifySignInError(err error) SignInError {
	if err == nil {
		return SignInError{Kind: UnknownError}
	}

	raw := err.Error()
	msg := strings.ToLower(raw)
	status := 0
	var se *StatusError
	if errors.As(err, &se) {
		status = se.Status
	}

	switch {
	case containsAny(msg, userNotFoundKeywords):
		return SignInError{
			Kind:    UserNotFound,
			Message: "Usuário não encontrado",
			Details: "Nenhuma conta cadastrada com este email",
		}
	case containsAny(msg, credentialKeywords) || strings.Contains(raw, string(InvalidCredentials)):
		return SignInError{
			Kind:    InvalidCredentials,
			Message: "Email ou senha incorretos",
			Details: "Verifique suas credenciais e tente novamente",
		}
	case containsAny(msg, networkKeywords):
		return SignInError{
			Kind:    NetworkError,
			Message: "Erro de conexão",
			Details: "Verifique sua conexão com a internet e tente novamente",
		}
	case status >= 500 || containsAny(msg, serverKeywords):
		return SignInError{
			Kind:    ServerError,
			Message: "Erro no servidor",
			Details: "Nossos servidores estão temporariamente indisponíveis. Tente novamente em alguns momentos",
		}
	}

	details := msg
	if details == "" {
		details = "Ocorreu um erro inesperado. Tente novamente"
	}
	return SignInError{
		Kind:    UnknownError,
		Message: "Erro ao fazer login",
		Details: details,
	}
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
