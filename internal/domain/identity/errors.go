package identity

import (
	"errors"
	"fmt"
)

// ErrorCode is a gateway failure code, named after the provider's codes.
type ErrorCode string

const (
	CodeEmailAlreadyInUse   ErrorCode = "email-already-in-use"
	CodeInvalidEmail        ErrorCode = "invalid-email"
	CodeWeakPassword        ErrorCode = "weak-password"
	CodeUserNotFound        ErrorCode = "user-not-found"
	CodeWrongPassword       ErrorCode = "wrong-password"
	CodeInvalidCredential   ErrorCode = "invalid-credential"
	CodePopupClosedByUser   ErrorCode = "popup-closed-by-user"
	CodePopupBlocked        ErrorCode = "popup-blocked"
	CodeOperationNotAllowed ErrorCode = "operation-not-allowed"
)

// DefaultMessage is shown for failures without a mapped code.
const DefaultMessage = "Erro ao fazer login. Tente novamente."

var messages = map[ErrorCode]string{
	CodeEmailAlreadyInUse:   "Este e-mail já está cadastrado.",
	CodeInvalidEmail:        "E-mail inválido.",
	CodeWeakPassword:        "A senha deve ter pelo menos 6 caracteres.",
	CodeUserNotFound:        "Usuário não encontrado.",
	CodeWrongPassword:       "Senha incorreta.",
	CodeInvalidCredential:   "Credenciais inválidas.",
	CodePopupClosedByUser:   "Login cancelado pelo usuário",
	CodePopupBlocked:        "Popup bloqueado. Permita popups para este site",
	CodeOperationNotAllowed: "Este método de login não está habilitado.",
}

// GatewayError is a credential failure the user can act on.
type GatewayError struct {
	Code ErrorCode
	Err  error
}

func newError(code ErrorCode, err error) *GatewayError {
	return &GatewayError{Code: code, Err: err}
}

func (e *GatewayError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("identity: %s: %v", e.Code, e.Err)
	}
	return "identity: " + string(e.Code)
}

func (e *GatewayError) Unwrap() error { return e.Err }

// Is matches any GatewayError with the same code, so the sentinels below
// work with errors.Is.
func (e *GatewayError) Is(target error) bool {
	t, ok := target.(*GatewayError)
	return ok && t.Code == e.Code
}

// Message returns the Portuguese text for the code.
func (e *GatewayError) Message() string {
	if m, ok := messages[e.Code]; ok {
		return m
	}
	return DefaultMessage
}

var (
	ErrEmailAlreadyInUse   = &GatewayError{Code: CodeEmailAlreadyInUse}
	ErrInvalidEmail        = &GatewayError{Code: CodeInvalidEmail}
	ErrWeakPassword        = &GatewayError{Code: CodeWeakPassword}
	ErrUserNotFound        = &GatewayError{Code: CodeUserNotFound}
	ErrWrongPassword       = &GatewayError{Code: CodeWrongPassword}
	ErrInvalidCredential   = &GatewayError{Code: CodeInvalidCredential}
	ErrOperationNotAllowed = &GatewayError{Code: CodeOperationNotAllowed}
)

// ErrEmailTaken is returned by AccountRepository.Create on a duplicate email.
var ErrEmailTaken = errors.New("email already registered")

// ErrAccountNotFound is returned by AccountRepository lookups.
var ErrAccountNotFound = errors.New("account not found")

// MessageFor maps any error to the text shown to the user.
func MessageFor(err error) string {
	var gerr *GatewayError
	if errors.As(err, &gerr) {
		return gerr.Message()
	}
	return DefaultMessage
}

// IsGatewayError reports whether err is a user-facing credential failure
// rather than a backend fault.
func IsGatewayError(err error) bool {
	var gerr *GatewayError
	return errors.As(err, &gerr)
}

// clientError maps a failure reported by the browser popup.
func clientError(code string) *GatewayError {
	switch ErrorCode(code) {
	case CodePopupClosedByUser, CodePopupBlocked:
		return newError(ErrorCode(code), nil)
	}
	return newError(CodeInvalidCredential, fmt.Errorf("client reported %q", code))
}
