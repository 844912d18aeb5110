package service

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindValidation Kind = iota + 1
	KindUnauthorized
)

// Error is a client-facing failure. Message is safe to show; Err is the cause
// kept for logs.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func ValidationError(message string, cause error) *Error {
	return &Error{Kind: KindValidation, Message: message, Err: cause}
}

func UnauthorizedError(message string, cause error) *Error {
	return &Error{Kind: KindUnauthorized, Message: message, Err: cause}
}

// AsError unwraps err into a service error when it is one.
func AsError(err error) (*Error, bool) {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr, true
	}
	return nil, false
}

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("forbidden")
)

const (
	MsgInvalidCredentials = "Invalid name or password"
	MsgCredentialsMissing = "이름과 비밀번호를 입력해 주세요."
	MsgNameTaken          = "이미 사용 중인 이름입니다."
	MsgModerationDenied   = "잘못된 요청입니다."
	MsgUnauthorized       = "Unauthorized"
)
