// Package validation checks comment payloads and reports the first broken rule
// with a message suitable for readers of the blog.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	MsgNameRequired = "이름을 입력해 주세요."
	MsgNameTooLong  = "이름은 20자 이내로 입력해 주세요."
	MsgBadRequest   = "올바르지 않은 요청입니다."
	MsgBodyRequired = "댓글을 입력해 주세요."
	MsgBodyHangul   = "한글을 입력해 주세요."
	MsgInvalidURL   = "올바른 URL을 입력해 주세요."
	MsgInvalidEmail = "올바른 이메일을 입력해 주세요."
)

// CommentCreate is the public submission payload. Fields are declared in the
// order their rules are reported.
type CommentCreate struct {
	Name            string `json:"name" validate:"omitempty,min=2,max=20"`
	PostSlug        string `json:"postSlug" validate:"required"`
	Body            string `json:"body" validate:"min=2,hangul"`
	URL             string `json:"url" validate:"omitempty,url"`
	Email           string `json:"email" validate:"omitempty,email"`
	Password        string `json:"password"`
	ParentCommentID string `json:"parentCommentId"`
}

// CommentUpdate is the moderation payload; it replaces name, body and url.
type CommentUpdate struct {
	ID   string `json:"_id" validate:"required"`
	Name string `json:"name" validate:"max=20"`
	Body string `json:"body" validate:"hangul"`
	URL  string `json:"url" validate:"omitempty,url"`
}

var messages = map[string]string{
	"name.min":    MsgNameRequired,
	"name.max":    MsgNameTooLong,
	"postSlug":    MsgBadRequest,
	"body.min":    MsgBodyRequired,
	"body.hangul": MsgBodyHangul,
	"url":         MsgInvalidURL,
	"email":       MsgInvalidEmail,
	"_id":         MsgBadRequest,
}

// Error is the first rule a payload broke.
type Error struct {
	Field   string
	Rule    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("hangul", func(fl validator.FieldLevel) bool {
		return ContainsHangul(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}

func ValidateCreate(in CommentCreate) error {
	return check(in)
}

func ValidateUpdate(in CommentUpdate) error {
	return check(in)
}

func check(payload any) error {
	err := validate.Struct(payload)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &Error{Message: MsgBadRequest}
	}

	first := fieldErrs[0]
	return &Error{
		Field:   first.Field(),
		Rule:    first.Tag(),
		Message: messageFor(first.Field(), first.Tag()),
	}
}

func messageFor(field, rule string) string {
	if msg, ok := messages[field+"."+rule]; ok {
		return msg
	}
	if msg, ok := messages[field]; ok {
		return msg
	}
	return MsgBadRequest
}

// ContainsHangul reports whether s has at least one Hangul syllable or
// Hangul compatibility jamo.
func ContainsHangul(s string) bool {
	for _, r := range s {
		if (r >= 0xAC00 && r <= 0xD7A3) || (r >= 0x3131 && r <= 0x318E) {
			return true
		}
	}
	return false
}
