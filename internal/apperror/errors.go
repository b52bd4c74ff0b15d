package apperror

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindValidation Kind = "validation"
	KindNotFound   Kind = "not_found"
	KindConflict   Kind = "conflict"
	KindStore      Kind = "store"
)

// Conflict codes returned to channels.
const (
	CodeSlotBooked  = "SLOT_BOOKED"
	CodeSlotLocked  = "SLOT_LOCKED"
	CodeSlotBlocked = "SLOT_BLOCKED"
)

type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

func NotFound(msg string, err error) *Error {
	return &Error{Kind: KindNotFound, Message: msg, Err: err}
}

func Conflict(code, msg string) *Error {
	return &Error{Kind: KindConflict, Code: code, Message: msg}
}

func Store(msg string, err error) *Error {
	return &Error{Kind: KindStore, Message: msg, Err: err}
}

func SlotBooked() *Error {
	return Conflict(CodeSlotBooked, "sold out")
}

func SlotLocked() *Error {
	return Conflict(CodeSlotLocked, "held by another channel")
}

func SlotBlocked() *Error {
	return Conflict(CodeSlotBlocked, "slot is blocked")
}

// KindOf reports the kind of err, treating unknown errors as store failures.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindStore
}

func CodeOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

func IsNotFound(err error) bool {
	return err != nil && KindOf(err) == KindNotFound
}

func IsConflict(err error) bool {
	return err != nil && KindOf(err) == KindConflict
}

func IsValidation(err error) bool {
	return err != nil && KindOf(err) == KindValidation
}
