package db

import (
	"errors"
	"fmt"
)

// 三类业务错误，controller 用 errors.Is 映射 HTTP 状态码
var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("conflict")
)

// Error is a business failure with a human readable message. Unwrap yields its kind.
type Error struct {
	kind error
	msg  string
}

func (e *Error) Error() string { return e.msg }
func (e *Error) Unwrap() error { return e.kind }

func notFound(msg string) *Error   { return &Error{kind: ErrNotFound, msg: msg} }
func conflict(msg string) *Error   { return &Error{kind: ErrConflict, msg: msg} }
func validation(msg string) *Error { return &Error{kind: ErrValidation, msg: msg} }

// Validationf builds a validation error for callers outside the repo (request parsing).
func Validationf(format string, args ...any) error {
	return validation(fmt.Sprintf(format, args...))
}

var (
	ErrBookNotFound         = notFound("book not found")
	ErrBorrowerNotFound     = notFound("borrower not found")
	ErrRecordNotFound       = notFound("borrow record not found")
	ErrTitleRequired        = validation("title required")
	ErrBookNotAvailable     = conflict("book not available")
	ErrBorrowLimitReached   = conflict("borrow limit reached")
	ErrAlreadyReturned      = conflict("book already returned")
	ErrDuplicateTitle       = conflict("a book with this title already exists")
	ErrBookHasActiveRecords = conflict("cannot delete book with active borrow records")
)
