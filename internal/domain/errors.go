package domain

import (
	"errors"
	"fmt"
)

// ErrorKind 错误分类（前端按 kind 做分支处理，message 仅用于展示）
type ErrorKind string

const (
	ErrInvalidBloodType   ErrorKind = "InvalidBloodType"
	ErrInvalidInput       ErrorKind = "InvalidInput"
	ErrDonorNotFound      ErrorKind = "DonorNotFound"
	ErrBloodGroupMismatch ErrorKind = "BloodGroupMismatch"
	ErrDonationTooSoon    ErrorKind = "DonationTooSoon"
	ErrInvalidTransition  ErrorKind = "InvalidTransition"
	ErrPersistence        ErrorKind = "PersistenceError"
	ErrUnauthorized       ErrorKind = "Unauthorized"
	ErrEmailTaken         ErrorKind = "EmailTaken"
	ErrNotFound           ErrorKind = "NotFound"
)

// Error 领域错误：机器可读 kind + 人类可读 message
type Error struct {
	Kind    ErrorKind
	Message string

	// RemainingDays is only set for DonationTooSoon.
	RemainingDays int
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func NewError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// TooSoon 构建 DonationTooSoon 错误（携带剩余等待天数）
func TooSoon(remaining int) *Error {
	return &Error{
		Kind:          ErrDonationTooSoon,
		Message:       fmt.Sprintf("donor must wait %d more days before next donation (minimum %d days between donations)", remaining, MinDonationIntervalDays),
		RemainingDays: remaining,
	}
}

// KindOf 提取错误分类；非领域错误一律归为 PersistenceError
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ErrPersistence
}
