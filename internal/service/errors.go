package service

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrTemplateNotFound = errors.New("email template not found")
	ErrInvalidAddress   = errors.New("invalid email address")
	ErrNoRecipients     = errors.New("email has no recipients")
	ErrEmailExpired     = errors.New("email expired before delivery")
)
