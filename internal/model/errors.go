package model

import (
	"errors"
)

var (
	ErrTimeout          = errors.New("command timed out")
	ErrAuthentication   = errors.New("authentication failed")
	ErrHostUnreachable  = errors.New("host unreachable")
	ErrConnection       = errors.New("connection failed")
	ErrInvalidSlot      = errors.New("invalid user slot")
	ErrUnexpectedOutput = errors.New("unexpected output")
	ErrCommand          = errors.New("command error")
	ErrUnhandled        = errors.New("unhandled error")
	ErrBadLine          = errors.New("bad line")

	ErrNoOutput  = errors.New("no output from ipmitool")
	ErrNoAccount = errors.New("no account and no free slot")
)
