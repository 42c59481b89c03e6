package model

import (
	"fmt"
)

// ErrorKind classifies the result of a single management tool invocation
// or of a whole input line.
type ErrorKind int

const (
	Success ErrorKind = iota
	Timeout
	AuthenticationFailed
	HostUnreachable
	ConnectionFailed
	InvalidSlot
	UnexpectedOutput
	GenericCommandError
	UnhandledError
	BadLine
)

var kindNames = [...]string{
	Success:              "success",
	Timeout:              "timeout",
	AuthenticationFailed: "authentication_failed",
	HostUnreachable:      "host_unreachable",
	ConnectionFailed:     "connection_failed",
	InvalidSlot:          "invalid_slot",
	UnexpectedOutput:     "unexpected_output",
	GenericCommandError:  "command_error",
	UnhandledError:       "unhandled_error",
	BadLine:              "bad_line",
}

var kindErrors = [...]error{
	Timeout:              ErrTimeout,
	AuthenticationFailed: ErrAuthentication,
	HostUnreachable:      ErrHostUnreachable,
	ConnectionFailed:     ErrConnection,
	InvalidSlot:          ErrInvalidSlot,
	UnexpectedOutput:     ErrUnexpectedOutput,
	GenericCommandError:  ErrCommand,
	UnhandledError:       ErrUnhandled,
	BadLine:              ErrBadLine,
}

func (k ErrorKind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// Sentinel returns the package level error matching the kind, nil for Success.
func (k ErrorKind) Sentinel() error {
	if k <= Success || int(k) >= len(kindErrors) {
		return nil
	}
	return kindErrors[k]
}

// CommandOutcome is a classified result of one external command.
// Detail holds the raw stdout/stderr/exception text the classification was based on.
type CommandOutcome struct {
	Succeeded bool
	Kind      ErrorKind
	Detail    string
	Stdout    string
}

func Succeeded(stdout string) CommandOutcome {
	return CommandOutcome{Succeeded: true, Kind: Success, Stdout: stdout}
}

func Failed(kind ErrorKind, detail string) CommandOutcome {
	return CommandOutcome{Kind: kind, Detail: detail}
}

// Message is the operator facing text of the outcome.
func (o CommandOutcome) Message() string {
	switch o.Kind {
	case Success:
		return "Password changed successfully"
	case Timeout:
		return "Timeout (command took too long)"
	case AuthenticationFailed:
		return "Authentication failed"
	case HostUnreachable:
		return "Host unreachable or DNS failure"
	case ConnectionFailed:
		return "Connection failed"
	case InvalidSlot:
		return "Invalid user ID (wrong user slot?)"
	case UnexpectedOutput:
		return "Unexpected success output: " + o.Detail
	case GenericCommandError:
		return "IPMI Error: " + o.Detail
	case UnhandledError:
		return "Unhandled error: " + o.Detail
	default:
		return o.Kind.String() + ": " + o.Detail
	}
}

// Err returns nil for a successful outcome, *CommandError otherwise.
func (o CommandOutcome) Err() error {
	if o.Succeeded {
		return nil
	}
	return &CommandError{Kind: o.Kind, Detail: o.Detail, msg: o.Message()}
}

type CommandError struct {
	Kind   ErrorKind
	Detail string
	msg    string
}

func (e *CommandError) Error() string {
	return e.msg
}

func (e *CommandError) Is(target error) bool {
	s := e.Kind.Sentinel()
	return s != nil && s == target
}
