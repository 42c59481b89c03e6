package model

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
)

type ValidationErrDetail struct {
	Path    string // tool.max_concurrent
	Code    string // validator tag: required | min | max | numeric ...
	Message string // Human text
	Value   any
}

func (d ValidationErrDetail) Attr(name string) slog.Attr {
	return slog.GroupAttrs(
		name,
		slog.String("code", d.Code),
		slog.String("path", d.Path),
		slog.String("message", d.Message),
	)
}

func (d ValidationErrDetail) String() string {
	return d.Path + ": " + d.Message
}

// ValidationErrDetails turns an error returned by Config.Validate into a list
// of human readable details. Errors of other types produce a single detail.
func ValidationErrDetails(err error) []ValidationErrDetail {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []ValidationErrDetail{{Code: "invalid", Message: err.Error()}}
	}

	out := make([]ValidationErrDetail, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, ValidationErrDetail{
			Path:    normalizePath(fe.Namespace()),
			Code:    fe.Tag(),
			Message: humanize(fe),
			Value:   fe.Value(),
		})
	}
	return out
}

// normalizePath strips the root struct name: Config.tool.timeout -> tool.timeout
func normalizePath(ns string) string {
	_, after, ok := strings.Cut(ns, ".")
	if !ok {
		return ns
	}
	return after
}

func humanize(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "missing required value"
	case "min":
		return fmt.Sprintf("must be at least %s, got %v", fe.Param(), fe.Value())
	case "max":
		return fmt.Sprintf("must be at most %s, got %v", fe.Param(), fe.Value())
	case "gt":
		return fmt.Sprintf("must be greater than %s, got %v", fe.Param(), fe.Value())
	case "eq":
		return fmt.Sprintf("must be %s, got %v", fe.Param(), fe.Value())
	case "numeric":
		return fmt.Sprintf("must be a number, got %q", fe.Value())
	default:
		return fmt.Sprintf("failed %q validation", fe.Tag())
	}
}
