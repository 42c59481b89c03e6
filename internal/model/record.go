package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Line is one raw record of the input file. Err is set when the line could
// not be split into fields at all.
type Line struct {
	Num    int
	Fields []string
	Err    error
}

// TargetRecord holds the credentials for one management controller.
// ServicePassword is optional, an empty value disables the service account phase.
type TargetRecord struct {
	Line             int    `validate:"-"`
	Address          string `validate:"required" field:"address"`
	AdminUser        string `validate:"required" field:"username"`
	OldAdminPassword string `validate:"required" field:"old_admin_password"`
	NewAdminPassword string `validate:"required" field:"new_admin_password"`
	ServicePassword  string `validate:"-"`
}

func (r TargetRecord) WantsServiceAccount() bool {
	return r.ServicePassword != ""
}

// BadLineError describes why an input line was rejected. Reason is the short
// text reported as the row outcome, Message the detailed text for the bad line log.
type BadLineError struct {
	Line    int
	Reason  string
	Message string
}

func (e *BadLineError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

func (e *BadLineError) Is(target error) bool {
	return target == ErrBadLine
}

// ParseRecord validates a raw line and turns it into a TargetRecord. Only
// 4 and 5 field lines are accepted and no required field may be empty.
func ParseRecord(line Line) (TargetRecord, error) {
	if line.Err != nil {
		return TargetRecord{}, &BadLineError{
			Line:    line.Num,
			Reason:  "Invalid format",
			Message: "Invalid format: " + line.Err.Error(),
		}
	}
	if n := len(line.Fields); n != 4 && n != 5 {
		return TargetRecord{}, &BadLineError{
			Line:    line.Num,
			Reason:  "Invalid format",
			Message: fmt.Sprintf("Invalid format: got %d fields, expected 4 or 5", n),
		}
	}

	f := make([]string, 5)
	for i, v := range line.Fields {
		f[i] = strings.TrimSpace(v)
	}
	rec := TargetRecord{
		Line:             line.Num,
		Address:          f[0],
		AdminUser:        f[1],
		OldAdminPassword: f[2],
		NewAdminPassword: f[3],
		ServicePassword:  f[4],
	}

	if err := validate.Struct(rec); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return TargetRecord{}, err
		}
		missing := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			missing = append(missing, fe.Field())
		}
		return TargetRecord{}, &BadLineError{
			Line:    line.Num,
			Reason:  "Missing data",
			Message: "Missing data: " + strings.Join(missing, ", "),
		}
	}
	return rec, nil
}

// AccountListing is what a controller reports about its local user slots.
// FreeSlots keeps the order of the listing, the first one is preferred.
type AccountListing struct {
	AccountID string
	FreeSlots []string
}

func (l AccountListing) Found() bool {
	return l.AccountID != ""
}

// RowOutcome is the single verdict recorded for every input line.
type RowOutcome struct {
	Line      int
	Address   string
	Succeeded bool
	Kind      ErrorKind
	Message   string
	// Detail is written to the bad line log. It is set for rejected lines
	// and for rows which ended with an unhandled error.
	Detail string
}

func (o RowOutcome) IsBadLine() bool {
	return o.Kind == BadLine
}
