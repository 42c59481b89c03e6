package ipmi

import (
	"strings"

	"github.com/CZERTAINLY/Rotator/internal/model"
)

// Rule maps a fragment of the tool's stderr to an error kind. Fragments are
// matched case-insensitively.
type Rule struct {
	Contains string
	Kind     model.ErrorKind
}

// Rules is an ordered rule list, the first matching rule wins.
type Rules []Rule

// DefaultRules follow ipmitool diagnostics such as
// "Error: Unable to establish IPMI v2 / RMCP+ session" or
// "Unauthorized name/password".
var DefaultRules = Rules{
	{"unauthorized", model.AuthenticationFailed},
	{"password", model.AuthenticationFailed},
	{"hostname", model.HostUnreachable},
	{"could not resolve", model.HostUnreachable},
	{"unable to establish", model.ConnectionFailed},
	{"invalid user id", model.InvalidSlot},
}

// Classify turns the exit code and captured output of a finished process
// into an outcome. Exit code 0 is a success only when stdout contains one
// of markers (or markers is empty).
func (rules Rules) Classify(exitCode int, stdout, stderr string, markers []string) model.CommandOutcome {
	if exitCode == 0 {
		if len(markers) == 0 {
			return model.Succeeded(stdout)
		}
		for _, m := range markers {
			if strings.Contains(stdout, m) {
				return model.Succeeded(stdout)
			}
		}
		ret := model.Failed(model.UnexpectedOutput, stdout)
		ret.Stdout = stdout
		return ret
	}

	lower := strings.ToLower(stderr)
	for _, r := range rules {
		if strings.Contains(lower, strings.ToLower(r.Contains)) {
			return model.Failed(r.Kind, stderr)
		}
	}
	return model.Failed(model.GenericCommandError, stderr)
}
