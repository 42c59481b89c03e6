package ipmi

import (
	"context"
	"fmt"
	"strings"

	"github.com/CZERTAINLY/Rotator/internal/model"
)

// Resolver looks up a named account in the controller's user table.
type Resolver struct {
	runner Runner
}

func NewResolver(runner Runner) Resolver {
	return Resolver{runner: runner}
}

// Resolve lists the local accounts of the target and returns the slot of
// account (matched case-insensitively) and all empty slots. A failed or timed
// out listing returns an error and an empty listing.
func (r Resolver) Resolve(ctx context.Context, s Session, account string) (model.AccountListing, error) {
	out := r.runner.Run(ctx, s.ListUsers())
	if err := out.Err(); err != nil {
		return model.AccountListing{}, fmt.Errorf("user list: %w", err)
	}
	return ParseUserList(out.Stdout, account)
}

// ParseUserList parses the output of "ipmitool -c user list". The first line
// is a header:
//
//	ID,Name,Callin,Link Auth,IPMI Msg,Channel Priv Limit
//	1,,true,false,false,NO ACCESS
//	2,ADMIN,false,false,true,ADMINISTRATOR
func ParseUserList(stdout string, account string) (model.AccountListing, error) {
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) == "" {
		return model.AccountListing{}, model.ErrNoOutput
	}

	var ret model.AccountListing
	for _, line := range lines[1:] {
		fields := strings.Split(strings.TrimSpace(line), ",")
		if len(fields) < 2 {
			continue
		}
		id := strings.TrimSpace(fields[0])
		name := strings.TrimSpace(fields[1])
		switch {
		case name == "":
			ret.FreeSlots = append(ret.FreeSlots, id)
		case strings.EqualFold(name, account):
			ret.AccountID = id
		}
	}
	return ret, nil
}
