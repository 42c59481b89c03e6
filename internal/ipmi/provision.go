package ipmi

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/CZERTAINLY/Rotator/internal/model"
)

// Provisioner materializes a new account in a free slot.
type Provisioner struct {
	runner    Runner
	channel   string
	privilege int
}

func NewProvisioner(runner Runner, channel string, privilege int) Provisioner {
	return Provisioner{
		runner:    runner,
		channel:   channel,
		privilege: privilege,
	}
}

// Provisioned reports how far the provisioning got. Completed lists the steps
// that succeeded, so a partially configured slot can be found and fixed by hand.
type Provisioned struct {
	Slot      string
	Completed []Op
	Failed    Op
	Outcome   model.CommandOutcome
}

func (p Provisioned) Succeeded() bool {
	return p.Failed == ""
}

func (p Provisioned) Message(account string) string {
	if p.Succeeded() {
		return fmt.Sprintf("Created user '%s' in slot %s", account, p.Slot)
	}
	done := "none"
	if len(p.Completed) > 0 {
		names := make([]string, len(p.Completed))
		for i, op := range p.Completed {
			names[i] = string(op)
		}
		done = strings.Join(names, ", ")
	}
	return fmt.Sprintf("%s failed in slot %s: %s (completed: %s)", p.Failed, p.Slot, p.Outcome.Message(), done)
}

// Provision runs name, enable, privilege and password steps strictly in
// order and stops at the first failure. Steps already done are not rolled back.
func (p Provisioner) Provision(ctx context.Context, s Session, slot, account, password string) Provisioned {
	steps := []Command{
		s.SetName(slot, account),
		s.Enable(slot),
		s.SetAccess(p.channel, slot, p.privilege),
		s.SetPassword(slot, password),
	}

	ret := Provisioned{Slot: slot, Completed: make([]Op, 0, len(steps))}
	for _, step := range steps {
		out := p.runner.Run(ctx, step)
		if !out.Succeeded {
			slog.DebugContext(ctx, "provisioning step failed", "op", string(step.Op), "slot", slot, "kind", out.Kind.String())
			ret.Failed = step.Op
			ret.Outcome = out
			return ret
		}
		ret.Completed = append(ret.Completed, step.Op)
		ret.Outcome = out
	}
	return ret
}
