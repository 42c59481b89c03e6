// Package rotate implements credential rotation of a single target.
//
// A row goes through these phases:
//
//	validate -> [service account: resolve -> rotate | provision | skip] -> admin password
//
// The service account phase only runs when the line carries a service
// password and its result is only reported through the console and logs.
// The admin phase always runs and its result is the row outcome.
//
// NOTE: a row whose service account could not be rotated or created is still
// reported as a success when the admin password was changed. This follows the
// behaviour of the tool this one replaces and may not be what operators expect.
package rotate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/CZERTAINLY/Rotator/internal/ipmi"
	"github.com/CZERTAINLY/Rotator/internal/log"
	"github.com/CZERTAINLY/Rotator/internal/model"
)

// Reporter receives the intermediate progress lines meant for the operator.
type Reporter interface {
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

type Options struct {
	Interface      string
	Retries        int
	ServiceAccount string
	AdminSlot      string
	Channel        string
	Privilege      int
}

func OptionsFromConfig(cfg model.Config) Options {
	return Options{
		Interface:      cfg.Tool.Interface,
		Retries:        cfg.Rotation.Retries,
		ServiceAccount: cfg.Rotation.ServiceAccount,
		AdminSlot:      cfg.Rotation.AdminSlot,
		Channel:        cfg.Rotation.Channel,
		Privilege:      cfg.Rotation.Privilege,
	}
}

type Processor struct {
	opts        Options
	runner      ipmi.Runner
	resolver    ipmi.Resolver
	provisioner ipmi.Provisioner
	reporter    Reporter
}

func NewProcessor(runner ipmi.Runner, reporter Reporter, opts Options) *Processor {
	if opts.Retries < 0 {
		opts.Retries = 0
	}
	return &Processor{
		opts:        opts,
		runner:      runner,
		resolver:    ipmi.NewResolver(runner),
		provisioner: ipmi.NewProvisioner(runner, opts.Channel, opts.Privilege),
		reporter:    reporter,
	}
}

// Process validates line and rotates the credentials of its target. It
// always returns exactly one outcome.
func (p *Processor) Process(ctx context.Context, line model.Line) model.RowOutcome {
	ctx = log.ContextAttrs(ctx, slog.Int("line", line.Num))

	rec, err := model.ParseRecord(line)
	if err != nil {
		var bl *model.BadLineError
		if !errors.As(err, &bl) {
			bl = &model.BadLineError{Line: line.Num, Reason: "Invalid format", Message: "Invalid format: " + err.Error()}
		}
		slog.DebugContext(ctx, "bad line", "reason", bl.Reason)
		return model.RowOutcome{
			Line:    line.Num,
			Kind:    model.BadLine,
			Message: fmt.Sprintf("Line %d: %s", line.Num, bl.Reason),
			Detail:  bl.Message,
		}
	}

	ctx = log.ContextAttrs(ctx, slog.String("address", rec.Address))
	s := ipmi.Session{
		Interface: p.opts.Interface,
		Address:   rec.Address,
		Username:  rec.AdminUser,
		Password:  rec.OldAdminPassword,
	}

	if rec.WantsServiceAccount() {
		err := p.serviceAccount(ctx, s, rec.ServicePassword)
		if err != nil {
			slog.WarnContext(ctx, "service account phase failed", "error", err)
		} else {
			slog.DebugContext(ctx, "service account phase done")
		}
	}

	out := p.setPassword(ctx, s, "admin", p.opts.AdminSlot, rec.NewAdminPassword)
	slog.InfoContext(ctx, "admin password rotation finished", "succeeded", out.Succeeded, "kind", out.Kind.String())
	return model.RowOutcome{
		Line:      rec.Line,
		Address:   rec.Address,
		Succeeded: out.Succeeded,
		Kind:      out.Kind,
		Message:   out.Message(),
	}
}

// serviceAccount rotates the service account password, creating the account
// in the first free slot when it does not exist yet.
func (p *Processor) serviceAccount(ctx context.Context, s ipmi.Session, password string) error {
	name := p.opts.ServiceAccount
	listing, err := p.resolver.Resolve(ctx, s, name)
	if err != nil {
		p.reporter.Errorf("Could not list users on %s: %s", s.Address, err)
		return err
	}

	switch {
	case listing.Found():
		ctx = log.ContextAttrs(ctx, slog.String("slot", listing.AccountID))
		out := p.setPassword(ctx, s, name, listing.AccountID, password)
		if !out.Succeeded {
			p.reporter.Errorf("Failed to rotate '%s' password on %s: %s", name, s.Address, out.Message())
		}
		return out.Err()
	case len(listing.FreeSlots) > 0:
		slot := listing.FreeSlots[0]
		p.reporter.Warnf("No existing '%s' found on %s, creating in slot %s", name, s.Address, slot)
		res := p.provisioner.Provision(ctx, s, slot, name, password)
		if !res.Succeeded() {
			p.reporter.Errorf("Failed to create '%s' on %s: %s", name, s.Address, res.Message(name))
			return res.Outcome.Err()
		}
		slog.InfoContext(ctx, res.Message(name))
		return nil
	default:
		p.reporter.Errorf("No available user slots to create '%s' on %s", name, s.Address)
		return model.ErrNoAccount
	}
}

// setPassword changes the password of slot, retrying up to Retries times.
func (p *Processor) setPassword(ctx context.Context, s ipmi.Session, account, slot, password string) model.CommandOutcome {
	cmd := s.SetPassword(slot, password)
	out := p.runner.Run(ctx, cmd)
	for attempt := 1; !out.Succeeded && attempt <= p.opts.Retries; attempt++ {
		p.reporter.Warnf("Retry %s %s account after failure: %s", s.Address, account, out.Message())
		slog.DebugContext(ctx, "retrying", "account", account, "attempt", attempt+1)
		out = p.runner.Run(ctx, cmd)
	}
	return out
}
