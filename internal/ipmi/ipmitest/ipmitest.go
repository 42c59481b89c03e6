// Package ipmitest provides an in-memory ipmi.Runner for tests.
package ipmitest

import (
	"context"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/CZERTAINLY/Rotator/internal/ipmi"
	"github.com/CZERTAINLY/Rotator/internal/limiter"
	"github.com/CZERTAINLY/Rotator/internal/model"
)

// Call is one recorded invocation.
type Call struct {
	Address string
	Op      ipmi.Op
	Args    []string
}

// Fake answers commands with Handler and records every call. When Limiter is
// set, each call holds a slot for Delay, mirroring ipmi.Exec.
type Fake struct {
	Handler func(call Call, attempt int) model.CommandOutcome
	Limiter *limiter.Limiter
	Delay   time.Duration

	mx       sync.Mutex
	calls    []Call
	attempts map[string]int
}

func (f *Fake) Run(ctx context.Context, cmd ipmi.Command) model.CommandOutcome {
	if f.Limiter != nil {
		release, err := f.Limiter.Acquire(ctx)
		if err != nil {
			return model.Failed(model.UnhandledError, err.Error())
		}
		defer release()
	}
	if f.Delay > 0 {
		time.Sleep(f.Delay)
	}

	call := Call{Address: address(cmd.Args), Op: cmd.Op, Args: slices.Clone(cmd.Args)}
	f.mx.Lock()
	if f.attempts == nil {
		f.attempts = make(map[string]int)
	}
	key := call.Address + "/" + string(call.Op)
	f.attempts[key]++
	attempt := f.attempts[key]
	f.calls = append(f.calls, call)
	f.mx.Unlock()

	if f.Handler == nil {
		return model.Succeeded("Set User Password command successful")
	}
	return f.Handler(call, attempt)
}

// Calls returns recorded calls, optionally only those for address.
func (f *Fake) Calls(address string) []Call {
	f.mx.Lock()
	defer f.mx.Unlock()
	if address == "" {
		return slices.Clone(f.calls)
	}
	var ret []Call
	for _, c := range f.calls {
		if c.Address == address {
			ret = append(ret, c)
		}
	}
	return ret
}

// Ops returns the operations invoked for address in order.
func (f *Fake) Ops(address string) []ipmi.Op {
	calls := f.Calls(address)
	ret := make([]ipmi.Op, len(calls))
	for i, c := range calls {
		ret[i] = c.Op
	}
	return ret
}

func address(args []string) string {
	for i := 0; i+1 < len(args); i++ {
		if args[i] == "-H" {
			return args[i+1]
		}
	}
	return ""
}

// UserList renders a "-c user list" table with the given names, an empty
// name is a free slot. Slot ids start at 1.
func UserList(names ...string) string {
	out := "ID,Name,Callin,Link Auth,IPMI Msg,Channel Priv Limit\n"
	for i, n := range names {
		out += strconv.Itoa(i+1) + "," + n + ",true,false,false,NO ACCESS\n"
	}
	return out
}
