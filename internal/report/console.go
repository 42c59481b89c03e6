// Package report prints the operator facing progress lines and the final
// summary of a batch run.
package report

import (
	"fmt"
	"io"
	"sync"

	"github.com/CZERTAINLY/Rotator/internal/model"

	"github.com/fatih/color"
)

// Console writes whole lines, concurrent callers never interleave within a line.
type Console struct {
	mx     sync.Mutex
	w      io.Writer
	green  *color.Color
	red    *color.Color
	yellow *color.Color
}

func NewConsole(w io.Writer, colored bool) *Console {
	c := &Console{
		w:      w,
		green:  color.New(color.FgHiGreen),
		red:    color.New(color.FgHiRed),
		yellow: color.New(color.FgHiYellow),
	}
	for _, cc := range []*color.Color{c.green, c.red, c.yellow} {
		if colored {
			cc.EnableColor()
		} else {
			cc.DisableColor()
		}
	}
	return c
}

func (c *Console) println(cc *color.Color, format string, args ...any) {
	line := cc.Sprintf(format, args...)
	c.mx.Lock()
	defer c.mx.Unlock()
	_, _ = fmt.Fprintln(c.w, line)
}

func (c *Console) Success(address, message string) {
	c.println(c.green, "[+] Success on %s: %s", address, message)
}

func (c *Console) Failure(address, message string) {
	c.println(c.red, "[-] Failure on %s: %s", address, message)
}

func (c *Console) BadLine(line int, message string) {
	c.println(c.yellow, "[!] Line %d: %s", line, message)
}

func (c *Console) Warnf(format string, args ...any) {
	c.println(c.yellow, "[!] "+format, args...)
}

func (c *Console) Errorf(format string, args ...any) {
	c.println(c.red, "[-] "+format, args...)
}

func (c *Console) Fatalf(format string, args ...any) {
	c.println(c.red, "[FATAL] "+format, args...)
}

// Summary prints the totals and every failed address with its message.
func (c *Console) Summary(successes int, failures []model.RowOutcome) {
	c.mx.Lock()
	defer c.mx.Unlock()
	_, _ = fmt.Fprintln(c.w)
	_, _ = fmt.Fprintln(c.w, "--- SUMMARY ---")
	_, _ = fmt.Fprintln(c.w, c.green.Sprintf("Successful changes: %d", successes))
	_, _ = fmt.Fprintln(c.w, c.red.Sprintf("Failures: %d", len(failures)))
	if len(failures) == 0 {
		return
	}
	_, _ = fmt.Fprintln(c.w)
	_, _ = fmt.Fprintln(c.w, "Failed IPs:")
	for _, f := range failures {
		_, _ = fmt.Fprintln(c.w, c.red.Sprintf("%s: %s", f.Address, f.Message))
	}
}
