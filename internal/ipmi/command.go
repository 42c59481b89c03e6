package ipmi

import (
	"slices"
	"strconv"
)

// Op names a management operation, it is used in logs and metrics.
type Op string

const (
	OpListUsers   Op = "user_list"
	OpSetName     Op = "user_set_name"
	OpEnable      Op = "user_enable"
	OpSetAccess   Op = "channel_setaccess"
	OpSetPassword Op = "user_set_password"
)

// passwordMarkers are printed by ipmitool after a password was changed:
// "Set User Password command successful (user 2)"
var passwordMarkers = []string{"Password", "Set User"}

// Command is one ipmitool invocation. Args do not include the binary.
// Markers lists the stdout fragments confirming success; when empty the
// exit code alone decides.
type Command struct {
	Op      Op
	Args    []string
	Markers []string
}

// Session carries what every command needs to talk to one controller.
type Session struct {
	Interface string
	Address   string
	Username  string
	Password  string
}

func (s Session) args(tail ...string) []string {
	ret := make([]string, 0, 8+len(tail))
	ret = append(ret,
		"-I", s.Interface,
		"-H", s.Address,
		"-U", s.Username,
		"-P", s.Password,
	)
	return append(ret, tail...)
}

// ListUsers asks for the local account table in CSV form.
func (s Session) ListUsers() Command {
	return Command{Op: OpListUsers, Args: s.args("-c", "user", "list")}
}

func (s Session) SetName(slot, name string) Command {
	return Command{Op: OpSetName, Args: s.args("user", "set", "name", slot, name)}
}

func (s Session) Enable(slot string) Command {
	return Command{Op: OpEnable, Args: s.args("user", "enable", slot)}
}

func (s Session) SetAccess(channel, slot string, privilege int) Command {
	return Command{
		Op: OpSetAccess,
		Args: s.args("channel", "setaccess", channel, slot,
			"ipmi=on", "link=on", "privilege="+strconv.Itoa(privilege)),
	}
}

func (s Session) SetPassword(slot, password string) Command {
	return Command{
		Op:      OpSetPassword,
		Args:    s.args("user", "set", "password", slot, password),
		Markers: passwordMarkers,
	}
}

const redacted = "******"

// Redact returns a copy of args safe for logging: the -P value and the new
// password of "user set password" are masked.
func Redact(args []string) []string {
	ret := slices.Clone(args)
	for i := 0; i < len(ret); i++ {
		if ret[i] == "-P" && i+1 < len(ret) {
			ret[i+1] = redacted
			i++
		}
	}
	for i := 0; i+4 < len(ret); i++ {
		if ret[i] == "user" && ret[i+1] == "set" && ret[i+2] == "password" {
			ret[i+4] = redacted
		}
	}
	return ret
}
