package ipmi_test

import (
	"testing"

	"github.com/CZERTAINLY/Rotator/internal/ipmi"
	"github.com/CZERTAINLY/Rotator/internal/ipmi/ipmitest"
	"github.com/CZERTAINLY/Rotator/internal/model"
	"github.com/stretchr/testify/require"
)

func TestProvision(t *testing.T) {
	t.Parallel()
	s := ipmi.Session{Interface: "lanplus", Address: "10.0.0.9", Username: "ADMIN", Password: "pw"}
	all := []ipmi.Op{ipmi.OpSetName, ipmi.OpEnable, ipmi.OpSetAccess, ipmi.OpSetPassword}

	var testCases = []struct {
		scenario string
		failOn   ipmi.Op
		then     []ipmi.Op
		message  string
	}{
		{"all steps", "", all, "Created user 'user' in slot 4"},
		{"name fails", ipmi.OpSetName, all[:1], "user_set_name failed in slot 4: IPMI Error: boom (completed: none)"},
		{"access fails", ipmi.OpSetAccess, all[:3], "channel_setaccess failed in slot 4: IPMI Error: boom (completed: user_set_name, user_enable)"},
		{"password fails", ipmi.OpSetPassword, all, "user_set_password failed in slot 4: IPMI Error: boom (completed: user_set_name, user_enable, channel_setaccess)"},
	}

	for _, tt := range testCases {
		t.Run(tt.scenario, func(t *testing.T) {
			t.Parallel()
			fake := &ipmitest.Fake{Handler: func(c ipmitest.Call, _ int) model.CommandOutcome {
				if c.Op == tt.failOn {
					return model.Failed(model.GenericCommandError, "boom")
				}
				return model.Succeeded("")
			}}
			p := ipmi.NewProvisioner(fake, "1", 3)
			got := p.Provision(t.Context(), s, "4", "user", "svcpw")
			require.Equal(t, tt.failOn == "", got.Succeeded())
			require.Equal(t, tt.then, fake.Ops("10.0.0.9"))
			require.Equal(t, tt.message, got.Message("user"))
			require.Equal(t, tt.failOn, got.Failed)
		})
	}
}

func TestProvision_Args(t *testing.T) {
	t.Parallel()
	s := ipmi.Session{Interface: "lanplus", Address: "h", Username: "ADMIN", Password: "pw"}
	fake := &ipmitest.Fake{}
	got := ipmi.NewProvisioner(fake, "1", 3).Provision(t.Context(), s, "5", "user", "svcpw")
	require.True(t, got.Succeeded())

	calls := fake.Calls("h")
	require.Len(t, calls, 4)
	require.Equal(t, []string{"user", "set", "name", "5", "user"}, calls[0].Args[8:])
	require.Equal(t, []string{"user", "enable", "5"}, calls[1].Args[8:])
	require.Equal(t, []string{"channel", "setaccess", "1", "5", "ipmi=on", "link=on", "privilege=3"}, calls[2].Args[8:])
	require.Equal(t, []string{"user", "set", "password", "5", "svcpw"}, calls[3].Args[8:])
}
