package common

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestClaims_MFASatisfied(t *testing.T) {
	yes := true
	no := false

	cases := []struct {
		name   string
		claims *Claims
		want   bool
	}{
		{"nil claims", nil, false},
		{"empty", &Claims{}, false},
		{"password only", &Claims{AMR: []string{"pwd"}}, false},
		{"otp in amr", &Claims{AMR: []string{"pwd", "otp"}}, true},
		{"totp in amr", &Claims{AMR: []string{"totp"}}, true},
		{"mfa in amr", &Claims{AMR: []string{"mfa"}}, true},
		{"explicit mfa claim", &Claims{MFA: &yes}, true},
		{"explicit mfa false", &Claims{MFA: &no}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.claims.MFASatisfied())
		})
	}
}

func TestClaims_Impersonated(t *testing.T) {
	var nilClaims *Claims
	assert.False(t, nilClaims.Impersonated())
	assert.False(t, (&Claims{UserID: uuid.New()}).Impersonated())

	impersonator := uuid.New()
	assert.True(t, (&Claims{UserID: uuid.New(), ImpersonatorID: &impersonator}).Impersonated())
}

func TestPermissionSet_ZeroValueDenies(t *testing.T) {
	var ps PermissionSet
	assert.False(t, ps.Contains(PermViewSchedule))
	assert.Zero(t, ps.Len())

	ps = NewPermissionSet([]string{PermViewSchedule}, []string{PermViewSchedule, PermViewMembers})
	assert.True(t, ps.Contains(PermViewSchedule))
	assert.True(t, ps.Contains(PermViewMembers))
	assert.Equal(t, 2, ps.Len())
}
