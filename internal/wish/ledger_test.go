package wish

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePledge_Redeem(t *testing.T) {
	tests := []struct {
		name       string
		amount     int
		total      int
		personal   int
		wantMax    int
		wantReject bool
	}{
		{name: "first pledge within bounds", amount: 40, total: 0, personal: 0},
		{name: "exactly fills the wish", amount: 60, total: 40, personal: 40},
		{name: "second contributor overflows", amount: 70, total: 40, personal: 0, wantReject: true, wantMax: 60},
		{name: "increment keeps total valid", amount: 30, total: 40, personal: 40},
		{name: "overflow after increments", amount: 40, total: 70, personal: 0, wantReject: true, wantMax: 30},
		{name: "full wish rejects any amount", amount: 10, total: 100, personal: 50, wantReject: true, wantMax: 0},
		{name: "zero amount is always valid", amount: 0, total: 100, personal: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePledge(Redeem, tt.amount, tt.total, tt.personal)
			if !tt.wantReject {
				assert.NoError(t, err)
				return
			}
			var cErr *InvalidContributionError
			require.ErrorAs(t, err, &cErr)
			assert.Equal(t, "gifted_amount_threshold", cErr.Code)
			assert.Equal(t, tt.wantMax, cErr.MaxAllowed)
			assert.Contains(t, cErr.Error(), "redeem")
		})
	}
}

func TestValidatePledge_Remove(t *testing.T) {
	tests := []struct {
		name       string
		amount     int
		total      int
		personal   int
		wantMax    int
		wantReject bool
	}{
		{name: "withdraw part of own stake", amount: 30, total: 70, personal: 70},
		{name: "withdraw entire stake", amount: 70, total: 70, personal: 70},
		{name: "more than own stake", amount: 80, total: 70, personal: 70, wantReject: true, wantMax: 70},
		{name: "stake held by someone else", amount: 10, total: 70, personal: 0, wantReject: true, wantMax: 0},
		{name: "zero amount no-op", amount: 0, total: 70, personal: 70},
		{name: "zero amount with no stake", amount: 0, total: 0, personal: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePledge(Remove, tt.amount, tt.total, tt.personal)
			if !tt.wantReject {
				assert.NoError(t, err)
				return
			}
			var cErr *InvalidContributionError
			require.ErrorAs(t, err, &cErr)
			assert.Equal(t, "gifted_amount_threshold", cErr.Code)
			assert.Equal(t, tt.wantMax, cErr.MaxAllowed)
		})
	}
}

func TestValidatePledge_Bounds(t *testing.T) {
	var vErr *ValidationError

	require.ErrorAs(t, ValidatePledge(Redeem, -1, 0, 0), &vErr)
	require.ErrorAs(t, ValidatePledge(Redeem, 101, 0, 0), &vErr)
	require.ErrorAs(t, ValidatePledge(Remove, -5, 50, 50), &vErr)
	require.ErrorAs(t, ValidatePledge(RedeemType("UPSERT"), 10, 0, 0), &vErr)
}

func TestParseRedeemType(t *testing.T) {
	typ, ok := ParseRedeemType("REDEEM")
	require.True(t, ok)
	assert.Equal(t, Redeem, typ)

	typ, ok = ParseRedeemType("REMOVE")
	require.True(t, ok)
	assert.Equal(t, Remove, typ)

	_, ok = ParseRedeemType("redeem")
	assert.False(t, ok)
	_, ok = ParseRedeemType("")
	assert.False(t, ok)
}
