package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAmount_ToMoney(t *testing.T) {
	tests := []struct {
		name    string
		amount  Amount
		want    int64
		wantErr bool
	}{
		{name: "two decimals", amount: Amount{Value: "12.34", Currency: "USD"}, want: 1234},
		{name: "no fraction", amount: Amount{Value: "12", Currency: "USD"}, want: 1200},
		{name: "short fraction", amount: Amount{Value: "12.5", Currency: "USD"}, want: 1250},
		{name: "long fraction truncated", amount: Amount{Value: "12.345", Currency: "USD"}, want: 1234},
		{name: "negative", amount: Amount{Value: "-25.99", Currency: "CAD"}, want: -2599},
		{name: "zero fraction currency", amount: Amount{Value: "500", Currency: "JPY"}, want: 500},
		{name: "unknown currency", amount: Amount{Value: "1.00", Currency: "XXXX"}, wantErr: true},
		{name: "garbage", amount: Amount{Value: "abc", Currency: "USD"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := tt.amount.ToMoney()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.Amount())
		})
	}
}

func TestAmount_String(t *testing.T) {
	assert.Equal(t, "$12.34", Amount{Value: "12.34", Currency: "USD"}.String())
	assert.Equal(t, "abc USD", Amount{Value: "abc", Currency: "USD"}.String())
}

func TestToken_ExpiresWithin(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	tok := Token{AccessToken: "a", RefreshToken: "r", AccessTokenExpiry: now.Add(time.Minute)}

	assert.False(t, tok.ExpiresWithin(now, 30*time.Second))
	assert.True(t, tok.ExpiresWithin(now, time.Minute))
	assert.True(t, tok.ExpiresWithin(now.Add(2*time.Minute), 0))
}

func TestToken_Validate(t *testing.T) {
	exp := time.Now().Add(time.Hour)

	assert.NoError(t, (&Token{AccessToken: "a", RefreshToken: "r", AccessTokenExpiry: exp}).Validate())
	assert.Error(t, (&Token{RefreshToken: "r", AccessTokenExpiry: exp}).Validate())
	assert.Error(t, (&Token{AccessToken: "a", RefreshToken: "r"}).Validate())
	assert.Error(t, (&Token{AccessToken: "a", AccessTokenExpiry: exp}).Validate())
}

func TestParseResourceType(t *testing.T) {
	rt, ok := ParseResourceType("transactions")
	assert.True(t, ok)
	assert.Equal(t, ResourceTransactions, rt)

	_, ok = ParseResourceType("users")
	assert.False(t, ok)
}
