package services

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoney_WritesNumbers(t *testing.T) {
	out, err := json.Marshal(CartView{Groups: []CartGroupView{}, TotalAmount: NewMoney(dec("12.50"))})
	require.NoError(t, err)
	assert.JSONEq(t, `{"groups":[],"totalAmount":12.5}`, string(out))

	empty, err := json.Marshal(EmptyCartView())
	require.NoError(t, err)
	assert.JSONEq(t, `{"groups":[],"totalAmount":0}`, string(empty))

	// plain decimals keep their library default
	raw, err := json.Marshal(struct {
		D decimal.Decimal `json:"d"`
	}{dec("1.5")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"d":"1.5"}`, string(raw))
}

func TestMoney_ReadsNumbersAndStrings(t *testing.T) {
	var v struct {
		A Money `json:"a"`
		B Money `json:"b"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":9.99,"b":"3.10"}`), &v))
	assertDecEqual(t, "9.99", v.A)
	assertDecEqual(t, "3.1", v.B)
}
