package symbol

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToBinance(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"BTCUSDT", "BTCUSDT"},
		{"btcusdt", "BTCUSDT"},
		{"BTC/USDT", "BTCUSDT"},
		{"eth/usdt:usdt", "ETHUSDT"},
		{" sol/usdc ", "SOLUSDC"},
		{"abc/xyz", "ABCXYZ"},
		{"FOOBAR", "FOOBAR"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ToBinance(tt.in))
		})
	}
}

func TestParse(t *testing.T) {
	assert.Equal(t, Symbol{Base: "BTC", Quote: "USDT"}, Parse("btcusdt"))
	assert.Equal(t, "BTC/USDT", Parse("BTCUSDT").Internal())
	assert.Equal(t, Symbol{}, Parse("USDT"))
	assert.Equal(t, Symbol{}, Parse(""))
}

func TestIsValid(t *testing.T) {
	assert.True(t, IsValid("BTCUSDT"))
	assert.True(t, IsValid("ETH/BTC"))
	assert.False(t, IsValid("FOOBAR"))
}
