package market

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatCell(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"string", "BTCUSDT", "BTCUSDT"},
		{"bool", true, "true"},
		{"int64", int64(1217892), "1217892"},
		{"decimal trims trailing zeros", decimal.RequireFromString("0.00010000"), "0.0001"},
		{"negative decimal", decimal.RequireFromString("-1.3323"), "-1.3323"},
		{"null decimal", decimal.NullDecimal{}, ""},
		{"valid null decimal", decimal.NullDecimal{Decimal: decimal.NewFromFloat(10.5), Valid: true}, "10.5"},
		{"time", time.UnixMilli(1704153599999).UTC(), "2024-01-01 23:59:59.999"},
		{"zero time", time.Time{}, ""},
		{"raw json", json.RawMessage(`{"a":1}`), `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatCell(tt.in))
		})
	}
}

func TestFormatRow_Pads(t *testing.T) {
	assert.Equal(t, []string{"a", "", ""}, FormatRow([]any{"a"}, 3))
	assert.Equal(t, []string{"a", "b"}, FormatRow([]any{"a", "b"}, 1))
}
