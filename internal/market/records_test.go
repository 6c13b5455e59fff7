package market

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapRecords_EmptyArrayKeepsSchema(t *testing.T) {
	for _, schema := range []Schema{FundingRateSchema, OpenInterestSchema, LongShortRatioSchema} {
		t.Run(schema.Name, func(t *testing.T) {
			table, err := MapRecords([]byte(`[]`), schema)
			require.NoError(t, err)
			assert.Equal(t, schema.Columns, table.Columns)
			assert.Equal(t, 0, table.Len())
		})
	}
}

func TestMapRecords_OpenInterest(t *testing.T) {
	raw := `[
	  {"symbol":"BTCUSDT","sumOpenInterest":"80123.45600000","sumOpenInterestValue":"5432101234.12000000","timestamp":1704067200000},
	  {"symbol":"BTCUSDT","sumOpenInterest":"80200.00000000","sumOpenInterestValue":"5440000000.00000000","timestamp":1704153600000}
	]`
	table, err := MapRecords([]byte(raw), OpenInterestSchema)
	require.NoError(t, err)

	assert.Equal(t, []string{"symbol", "sumOpenInterest", "sumOpenInterestValue", "timestamp"}, table.Columns)
	require.Equal(t, 2, table.Len())
	row := table.Rows[0]
	assert.Equal(t, "BTCUSDT", row[0])
	assert.True(t, decimal.RequireFromString("80123.456").Equal(row[1].(decimal.Decimal)))
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), row[3])
}

func TestMapRecords_ColumnsFollowResponseKeys(t *testing.T) {
	raw := `[
	  {"symbol":"BTCUSDT","fundingTime":1704067200000,"fundingRate":"0.00010000","markPrice":"42300.1"},
	  {"symbol":"BTCUSDT","fundingTime":1704096000000,"fundingRate":"-0.00002000","extra":{"a":1},"flag":true}
	]`
	table, err := MapRecords([]byte(raw), FundingRateSchema)
	require.NoError(t, err)

	assert.Equal(t, []string{"symbol", "fundingTime", "fundingRate", "markPrice", "extra", "flag"}, table.Columns)
	first, second := table.Rows[0], table.Rows[1]
	assert.Nil(t, first[4], "missing key is no value")
	assert.Nil(t, second[3])
	assert.Equal(t, json.RawMessage(`{"a":1}`), second[4])
	assert.Equal(t, true, second[5])
	assert.True(t, decimal.RequireFromString("-0.00002").Equal(second[2].(decimal.Decimal)))
	assert.True(t, decimal.RequireFromString("42300.1").Equal(first[3].(decimal.Decimal)))
}

func TestMapRecords_NonNumericTextIsKept(t *testing.T) {
	raw := `[{"symbol":"BTCUSDT","longShortRatio":"n/a","longAccount":0.6,"shortAccount":"0.4","timestamp":"1704067200000"}]`
	table, err := MapRecords([]byte(raw), LongShortRatioSchema)
	require.NoError(t, err)

	row := table.Rows[0]
	assert.Equal(t, "n/a", row[1])
	assert.True(t, decimal.RequireFromString("0.6").Equal(row[2].(decimal.Decimal)))
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), row[4])
}

func TestMapRecords_Malformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"error object", `{"code":-1130,"msg":"Invalid period."}`},
		{"array of arrays", `[[1,2]]`},
		{"bad timestamp", `[{"symbol":"BTCUSDT","timestamp":"yesterday"}]`},
		{"truncated", `[{"symbol":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := MapRecords([]byte(tt.body), OpenInterestSchema)
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestTable_AppendPadsShortRows(t *testing.T) {
	table := NewTable("t", "a", "b", "c")
	table.Append([]any{"x"})
	require.Len(t, table.Rows[0], 3)
	assert.Nil(t, table.Rows[0][2])
	assert.Nil(t, table.Column("missing"))
	assert.Equal(t, -1, table.ColumnIndex("missing"))
}
