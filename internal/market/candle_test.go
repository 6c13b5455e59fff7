package market

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dailyCandles(n int) []Candle {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]Candle, n)
	for i := range out {
		open := start.Add(time.Duration(i) * 24 * time.Hour)
		out[i] = Candle{
			OpenTime:  open,
			CloseTime: open.Add(24*time.Hour - time.Millisecond),
			Close:     decimal.NewFromInt(int64(i + 1)),
		}
	}
	return out
}

func TestCandleTable_ElevenColumnsAndIncreasingTimes(t *testing.T) {
	table := CandleTable(dailyCandles(30))
	require.Len(t, table.Columns, 11)
	assert.Equal(t, CandleColumns, table.Columns)
	assert.Equal(t, 30, table.Len())
	for _, row := range table.Rows {
		require.Len(t, row, 11)
	}

	opens := table.Column(ColOpenTime)
	for i := 1; i < len(opens); i++ {
		prev := opens[i-1].(time.Time)
		cur := opens[i].(time.Time)
		assert.True(t, cur.After(prev), "row %d open time not increasing", i)
	}
}

func TestCandleTable_RowOrderMatchesColumns(t *testing.T) {
	c := Candle{
		OpenTime:                 time.UnixMilli(1704067200000).UTC(),
		Open:                     decimal.RequireFromString("42283.58"),
		High:                     decimal.RequireFromString("44184.1"),
		Low:                      decimal.RequireFromString("42180.77"),
		Close:                    decimal.RequireFromString("44179.55"),
		Volume:                   decimal.RequireFromString("27174.29903"),
		CloseTime:                time.UnixMilli(1704153599999).UTC(),
		QuoteAssetVolume:         decimal.RequireFromString("1174365421.0003501"),
		NumberOfTrades:           1217892,
		TakerBuyBaseAssetVolume:  decimal.RequireFromString("14142.82094"),
		TakerBuyQuoteAssetVolume: decimal.RequireFromString("611127993.7152051"),
	}
	table := CandleTable([]Candle{c})
	row := table.Rows[0]
	assert.Equal(t, c.OpenTime, row[table.ColumnIndex(ColOpenTime)])
	assert.Equal(t, c.Close, row[table.ColumnIndex(ColClose)])
	assert.Equal(t, int64(1217892), row[table.ColumnIndex(ColNumberOfTrades)])
	assert.Equal(t, c.TakerBuyQuoteAssetVolume, row[table.ColumnIndex(ColTakerBuyQuoteAssetVolume)])
}

func TestCandleTable_DerivedColumns(t *testing.T) {
	sma := DerivedColumn{
		Name: "SMA20",
		Values: []decimal.NullDecimal{
			{},
			{Decimal: decimal.NewFromInt(2), Valid: true},
		},
	}
	table := CandleTable(dailyCandles(3), sma)
	require.Len(t, table.Columns, 12)
	col := table.Column("SMA20")
	require.Len(t, col, 3)
	assert.False(t, col[0].(decimal.NullDecimal).Valid)
	assert.True(t, col[1].(decimal.NullDecimal).Valid)
	// shorter derived column pads with no value
	assert.False(t, col[2].(decimal.NullDecimal).Valid)
}

func TestCandleTable_Empty(t *testing.T) {
	table := CandleTable(nil)
	assert.Equal(t, 11, len(table.Columns))
	assert.Equal(t, 0, table.Len())
}
