package market

import (
	"time"

	"github.com/shopspring/decimal"
)

// Candle columns, in output order.
const (
	ColOpenTime                 = "Open Time"
	ColOpen                     = "Open"
	ColHigh                     = "High"
	ColLow                      = "Low"
	ColClose                    = "Close"
	ColVolume                   = "Volume"
	ColCloseTime                = "Close Time"
	ColQuoteAssetVolume         = "Quote Asset Volume"
	ColNumberOfTrades           = "Number of Trades"
	ColTakerBuyBaseAssetVolume  = "Taker Buy Base Asset Volume"
	ColTakerBuyQuoteAssetVolume = "Taker Buy Quote Asset Volume"
)

var CandleColumns = []string{
	ColOpenTime, ColOpen, ColHigh, ColLow, ColClose, ColVolume, ColCloseTime,
	ColQuoteAssetVolume, ColNumberOfTrades, ColTakerBuyBaseAssetVolume, ColTakerBuyQuoteAssetVolume,
}

type Candle struct {
	OpenTime                 time.Time       `json:"open_time"`
	Open                     decimal.Decimal `json:"open"`
	High                     decimal.Decimal `json:"high"`
	Low                      decimal.Decimal `json:"low"`
	Close                    decimal.Decimal `json:"close"`
	Volume                   decimal.Decimal `json:"volume"`
	CloseTime                time.Time       `json:"close_time"`
	QuoteAssetVolume         decimal.Decimal `json:"quote_asset_volume"`
	NumberOfTrades           int64           `json:"trades"`
	TakerBuyBaseAssetVolume  decimal.Decimal `json:"taker_buy_base_volume"`
	TakerBuyQuoteAssetVolume decimal.Decimal `json:"taker_buy_quote_volume"`
}

func (c Candle) row() []any {
	return []any{
		c.OpenTime, c.Open, c.High, c.Low, c.Close, c.Volume, c.CloseTime,
		c.QuoteAssetVolume, c.NumberOfTrades, c.TakerBuyBaseAssetVolume, c.TakerBuyQuoteAssetVolume,
	}
}

// CandleTable 生成 price 表：11 个 K 线列，后接任意计算列。
// 计算列长度与 candles 不一致时，多出的行按无值处理。
func CandleTable(candles []Candle, derived ...DerivedColumn) *Table {
	columns := make([]string, 0, len(CandleColumns)+len(derived))
	columns = append(columns, CandleColumns...)
	for _, d := range derived {
		columns = append(columns, d.Name)
	}
	t := NewTable("price", columns...)
	for i, c := range candles {
		row := c.row()
		for _, d := range derived {
			var v decimal.NullDecimal
			if i < len(d.Values) {
				v = d.Values[i]
			}
			row = append(row, v)
		}
		t.Append(row)
	}
	return t
}
