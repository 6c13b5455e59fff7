package indicator

import (
	"math"

	"github.com/markcheno/go-talib"
	"github.com/shopspring/decimal"

	"marketpull/internal/market"
)

const (
	// Window 是 SMA 与标准差的滚动窗口，固定不可配置。
	Window = 20
	// BandWidth 是布林带的标准差倍数。
	BandWidth = 2.0
)

// Derived column names in the price table.
const (
	ColSMA       = "SMA20"
	ColUpperBand = "Upper Band"
	ColLowerBand = "Lower Band"
)

// Band 保存单行的 SMA 与上下轨；窗口未满时三者均 Valid=false。
type Band struct {
	SMA   decimal.NullDecimal
	Upper decimal.NullDecimal
	Lower decimal.NullDecimal
}

type Bands []Band

// Columns 返回可直接拼到 price 表后的三列。
func (b Bands) Columns() []market.DerivedColumn {
	sma := make([]decimal.NullDecimal, len(b))
	upper := make([]decimal.NullDecimal, len(b))
	lower := make([]decimal.NullDecimal, len(b))
	for i, band := range b {
		sma[i] = band.SMA
		upper[i] = band.Upper
		lower[i] = band.Lower
	}
	return []market.DerivedColumn{
		{Name: ColSMA, Values: sma},
		{Name: ColUpperBand, Values: upper},
		{Name: ColLowerBand, Values: lower},
	}
}

// Closes 提取收盘价序列供 talib 使用。
func Closes(candles []market.Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Close.InexactFloat64()
	}
	return out
}

// SMA 计算 20 期简单移动均线，前 19 行无值。
func SMA(closes []float64) []decimal.NullDecimal {
	out := make([]decimal.NullDecimal, len(closes))
	if len(closes) < Window {
		return out
	}
	series := talib.Sma(closes, Window)
	for i := Window - 1; i < len(closes); i++ {
		out[i] = nullable(series[i])
	}
	return out
}

// BollingerBands 计算 SMA20 ± 2σ，σ 采用样本标准差（N-1）。
//
// 均值沿用 talib.Sma；σ 按窗口两遍计算 Σ(x-mean)²/(N-1)，不做方差截断，
// 低价币种（1e-5 量级）的带宽同样有效。
func BollingerBands(closes []float64) Bands {
	out := make(Bands, len(closes))
	if len(closes) < Window {
		return out
	}
	sma := talib.Sma(closes, Window)
	for i := Window - 1; i < len(closes); i++ {
		mid := sma[i]
		sigma := sampleStdDev(closes[i-Window+1:i+1], mid)
		out[i] = Band{
			SMA:   nullable(mid),
			Upper: nullable(mid + BandWidth*sigma),
			Lower: nullable(mid - BandWidth*sigma),
		}
	}
	return out
}

func sampleStdDev(window []float64, mean float64) float64 {
	if len(window) < 2 {
		return math.NaN()
	}
	var sum float64
	for _, x := range window {
		d := x - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(window)-1))
}

func nullable(v float64) decimal.NullDecimal {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: decimal.NewFromFloat(v), Valid: true}
}
