package visual

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
	"github.com/shopspring/decimal"

	"marketpull/internal/analysis/indicator"
	"marketpull/internal/market"
)

const (
	colorBackground    = "#060c1b"
	colorTextPrimary   = "#eceff4"
	colorTextSecondary = "#9ca3af"
	colorBull          = "#34d399"
	colorBear          = "#f87171"
	colorSMA           = "#fbbf24"
	colorBand          = "#3b82f6"

	chartWidthPx  = 1600
	klineHeightPx = 640

	axisTimeLayout = "2006-01-02 15:04"
)

// PriceChartInput 是价格图所需的数据，Bands 与 Candles 按行对齐。
type PriceChartInput struct {
	Symbol   string
	Interval string
	Candles  []market.Candle
	Bands    indicator.Bands
}

// RenderPriceChart 输出一张 K 线 + SMA20 + 布林带的 HTML 图。
func RenderPriceChart(w io.Writer, input PriceChartInput) error {
	if w == nil {
		return fmt.Errorf("nil writer")
	}
	if len(input.Candles) == 0 {
		return fmt.Errorf("no candles to chart for %s", input.Symbol)
	}

	kline := charts.NewKLine()
	kline.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle:       fmt.Sprintf("%s %s", strings.ToUpper(input.Symbol), input.Interval),
			Theme:           types.ThemeWesteros,
			Width:           fmt.Sprintf("%dpx", chartWidthPx),
			Height:          fmt.Sprintf("%dpx", klineHeightPx),
			BackgroundColor: colorBackground,
		}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), TextStyle: &opts.TextStyle{Color: colorTextPrimary}}),
		charts.WithTitleOpts(opts.Title{
			Title:         fmt.Sprintf("%s %s", strings.ToUpper(input.Symbol), input.Interval),
			Subtitle:      fmt.Sprintf("SMA%d ± %.0fσ", indicator.Window, indicator.BandWidth),
			Left:          "left",
			TitleStyle:    &opts.TextStyle{Color: colorTextPrimary, FontSize: 18},
			SubtitleStyle: &opts.TextStyle{Color: colorTextSecondary},
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", XAxisIndex: []int{0}}),
		charts.WithXAxisOpts(opts.XAxis{
			Type:      "category",
			AxisLabel: &opts.AxisLabel{Color: colorTextSecondary},
			SplitLine: &opts.SplitLine{Show: opts.Bool(false)},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Scale:     opts.Bool(true),
			AxisLabel: &opts.AxisLabel{Color: colorTextSecondary},
			SplitLine: &opts.SplitLine{Show: opts.Bool(true), LineStyle: &opts.LineStyle{Color: colorTextSecondary, Opacity: opts.Float(0.2)}},
		}),
	)
	kline.SetSeriesOptions(
		charts.WithItemStyleOpts(opts.ItemStyle{
			Color:        colorBull,
			Color0:       colorBear,
			BorderColor:  colorBull,
			BorderColor0: colorBear,
		}),
	)

	xAxis := buildXAxis(input.Candles)
	kline.SetXAxis(xAxis)
	kline.AddSeries("Price", buildKlineSeries(input.Candles))

	bandLine := buildBandLine(input.Bands, len(input.Candles))
	bandLine.SetXAxis(xAxis)
	kline.Overlap(bandLine)

	return kline.Render(w)
}

func buildXAxis(candles []market.Candle) []string {
	out := make([]string, len(candles))
	for i, c := range candles {
		out[i] = c.OpenTime.UTC().Format(axisTimeLayout)
	}
	return out
}

func buildKlineSeries(candles []market.Candle) []opts.KlineData {
	data := make([]opts.KlineData, 0, len(candles))
	for _, c := range candles {
		data = append(data, opts.KlineData{Value: [4]float64{
			c.Open.InexactFloat64(),
			c.Close.InexactFloat64(),
			c.Low.InexactFloat64(),
			c.High.InexactFloat64(),
		}})
	}
	return data
}

func buildBandLine(bands indicator.Bands, n int) *charts.Line {
	line := charts.NewLine()
	line.SetSeriesOptions(
		charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
	)
	sma := make([]opts.LineData, n)
	upper := make([]opts.LineData, n)
	lower := make([]opts.LineData, n)
	for i := 0; i < n; i++ {
		var b indicator.Band
		if i < len(bands) {
			b = bands[i]
		}
		sma[i] = lineValue(b.SMA)
		upper[i] = lineValue(b.Upper)
		lower[i] = lineValue(b.Lower)
	}
	line.AddSeries(indicator.ColSMA, sma, charts.WithLineStyleOpts(opts.LineStyle{Color: colorSMA, Width: 2}))
	line.AddSeries(indicator.ColUpperBand, upper, charts.WithLineStyleOpts(opts.LineStyle{Color: colorBand, Width: 1}))
	line.AddSeries(indicator.ColLowerBand, lower, charts.WithLineStyleOpts(opts.LineStyle{Color: colorBand, Width: 1}))
	return line
}

// lineValue 用 nil 表示窗口未满，echarts 会在该处断线。
func lineValue(v decimal.NullDecimal) opts.LineData {
	if !v.Valid {
		return opts.LineData{Value: nil}
	}
	return opts.LineData{Value: v.Decimal.InexactFloat64()}
}
