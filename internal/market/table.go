package market

import (
	"slices"

	"github.com/shopspring/decimal"
)

// Table 是带列名的二维表。单元格取值见 Cell 说明。
//
// Cell 允许的类型：nil（无值）、string、bool、int64、decimal.Decimal、
// decimal.NullDecimal、time.Time 以及嵌套 JSON 的 json.RawMessage。
type Table struct {
	Name    string
	Columns []string
	Rows    [][]any
}

func NewTable(name string, columns ...string) *Table {
	return &Table{
		Name:    name,
		Columns: slices.Clone(columns),
		Rows:    make([][]any, 0),
	}
}

func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

func (t *Table) ColumnIndex(name string) int {
	if t == nil {
		return -1
	}
	return slices.Index(t.Columns, name)
}

// Column returns the cells of one column, nil when the column is absent.
func (t *Table) Column(name string) []any {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return nil
	}
	out := make([]any, len(t.Rows))
	for i, row := range t.Rows {
		if idx < len(row) {
			out[i] = row[idx]
		}
	}
	return out
}

// Append pads short rows with nil so every row matches the header width.
func (t *Table) Append(row []any) {
	if len(row) < len(t.Columns) {
		padded := make([]any, len(t.Columns))
		copy(padded, row)
		row = padded
	}
	t.Rows = append(t.Rows, row)
}

// DerivedColumn 是附加到 K 线表上的计算列，例如 SMA20。
type DerivedColumn struct {
	Name   string
	Values []decimal.NullDecimal
}

// Schema 记录一个数据集的文档列，用于空响应时补齐表头。
type Schema struct {
	Name           string
	Columns        []string
	TimeColumn     string
	NumericColumns []string
}

// Empty returns a zero-row table carrying the documented columns.
func (s Schema) Empty() *Table {
	return NewTable(s.Name, s.Columns...)
}

func (s Schema) isNumeric(col string) bool {
	return slices.Contains(s.NumericColumns, col)
}

var (
	FundingRateSchema = Schema{
		Name:           "funding_rate",
		Columns:        []string{"fundingTime", "fundingRate", "symbol"},
		TimeColumn:     "fundingTime",
		NumericColumns: []string{"fundingRate", "markPrice"},
	}
	OpenInterestSchema = Schema{
		Name:           "open_interest",
		Columns:        []string{"symbol", "sumOpenInterest", "sumOpenInterestValue", "timestamp"},
		TimeColumn:     "timestamp",
		NumericColumns: []string{"sumOpenInterest", "sumOpenInterestValue"},
	}
	LongShortRatioSchema = Schema{
		Name:           "long_short_ratio",
		Columns:        []string{"symbol", "longShortRatio", "longAccount", "shortAccount", "timestamp"},
		TimeColumn:     "timestamp",
		NumericColumns: []string{"longShortRatio", "longAccount", "shortAccount"},
	}
)
