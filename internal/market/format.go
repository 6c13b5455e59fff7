package market

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// TimeLayout 是输出文件中时间列的格式（UTC，毫秒精度）。
const TimeLayout = "2006-01-02 15:04:05.000"

// FormatCell renders one cell as text. No value renders as "".
func FormatCell(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case int:
		return strconv.Itoa(t)
	case decimal.Decimal:
		return t.String()
	case decimal.NullDecimal:
		if !t.Valid {
			return ""
		}
		return t.Decimal.String()
	case time.Time:
		if t.IsZero() {
			return ""
		}
		return t.UTC().Format(TimeLayout)
	case json.RawMessage:
		return string(t)
	default:
		return fmt.Sprint(t)
	}
}

// FormatRow renders a whole row, padding to width.
func FormatRow(row []any, width int) []string {
	if width < len(row) {
		width = len(row)
	}
	out := make([]string, width)
	for i, v := range row {
		out[i] = FormatCell(v)
	}
	return out
}
