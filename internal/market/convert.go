package market

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
)

func parseArray(raw []byte) (gjson.Result, error) {
	if !gjson.ValidBytes(raw) {
		return gjson.Result{}, fmt.Errorf("%w: invalid json", ErrMalformed)
	}
	root := gjson.ParseBytes(raw)
	if !root.IsArray() {
		return gjson.Result{}, fmt.Errorf("%w: expected top-level array, got %s", ErrMalformed, root.Type)
	}
	return root, nil
}

// millisToTime 接受数字或数字字符串形式的毫秒时间戳。
func millisToTime(r gjson.Result) (time.Time, error) {
	ms, err := toInt(r)
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(ms).UTC(), nil
}

func toInt(r gjson.Result) (int64, error) {
	var raw string
	switch r.Type {
	case gjson.Number:
		raw = r.Raw
	case gjson.String:
		raw = strings.TrimSpace(r.Str)
	default:
		return 0, fmt.Errorf("%w: expected integer, got %s", ErrMalformed, r.Type)
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not an integer", ErrMalformed, raw)
	}
	return n, nil
}

func toDecimal(r gjson.Result) (decimal.Decimal, error) {
	var raw string
	switch r.Type {
	case gjson.Number:
		raw = r.Raw
	case gjson.String:
		raw = strings.TrimSpace(r.Str)
	default:
		return decimal.Zero, fmt.Errorf("%w: expected number, got %s", ErrMalformed, r.Type)
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q is not a number", ErrMalformed, raw)
	}
	return d, nil
}

// naturalValue 保留 JSON 解码后的自然类型：整数 -> int64，其余数字 -> decimal。
func naturalValue(r gjson.Result) any {
	switch r.Type {
	case gjson.Null:
		return nil
	case gjson.False:
		return false
	case gjson.True:
		return true
	case gjson.String:
		return r.Str
	case gjson.Number:
		if n, err := strconv.ParseInt(r.Raw, 10, 64); err == nil {
			return n
		}
		if d, err := decimal.NewFromString(r.Raw); err == nil {
			return d
		}
		return json.RawMessage(r.Raw)
	default:
		return json.RawMessage(r.Raw)
	}
}
