package market

import (
	"fmt"

	"github.com/tidwall/gjson"
)

// MapRecords 把对象数组映射为表。
//
// 空数组返回 schema 的空表，保证下游按列名访问不会失败；否则列取自对象自身
// 的 key（首次出现顺序），缺失的 key 记为 nil。schema 的时间列由毫秒时间戳
// 转为 time.Time，数值列中的十进制文本解析为 decimal.Decimal。
func MapRecords(raw []byte, schema Schema) (*Table, error) {
	root, err := parseArray(raw)
	if err != nil {
		return nil, err
	}
	items := root.Array()
	if len(items) == 0 {
		return schema.Empty(), nil
	}

	var columns []string
	index := make(map[string]int)
	for i, item := range items {
		if !item.IsObject() {
			return nil, fmt.Errorf("%s row %d: %w: expected object, got %s", schema.Name, i, ErrMalformed, item.Type)
		}
		item.ForEach(func(key, _ gjson.Result) bool {
			if _, ok := index[key.Str]; !ok {
				index[key.Str] = len(columns)
				columns = append(columns, key.Str)
			}
			return true
		})
	}

	t := NewTable(schema.Name, columns...)
	for i, item := range items {
		row := make([]any, len(columns))
		var cellErr error
		item.ForEach(func(key, value gjson.Result) bool {
			v, err := schema.cell(key.Str, value)
			if err != nil {
				cellErr = fmt.Errorf("%s row %d column %s: %w", schema.Name, i, key.Str, err)
				return false
			}
			row[index[key.Str]] = v
			return true
		})
		if cellErr != nil {
			return nil, cellErr
		}
		t.Append(row)
	}
	return t, nil
}

func (s Schema) cell(column string, value gjson.Result) (any, error) {
	if value.Type == gjson.Null {
		return nil, nil
	}
	if column == s.TimeColumn {
		return millisToTime(value)
	}
	if s.isNumeric(column) {
		if d, err := toDecimal(value); err == nil {
			return d, nil
		}
	}
	return naturalValue(value), nil
}
