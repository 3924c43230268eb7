package export

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/xuri/excelize/v2"
)

const sheet = "Sheet1"

// Row is one flattened key/value pair. Key is a dotted path with indexes for
// repeated values, e.g. "items[0].rate".
type Row struct {
	Key   string
	Value any
}

// Flatten walks v depth first in sorted key order.
func Flatten(v any) ([]Row, error) {
	g, err := generic(v)
	if err != nil {
		return nil, err
	}
	var rows []Row
	flatten("", g, &rows)
	return rows, nil
}

func flatten(prefix string, v any, rows *[]Row) {
	switch t := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			key := k
			if prefix != "" {
				key = prefix + "." + k
			}
			flatten(key, t[k], rows)
		}
	case []any:
		for i, item := range t {
			flatten(prefix+"["+strconv.Itoa(i)+"]", item, rows)
		}
	default:
		*rows = append(*rows, Row{Key: prefix, Value: cell(v)})
	}
}

func cell(v any) any {
	switch t := v.(type) {
	case nil:
		return ""
	case fmt.Stringer:
		return t.String()
	}
	return v
}

// Excel writes the flattened rows of v under a Key/Value header.
func Excel(v any) ([]byte, error) {
	rows, err := Flatten(v)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetCellValue(sheet, "A1", "Key"); err != nil {
		return nil, err
	}
	if err := f.SetCellValue(sheet, "B1", "Value"); err != nil {
		return nil, err
	}
	for i, r := range rows {
		row := strconv.Itoa(i + 2)
		if err := f.SetCellValue(sheet, "A"+row, r.Key); err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, "B"+row, r.Value); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
