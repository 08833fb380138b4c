package table

import (
	"fmt"
	"math"
	"time"
)

func normalize(v any) any {
	switch v := v.(type) {
	case nil:
		return nil
	case int:
		return int64(v)
	case int8:
		return int64(v)
	case int16:
		return int64(v)
	case int32:
		return int64(v)
	case int64:
		return v
	case uint:
		return unsigned(uint64(v))
	case uint8:
		return int64(v)
	case uint16:
		return int64(v)
	case uint32:
		return int64(v)
	case uint64:
		return unsigned(v)
	case float32:
		return float64(v)
	case float64:
		return v
	case bool:
		return v
	case string:
		return v
	case []byte:
		if v == nil {
			return nil
		}
		return string(v)
	case time.Time:
		return v.UTC()
	case *time.Time:
		if v == nil {
			return nil
		}
		return v.UTC()
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// unsigned keeps values above MaxInt64 as floats instead of wrapping.
func unsigned(v uint64) any {
	if v > math.MaxInt64 {
		return float64(v)
	}
	return int64(v)
}

// settle makes column j homogeneous and returns its kind. Integer
// cells in a column that also holds floats become floats; a column
// mixing any other types becomes text.
func (t *Table) settle(j int) Kind {
	var ints, floats, bools, strs, times, nonNull int
	for _, r := range t.Rows {
		switch r[j].(type) {
		case nil:
			continue
		case int64:
			ints++
		case float64:
			floats++
		case bool:
			bools++
		case string:
			strs++
		case time.Time:
			times++
		}
		nonNull++
	}

	switch {
	case nonNull == 0:
		return Categorical
	case ints == nonNull:
		return Numeric
	case ints+floats == nonNull:
		for _, r := range t.Rows {
			if i, ok := r[j].(int64); ok {
				r[j] = float64(i)
			}
		}
		return Numeric
	case times == nonNull:
		return Temporal
	case bools == nonNull, strs == nonNull:
		return Categorical
	}

	for _, r := range t.Rows {
		if r[j] != nil {
			r[j] = FormatCell(r[j])
		}
	}
	return Categorical
}
