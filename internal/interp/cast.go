package interp

import (
	"math"

	"github.com/spf13/cast"

	"github.com/qrailibs/lmlang/internal/values"
)

// castToString, castToInt, and castToFloat back the `~` TypeConversion
// operator's primitive coercions with spf13/cast rather than a hand-rolled
// strconv switch per (source kind, target kind) pair.
func castToString(v values.Value) string {
	switch v.Kind {
	case values.KindInt:
		return cast.ToString(v.Int)
	case values.KindDbl:
		return cast.ToString(v.Dbl)
	case values.KindBool:
		return cast.ToString(v.Bool)
	default:
		return v.String()
	}
}

func castToInt(v values.Value) (int64, error) {
	switch v.Kind {
	case values.KindStr:
		return cast.ToInt64E(v.Str)
	case values.KindDbl:
		return int64(math.Floor(v.Dbl)), nil
	case values.KindBool:
		return cast.ToInt64E(v.Bool)
	case values.KindInt:
		return v.Int, nil
	default:
		return cast.ToInt64E(v.String())
	}
}

func castToFloat(v values.Value) (float64, error) {
	switch v.Kind {
	case values.KindStr:
		return cast.ToFloat64E(v.Str)
	case values.KindInt:
		return float64(v.Int), nil
	case values.KindBool:
		return cast.ToFloat64E(v.Bool)
	case values.KindDbl:
		return v.Dbl, nil
	default:
		return cast.ToFloat64E(v.String())
	}
}
