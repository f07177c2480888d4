package stdlib

import (
	"context"
	"math"

	"github.com/qrailibs/lmlang/internal/types"
	"github.com/qrailibs/lmlang/internal/values"
)

func mathModule() map[string]*Builtin {
	return map[string]*Builtin{
		"sqrt": {
			Signature: &types.Signature{
				Params:     []types.Param{{Name: "x", Type: types.TDbl}},
				ReturnType: types.TDbl,
			},
			Call: func(_ context.Context, args []values.Value) (values.Value, error) {
				return values.Dbl(math.Sqrt(toFloat(args[0]))), nil
			},
		},
		"abs": {
			Signature: &types.Signature{
				Params:     []types.Param{{Name: "x", Type: types.TDbl}},
				ReturnType: types.TDbl,
			},
			Call: func(_ context.Context, args []values.Value) (values.Value, error) {
				return values.Dbl(math.Abs(toFloat(args[0]))), nil
			},
		},
		"floor": {
			Signature: &types.Signature{
				Params:     []types.Param{{Name: "x", Type: types.TDbl}},
				ReturnType: types.TInt,
			},
			Call: func(_ context.Context, args []values.Value) (values.Value, error) {
				return values.Int(int64(math.Floor(toFloat(args[0])))), nil
			},
		},
	}
}

func toFloat(v values.Value) float64 {
	if v.Kind == values.KindInt {
		return float64(v.Int)
	}
	return v.Dbl
}

func toInt(v values.Value) int64 {
	if v.Kind == values.KindDbl {
		return int64(v.Dbl)
	}
	return v.Int
}
