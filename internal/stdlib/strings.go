package stdlib

import (
	"context"
	"strings"

	"github.com/qrailibs/lmlang/internal/types"
	"github.com/qrailibs/lmlang/internal/values"
)

func stringsModule() map[string]*Builtin {
	return map[string]*Builtin{
		"upper": {
			Signature: &types.Signature{
				Params:     []types.Param{{Name: "s", Type: types.TStr}},
				ReturnType: types.TStr,
			},
			Call: func(_ context.Context, args []values.Value) (values.Value, error) {
				return values.Str(strings.ToUpper(args[0].Str)), nil
			},
		},
		"lower": {
			Signature: &types.Signature{
				Params:     []types.Param{{Name: "s", Type: types.TStr}},
				ReturnType: types.TStr,
			},
			Call: func(_ context.Context, args []values.Value) (values.Value, error) {
				return values.Str(strings.ToLower(args[0].Str)), nil
			},
		},
		"split": {
			Signature: &types.Signature{
				Params:     []types.Param{{Name: "s", Type: types.TStr}, {Name: "sep", Type: types.TStr}},
				ReturnType: types.ArrayOf(types.TStr),
			},
			Call: func(_ context.Context, args []values.Value) (values.Value, error) {
				parts := strings.Split(args[0].Str, args[1].Str)
				elems := make([]values.Value, len(parts))
				for i, p := range parts {
					elems[i] = values.Str(p)
				}
				return values.Arr(&values.Array{Elem: types.TStr, Elements: elems}), nil
			},
		},
	}
}
