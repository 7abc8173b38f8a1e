package expr

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
)

// node is the map form of an expression as it appears in YAML or JSON.
type node struct {
	Const   *float64 `mapstructure:"const"`
	Param   string   `mapstructure:"param"`
	Attr    string   `mapstructure:"attr"`
	Sum     []any    `mapstructure:"sum"`
	Product []any    `mapstructure:"product"`
}

// Decode builds an expression from a generic decoded document value.
//
// Accepted forms:
//
//	1.5                            constant
//	{const: 1.5}                   constant
//	{param: b_cost}                parameter
//	{attr: cost1}                  attribute
//	{param: b_cost, attr: cost1}   b_cost * cost1
//	{sum: [...]}                   sum of nodes
//	{product: [...]}               product of nodes
func Decode(raw any) (Expr, error) {
	switch v := raw.(type) {
	case nil:
		return nil, fmt.Errorf("empty expression")
	case float64:
		return Constant{Value: v}, nil
	case float32:
		return Constant{Value: float64(v)}, nil
	case int:
		return Constant{Value: float64(v)}, nil
	case int64:
		return Constant{Value: float64(v)}, nil
	case uint64:
		return Constant{Value: float64(v)}, nil
	case string:
		return nil, fmt.Errorf("bare string %q is ambiguous: use {param: %s} or {attr: %s}", v, v, v)
	}

	var n node
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		Result:           &n,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("decoding expression: %w", err)
	}

	forms := 0
	if n.Const != nil {
		forms++
	}
	if n.Param != "" || n.Attr != "" {
		forms++
	}
	if n.Sum != nil {
		forms++
	}
	if n.Product != nil {
		forms++
	}
	if forms != 1 {
		return nil, fmt.Errorf("expression node must have exactly one of const, param/attr, sum, product")
	}

	switch {
	case n.Const != nil:
		return Constant{Value: *n.Const}, nil
	case n.Param != "" && n.Attr != "":
		return Product{Factors: []Expr{Param{Name: n.Param}, Attribute{Name: n.Attr}}}, nil
	case n.Param != "":
		return Param{Name: n.Param}, nil
	case n.Attr != "":
		return Attribute{Name: n.Attr}, nil
	case n.Sum != nil:
		terms, err := decodeList(n.Sum, "sum")
		if err != nil {
			return nil, err
		}
		return Sum{Terms: terms}, nil
	default:
		factors, err := decodeList(n.Product, "product")
		if err != nil {
			return nil, err
		}
		return Product{Factors: factors}, nil
	}
}

func decodeList(items []any, kind string) ([]Expr, error) {
	out := make([]Expr, 0, len(items))
	for i, item := range items {
		e, err := Decode(item)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", kind, i, err)
		}
		out = append(out, e)
	}
	return out, nil
}
