package invoke

import (
	"math/big"
	"reflect"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

var bigIntType = reflect.TypeOf((*big.Int)(nil))

// displayValue converts ABI Go values into JSON-friendly ones: integers wider
// than 64 bits become decimal strings, byte arrays and slices become 0x hex,
// tuples become objects keyed by field name.
func displayValue(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case *big.Int:
		if x == nil {
			return nil
		}
		return x.String()
	case common.Address:
		return x.Hex()
	case common.Hash:
		return x.Hex()
	case []byte:
		return hexutil.Encode(x)
	case string, bool:
		return x
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			buf := make([]byte, rv.Len())
			reflect.Copy(reflect.ValueOf(buf), rv)
			return hexutil.Encode(buf)
		}
		return displayList(rv)
	case reflect.Slice:
		return displayList(rv)
	case reflect.Struct:
		out := make(map[string]any, rv.NumField())
		for i := 0; i < rv.NumField(); i++ {
			field := rv.Type().Field(i)
			if !field.IsExported() {
				continue
			}
			name := field.Tag.Get("json")
			if name == "" {
				name = field.Name
			}
			out[name] = displayValue(rv.Field(i).Interface())
		}
		return out
	case reflect.Ptr:
		if rv.Type() == bigIntType || rv.IsNil() {
			return nil
		}
		return displayValue(rv.Elem().Interface())
	}
	return v
}

func displayList(rv reflect.Value) []any {
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = displayValue(rv.Index(i).Interface())
	}
	return out
}

func displayValues(values []any) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = displayValue(v)
	}
	return out
}
