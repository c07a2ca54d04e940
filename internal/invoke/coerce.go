package invoke

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"strconv"
	"strings"

	clierr "github.com/augmented-finance/augmented-cli/internal/errors"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// CoerceArgs converts loosely typed values (CLI strings, JSON arrays, Go
// values produced by argument preparation) into the Go types the ABI packer
// expects for inputs.
func CoerceArgs(inputs abi.Arguments, raw []any) ([]any, error) {
	if len(inputs) != len(raw) {
		return nil, clierr.New(clierr.CodeUsage, fmt.Sprintf("expected %d arguments, got %d", len(inputs), len(raw)))
	}
	out := make([]any, len(raw))
	for i, input := range inputs {
		value, err := coerce(input.Type, raw[i])
		if err != nil {
			name := input.Name
			if name == "" {
				name = strconv.Itoa(i)
			}
			return nil, clierr.Wrap(clierr.CodeUsage, fmt.Sprintf("argument %s (%s)", name, input.Type.String()), err)
		}
		out[i] = value
	}
	return out, nil
}

func coerce(t abi.Type, v any) (any, error) {
	if v != nil && reflect.TypeOf(v) == t.GetType() {
		return v, nil
	}
	switch t.T {
	case abi.AddressTy:
		return toAddress(v)
	case abi.IntTy, abi.UintTy:
		return toInteger(t, v)
	case abi.BoolTy:
		switch b := v.(type) {
		case bool:
			return b, nil
		case string:
			return strconv.ParseBool(strings.TrimSpace(b))
		}
	case abi.StringTy:
		if s, ok := v.(string); ok {
			return s, nil
		}
		if n, ok := v.(json.Number); ok {
			return n.String(), nil
		}
	case abi.BytesTy:
		switch b := v.(type) {
		case []byte:
			return b, nil
		case string:
			return hexutil.Decode(strings.TrimSpace(b))
		}
	case abi.FixedBytesTy:
		return toFixedBytes(t, v)
	case abi.SliceTy, abi.ArrayTy:
		return toList(t, v)
	case abi.TupleTy:
		return toTuple(t, v)
	}
	return nil, fmt.Errorf("cannot use %T as %s", v, t.String())
}

func toAddress(v any) (common.Address, error) {
	switch a := v.(type) {
	case common.Address:
		return a, nil
	case *common.Address:
		if a != nil {
			return *a, nil
		}
	case string:
		a = strings.TrimSpace(a)
		if !common.IsHexAddress(a) {
			return common.Address{}, fmt.Errorf("invalid address %q", a)
		}
		return common.HexToAddress(a), nil
	}
	return common.Address{}, fmt.Errorf("cannot use %T as address", v)
}

func toBigInt(v any) (*big.Int, error) {
	switch n := v.(type) {
	case *big.Int:
		if n == nil {
			return nil, fmt.Errorf("nil integer")
		}
		return new(big.Int).Set(n), nil
	case big.Int:
		return new(big.Int).Set(&n), nil
	case int:
		return big.NewInt(int64(n)), nil
	case int8:
		return big.NewInt(int64(n)), nil
	case int16:
		return big.NewInt(int64(n)), nil
	case int32:
		return big.NewInt(int64(n)), nil
	case int64:
		return big.NewInt(n), nil
	case uint:
		return new(big.Int).SetUint64(uint64(n)), nil
	case uint8:
		return new(big.Int).SetUint64(uint64(n)), nil
	case uint16:
		return new(big.Int).SetUint64(uint64(n)), nil
	case uint32:
		return new(big.Int).SetUint64(uint64(n)), nil
	case uint64:
		return new(big.Int).SetUint64(n), nil
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) {
			return nil, fmt.Errorf("%v is not an integer", n)
		}
		out, _ := big.NewFloat(n).Int(nil)
		return out, nil
	case json.Number:
		return parseInteger(n.String())
	case string:
		return parseInteger(n)
	}
	return nil, fmt.Errorf("cannot use %T as integer", v)
}

func parseInteger(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty integer")
	}
	out, ok := new(big.Int).SetString(s, 0)
	if !ok {
		return nil, fmt.Errorf("invalid integer %q", s)
	}
	return out, nil
}

func toInteger(t abi.Type, v any) (any, error) {
	n, err := toBigInt(v)
	if err != nil {
		return nil, err
	}
	if t.T == abi.UintTy {
		if n.Sign() < 0 || n.BitLen() > t.Size {
			return nil, fmt.Errorf("%s out of range for %s", n, t.String())
		}
	} else {
		limit := new(big.Int).Lsh(big.NewInt(1), uint(t.Size-1))
		if n.Cmp(limit) >= 0 || n.Cmp(new(big.Int).Neg(limit)) < 0 {
			return nil, fmt.Errorf("%s out of range for %s", n, t.String())
		}
	}

	goType := t.GetType()
	if goType.Kind() == reflect.Ptr {
		return n, nil
	}
	out := reflect.New(goType).Elem()
	if t.T == abi.UintTy {
		out.SetUint(n.Uint64())
	} else {
		out.SetInt(n.Int64())
	}
	return out.Interface(), nil
}

func toFixedBytes(t abi.Type, v any) (any, error) {
	var raw []byte
	switch b := v.(type) {
	case []byte:
		raw = b
	case common.Hash:
		raw = b.Bytes()
	case string:
		decoded, err := hexutil.Decode(strings.TrimSpace(b))
		if err != nil {
			return nil, err
		}
		raw = decoded
	default:
		return nil, fmt.Errorf("cannot use %T as %s", v, t.String())
	}
	if len(raw) != t.Size {
		return nil, fmt.Errorf("expected %d bytes, got %d", t.Size, len(raw))
	}
	out := reflect.New(t.GetType()).Elem()
	reflect.Copy(out, reflect.ValueOf(raw))
	return out.Interface(), nil
}

// listValues accepts any Go slice or array, or a JSON array string.
func listValues(v any) ([]any, error) {
	if s, ok := v.(string); ok {
		dec := json.NewDecoder(strings.NewReader(strings.TrimSpace(s)))
		dec.UseNumber()
		var items []any
		if err := dec.Decode(&items); err != nil {
			return nil, fmt.Errorf("expected a JSON array: %w", err)
		}
		return items, nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, fmt.Errorf("cannot use %T as a list", v)
	}
	items := make([]any, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}
	return items, nil
}

func toList(t abi.Type, v any) (any, error) {
	items, err := listValues(v)
	if err != nil {
		return nil, err
	}
	var out reflect.Value
	if t.T == abi.ArrayTy {
		if len(items) != t.Size {
			return nil, fmt.Errorf("expected %d elements, got %d", t.Size, len(items))
		}
		out = reflect.New(t.GetType()).Elem()
	} else {
		out = reflect.MakeSlice(t.GetType(), len(items), len(items))
	}
	for i, item := range items {
		elem, err := coerce(*t.Elem, item)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out.Index(i).Set(reflect.ValueOf(elem))
	}
	return out.Interface(), nil
}

func toTuple(t abi.Type, v any) (any, error) {
	if s, ok := v.(string); ok {
		dec := json.NewDecoder(strings.NewReader(strings.TrimSpace(s)))
		dec.UseNumber()
		var decoded any
		if err := dec.Decode(&decoded); err != nil {
			return nil, fmt.Errorf("expected a JSON object or array: %w", err)
		}
		v = decoded
	}
	out := reflect.New(t.GetType()).Elem()
	assign := func(i int, value any) error {
		elem, err := coerce(*t.TupleElems[i], value)
		if err != nil {
			return fmt.Errorf("field %s: %w", t.TupleRawNames[i], err)
		}
		out.FieldByName(abi.ToCamelCase(t.TupleRawNames[i])).Set(reflect.ValueOf(elem))
		return nil
	}
	switch fields := v.(type) {
	case map[string]any:
		for i, name := range t.TupleRawNames {
			value, ok := fields[name]
			if !ok {
				return nil, fmt.Errorf("missing field %s", name)
			}
			if err := assign(i, value); err != nil {
				return nil, err
			}
		}
	case []any:
		if len(fields) != len(t.TupleElems) {
			return nil, fmt.Errorf("expected %d fields, got %d", len(t.TupleElems), len(fields))
		}
		for i, value := range fields {
			if err := assign(i, value); err != nil {
				return nil, err
			}
		}
	default:
		return nil, fmt.Errorf("cannot use %T as %s", v, t.String())
	}
	return out.Interface(), nil
}
