package abi

import (
	"fmt"
	"math/big"
	"reflect"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// maxDisplayBytes truncates dynamic bytes in terminal output
const maxDisplayBytes = 32

// DecodedInput is one named constructor argument
type DecodedInput struct {
	Name  string
	Type  string
	Value any
}

// NameValues pairs decoded values with their ABI inputs. Extra values are dropped.
func NameValues(inputs abi.Arguments, values []any) []DecodedInput {
	n := min(len(inputs), len(values))
	decoded := make([]DecodedInput, n)
	for i := range n {
		decoded[i] = DecodedInput{Name: inputs[i].Name, Type: inputs[i].Type.String(), Value: values[i]}
	}
	return decoded
}

// FormatValue renders a decoded value close to how it would be written in Solidity:
// checksummed addresses, quoted strings, hex bytes and bracketed arrays.
func FormatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case common.Address:
		return v.Hex()
	case *big.Int:
		return v.String()
	case string:
		return strconv.Quote(v)
	case []byte:
		if len(v) > maxDisplayBytes {
			return fmt.Sprintf("%s… (%d bytes)", hexutil.Encode(v[:maxDisplayBytes]), len(v))
		}
		return hexutil.Encode(v)
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Array:
		// bytesN decodes to [N]byte
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			raw := make([]byte, rv.Len())
			reflect.Copy(reflect.ValueOf(raw), rv)
			return hexutil.Encode(raw)
		}
		return formatList(rv)
	case reflect.Slice:
		return formatList(rv)
	case reflect.Struct:
		// tuples decode to anonymous structs
		fields := make([]string, rv.NumField())
		for i := range fields {
			fields[i] = FormatValue(rv.Field(i).Interface())
		}
		return "(" + strings.Join(fields, ", ") + ")"
	default:
		return fmt.Sprint(value)
	}
}

func formatList(rv reflect.Value) string {
	items := make([]string, rv.Len())
	for i := range items {
		items[i] = FormatValue(rv.Index(i).Interface())
	}
	return "[" + strings.Join(items, ", ") + "]"
}
