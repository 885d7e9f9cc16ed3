package abi

import (
	"encoding/json"
	"fmt"
	"math/big"
	"reflect"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/trebuchet-org/treb-deploy/internal/domain"
	"github.com/trebuchet-org/treb-deploy/internal/domain/models"
	"github.com/trebuchet-org/treb-deploy/internal/usecase"
)

var bigIntType = reflect.TypeOf(&big.Int{})

// ConstructorEncoder packs command line constructor arguments against an artifact ABI
type ConstructorEncoder struct{}

// NewConstructorEncoder creates a new constructor encoder
func NewConstructorEncoder() *ConstructorEncoder {
	return &ConstructorEncoder{}
}

// ParseABI parses the ABI embedded in an artifact
func (e *ConstructorEncoder) ParseABI(artifact *models.Artifact) (*abi.ABI, error) {
	if artifact == nil || len(artifact.ABI) == 0 {
		return &abi.ABI{}, nil
	}

	parsed, err := abi.JSON(strings.NewReader(string(artifact.ABI)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse ABI: %w", err)
	}
	return &parsed, nil
}

// EncodeConstructorArgs converts string arguments to the constructor input types and packs them
func (e *ConstructorEncoder) EncodeConstructorArgs(contractABI *abi.ABI, args []string) ([]byte, error) {
	var inputs abi.Arguments
	if contractABI != nil {
		inputs = contractABI.Constructor.Inputs
	}

	if len(args) != len(inputs) {
		return nil, fmt.Errorf("%w: constructor(%s) expects %d arguments, got %d",
			domain.ErrConstructorArgs, Signature(inputs), len(inputs), len(args))
	}
	if len(inputs) == 0 {
		return []byte{}, nil
	}

	values := make([]any, len(inputs))
	for i, input := range inputs {
		value, err := parseValue(args[i], input.Type)
		if err != nil {
			name := input.Name
			if name == "" {
				name = fmt.Sprintf("#%d", i)
			}
			return nil, fmt.Errorf("%w: argument %s (%s): %v", domain.ErrConstructorArgs, name, input.Type.String(), err)
		}
		values[i] = value
	}

	packed, err := inputs.Pack(values...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrConstructorArgs, err)
	}
	return packed, nil
}

// DecodeConstructorArgs unpacks encoded constructor arguments for display
func (e *ConstructorEncoder) DecodeConstructorArgs(contractABI *abi.ABI, data []byte) ([]any, error) {
	if len(data) == 0 {
		return []any{}, nil
	}
	if contractABI == nil || len(contractABI.Constructor.Inputs) == 0 {
		return nil, fmt.Errorf("no constructor found in ABI")
	}

	values, err := contractABI.Constructor.Inputs.Unpack(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode constructor args: %w", err)
	}
	return values, nil
}

// Signature renders argument types and names, e.g. "address owner, uint256 supply"
func Signature(inputs abi.Arguments) string {
	parts := make([]string, 0, len(inputs))
	for _, input := range inputs {
		if input.Name != "" {
			parts = append(parts, input.Type.String()+" "+input.Name)
		} else {
			parts = append(parts, input.Type.String())
		}
	}
	return strings.Join(parts, ", ")
}

// parseValue converts a command line string into the Go value go-ethereum packs for t
func parseValue(raw string, t abi.Type) (any, error) {
	raw = strings.TrimSpace(raw)

	switch t.T {
	case abi.AddressTy:
		if !common.IsHexAddress(raw) {
			return nil, fmt.Errorf("%w: %q", domain.ErrInvalidAddress, raw)
		}
		return common.HexToAddress(raw), nil

	case abi.BoolTy:
		return strconv.ParseBool(raw)

	case abi.StringTy:
		return raw, nil

	case abi.BytesTy:
		return hexutil.Decode(raw)

	case abi.FixedBytesTy:
		b, err := hexutil.Decode(raw)
		if err != nil {
			return nil, err
		}
		if len(b) != t.Size {
			return nil, fmt.Errorf("expected %d bytes, got %d", t.Size, len(b))
		}
		arr := reflect.New(t.GetType()).Elem()
		reflect.Copy(arr, reflect.ValueOf(b))
		return arr.Interface(), nil

	case abi.IntTy, abi.UintTy:
		return parseInteger(raw, t)

	case abi.SliceTy, abi.ArrayTy:
		return parseList(raw, t)

	default:
		return nil, fmt.Errorf("type %s is not supported on the command line", t.String())
	}
}

func parseInteger(raw string, t abi.Type) (any, error) {
	n, ok := new(big.Int).SetString(strings.ReplaceAll(raw, "_", ""), 0)
	if !ok {
		return nil, fmt.Errorf("invalid integer %q", raw)
	}
	if t.T == abi.UintTy && n.Sign() < 0 {
		return nil, fmt.Errorf("negative value %s for unsigned type", n)
	}
	if !fitsInteger(n, t) {
		return nil, fmt.Errorf("value %s overflows %s", n, t.String())
	}

	goType := t.GetType()
	if goType == bigIntType {
		return n, nil
	}

	v := reflect.New(goType).Elem()
	if t.T == abi.UintTy {
		v.SetUint(n.Uint64())
	} else {
		if !n.IsInt64() || v.OverflowInt(n.Int64()) {
			return nil, fmt.Errorf("value %s overflows %s", n, t.String())
		}
		v.SetInt(n.Int64())
	}
	return v.Interface(), nil
}

// fitsInteger bounds uintN to [0, 2^N) and intN to [-2^(N-1), 2^(N-1))
func fitsInteger(n *big.Int, t abi.Type) bool {
	if t.T == abi.UintTy {
		return n.BitLen() <= t.Size
	}
	limit := new(big.Int).Lsh(big.NewInt(1), uint(t.Size-1))
	return n.Cmp(limit) < 0 && n.Cmp(new(big.Int).Neg(limit)) >= 0
}

// parseList accepts a JSON array, e.g. ["0xabc...","0xdef..."] or [1,2,3]
func parseList(raw string, t abi.Type) (any, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &elems); err != nil {
		return nil, fmt.Errorf("expected a JSON array: %w", err)
	}

	var list reflect.Value
	if t.T == abi.ArrayTy {
		if len(elems) != t.Size {
			return nil, fmt.Errorf("expected %d elements, got %d", t.Size, len(elems))
		}
		list = reflect.New(t.GetType()).Elem()
	} else {
		list = reflect.MakeSlice(t.GetType(), len(elems), len(elems))
	}

	for i, elem := range elems {
		var s string
		if err := json.Unmarshal(elem, &s); err != nil {
			s = string(elem)
		}
		value, err := parseValue(s, *t.Elem)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		list.Index(i).Set(reflect.ValueOf(value))
	}

	return list.Interface(), nil
}

var _ usecase.ConstructorEncoder = (*ConstructorEncoder)(nil)
