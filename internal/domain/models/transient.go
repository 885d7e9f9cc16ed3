package models

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// SigningIdentity is a key-derived credential able to authorize transactions.
// It lives for a single invocation and is never persisted.
type SigningIdentity struct {
	Address common.Address
	ChainID *big.Int
	Source  string
	Opts    *bind.TransactOpts
}

// FeeEstimate is the predicted cost of a deployment. Informational only.
type FeeEstimate struct {
	Gas      uint64
	GasPrice *big.Int
	Fee      *big.Int // Gas * GasPrice, in wei
}

// Ether returns the fee formatted in ether
func (f *FeeEstimate) Ether() string {
	if f == nil || f.Fee == nil {
		return FormatEther(nil)
	}
	return FormatEther(f.Fee)
}

// DeployedContract is the result of a successful deployment
type DeployedContract struct {
	Address         common.Address
	TransactionHash common.Hash
	BlockNumber     uint64
	GasUsed         uint64
	ConstructorArgs []byte
	ABI             *abi.ABI
}

// EncodedConstructorArgs returns the constructor args as 0x-prefixed hex ("0x" when empty)
func (d *DeployedContract) EncodedConstructorArgs() string {
	return hexutil.Encode(d.ConstructorArgs)
}

var weiPerEther = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// FormatEther converts a wei amount to its ether display form.
// The result always has a fractional part: 1e18 wei -> "1.0", 1234 wei -> "0.000000000000001234".
func FormatEther(wei *big.Int) string {
	if wei == nil {
		return "0.0"
	}

	negative := wei.Sign() < 0
	abs := new(big.Int).Abs(wei)

	whole, frac := new(big.Int).QuoRem(abs, weiPerEther, new(big.Int))

	fracStr := frac.String()
	fracStr = strings.Repeat("0", 18-len(fracStr)) + fracStr
	fracStr = strings.TrimRight(fracStr, "0")
	if fracStr == "" {
		fracStr = "0"
	}

	out := whole.String() + "." + fracStr
	if negative {
		out = "-" + out
	}
	return out
}
