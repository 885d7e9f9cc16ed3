package models

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatEther(t *testing.T) {
	tests := []struct {
		name     string
		wei      string
		expected string
	}{
		{name: "one ether", wei: "1000000000000000000", expected: "1.0"},
		{name: "zero", wei: "0", expected: "0.0"},
		{name: "one wei", wei: "1", expected: "0.000000000000000001"},
		{name: "small fee", wei: "1234", expected: "0.000000000000001234"},
		{name: "fractional ether", wei: "1500000000000000000", expected: "1.5"},
		{name: "typical rollup fee", wei: "46537500000000", expected: "0.0000465375"},
		{name: "large amount", wei: "123456789000000000000000", expected: "123456.789"},
		{name: "negative", wei: "-2500000000000000000", expected: "-2.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wei, ok := new(big.Int).SetString(tt.wei, 10)
			assert.True(t, ok)
			assert.Equal(t, tt.expected, FormatEther(wei))
		})
	}

	assert.Equal(t, "0.0", FormatEther(nil))
}

func TestFeeEstimateEther(t *testing.T) {
	fee := &FeeEstimate{Gas: 21000, GasPrice: big.NewInt(250000000), Fee: big.NewInt(5250000000000)}
	assert.Equal(t, "0.00000525", fee.Ether())

	var missing *FeeEstimate
	assert.Equal(t, "0.0", missing.Ether())
}

func TestDeployedContractEncodedConstructorArgs(t *testing.T) {
	assert.Equal(t, "0x", (&DeployedContract{}).EncodedConstructorArgs())
	assert.Equal(t, "0x2a", (&DeployedContract{ConstructorArgs: []byte{0x2a}}).EncodedConstructorArgs())
}

func TestBytecodeObjectUnmarshal(t *testing.T) {
	t.Run("foundry object form", func(t *testing.T) {
		var a Artifact
		err := json.Unmarshal([]byte(`{"abi":[],"bytecode":{"object":"0x6001"},"metadata":{"compiler":{"version":"0.8.24"}}}`), &a)
		assert.NoError(t, err)
		assert.Equal(t, "0x6001", a.Bytecode.Object)
		assert.Equal(t, "0.8.24", a.CompilerVersion())
	})

	t.Run("hardhat string form", func(t *testing.T) {
		var a Artifact
		err := json.Unmarshal([]byte(`{"contractName":"TestContract","sourceName":"contracts/zkSync.sol","abi":[],"bytecode":"0x6002","deployedBytecode":"0x00"}`), &a)
		assert.NoError(t, err)
		assert.Equal(t, "0x6002", a.Bytecode.Object)
		assert.Equal(t, "TestContract", a.ContractName)
		assert.False(t, a.Bytecode.IsEmpty())
	})

	t.Run("string metadata is ignored", func(t *testing.T) {
		var a Artifact
		err := json.Unmarshal([]byte(`{"abi":[],"bytecode":"0x","metadata":"{\"compiler\":{}}"}`), &a)
		assert.NoError(t, err)
		assert.True(t, a.Bytecode.IsEmpty())
	})
}

func TestBytecodeObjectBytes(t *testing.T) {
	code, err := BytecodeObject{Object: "6001"}.Bytes()
	assert.NoError(t, err)
	assert.Equal(t, []byte{0x60, 0x01}, code)

	assert.False(t, BytecodeObject{Object: "0x73__$abc$__"}.IsLinked())
}
