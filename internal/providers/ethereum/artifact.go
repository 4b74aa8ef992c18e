package ethereum

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Artifact is a compiled token contract: its ABI and creation bytecode
type Artifact struct {
	ABI      abi.ABI
	Bytecode []byte
}

// artifactFile covers the hardhat/truffle layout ("bytecode": "0x...")
// and the foundry layout ("bytecode": {"object": "0x..."})
type artifactFile struct {
	ABI      json.RawMessage `json:"abi"`
	Bytecode json.RawMessage `json:"bytecode"`
}

// ParseArtifact reads a compiled contract artifact
func ParseArtifact(r io.Reader) (*Artifact, error) {
	var file artifactFile
	if err := json.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to decode artifact: %w", err)
	}
	if len(file.ABI) == 0 {
		return nil, errors.New("artifact has no abi")
	}

	parsedABI, err := abi.JSON(strings.NewReader(string(file.ABI)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse abi: %w", err)
	}

	var code string
	if err := json.Unmarshal(file.Bytecode, &code); err != nil {
		var object struct {
			Object string `json:"object"`
		}
		if err := json.Unmarshal(file.Bytecode, &object); err != nil {
			return nil, errors.New("artifact bytecode must be a hex string or an object with an object field")
		}
		code = object.Object
	}
	if !strings.HasPrefix(code, "0x") {
		code = "0x" + code
	}
	bytecode, err := hexutil.Decode(code)
	if err != nil {
		return nil, fmt.Errorf("failed to decode bytecode: %w", err)
	}
	if len(bytecode) == 0 {
		return nil, errors.New("artifact has empty bytecode")
	}

	if _, ok := parsedABI.Methods[enableTradingMethod]; !ok {
		return nil, fmt.Errorf("abi has no %s method", enableTradingMethod)
	}

	return &Artifact{ABI: parsedABI, Bytecode: bytecode}, nil
}
