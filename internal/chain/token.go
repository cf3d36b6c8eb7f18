package chain

import (
	"bytes"
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"tokenLauncher/internal/model"
)

const erc20ABIStringJSON = `[
  {"inputs": [], "name": "decimals", "outputs": [{"type": "uint8"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "symbol", "outputs": [{"type": "string"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "name", "outputs": [{"type": "string"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "totalSupply", "outputs": [{"type": "uint256"}], "stateMutability": "view", "type": "function"}
]`

const erc20ABIBytes32JSON = `[
  {"inputs": [], "name": "symbol", "outputs": [{"type": "bytes32"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "name", "outputs": [{"type": "bytes32"}], "stateMutability": "view", "type": "function"}
]`

var (
	erc20ABIString      abi.ABI
	erc20ABIStringOnce  sync.Once
	erc20ABIStringErr   error
	erc20ABIBytes32     abi.ABI
	erc20ABIBytes32Once sync.Once
	erc20ABIBytes32Err  error
)

func erc20StringABI() (abi.ABI, error) {
	erc20ABIStringOnce.Do(func() {
		erc20ABIString, erc20ABIStringErr = abi.JSON(strings.NewReader(erc20ABIStringJSON))
	})
	return erc20ABIString, erc20ABIStringErr
}

func erc20Bytes32ABI() (abi.ABI, error) {
	erc20ABIBytes32Once.Do(func() {
		erc20ABIBytes32, erc20ABIBytes32Err = abi.JSON(strings.NewReader(erc20ABIBytes32JSON))
	})
	return erc20ABIBytes32, erc20ABIBytes32Err
}

// ContractCaller performs read-only contract calls.
type ContractCaller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// ReadToken loads ERC20 fields of a launched token. Name and symbol fall back
// to bytes32 encodings and are left empty when neither call succeeds.
func ReadToken(ctx context.Context, caller ContractCaller, token common.Address, logger *zap.Logger) (model.TokenInfo, error) {
	info := model.TokenInfo{
		Address: token.Hex(),
		CoinID:  CoinIDFromAddress(token).String(),
	}
	if caller == nil {
		return info, fmt.Errorf("contract caller is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	stringABI, err := erc20StringABI()
	if err != nil {
		return info, fmt.Errorf("parse erc20 string abi: %w", err)
	}
	bytes32ABI, err := erc20Bytes32ABI()
	if err != nil {
		return info, fmt.Errorf("parse erc20 bytes32 abi: %w", err)
	}

	call := func(method string, parsed abi.ABI) ([]interface{}, error) {
		data, err := parsed.Pack(method)
		if err != nil {
			return nil, fmt.Errorf("pack %s: %w", method, err)
		}
		resp, err := caller.CallContract(ctx, ethereum.CallMsg{To: &token, Data: data}, nil)
		if err != nil {
			return nil, fmt.Errorf("call %s: %w", method, err)
		}
		values, err := parsed.Unpack(method, resp)
		if err != nil {
			return nil, fmt.Errorf("unpack %s: %w", method, err)
		}
		if len(values) == 0 {
			return nil, fmt.Errorf("unpack %s: no values", method)
		}
		return values, nil
	}

	values, err := call("decimals", stringABI)
	if err != nil {
		return info, err
	}
	decimals, ok := values[0].(uint8)
	if !ok {
		return info, fmt.Errorf("decimals: unsupported type %T", values[0])
	}
	info.Decimals = decimals

	values, err = call("totalSupply", stringABI)
	if err != nil {
		return info, err
	}
	supply, err := asBigInt(values[0])
	if err != nil {
		return info, fmt.Errorf("total supply: %w", err)
	}
	info.TotalSupply = supply.String()

	text := func(method string) string {
		if values, err := call(method, stringABI); err == nil {
			if s, ok := values[0].(string); ok {
				return s
			}
		}
		values, err := call(method, bytes32ABI)
		if err != nil {
			logger.Debug("token call failed", zap.String("method", method), zap.String("token", token.Hex()), zap.Error(err))
			return ""
		}
		s, _ := bytes32ToString(values[0])
		return s
	}
	info.Name = text("name")
	info.Symbol = text("symbol")

	return info, nil
}

func bytes32ToString(value interface{}) (string, bool) {
	switch v := value.(type) {
	case [32]byte:
		return string(bytes.TrimRight(v[:], "\x00")), true
	case []byte:
		return string(bytes.TrimRight(v, "\x00")), true
	default:
		return "", false
	}
}
