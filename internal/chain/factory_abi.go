package chain

import (
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// DefaultFactoryAddress is the CoinChan factory deployment.
const DefaultFactoryAddress = "0x00000000007762d8dcadeddd5aa5e9a5e2b7c6f5"

const factoryABIJSON = `[
  {
    "inputs": [
      {"internalType": "string", "name": "name", "type": "string"},
      {"internalType": "string", "name": "symbol", "type": "string"},
      {"internalType": "string", "name": "tokenURI", "type": "string"},
      {"internalType": "uint256", "name": "poolSupply", "type": "uint256"},
      {"internalType": "uint256", "name": "ownerSupply", "type": "uint256"},
      {"internalType": "uint96", "name": "swapFee", "type": "uint96"},
      {"internalType": "address", "name": "owner", "type": "address"}
    ],
    "name": "make",
    "outputs": [
      {"internalType": "uint256", "name": "coinId", "type": "uint256"},
      {"internalType": "uint256", "name": "amount0", "type": "uint256"},
      {"internalType": "uint256", "name": "amount1", "type": "uint256"},
      {"internalType": "uint256", "name": "liquidity", "type": "uint256"}
    ],
    "stateMutability": "payable",
    "type": "function"
  },
  {
    "inputs": [
      {"internalType": "string", "name": "name", "type": "string"},
      {"internalType": "string", "name": "symbol", "type": "string"},
      {"internalType": "string", "name": "tokenURI", "type": "string"},
      {"internalType": "uint256", "name": "poolSupply", "type": "uint256"},
      {"internalType": "uint256", "name": "creatorSupply", "type": "uint256"},
      {"internalType": "uint96", "name": "swapFee", "type": "uint96"},
      {"internalType": "address", "name": "creator", "type": "address"},
      {"internalType": "uint256", "name": "unlock", "type": "uint256"},
      {"internalType": "bool", "name": "vesting", "type": "bool"}
    ],
    "name": "makeLocked",
    "outputs": [
      {"internalType": "uint256", "name": "coinId", "type": "uint256"},
      {"internalType": "uint256", "name": "amount0", "type": "uint256"},
      {"internalType": "uint256", "name": "amount1", "type": "uint256"},
      {"internalType": "uint256", "name": "liquidity", "type": "uint256"}
    ],
    "stateMutability": "payable",
    "type": "function"
  },
  {
    "inputs": [
      {"internalType": "string", "name": "name", "type": "string"},
      {"internalType": "string", "name": "symbol", "type": "string"},
      {"internalType": "string", "name": "tokenURI", "type": "string"},
      {"internalType": "uint256", "name": "poolSupply", "type": "uint256"},
      {"internalType": "uint256", "name": "creatorSupply", "type": "uint256"},
      {"internalType": "uint96", "name": "swapFee", "type": "uint96"},
      {"internalType": "address", "name": "creator", "type": "address"}
    ],
    "name": "makeHold",
    "outputs": [
      {"internalType": "uint256", "name": "coinId", "type": "uint256"},
      {"internalType": "uint256", "name": "amount0", "type": "uint256"},
      {"internalType": "uint256", "name": "amount1", "type": "uint256"},
      {"internalType": "uint256", "name": "liquidity", "type": "uint256"}
    ],
    "stateMutability": "payable",
    "type": "function"
  }
]`

var (
	factoryABI     abi.ABI
	factoryABIOnce sync.Once
	factoryABIErr  error
)

// FactoryABI returns the parsed factory ABI.
func FactoryABI() (abi.ABI, error) {
	factoryABIOnce.Do(func() {
		factoryABI, factoryABIErr = abi.JSON(strings.NewReader(factoryABIJSON))
	})
	return factoryABI, factoryABIErr
}
