package model

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// CreationResult is the outcome of a factory creation call.
type CreationResult struct {
	CoinID       *big.Int
	Amount0      *big.Int
	Amount1      *big.Int
	Liquidity    *big.Int
	TokenAddress common.Address
	TxHash       common.Hash
	Receipt      *types.Receipt
}
