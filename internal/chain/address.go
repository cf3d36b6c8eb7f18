package chain

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// ErrCoinIDOverflow is returned when a coin id cannot be packed into an address.
var ErrCoinIDOverflow = errors.New("coin id does not fit in 160 bits")

var coinIDLimit = new(big.Int).Lsh(big.NewInt(1), 8*common.AddressLength)

// DeriveTokenAddress left-pads coinID into a 20-byte address.
func DeriveTokenAddress(coinID *big.Int) (common.Address, error) {
	if coinID == nil {
		return common.Address{}, fmt.Errorf("%w: nil", ErrCoinIDOverflow)
	}
	if coinID.Sign() < 0 || coinID.Cmp(coinIDLimit) >= 0 {
		return common.Address{}, fmt.Errorf("%w: %s", ErrCoinIDOverflow, coinID.String())
	}

	var addr common.Address
	coinID.FillBytes(addr[:])
	return addr, nil
}

// CoinIDFromAddress is the inverse of DeriveTokenAddress.
func CoinIDFromAddress(addr common.Address) *big.Int {
	return new(big.Int).SetBytes(addr.Bytes())
}
