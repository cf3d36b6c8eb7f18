package chain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"

	"tokenLauncher/internal/model"
)

// Variant selects one of the factory's creation methods.
type Variant string

const (
	VariantOpen   Variant = "open"
	VariantLocked Variant = "locked"
	VariantHold   Variant = "hold"
)

// ParseVariant maps a name to a Variant, defaulting to open.
func ParseVariant(name string) (Variant, error) {
	switch Variant(name) {
	case "", VariantOpen:
		return VariantOpen, nil
	case VariantLocked:
		return VariantLocked, nil
	case VariantHold:
		return VariantHold, nil
	default:
		return "", fmt.Errorf("unknown variant %q", name)
	}
}

// CreateParams are the arguments of a creation call. CreatorSupply is the
// owner supply for the open variant. Unlock and Vesting only apply to locked.
type CreateParams struct {
	Variant       Variant
	Name          string
	Symbol        string
	TokenURI      string
	PoolSupply    *big.Int
	CreatorSupply *big.Int
	SwapFee       *big.Int
	Creator       common.Address
	Unlock        *big.Int
	Vesting       bool
	Value         *big.Int
}

// Outcome holds the values a creation call returns.
type Outcome struct {
	CoinID    *big.Int
	Amount0   *big.Int
	Amount1   *big.Int
	Liquidity *big.Int
}

// FactoryConfig controls retries and deadlines of the factory client.
type FactoryConfig struct {
	Address         common.Address
	SimulateRetries int
	RetryBackoff    time.Duration
	MaxBackoff      time.Duration
	ConfirmTimeout  time.Duration
}

const (
	defaultSimulateRetries = 3
	defaultRetryBackoff    = 500 * time.Millisecond
	defaultMaxBackoff      = 8 * time.Second
	defaultConfirmTimeout  = 2 * time.Minute
)

// Factory simulates, executes and confirms calls on the token factory.
type Factory struct {
	cfg     FactoryConfig
	backend Backend
	key     *ecdsa.PrivateKey
	from    common.Address
	abi     abi.ABI
	logger  *zap.Logger

	// mu serializes nonce assignment and broadcast for this signer.
	mu      sync.Mutex
	chainID *big.Int
}

// NewFactory builds a Factory signing with key.
func NewFactory(cfg FactoryConfig, backend Backend, key *ecdsa.PrivateKey, logger *zap.Logger) (*Factory, error) {
	if backend == nil {
		return nil, fmt.Errorf("chain backend is nil")
	}
	if key == nil {
		return nil, fmt.Errorf("signing key is nil")
	}
	if cfg.Address == (common.Address{}) {
		cfg.Address = common.HexToAddress(DefaultFactoryAddress)
	}
	if cfg.SimulateRetries < 0 {
		cfg.SimulateRetries = defaultSimulateRetries
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = defaultRetryBackoff
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = defaultMaxBackoff
	}
	if cfg.ConfirmTimeout <= 0 {
		cfg.ConfirmTimeout = defaultConfirmTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	parsed, err := FactoryABI()
	if err != nil {
		return nil, fmt.Errorf("parse factory abi: %w", err)
	}

	return &Factory{
		cfg:     cfg,
		backend: backend,
		key:     key,
		from:    crypto.PubkeyToAddress(key.PublicKey),
		abi:     parsed,
		logger:  logger,
	}, nil
}

// Owner returns the signer address.
func (f *Factory) Owner() common.Address {
	return f.from
}

// Address returns the factory contract address.
func (f *Factory) Address() common.Address {
	return f.cfg.Address
}

// Create simulates the call, executes it once, waits for the receipt and
// derives the token address from the simulated coin id.
func (f *Factory) Create(ctx context.Context, p CreateParams) (*model.CreationResult, error) {
	outcome, err := f.Simulate(ctx, p)
	if err != nil {
		return nil, err
	}

	method := methodFor(p.Variant)
	tokenAddress, err := DeriveTokenAddress(outcome.CoinID)
	if err != nil {
		return nil, &SimulationError{Method: method, Err: err}
	}

	txHash, err := f.Execute(ctx, p)
	if err != nil {
		return nil, err
	}

	// The transaction is broadcast; the caller going away must not abandon the receipt wait.
	receipt, err := f.Confirm(context.WithoutCancel(ctx), txHash)
	if err != nil {
		var execErr *ExecutionError
		if errors.As(err, &execErr) {
			execErr.Method = method
		}
		return nil, err
	}

	f.logger.Info("token created",
		zap.String("method", method),
		zap.String("coin_id", outcome.CoinID.String()),
		zap.String("token_address", tokenAddress.Hex()),
		zap.String("tx_hash", txHash.Hex()),
		zap.Uint64("block_number", receipt.BlockNumber.Uint64()),
	)

	return &model.CreationResult{
		CoinID:       outcome.CoinID,
		Amount0:      outcome.Amount0,
		Amount1:      outcome.Amount1,
		Liquidity:    outcome.Liquidity,
		TokenAddress: tokenAddress,
		TxHash:       txHash,
		Receipt:      receipt,
	}, nil
}

// Simulate performs the creation as an eth_call with the same value. It is
// retried on transport errors but never on a revert.
func (f *Factory) Simulate(ctx context.Context, p CreateParams) (*Outcome, error) {
	method, data, err := f.pack(p)
	if err != nil {
		return nil, &SimulationError{Method: method, Err: err}
	}

	msg := ethereum.CallMsg{
		From:  f.from,
		To:    &f.cfg.Address,
		Value: orZero(p.Value),
		Data:  data,
	}

	var resp []byte
	err = withRetry(ctx, f.cfg.SimulateRetries, f.cfg.RetryBackoff, f.cfg.MaxBackoff, func(ctx context.Context) error {
		var err error
		resp, err = f.backend.CallContract(ctx, msg, nil)
		if err == nil {
			return nil
		}
		if reverted, reason := revertInfo(err); reverted {
			return permanent(&SimulationError{Method: method, Reverted: true, Reason: reason, Err: err})
		}
		f.logger.Warn("simulate call failed", zap.String("method", method), zap.Error(err))
		return err
	})
	if err != nil {
		var simErr *SimulationError
		if errors.As(err, &simErr) {
			return nil, simErr
		}
		return nil, &SimulationError{Method: method, Err: err}
	}

	values, err := f.abi.Unpack(method, resp)
	if err != nil {
		return nil, &SimulationError{Method: method, Err: fmt.Errorf("unpack %s: %w", method, err)}
	}
	if len(values) != 4 {
		return nil, &SimulationError{Method: method, Err: fmt.Errorf("unpack %s: expected 4 values, got %d", method, len(values))}
	}

	ints := make([]*big.Int, 4)
	for i, value := range values {
		n, err := asBigInt(value)
		if err != nil {
			return nil, &SimulationError{Method: method, Err: fmt.Errorf("output %d: %w", i, err)}
		}
		ints[i] = n
	}

	outcome := &Outcome{CoinID: ints[0], Amount0: ints[1], Amount1: ints[2], Liquidity: ints[3]}
	f.logger.Debug("simulated",
		zap.String("method", method),
		zap.String("coin_id", outcome.CoinID.String()),
		zap.String("liquidity", outcome.Liquidity.String()),
	)
	return outcome, nil
}

// Execute signs and broadcasts the creation transaction exactly once.
func (f *Factory) Execute(ctx context.Context, p CreateParams) (common.Hash, error) {
	method, data, err := f.pack(p)
	if err != nil {
		return common.Hash{}, &ExecutionError{Method: method, Stage: ExecPrepare, Err: err}
	}
	value := orZero(p.Value)

	f.mu.Lock()
	defer f.mu.Unlock()

	prepErr := func(err error) error {
		return &ExecutionError{Method: method, Stage: ExecPrepare, Err: err}
	}

	chainID, err := f.chainIDLocked(ctx)
	if err != nil {
		return common.Hash{}, prepErr(fmt.Errorf("get chain id: %w", err))
	}
	nonce, err := f.backend.PendingNonceAt(ctx, f.from)
	if err != nil {
		return common.Hash{}, prepErr(fmt.Errorf("get nonce: %w", err))
	}
	gas, err := f.backend.EstimateGas(ctx, ethereum.CallMsg{
		From:  f.from,
		To:    &f.cfg.Address,
		Value: value,
		Data:  data,
	})
	if err != nil {
		return common.Hash{}, prepErr(fmt.Errorf("estimate gas: %w", err))
	}
	gas += gas / 5

	head, err := f.backend.HeaderByNumber(ctx, nil)
	if err != nil {
		return common.Hash{}, prepErr(fmt.Errorf("get head: %w", err))
	}

	var txData types.TxData
	if head.BaseFee != nil {
		tip, err := f.backend.SuggestGasTipCap(ctx)
		if err != nil {
			return common.Hash{}, prepErr(fmt.Errorf("suggest tip: %w", err))
		}
		feeCap := new(big.Int).Add(tip, new(big.Int).Mul(head.BaseFee, big.NewInt(2)))
		txData = &types.DynamicFeeTx{
			ChainID:   chainID,
			Nonce:     nonce,
			GasTipCap: tip,
			GasFeeCap: feeCap,
			Gas:       gas,
			To:        &f.cfg.Address,
			Value:     value,
			Data:      data,
		}
	} else {
		price, err := f.backend.SuggestGasPrice(ctx)
		if err != nil {
			return common.Hash{}, prepErr(fmt.Errorf("suggest gas price: %w", err))
		}
		txData = &types.LegacyTx{
			Nonce:    nonce,
			GasPrice: price,
			Gas:      gas,
			To:       &f.cfg.Address,
			Value:    value,
			Data:     data,
		}
	}

	tx, err := types.SignNewTx(f.key, types.LatestSignerForChainID(chainID), txData)
	if err != nil {
		return common.Hash{}, prepErr(fmt.Errorf("sign: %w", err))
	}

	if err := f.backend.SendTransaction(ctx, tx); err != nil {
		return tx.Hash(), &ExecutionError{Method: method, Stage: ExecSend, TxHash: tx.Hash(), Err: err}
	}

	f.logger.Info("transaction sent",
		zap.String("method", method),
		zap.String("tx_hash", tx.Hash().Hex()),
		zap.Uint64("nonce", nonce),
		zap.Uint64("gas", gas),
		zap.String("value", value.String()),
	)
	return tx.Hash(), nil
}

// Confirm polls for the receipt until it appears or ConfirmTimeout passes.
// Polling never resubmits the transaction.
func (f *Factory) Confirm(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	confirmCtx, cancel := context.WithTimeout(ctx, f.cfg.ConfirmTimeout)
	defer cancel()

	var receipt *types.Receipt
	err := withRetry(confirmCtx, math.MaxInt32, f.cfg.RetryBackoff, f.cfg.MaxBackoff, func(ctx context.Context) error {
		r, err := f.backend.TransactionReceipt(ctx, txHash)
		if err != nil {
			if !errors.Is(err, ethereum.NotFound) {
				f.logger.Warn("receipt fetch failed", zap.String("tx_hash", txHash.Hex()), zap.Error(err))
			}
			return err
		}
		receipt = r
		return nil
	})
	if err != nil {
		return nil, &ExecutionError{
			Stage:    ExecConfirm,
			TxHash:   txHash,
			TimedOut: errors.Is(err, context.DeadlineExceeded),
			Err:      err,
		}
	}

	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, &ExecutionError{
			Stage:    ExecConfirm,
			TxHash:   txHash,
			Receipt:  receipt,
			Reverted: true,
			Err:      errors.New("transaction failed"),
		}
	}
	return receipt, nil
}

func (f *Factory) chainIDLocked(ctx context.Context) (*big.Int, error) {
	if f.chainID != nil {
		return f.chainID, nil
	}
	id, err := f.backend.ChainID(ctx)
	if err != nil {
		return nil, err
	}
	f.chainID = id
	return id, nil
}

func (f *Factory) pack(p CreateParams) (string, []byte, error) {
	method := methodFor(p.Variant)
	swapFee := orZero(p.SwapFee)
	if !fitsBits(swapFee, 96) {
		return method, nil, fmt.Errorf("swap fee out of uint96 range: %s", swapFee)
	}

	args := []interface{}{
		p.Name,
		p.Symbol,
		p.TokenURI,
		orZero(p.PoolSupply),
		orZero(p.CreatorSupply),
		swapFee,
		p.Creator,
	}
	switch p.Variant {
	case "", VariantOpen, VariantHold:
	case VariantLocked:
		args = append(args, orZero(p.Unlock), p.Vesting)
	default:
		return method, nil, fmt.Errorf("unknown variant %q", p.Variant)
	}

	data, err := f.abi.Pack(method, args...)
	if err != nil {
		return method, nil, fmt.Errorf("pack %s: %w", method, err)
	}
	return method, data, nil
}

func methodFor(v Variant) string {
	switch v {
	case VariantLocked:
		return "makeLocked"
	case VariantHold:
		return "makeHold"
	default:
		return "make"
	}
}
