package launch

import (
	"context"
	"errors"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"tokenLauncher/internal/chain"
	"tokenLauncher/internal/metrics"
	"tokenLauncher/internal/model"
	"tokenLauncher/internal/storage"
)

// Pinner publishes launch content.
type Pinner interface {
	UploadFromURL(ctx context.Context, imageURL string) (model.ContentRef, error)
	UploadJSON(ctx context.Context, metadata model.TokenMetadata) (model.ContentRef, error)
}

// TokenFactory creates tokens on chain.
type TokenFactory interface {
	Create(ctx context.Context, p chain.CreateParams) (*model.CreationResult, error)
	Owner() common.Address
}

// Config holds the fixed launch parameters.
type Config struct {
	PoolSupply     *big.Int
	Value          *big.Int
	LaunchTimeout  time.Duration
	PersistTimeout time.Duration
}

var (
	DefaultPoolSupply = new(big.Int).Exp(big.NewInt(10), big.NewInt(27), nil)
	DefaultValue      = big.NewInt(1_000_000_000_000)
)

const defaultPersistTimeout = 10 * time.Second

// Orchestrator pins content, creates the token and records it.
type Orchestrator struct {
	cfg        Config
	pinner     Pinner
	factory    TokenFactory
	store      storage.TokenStore
	reconciler storage.Reconciler
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

var _ Launcher = (*Orchestrator)(nil)

// NewOrchestrator wires the collaborators. reconciler and m may be nil.
func NewOrchestrator(
	cfg Config,
	pinner Pinner,
	factory TokenFactory,
	store storage.TokenStore,
	reconciler storage.Reconciler,
	m *metrics.Metrics,
	logger *zap.Logger,
) *Orchestrator {
	if cfg.PoolSupply == nil {
		cfg.PoolSupply = new(big.Int).Set(DefaultPoolSupply)
	}
	if cfg.Value == nil {
		cfg.Value = new(big.Int).Set(DefaultValue)
	}
	if cfg.PersistTimeout <= 0 {
		cfg.PersistTimeout = defaultPersistTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		cfg:        cfg,
		pinner:     pinner,
		factory:    factory,
		store:      store,
		reconciler: reconciler,
		metrics:    m,
		logger:     logger,
	}
}

// Options override the open-pool defaults of a single launch.
type Options struct {
	Variant       chain.Variant
	CreatorSupply *big.Int
	SwapFee       *big.Int
	Unlock        *big.Int
	Vesting       bool

	// ImageRef is an image pinned beforehand. When set, the request's image_url is not fetched.
	ImageRef model.ContentRef
}

// Launch runs validate, pin image, pin metadata, create, persist with the
// open variant, zero creator supply and zero swap fee.
func (o *Orchestrator) Launch(ctx context.Context, req model.LaunchRequest) (*model.LaunchResult, error) {
	return o.LaunchWith(ctx, req, Options{})
}

// LaunchWith is Launch with per-launch options. The steps are sequential and
// the chain call is attempted at most once.
func (o *Orchestrator) LaunchWith(ctx context.Context, req model.LaunchRequest, opts Options) (*model.LaunchResult, error) {
	logger := o.logger.With(zap.String("launch_id", uuid.NewString()))

	req, err := Validate(req)
	if err != nil {
		return nil, o.fail(logger, err)
	}
	logger = logger.With(zap.String("name", req.Name), zap.String("symbol", req.Symbol))

	if o.cfg.LaunchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.cfg.LaunchTimeout)
		defer cancel()
	}

	imageRef := opts.ImageRef
	if imageRef == "" && req.ImageURL != "" {
		start := time.Now()
		imageRef, err = o.pinner.UploadFromURL(ctx, req.ImageURL)
		o.metrics.ObserveStage(metrics.StageImage, start, err)
		if err != nil {
			return nil, o.fail(logger, &Error{Kind: KindUpstream, Op: "pin image", Err: err})
		}
	}

	start := time.Now()
	tokenURI, err := o.pinner.UploadJSON(ctx, model.TokenMetadata{
		Name:        req.Name,
		Symbol:      req.Symbol,
		Description: req.Description,
		Image:       imageRef,
	})
	o.metrics.ObserveStage(metrics.StageMetadata, start, err)
	if err != nil {
		return nil, o.fail(logger, &Error{Kind: KindUpstream, Op: "pin metadata", Err: err})
	}

	start = time.Now()
	creation, err := o.factory.Create(ctx, chain.CreateParams{
		Variant:       variantOr(opts.Variant),
		Name:          req.Name,
		Symbol:        req.Symbol,
		TokenURI:      tokenURI.String(),
		PoolSupply:    o.cfg.PoolSupply,
		CreatorSupply: zeroIfNil(opts.CreatorSupply),
		SwapFee:       zeroIfNil(opts.SwapFee),
		Creator:       o.factory.Owner(),
		Unlock:        zeroIfNil(opts.Unlock),
		Vesting:       opts.Vesting,
		Value:         o.cfg.Value,
	})
	o.metrics.ObserveStage(metrics.StageChain, start, err)
	if err != nil {
		return nil, o.fail(logger, chainError(err))
	}

	if imageRef == "" {
		imageRef = model.PlaceholderImage
	}
	result := &model.LaunchResult{
		TokenAddress: creation.TokenAddress.Hex(),
		CoinID:       creation.CoinID.String(),
		TxHash:       creation.TxHash.Hex(),
		TokenURI:     tokenURI,
		ImageURI:     imageRef,
	}
	logger = logger.With(zap.String("token_address", result.TokenAddress), zap.String("tx_hash", result.TxHash))

	record := &model.TokenRecord{
		Name:         req.Name,
		Symbol:       req.Symbol,
		Description:  model.OptionalString(req.Description),
		TokenAddress: model.OptionalString(result.TokenAddress),
		Twitter:      model.OptionalString(req.Twitter),
		Telegram:     model.OptionalString(req.Telegram),
		Website:      model.OptionalString(req.Website),
		ImageURL:     imageRef.String(),
	}
	o.persist(ctx, logger, record, result)

	o.metrics.RecordLaunch(metrics.OutcomeSuccess)
	logger.Info("token launched",
		zap.String("coin_id", result.CoinID),
		zap.String("token_uri", result.TokenURI.String()),
		zap.Int64("record_id", result.RecordID),
		zap.Bool("persisted", result.Persisted),
	)
	return result, nil
}

// persist stores the record on a context detached from the caller. The chain
// effect already happened, so a failure here is reported but not returned.
func (o *Orchestrator) persist(ctx context.Context, logger *zap.Logger, record *model.TokenRecord, result *model.LaunchResult) {
	persistCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.cfg.PersistTimeout)
	defer cancel()

	start := time.Now()
	id, err := o.store.Insert(persistCtx, record)
	o.metrics.ObserveStage(metrics.StagePersist, start, err)
	if err == nil {
		result.RecordID = id
		result.Persisted = true
		return
	}

	o.metrics.RecordPersistenceFailure()
	logger.Error("token record not persisted",
		zap.Error(err),
		zap.String("coin_id", result.CoinID),
		zap.String("token_uri", result.TokenURI.String()),
		zap.Any("record", record),
	)

	if o.reconciler == nil {
		return
	}
	entry := model.UnpersistedLaunch{
		Record:   *record,
		CoinID:   result.CoinID,
		TxHash:   result.TxHash,
		TokenURI: result.TokenURI,
		Error:    err.Error(),
		At:       time.Now().UTC().Format(time.RFC3339),
	}
	if err := o.reconciler.PutUnpersisted([]model.UnpersistedLaunch{entry}); err != nil {
		logger.Error("reconciliation write failed", zap.Error(err))
	}
}

func (o *Orchestrator) fail(logger *zap.Logger, err error) error {
	kind := KindOf(err)
	o.metrics.RecordLaunch(outcomeFor(kind, false))

	var execErr *chain.ExecutionError
	switch {
	case kind == KindValidation:
		logger.Info("launch rejected", zap.Error(err))
	case errors.As(err, &execErr) && execErr.ValueAtRisk():
		logger.Error("chain execution failed, value may be spent",
			zap.String("kind", string(kind)),
			zap.String("method", execErr.Method),
			zap.String("stage", string(execErr.Stage)),
			zap.String("tx_hash", execErr.TxHash.Hex()),
			zap.Bool("reverted", execErr.Reverted),
			zap.Bool("timed_out", execErr.TimedOut),
			zap.Error(err),
		)
	default:
		logger.Error("launch failed", zap.String("kind", string(kind)), zap.Error(err))
	}
	return err
}

func chainError(err error) error {
	var simErr *chain.SimulationError
	if errors.As(err, &simErr) {
		return &Error{Kind: KindChainSimulation, Op: "create token", Err: err}
	}
	var execErr *chain.ExecutionError
	if errors.As(err, &execErr) {
		return &Error{Kind: KindChainExecution, Op: "create token", Err: err}
	}
	return &Error{Kind: KindInternal, Op: "create token", Err: err}
}

func outcomeFor(kind Kind, shortCircuit bool) string {
	switch kind {
	case "":
		if shortCircuit {
			return metrics.OutcomeShortCircuit
		}
		return metrics.OutcomeSuccess
	case KindValidation:
		return metrics.OutcomeValidation
	case KindUpstream:
		return metrics.OutcomeUpstream
	case KindChainSimulation:
		return metrics.OutcomeChainSimulation
	case KindChainExecution:
		return metrics.OutcomeChainExecution
	default:
		return metrics.OutcomeInternal
	}
}

func variantOr(v chain.Variant) chain.Variant {
	if v == "" {
		return chain.VariantOpen
	}
	return v
}

func zeroIfNil(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}
