package launch

import (
	"context"
	"errors"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"tokenLauncher/internal/chain"
	"tokenLauncher/internal/model"
)

type fakePinner struct {
	mu sync.Mutex

	imageErr error
	jsonErr  error

	imageCalls []string
	jsonCalls  []model.TokenMetadata
}

func (p *fakePinner) UploadFromURL(_ context.Context, imageURL string) (model.ContentRef, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.imageCalls = append(p.imageCalls, imageURL)
	if p.imageErr != nil {
		return "", p.imageErr
	}
	return "ipfs://QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG", nil
}

func (p *fakePinner) UploadJSON(_ context.Context, metadata model.TokenMetadata) (model.ContentRef, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.jsonCalls = append(p.jsonCalls, metadata.WithDefaultImage())
	if p.jsonErr != nil {
		return "", p.jsonErr
	}
	return "ipfs://QmUNLLsPACCz1vLxQVkXqqLX5R1X345qqfHbsf67hvA3Nn", nil
}

func (p *fakePinner) calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.imageCalls) + len(p.jsonCalls)
}

type fakeFactory struct {
	mu sync.Mutex

	owner  common.Address
	coinID *big.Int
	err    error
	calls  []chain.CreateParams

	// onCreate runs inside Create, before the result is returned.
	onCreate func()
}

func newFakeFactory() *fakeFactory {
	coinID, _ := new(big.Int).SetString("5aaeb6053f3e94c9b9a09f33669435e7ef1beaed", 16)
	return &fakeFactory{
		owner:  common.HexToAddress("0x1111111111111111111111111111111111111111"),
		coinID: coinID,
	}
}

func (f *fakeFactory) Create(_ context.Context, p chain.CreateParams) (*model.CreationResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, p)
	if f.onCreate != nil {
		f.onCreate()
	}
	if f.err != nil {
		return nil, f.err
	}
	addr, err := chain.DeriveTokenAddress(f.coinID)
	if err != nil {
		return nil, err
	}
	return &model.CreationResult{
		CoinID:       f.coinID,
		Amount0:      big.NewInt(1),
		Amount1:      big.NewInt(2),
		Liquidity:    big.NewInt(3),
		TokenAddress: addr,
		TxHash:       common.HexToHash("0xfeed"),
		Receipt:      &types.Receipt{Status: types.ReceiptStatusSuccessful, BlockNumber: big.NewInt(1)},
	}, nil
}

func (f *fakeFactory) Owner() common.Address { return f.owner }

func (f *fakeFactory) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type failingStore struct {
	ctxErr error
}

func (s *failingStore) Insert(ctx context.Context, _ *model.TokenRecord) (int64, error) {
	s.ctxErr = ctx.Err()
	return 0, errors.New("connection refused")
}

func (s *failingStore) GetByID(context.Context, int64) (*model.TokenRecord, error) {
	return nil, errors.New("connection refused")
}

type captureReconciler struct {
	entries []model.UnpersistedLaunch
}

func (r *captureReconciler) PutUnpersisted(entries []model.UnpersistedLaunch) error {
	r.entries = append(r.entries, entries...)
	return nil
}
