package launch

import (
	"context"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"tokenLauncher/internal/metrics"
	"tokenLauncher/internal/model"
)

// Launcher runs one launch attempt end to end.
type Launcher interface {
	Launch(ctx context.Context, req model.LaunchRequest) (*model.LaunchResult, error)
}

// Mode selects the Launcher built at startup.
type Mode string

const (
	ModeProduction  Mode = "production"
	ModeDevelopment Mode = "development"
)

// ParseMode accepts production and development, defaulting to development.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeProduction:
		return ModeProduction, nil
	case "", ModeDevelopment:
		return ModeDevelopment, nil
	default:
		return "", fmt.Errorf("unknown mode %q", s)
	}
}

// ShortCircuit validates requests and answers with a canned address without
// any external call. It serves non-production deployments.
type ShortCircuit struct {
	Address common.Address
	Metrics *metrics.Metrics
}

var _ Launcher = (*ShortCircuit)(nil)

func (s *ShortCircuit) Launch(_ context.Context, req model.LaunchRequest) (*model.LaunchResult, error) {
	if _, err := Validate(req); err != nil {
		s.record(KindValidation)
		return nil, err
	}
	s.record("")
	return &model.LaunchResult{TokenAddress: s.Address.Hex()}, nil
}

func (s *ShortCircuit) record(kind Kind) {
	s.Metrics.RecordLaunch(outcomeFor(kind, true))
}
