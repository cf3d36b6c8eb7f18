package chain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rpc"
)

// SimulationError reports a failed read-only call. No value has been sent.
type SimulationError struct {
	Method   string
	Reverted bool
	Reason   string
	Err      error
}

func (e *SimulationError) Error() string {
	if e.Reverted {
		if e.Reason != "" {
			return fmt.Sprintf("simulate %s: reverted: %s", e.Method, e.Reason)
		}
		return fmt.Sprintf("simulate %s: reverted", e.Method)
	}
	return fmt.Sprintf("simulate %s: %v", e.Method, e.Err)
}

func (e *SimulationError) Unwrap() error { return e.Err }

// ExecStage marks how far an execution got before failing.
type ExecStage string

const (
	ExecPrepare ExecStage = "prepare"
	ExecSend    ExecStage = "send"
	ExecConfirm ExecStage = "confirm"
)

// ExecutionError reports a failure of the value-bearing transaction. Unless
// Stage is ExecPrepare the transaction may have been broadcast.
type ExecutionError struct {
	Method   string
	Stage    ExecStage
	TxHash   common.Hash
	Receipt  *types.Receipt
	Reverted bool
	TimedOut bool
	Err      error
}

func (e *ExecutionError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "execute %s: %s", e.Method, e.Stage)
	if e.TxHash != (common.Hash{}) {
		fmt.Fprintf(&b, " tx %s", e.TxHash.Hex())
	}
	switch {
	case e.Reverted:
		b.WriteString(": reverted")
	case e.TimedOut:
		b.WriteString(": confirmation timed out")
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// ValueAtRisk reports whether the transaction may have been broadcast.
func (e *ExecutionError) ValueAtRisk() bool {
	return e.Stage != ExecPrepare
}

// revertInfo reports whether err is a contract revert and decodes its reason.
func revertInfo(err error) (bool, string) {
	if err == nil {
		return false, ""
	}
	var dataErr rpc.DataError
	if errors.As(err, &dataErr) {
		return true, decodeRevert(dataErr.ErrorData())
	}
	if strings.Contains(strings.ToLower(err.Error()), "execution reverted") {
		return true, ""
	}
	return false, ""
}

func decodeRevert(data interface{}) string {
	encoded, ok := data.(string)
	if !ok {
		return ""
	}
	raw, err := hexutil.Decode(encoded)
	if err != nil {
		return encoded
	}
	if reason, err := abi.UnpackRevert(raw); err == nil {
		return reason
	}
	return encoded
}
