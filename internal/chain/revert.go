package chain

import (
	"context"
	"errors"
	"fmt"
	"strings"

	clierr "github.com/augmented-finance/augmented-cli/internal/errors"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rpc"
)

func decodeRevertData(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	if reason, err := abi.UnpackRevert(data); err == nil {
		return reason
	}
	if len(data) >= 4 {
		return fmt.Sprintf("custom error 0x%x", data[:4])
	}
	return ""
}

func decodeRevertFromError(err error) string {
	var dataErr rpc.DataError
	if !errors.As(err, &dataErr) {
		return ""
	}
	switch v := dataErr.ErrorData().(type) {
	case string:
		return decodeRevertData(common.FromHex(v))
	case []byte:
		return decodeRevertData(v)
	}
	return ""
}

// wrapEVMError classifies a node error: reverts get CodeRevert with the decoded
// reason, deadline expiry gets CodeTimeout, everything else is unavailability.
func wrapEVMError(message string, err error) error {
	if err == nil {
		return nil
	}
	if reason := decodeRevertFromError(err); reason != "" {
		return clierr.Wrap(clierr.CodeRevert, fmt.Sprintf("%s: execution reverted: %s", message, reason), err)
	}
	if strings.Contains(strings.ToLower(err.Error()), "execution reverted") {
		return clierr.Wrap(clierr.CodeRevert, message, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return clierr.Wrap(clierr.CodeTimeout, message, err)
	}
	return clierr.Wrap(clierr.CodeUnavailable, message, err)
}
