package access

import (
	"context"
	"fmt"
	"math/big"

	clierr "github.com/augmented-finance/augmented-cli/internal/errors"
	"github.com/augmented-finance/augmented-cli/internal/registry"
	"github.com/ethereum/go-ethereum/common"
)

const controllerType = "MarketAccessController"

// Caller performs read-only contract calls.
type Caller interface {
	Call(ctx context.Context, to common.Address, data []byte) ([]byte, error)
}

// RoleCall is one entry of a callWithRoles batch.
type RoleCall struct {
	AccessFlags *big.Int
	CallFlag    *big.Int
	CallAddr    common.Address
	CallData    []byte
}

// Controller is a client for the market access controller.
type Controller struct {
	handle registry.Handle
	caller Caller
}

func NewController(addr common.Address, caller Caller) (*Controller, error) {
	if addr == (common.Address{}) {
		return nil, clierr.New(clierr.CodeUsage, "unknown access controller")
	}
	handle, _, err := registry.NewHandle(controllerType, addr)
	if err != nil {
		return nil, clierr.Wrap(clierr.CodeInternal, "load access controller abi", err)
	}
	return &Controller{handle: handle, caller: caller}, nil
}

func (c *Controller) Address() common.Address { return c.handle.Address }

func (c *Controller) Handle() registry.Handle { return c.handle }

// GetAddress returns the address the controller holds for a singleton or proxy id.
func (c *Controller) GetAddress(ctx context.Context, flag Flags) (common.Address, error) {
	return c.callAddress(ctx, "getAddress", flag.Big())
}

func (c *Controller) PriceOracle(ctx context.Context) (common.Address, error) {
	return c.callAddress(ctx, "getPriceOracle")
}

func (c *Controller) callAddress(ctx context.Context, method string, args ...any) (common.Address, error) {
	data, err := c.handle.ABI.Pack(method, args...)
	if err != nil {
		return common.Address{}, clierr.Wrap(clierr.CodeInternal, "pack "+method+" calldata", err)
	}
	out, err := c.caller.Call(ctx, c.handle.Address, data)
	if err != nil {
		return common.Address{}, err
	}
	values, err := c.handle.ABI.Unpack(method, out)
	if err != nil || len(values) == 0 {
		return common.Address{}, clierr.Wrap(clierr.CodeUnavailable, "decode "+method+" response", err)
	}
	addr, ok := values[0].(common.Address)
	if !ok {
		return common.Address{}, clierr.New(clierr.CodeUnavailable, fmt.Sprintf("invalid %s response", method))
	}
	return addr, nil
}

func (c *Controller) PackGrantRoles(addr common.Address, flags Flags) ([]byte, error) {
	return c.pack("grantRoles", addr, flags.Big())
}

func (c *Controller) PackSetTemporaryAdmin(addr common.Address, expiryBlocks uint64) ([]byte, error) {
	return c.pack("setTemporaryAdmin", addr, new(big.Int).SetUint64(expiryBlocks))
}

func (c *Controller) PackRenounceTemporaryAdmin() ([]byte, error) {
	return c.pack("renounceTemporaryAdmin")
}

func (c *Controller) PackCallWithRoles(calls []RoleCall) ([]byte, error) {
	return c.pack("callWithRoles", calls)
}

// UnpackCallWithRoles decodes the per-call return data of callWithRoles.
func (c *Controller) UnpackCallWithRoles(data []byte) ([][]byte, error) {
	values, err := c.handle.ABI.Unpack("callWithRoles", data)
	if err != nil || len(values) == 0 {
		return nil, clierr.Wrap(clierr.CodeUnavailable, "decode callWithRoles response", err)
	}
	results, ok := values[0].([][]byte)
	if !ok {
		return nil, clierr.New(clierr.CodeUnavailable, "invalid callWithRoles response")
	}
	return results, nil
}

func (c *Controller) pack(method string, args ...any) ([]byte, error) {
	data, err := c.handle.ABI.Pack(method, args...)
	if err != nil {
		return nil, clierr.Wrap(clierr.CodeInternal, "pack "+method+" calldata", err)
	}
	return data, nil
}
