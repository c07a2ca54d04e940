package invoke

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/augmented-finance/augmented-cli/internal/access"
	clierr "github.com/augmented-finance/augmented-cli/internal/errors"
	"github.com/augmented-finance/augmented-cli/internal/registry"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var (
	controllerAddr = common.HexToAddress("0x0000000000000000000000000000000000000ac0")
	stakeAddr      = common.HexToAddress("0x00000000000000000000000000000000000005c0")
	oracleAddr     = common.HexToAddress("0x0000000000000000000000000000000000000aaa")
	signerAddr     = common.HexToAddress("0x00000000000000000000000000000000000000aa")
)

type ledgerOp struct {
	kind string
	name string
	to   common.Address
	data []byte
}

type fakeBackend struct {
	from     common.Address
	names    map[string]string
	ops      []ledgerOp
	onSend   func(ctx context.Context, name string) error
	onCall   func(name string, data []byte) ([]byte, error)
	nextHash byte
}

func newFakeBackend(handles ...registry.Handle) *fakeBackend {
	names := map[string]string{}
	for _, h := range handles {
		for _, m := range h.ABI.Methods {
			names[string(m.ID)] = m.Name
		}
	}
	return &fakeBackend{from: signerAddr, names: names}
}

func (f *fakeBackend) From() common.Address { return f.from }

func (f *fakeBackend) Call(_ context.Context, to common.Address, data []byte) ([]byte, error) {
	name := f.names[string(data[:4])]
	f.ops = append(f.ops, ledgerOp{kind: "call", name: name, to: to, data: data})
	if f.onCall != nil {
		return f.onCall(name, data)
	}
	return nil, nil
}

func (f *fakeBackend) Send(ctx context.Context, to common.Address, data []byte, _ uint64) (common.Hash, error) {
	name := f.names[string(data[:4])]
	f.ops = append(f.ops, ledgerOp{kind: "send", name: name, to: to, data: data})
	if f.onSend != nil {
		if err := f.onSend(ctx, name); err != nil {
			return common.Hash{}, err
		}
	}
	f.nextHash++
	return common.BytesToHash([]byte{f.nextHash}), nil
}

func (f *fakeBackend) WaitMined(context.Context, common.Hash) (*types.Receipt, error) {
	return &types.Receipt{Status: types.ReceiptStatusSuccessful, GasUsed: 21_000}, nil
}

func (f *fakeBackend) opNames() []string {
	out := make([]string, len(f.ops))
	for i, op := range f.ops {
		out[i] = op.name
	}
	return out
}

func (f *fakeBackend) touched(addr common.Address) bool {
	for _, op := range f.ops {
		if op.to == addr {
			return true
		}
	}
	return false
}

type fixture struct {
	engine     *Engine
	backend    *fakeBackend
	controller *access.Controller
	stake      registry.Handle
	oracle     registry.Handle
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	stake, _, err := registry.NewHandle("StakeConfiguratorImpl", stakeAddr)
	require.NoError(t, err)
	oracle, _, err := registry.NewHandle("OracleRouter", oracleAddr)
	require.NoError(t, err)

	backend := &fakeBackend{}
	controller, err := access.NewController(controllerAddr, backend)
	require.NoError(t, err)
	*backend = *newFakeBackend(controller.Handle(), stake, oracle)

	return &fixture{
		engine:     NewEngine(controller, backend, Options{}),
		backend:    backend,
		controller: controller,
		stake:      stake,
		oracle:     oracle,
	}
}

func TestInvokeRejectsEncodeWithCompatible(t *testing.T) {
	fx := newFixture(t)
	_, err := fx.engine.Invoke(context.Background(), access.StakeAdmin, fx.stake, "setCooldownForAll",
		Params{Encode: true, Compatible: true, Args: []any{"1", "2"}})
	require.True(t, clierr.HasCode(err, clierr.CodeUnsupportedMode))
	require.Empty(t, fx.backend.ops)
}

func TestInvokeWithoutRolesNeverTouchesController(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	outcome, err := fx.engine.Invoke(ctx, 0, fx.stake, "setCooldownForAll", Params{Args: []any{"3600", "600"}, WaitTx: true})
	require.NoError(t, err)
	require.Equal(t, ModeDirect, outcome.Mode)
	require.Equal(t, uint64(21_000), outcome.GasUsed)
	require.NotEmpty(t, outcome.TxHash)

	fx.backend.onCall = func(string, []byte) ([]byte, error) {
		return fx.oracle.ABI.Methods["getAssetPrice"].Outputs.Pack(big.NewInt(7))
	}
	outcome, err = fx.engine.Invoke(ctx, 0, fx.oracle, "getAssetPrice", Params{Args: []any{"0x00000000000000000000000000000000000000d1"}})
	require.NoError(t, err)
	require.True(t, outcome.Static)
	require.Equal(t, []any{"7"}, outcome.Values)

	outcome, err = fx.engine.Invoke(ctx, 0, fx.stake, "setCooldownForAll", Params{Encode: true, Args: []any{"1", "2"}})
	require.NoError(t, err)
	require.Equal(t, stakeAddr.Hex(), outcome.Encoded.To)

	require.False(t, fx.backend.touched(controllerAddr))
	require.Equal(t, []string{"setCooldownForAll", "getAssetPrice"}, fx.backend.opNames())
}

func TestInvokeViewFunctionIsAlwaysStatic(t *testing.T) {
	fx := newFixture(t)
	fx.backend.onCall = func(string, []byte) ([]byte, error) {
		return fx.oracle.ABI.Methods["getFallbackOracle"].Outputs.Pack(common.HexToAddress("0xfb"))
	}
	outcome, err := fx.engine.Invoke(context.Background(), 0, fx.oracle, "getFallbackOracle", Params{})
	require.NoError(t, err)
	require.True(t, outcome.Static)
	require.Equal(t, "call", fx.backend.ops[0].kind)
	require.Equal(t, []any{common.HexToAddress("0xfb").Hex()}, outcome.Values)
}

func TestInvokeUnknownFunction(t *testing.T) {
	fx := newFixture(t)
	_, err := fx.engine.Invoke(context.Background(), 0, fx.stake, "launchRockets", Params{})
	require.True(t, clierr.HasCode(err, clierr.CodeResolution))
	require.Empty(t, fx.backend.ops)
}

func TestInvokeCompatibleSequence(t *testing.T) {
	fx := newFixture(t)
	outcome, err := fx.engine.Invoke(context.Background(), access.StakeAdmin, fx.stake, "setCooldownForAll",
		Params{Compatible: true, Args: []any{"1", "2"}})
	require.NoError(t, err)
	require.Equal(t, ModeCompatible, outcome.Mode)
	require.Equal(t, []string{"setTemporaryAdmin", "grantRoles", "setCooldownForAll", "renounceTemporaryAdmin"}, fx.backend.opNames())
	require.Len(t, outcome.Steps, 4)

	method := fx.controller.Handle().ABI.Methods["setTemporaryAdmin"]
	args, err := method.Inputs.Unpack(fx.backend.ops[0].data[4:])
	require.NoError(t, err)
	require.Equal(t, signerAddr, args[0])
	require.Equal(t, uint64(DefaultTempAdminBlocks), args[1].(*big.Int).Uint64())
}

func TestInvokeCompatibleLogsProgress(t *testing.T) {
	fx := newFixture(t)
	core, logs := observer.New(zapcore.InfoLevel)
	engine := NewEngine(fx.controller, fx.backend, Options{Logger: zap.New(core), TempAdminBlocks: 3})
	_, err := engine.Invoke(context.Background(), access.StakeAdmin, fx.stake, "setCooldownForAll",
		Params{Compatible: true, Args: []any{"1", "2"}})
	require.NoError(t, err)

	var progress []string
	for _, entry := range logs.All() {
		switch entry.Message {
		case "grant temporary admin", "grant roles", "renounce temporary admin":
			progress = append(progress, entry.Message)
		}
	}
	require.Equal(t, []string{"grant temporary admin", "grant roles", "renounce temporary admin"}, progress)
	grant := logs.FilterMessage("grant temporary admin").All()[0]
	require.Equal(t, uint64(3), grant.ContextMap()["blocks"])
	require.NotZero(t, logs.FilterMessage("gas used").Len())
}

func TestInvokeCompatibleRenouncesOnceWhenCallFails(t *testing.T) {
	fx := newFixture(t)
	fx.backend.onSend = func(_ context.Context, name string) error {
		if name == "setCooldownForAll" {
			return clierr.New(clierr.CodeRevert, "execution reverted: STAKE: denied")
		}
		return nil
	}
	outcome, err := fx.engine.Invoke(context.Background(), access.StakeAdmin, fx.stake, "setCooldownForAll",
		Params{Compatible: true, Args: []any{"1", "2"}})
	require.True(t, clierr.HasCode(err, clierr.CodeRevert))

	renounces := 0
	for _, name := range fx.backend.opNames() {
		if name == "renounceTemporaryAdmin" {
			renounces++
		}
	}
	require.Equal(t, 1, renounces)
	require.Equal(t, StepStatusFailed, outcome.Steps[2].Status)
	require.Equal(t, StepStatusConfirmed, outcome.Steps[3].Status)
}

func TestInvokeCompatibleJoinsRenounceFailure(t *testing.T) {
	fx := newFixture(t)
	fx.backend.onSend = func(_ context.Context, name string) error {
		switch name {
		case "grantRoles":
			return errors.New("grant failed")
		case "renounceTemporaryAdmin":
			return errors.New("renounce failed")
		}
		return nil
	}
	_, err := fx.engine.Invoke(context.Background(), access.StakeAdmin, fx.stake, "setCooldownForAll",
		Params{Compatible: true, Args: []any{"1", "2"}})
	require.ErrorContains(t, err, "grant failed")
	require.ErrorContains(t, err, "renounce failed")
}

func TestInvokeCompatibleRenouncesAfterCancellation(t *testing.T) {
	fx := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	fx.backend.onSend = func(sendCtx context.Context, name string) error {
		if name == "grantRoles" {
			cancel()
		}
		return sendCtx.Err()
	}
	_, err := fx.engine.Invoke(ctx, access.StakeAdmin, fx.stake, "setCooldownForAll",
		Params{Compatible: true, Args: []any{"1", "2"}})
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, []string{"setTemporaryAdmin", "grantRoles", "renounceTemporaryAdmin"}, fx.backend.opNames())
}

func TestInvokeCompatibleSkipsRenounceWhenAdminGrantFails(t *testing.T) {
	fx := newFixture(t)
	fx.backend.onSend = func(_ context.Context, name string) error {
		if name == "setTemporaryAdmin" {
			return errors.New("not owner")
		}
		return nil
	}
	_, err := fx.engine.Invoke(context.Background(), access.StakeAdmin, fx.stake, "setCooldownForAll",
		Params{Compatible: true, Args: []any{"1", "2"}})
	require.ErrorContains(t, err, "not owner")
	require.Equal(t, []string{"setTemporaryAdmin"}, fx.backend.opNames())
}

func TestInvokeCompatibleRequiresSigner(t *testing.T) {
	fx := newFixture(t)
	fx.backend.from = common.Address{}
	_, err := fx.engine.Invoke(context.Background(), access.StakeAdmin, fx.stake, "setCooldownForAll",
		Params{Compatible: true, Args: []any{"1", "2"}})
	require.True(t, clierr.HasCode(err, clierr.CodeSigner))
	require.Empty(t, fx.backend.ops)
}

func TestInvokeWithRolesStaticDecodesFirstResult(t *testing.T) {
	fx := newFixture(t)
	price, err := fx.oracle.ABI.Methods["getAssetPrice"].Outputs.Pack(big.NewInt(42))
	require.NoError(t, err)
	fx.backend.onCall = func(name string, _ []byte) ([]byte, error) {
		require.Equal(t, "callWithRoles", name)
		return fx.controller.Handle().ABI.Methods["callWithRoles"].Outputs.Pack([][]byte{price})
	}

	outcome, err := fx.engine.Invoke(context.Background(), access.OracleAdmin, fx.oracle, "getAssetPrice",
		Params{Args: []any{"0x00000000000000000000000000000000000000d1"}})
	require.NoError(t, err)
	require.Equal(t, ModeRoles, outcome.Mode)
	require.Equal(t, []any{"42"}, outcome.Values)
	require.Equal(t, []string{"ORACLE_ADMIN"}, outcome.Roles)
	require.Equal(t, controllerAddr, fx.backend.ops[0].to)
}

func TestInvokeWithRolesEncodeWrapsCall(t *testing.T) {
	fx := newFixture(t)
	outcome, err := fx.engine.Invoke(context.Background(), access.StakeAdmin|access.PoolAdmin, fx.stake, "setCooldownForAll",
		Params{Encode: true, Static: true, Args: []any{"1", "2"}})
	require.NoError(t, err)
	require.Empty(t, fx.backend.ops)
	require.Equal(t, controllerAddr.Hex(), outcome.Encoded.To)
	require.Len(t, outcome.Warnings, 1)

	method := fx.controller.Handle().ABI.Methods["callWithRoles"]
	raw, err := hexutil.Decode(outcome.Encoded.Data)
	require.NoError(t, err)
	require.Equal(t, method.ID, raw[:4])

	values, err := method.Inputs.Unpack(raw[4:])
	require.NoError(t, err)
	calls := *abi.ConvertType(values[0], new([]access.RoleCall)).(*[]access.RoleCall)
	require.Len(t, calls, 1)
	call := calls[0]
	require.Equal(t, uint64(access.StakeAdmin|access.PoolAdmin), call.AccessFlags.Uint64())
	require.Zero(t, call.CallFlag.Sign())
	require.Equal(t, stakeAddr, call.CallAddr)
	require.Equal(t, fx.stake.ABI.Methods["setCooldownForAll"].ID, call.CallData[:4])
}

func TestInvokeWithRolesMutableSendsToController(t *testing.T) {
	fx := newFixture(t)
	outcome, err := fx.engine.Invoke(context.Background(), access.StakeAdmin, fx.stake, "setCooldownForAll",
		Params{Args: []any{"1", "2"}})
	require.NoError(t, err)
	require.Equal(t, []string{"callWithRoles"}, fx.backend.opNames())
	require.Equal(t, controllerAddr, fx.backend.ops[0].to)
	require.Equal(t, StepStatusSubmitted, outcome.Steps[0].Status)
	require.Zero(t, outcome.GasUsed)
}
