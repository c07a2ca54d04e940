package access

import (
	"context"
	"math/big"
	"testing"

	clierr "github.com/augmented-finance/augmented-cli/internal/errors"
	"github.com/augmented-finance/augmented-cli/internal/registry"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func TestResolveRolesIsOrderInvariant(t *testing.T) {
	orders := [][]string{
		{"STAKE_ADMIN", "ORACLE_ADMIN", "0x4"},
		{"0x4", "STAKE_ADMIN", "ORACLE_ADMIN"},
		{"ORACLE_ADMIN", "0x4", "STAKE_ADMIN"},
	}
	want := StakeAdmin | OracleAdmin | TreasuryAdmin
	for _, values := range orders {
		got, err := ResolveRoles(values...)
		require.NoError(t, err)
		require.Equal(t, want, got, "values=%v", values)
	}
}

func TestResolveRolesNumericForms(t *testing.T) {
	got, err := ResolveRoles("16", "0x20")
	require.NoError(t, err)
	require.Equal(t, RewardRateAdmin|StakeAdmin, got)

	got, err = ResolveRoles()
	require.NoError(t, err)
	require.Zero(t, got)
}

func TestResolveRolesUnknownName(t *testing.T) {
	_, err := ResolveRoles("POOL_ADMIN", "CHIEF_WIZARD")
	require.Error(t, err)
	require.True(t, clierr.HasCode(err, clierr.CodeUnknownRole))
	require.Contains(t, err.Error(), "CHIEF_WIZARD")

	_, err = ResolveRoles("pool_admin")
	require.True(t, clierr.HasCode(err, clierr.CodeUnknownRole))

	_, err = ResolveRoles("0xzz")
	require.True(t, clierr.HasCode(err, clierr.CodeUnknownRole))
}

func TestTableIsBidirectional(t *testing.T) {
	for _, role := range Table() {
		flag, ok := FlagByName(role.Name)
		require.True(t, ok)
		require.Equal(t, role.Flag, flag)
		name, ok := NameOf(flag)
		require.True(t, ok)
		require.Equal(t, role.Name, name)
	}
	require.Equal(t, "STAKE_ADMIN|PRICE_ORACLE", (StakeAdmin | PriceOracle).String())
	require.Equal(t, []string{"0x8000000000000000"}, Flags(1<<63).Names())
}

type fakeCaller struct {
	t       *testing.T
	abi     abi.ABI
	answers map[uint64]common.Address
	calls   int
}

func (f *fakeCaller) Call(_ context.Context, _ common.Address, data []byte) ([]byte, error) {
	f.calls++
	method, err := f.abi.MethodById(data[:4])
	require.NoError(f.t, err)
	require.Equal(f.t, "getAddress", method.Name)
	args, err := method.Inputs.Unpack(data[4:])
	require.NoError(f.t, err)
	id := args[0].(*big.Int).Uint64()
	return method.Outputs.Pack(f.answers[id])
}

func TestControllerGetAddress(t *testing.T) {
	oracle := common.HexToAddress("0x0000000000000000000000000000000000000aaa")
	caller := &fakeCaller{
		t:       t,
		abi:     registry.MustABI(registry.MarketAccessControllerABI),
		answers: map[uint64]common.Address{uint64(PriceOracle): oracle},
	}
	ctl, err := NewController(common.HexToAddress("0x0000000000000000000000000000000000000001"), caller)
	require.NoError(t, err)

	got, err := ctl.GetAddress(context.Background(), PriceOracle)
	require.NoError(t, err)
	require.Equal(t, oracle, got)
	require.Equal(t, 1, caller.calls)
}

func TestNewControllerRejectsZeroAddress(t *testing.T) {
	_, err := NewController(common.Address{}, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown access controller")
}

func TestCallWithRolesResultDecoding(t *testing.T) {
	ctl, err := NewController(common.HexToAddress("0x01"), nil)
	require.NoError(t, err)

	data, err := ctl.PackCallWithRoles([]RoleCall{{
		AccessFlags: StakeAdmin.Big(),
		CallFlag:    big.NewInt(0),
		CallAddr:    common.HexToAddress("0x02"),
		CallData:    []byte{0xde, 0xad},
	}})
	require.NoError(t, err)
	require.Equal(t, ctl.Handle().ABI.Methods["callWithRoles"].ID, data[:4])

	encoded, err := ctl.Handle().ABI.Methods["callWithRoles"].Outputs.Pack([][]byte{{0x01}, {0x02, 0x03}})
	require.NoError(t, err)
	results, err := ctl.UnpackCallWithRoles(encoded)
	require.NoError(t, err)
	require.Equal(t, [][]byte{{0x01}, {0x02, 0x03}}, results)
}
