package registry

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// Handle is a live contract binding: a type name, an address and the ABI used
// to encode calls against it.
type Handle struct {
	Type    string
	Address common.Address
	ABI     *abi.ABI
}

// Method returns the named ABI method of the handle.
func (h Handle) Method(name string) (abi.Method, bool) {
	if h.ABI == nil {
		return abi.Method{}, false
	}
	method, ok := h.ABI.Methods[name]
	return method, ok
}

func (h Handle) String() string {
	return fmt.Sprintf("%s@%s", h.Type, h.Address.Hex())
}

type contractType struct {
	raw    string
	once   sync.Once
	parsed abi.ABI
	err    error
}

func (c *contractType) load() (*abi.ABI, error) {
	c.once.Do(func() {
		c.parsed, c.err = abi.JSON(strings.NewReader(c.raw))
	})
	if c.err != nil {
		return nil, c.err
	}
	return &c.parsed, nil
}

// Type ids as they appear in deployment records. Implementation ids share the
// ABI of their proxy.
var contractTypes = map[string]*contractType{}

func register(raw string, names ...string) {
	entry := &contractType{raw: raw}
	for _, name := range names {
		contractTypes[name] = entry
	}
}

func init() {
	register(MarketAccessControllerABI, "MarketAccessController")
	register(AddressesProviderRegistryABI, "AddressesProviderRegistry")
	register(OracleRouterABI, "OracleRouter")
	register(StaticPriceOracleABI, "StaticPriceOracle")
	register(ProtocolDataProviderABI, "ProtocolDataProvider")
	register(RewardConfiguratorABI, "RewardConfigurator", "RewardConfiguratorImpl")
	register(ManagedRewardPoolABI, "ManagedRewardPool", "TokenWeightedRewardPoolImpl", "TeamRewardPool")
	register(PermitFreezerRewardPoolABI, "PermitFreezerRewardPool", "PermitFreezerRewardPoolImpl")
	register(RewardBoosterABI, "RewardBooster", "RewardBoosterImpl")
	register(StakeConfiguratorABI, "StakeConfigurator", "StakeConfiguratorImpl")
	register(ReferralRewardPoolABI, "ReferralRewardPoolV1", "ReferralRewardPoolV1Impl")
	register(LendingPoolABI, "LendingPool", "LendingPoolImpl")
	register(LendingPoolConfiguratorABI, "LendingPoolConfigurator", "LendingPoolConfiguratorImpl")
	register(TreasuryABI, "Treasury", "TreasuryImpl")
	register(RewardTokenABI, "AGFToken", "AGFTokenV1Impl", "RewardToken")
	register(RewardStakeTokenABI, "XAGFToken", "XAGFTokenV1Impl", "RewardStakeToken", "StakeToken", "StakeTokenImpl")
	register(DepositTokenABI, "DepositToken", "DepositTokenImpl")
	register(StableDebtTokenABI, "StableDebtToken", "StableDebtTokenImpl")
	register(VariableDebtTokenABI, "VariableDebtToken", "VariableDebtTokenImpl")
	register(LendingRateOracleABI, "LendingRateOracle", "LendingRateOracleImpl")
	register(WETHGatewayABI, "WETHGateway", "WETHGatewayImpl")
}

// TypeNames lists every registered type id in sorted order.
func TypeNames() []string {
	out := make([]string, 0, len(contractTypes))
	for name := range contractTypes {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// NewHandle binds typeName to addr. ok is false for an unknown type name.
func NewHandle(typeName string, addr common.Address) (Handle, bool, error) {
	entry, ok := contractTypes[typeName]
	if !ok {
		return Handle{}, false, nil
	}
	parsed, err := entry.load()
	if err != nil {
		return Handle{}, true, fmt.Errorf("parse %s abi: %w", typeName, err)
	}
	return Handle{Type: typeName, Address: addr, ABI: parsed}, true, nil
}

// MustABI parses one of the package ABI constants and panics on malformed input.
func MustABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(err)
	}
	return parsed
}
