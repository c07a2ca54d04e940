package access

import (
	"fmt"
	"math/big"
	"sort"
	"strconv"
	"strings"

	clierr "github.com/augmented-finance/augmented-cli/internal/errors"
)

// Flags is a bitmask of access-controller roles. Each role occupies one bit.
type Flags uint64

const (
	EmergencyAdmin    Flags = 1 << 0
	PoolAdmin         Flags = 1 << 1
	TreasuryAdmin     Flags = 1 << 2
	RewardConfigAdmin Flags = 1 << 3
	RewardRateAdmin   Flags = 1 << 4
	StakeAdmin        Flags = 1 << 5
	ReferralAdmin     Flags = 1 << 6
	LendingRateAdmin  Flags = 1 << 7
	SweepAdmin        Flags = 1 << 8
	OracleAdmin       Flags = 1 << 9

	LendingPool             Flags = 1 << 16
	LendingPoolConfigurator Flags = 1 << 17
	LiquidityController     Flags = 1 << 18
	Treasury                Flags = 1 << 19
	RewardToken             Flags = 1 << 20
	RewardStakeToken        Flags = 1 << 21
	RewardController        Flags = 1 << 22
	RewardConfigurator      Flags = 1 << 23
	StakeConfigurator       Flags = 1 << 24
	ReferralRegistry        Flags = 1 << 25
	WETHGateway             Flags = 1 << 27
	DataHelper              Flags = 1 << 28
	PriceOracle             Flags = 1 << 29
	LendingRateOracle       Flags = 1 << 30
)

var flagsByName = map[string]Flags{
	"EMERGENCY_ADMIN":     EmergencyAdmin,
	"POOL_ADMIN":          PoolAdmin,
	"TREASURY_ADMIN":      TreasuryAdmin,
	"REWARD_CONFIG_ADMIN": RewardConfigAdmin,
	"REWARD_RATE_ADMIN":   RewardRateAdmin,
	"STAKE_ADMIN":         StakeAdmin,
	"REFERRAL_ADMIN":      ReferralAdmin,
	"LENDING_RATE_ADMIN":  LendingRateAdmin,
	"SWEEP_ADMIN":         SweepAdmin,
	"ORACLE_ADMIN":        OracleAdmin,

	"LENDING_POOL":              LendingPool,
	"LENDING_POOL_CONFIGURATOR": LendingPoolConfigurator,
	"LIQUIDITY_CONTROLLER":      LiquidityController,
	"TREASURY":                  Treasury,
	"REWARD_TOKEN":              RewardToken,
	"REWARD_STAKE_TOKEN":        RewardStakeToken,
	"REWARD_CONTROLLER":         RewardController,
	"REWARD_CONFIGURATOR":       RewardConfigurator,
	"STAKE_CONFIGURATOR":        StakeConfigurator,
	"REFERRAL_REGISTRY":         ReferralRegistry,
	"WETH_GATEWAY":              WETHGateway,
	"DATA_HELPER":               DataHelper,
	"PRICE_ORACLE":              PriceOracle,
	"LENDING_RATE_ORACLE":       LendingRateOracle,
}

var namesByFlag = func() map[Flags]string {
	out := make(map[Flags]string, len(flagsByName))
	for name, flag := range flagsByName {
		out[flag] = name
	}
	return out
}()

// FlagByName looks up a single role or address id. Names are case-sensitive.
func FlagByName(name string) (Flags, bool) {
	flag, ok := flagsByName[name]
	return flag, ok
}

// NameOf returns the table name of a single-bit flag.
func NameOf(flag Flags) (string, bool) {
	name, ok := namesByFlag[flag]
	return name, ok
}

// Role is one row of the static table.
type Role struct {
	Name string `json:"name"`
	Flag Flags  `json:"flag"`
}

// Table lists every known role ordered by bit position.
func Table() []Role {
	out := make([]Role, 0, len(flagsByName))
	for name, flag := range flagsByName {
		out = append(out, Role{Name: name, Flag: flag})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Flag < out[j].Flag })
	return out
}

// Names decomposes f into known role names, lowest bit first. Bits without a
// name are rendered as hex.
func (f Flags) Names() []string {
	var out []string
	for bit := 0; bit < 64; bit++ {
		flag := Flags(1) << bit
		if f&flag == 0 {
			continue
		}
		if name, ok := NameOf(flag); ok {
			out = append(out, name)
		} else {
			out = append(out, fmt.Sprintf("0x%x", uint64(flag)))
		}
	}
	return out
}

func (f Flags) Big() *big.Int {
	return new(big.Int).SetUint64(uint64(f))
}

func (f Flags) String() string {
	if f == 0 {
		return "0"
	}
	return strings.Join(f.Names(), "|")
}

// ResolveRoles ORs every value into one mask. Numeric values (decimal or 0x
// prefixed) are taken as-is; anything else must be a table name.
func ResolveRoles(values ...string) (Flags, error) {
	var mask Flags
	for _, raw := range values {
		value := strings.TrimSpace(raw)
		if value == "" {
			continue
		}
		if flag, ok, err := parseNumericFlag(value); ok {
			if err != nil {
				return 0, clierr.Wrap(clierr.CodeUnknownRole, fmt.Sprintf("invalid role value %q", value), err)
			}
			mask |= flag
			continue
		}
		flag, ok := FlagByName(value)
		if !ok || flag == 0 {
			return 0, clierr.New(clierr.CodeUnknownRole, fmt.Sprintf("unknown role: %s", value))
		}
		mask |= flag
	}
	return mask, nil
}

func parseNumericFlag(value string) (Flags, bool, error) {
	if strings.HasPrefix(value, "0x") || strings.HasPrefix(value, "0X") {
		parsed, err := strconv.ParseUint(value[2:], 16, 64)
		return Flags(parsed), true, err
	}
	if value[0] < '0' || value[0] > '9' {
		return 0, false, nil
	}
	parsed, err := strconv.ParseUint(value, 10, 64)
	return Flags(parsed), true, err
}
