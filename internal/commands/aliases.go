package commands

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/augmented-finance/augmented-cli/internal/access"
	clierr "github.com/augmented-finance/augmented-cli/internal/errors"
	"github.com/augmented-finance/augmented-cli/internal/prepare"
	"github.com/augmented-finance/augmented-cli/internal/registry"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// Alias is a named operator command. It is either a DirectCall or a Custom.
type Alias interface {
	alias()
}

// DirectCall forwards the command arguments unchanged to a qualified
// function, requiring Role.
type DirectCall struct {
	QualifiedName string
	Role          access.Flags
}

// Custom prepares arguments itself and issues one or more calls through the
// session.
type Custom struct {
	Run func(ctx context.Context, s *Session, args []string) error
}

func (DirectCall) alias() {}
func (Custom) alias()     {}

var aliases = map[string]Alias{
	"setCooldownForAll": DirectCall{
		QualifiedName: qualifiedName("StakeConfiguratorImpl", access.StakeConfigurator, "setCooldownForAll"),
		Role:          access.StakeAdmin,
	},
	"getPrice":             Custom{Run: priceQuery("getAssetPrice", "getAssetsPrices")},
	"getPriceSource":       Custom{Run: priceQuery("getSourceOfAsset", "getAssetSources")},
	"setPriceSource":       Custom{Run: setPriceSource},
	"setStaticPrice":       Custom{Run: setStaticPrice},
	"addRewardProvider":    Custom{Run: addRewardProvider},
	"setMeltdown":          Custom{Run: setMeltdown},
	"setMintRate":          Custom{Run: setMintRate},
	"setMintRateAndShares": Custom{Run: setMintRateAndShares},
	"registerRefCode":      Custom{Run: registerRefCode},
}

// Lookup returns the alias registered under name. Names are case-sensitive.
func Lookup(name string) (Alias, bool) {
	a, ok := aliases[name]
	return a, ok
}

// Names lists the alias names in sorted order.
func Names() []string {
	out := make([]string, 0, len(aliases))
	for name := range aliases {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func qualifiedName(typeName string, role access.Flags, fn string) string {
	name, _ := access.NameOf(role)
	return typeName + "@" + name + "." + fn
}

func priceQuery(single, plural string) func(context.Context, *Session, []string) error {
	return func(ctx context.Context, s *Session, args []string) error {
		tokens, err := s.Tokens().PriceTokens(ctx, args, false)
		if err != nil {
			return err
		}
		if len(args) > 1 {
			return s.Call(ctx, qualifiedName("OracleRouter", access.PriceOracle, plural), []any{tokens}, 0)
		}
		return s.Call(ctx, qualifiedName("OracleRouter", access.PriceOracle, single), addressArgs(tokens), 0)
	}
}

func setPriceSource(ctx context.Context, s *Session, args []string) error {
	parts := splitArray(2, args)
	tokens, err := s.Tokens().PriceTokens(ctx, parts[0], true)
	if err != nil {
		return err
	}
	return s.Call(ctx, qualifiedName("OracleRouter", access.PriceOracle, "setAssetSources"),
		[]any{tokens, parts[1]}, access.OracleAdmin)
}

// setStaticPrice writes to the fallback oracle of the configured price oracle.
func setStaticPrice(ctx context.Context, s *Session, args []string) error {
	parts := splitArray(2, args)
	oracle, err := s.controller().PriceOracle(ctx)
	if err != nil {
		return err
	}
	fallback, err := s.readAddress(ctx, "OracleRouter", oracle, "getFallbackOracle")
	if err != nil {
		return err
	}
	tokens, err := s.Tokens().PriceTokens(ctx, parts[0], true)
	if err != nil {
		return err
	}
	return s.Call(ctx, "StaticPriceOracle@"+fallback.Hex()+".setAssetPrice",
		[]any{tokens, parts[1]}, access.OracleAdmin)
}

func addRewardProvider(ctx context.Context, s *Session, args []string) error {
	if len(args) < 2 {
		return clierr.New(clierr.CodeUsage, "usage: addRewardProvider <pool> <provider> [token]")
	}
	pool, err := s.namedPoolHandle(ctx, "ManagedRewardPool", args[0])
	if err != nil {
		return err
	}
	token := common.Address{}.Hex()
	if len(args) > 2 && strings.TrimSpace(args[2]) != "" {
		token = args[2]
	}
	return s.CallHandle(ctx, access.RewardConfigAdmin, pool, "addRewardProvider", []any{args[1], token})
}

func setMeltdown(ctx context.Context, s *Session, args []string) error {
	if len(args) < 2 {
		return clierr.New(clierr.CodeUsage, "usage: setMeltdown <pool> <date|0xTIMESTAMP>")
	}
	pool, err := s.namedPoolHandle(ctx, "PermitFreezerRewardPool", args[0])
	if err != nil {
		return err
	}
	timestamp, err := parseMeltdown(args[1])
	if err != nil {
		return err
	}
	if timestamp == 0 {
		s.log().Info("meltdown date", zap.String("at", "never"))
	} else {
		s.log().Info("meltdown date", zap.Time("at", time.Unix(int64(timestamp), 0).UTC()))
	}
	return s.CallHandle(ctx, access.RewardConfigAdmin, pool, "setMeltDownAt", []any{timestamp})
}

func setMintRate(ctx context.Context, s *Session, args []string) error {
	if len(args) != 1 {
		return clierr.New(clierr.CodeUsage, "usage: setMintRate <rate>")
	}
	rate, err := prepare.ParseMintRate(args[0])
	if err != nil {
		return err
	}
	return s.Call(ctx, qualifiedName("RewardBoosterImpl", access.RewardController, "updateBaseline"),
		[]any{rate}, access.RewardRateAdmin)
}

func setMintRateAndShares(ctx context.Context, s *Session, args []string) error {
	if len(args) == 0 {
		return clierr.New(clierr.CodeUsage, "usage: setMintRateAndShares <rate> [<pool> <share%>]...")
	}
	pools, shares, err := s.Pools().PoolShares(ctx, args[1:])
	if err != nil {
		return err
	}
	rate, err := prepare.ParseMintRate(args[0])
	if err != nil {
		return err
	}
	return s.Call(ctx, qualifiedName("RewardBoosterImpl", access.RewardController, "setBaselinePercentagesAndRate"),
		[]any{pools, shares, rate}, access.RewardRateAdmin)
}

func registerRefCode(ctx context.Context, s *Session, args []string) error {
	parts := splitArray(2, args)
	return s.Call(ctx, qualifiedName("ReferralRewardPoolV1Impl", access.ReferralRegistry, "registerShortCodes"),
		[]any{parts[0], parts[1]}, access.ReferralAdmin)
}

// splitArray deals values round-robin into n lists.
func splitArray(n int, values []string) [][]string {
	out := make([][]string, n)
	for i := range out {
		out[i] = []string{}
	}
	for i, v := range values {
		out[i%n] = append(out[i%n], v)
	}
	return out
}

// parseMeltdown accepts a 0x-prefixed unix timestamp or a date.
func parseMeltdown(value string) (uint32, error) {
	value = strings.TrimSpace(value)
	if strings.HasPrefix(value, "0x") || strings.HasPrefix(value, "0X") {
		ts, err := strconv.ParseUint(value[2:], 16, 32)
		if err != nil {
			return 0, clierr.Wrap(clierr.CodeUsage, "invalid timestamp: "+value, err)
		}
		return uint32(ts), nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			if t.Unix() < 0 || t.Unix() > int64(^uint32(0)) {
				return 0, clierr.New(clierr.CodeUsage, "date out of range: "+value)
			}
			return uint32(t.Unix()), nil
		}
	}
	return 0, clierr.New(clierr.CodeUsage, fmt.Sprintf("invalid date: %s", value))
}

func addressArgs(addrs []common.Address) []any {
	out := make([]any, len(addrs))
	for i, a := range addrs {
		out[i] = a
	}
	return out
}

func typeHandle(typeName string, addr common.Address) (registry.Handle, error) {
	handle, ok, err := registry.NewHandle(typeName, addr)
	if err != nil {
		return registry.Handle{}, err
	}
	if !ok {
		return registry.Handle{}, clierr.New(clierr.CodeInternal, "unknown type name: "+typeName)
	}
	return handle, nil
}
