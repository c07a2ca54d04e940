package prepare

import (
	"context"
	"fmt"
	"strings"

	"github.com/augmented-finance/augmented-cli/internal/access"
	clierr "github.com/augmented-finance/augmented-cli/internal/errors"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const poolNameConcurrency = 8

// PoolCache maps lower-cased reward pool names to pool addresses.
type PoolCache struct {
	populated bool
	byName    map[string]common.Address
}

func (c *PoolCache) Populated() bool { return c.populated }

func (c *PoolCache) Lookup(name string) (common.Address, bool) {
	addr, ok := c.byName[strings.ToLower(name)]
	return addr, ok
}

// PoolResolver maps reward pool names to addresses through the reward configurator.
type PoolResolver struct {
	book     AddressBook
	caller   Caller
	cache    PoolCache
	log      *zap.Logger
	warnings []string
}

func NewPoolResolver(book AddressBook, caller Caller, log *zap.Logger) *PoolResolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &PoolResolver{book: book, caller: caller, log: log}
}

func (r *PoolResolver) Warnings() []string { return r.warnings }

func (r *PoolResolver) Cache() *PoolCache { return &r.cache }

// Pool resolves an address or a pool name from the configurator list.
func (r *PoolResolver) Pool(ctx context.Context, value string) (common.Address, error) {
	value = strings.TrimSpace(value)
	if addr, ok := nonZeroAddress(value); ok {
		return addr, nil
	}
	if err := r.populate(ctx); err != nil {
		return common.Address{}, err
	}
	addr, ok := r.cache.Lookup(value)
	if !ok || addr == (common.Address{}) {
		return common.Address{}, clierr.New(clierr.CodeResolution, "unknown pool name: "+value)
	}
	return addr, nil
}

// PoolShares turns (pool, "x%") pairs into parallel address and share lists.
func (r *PoolResolver) PoolShares(ctx context.Context, args []string) ([]common.Address, []uint32, error) {
	if len(args)%2 != 0 {
		return nil, nil, clierr.New(clierr.CodeUsage, fmt.Sprintf("missing share for pool %s", args[len(args)-1]))
	}
	pools := make([]common.Address, 0, len(args)/2)
	shares := make([]uint32, 0, len(args)/2)
	for i := 0; i < len(args); i += 2 {
		pool, err := r.Pool(ctx, args[i])
		if err != nil {
			return nil, nil, err
		}
		share, err := ParsePercentage(args[i+1], true)
		if err != nil {
			return nil, nil, err
		}
		pools = append(pools, pool)
		shares = append(shares, share)
	}
	return pools, shares, nil
}

// NamedPool asks the configurator for a single pool registered under name.
func (r *PoolResolver) NamedPool(ctx context.Context, name string) (common.Address, error) {
	configurator, err := r.configurator(ctx)
	if err != nil {
		return common.Address{}, err
	}
	data, err := configuratorABI.Pack("getNamedRewardPools", []string{name})
	if err != nil {
		return common.Address{}, clierr.Wrap(clierr.CodeInternal, "pack getNamedRewardPools calldata", err)
	}
	raw, err := r.caller.Call(ctx, configurator, data)
	if err != nil {
		return common.Address{}, err
	}
	pools, err := unpackAddresses(configuratorABI, "getNamedRewardPools", raw)
	if err != nil {
		return common.Address{}, err
	}
	if len(pools) == 0 || pools[0] == (common.Address{}) {
		return common.Address{}, clierr.New(clierr.CodeResolution, "unknown pool name: "+name)
	}
	return pools[0], nil
}

func (r *PoolResolver) configurator(ctx context.Context) (common.Address, error) {
	addr, err := r.book.GetAddress(ctx, access.RewardConfigurator)
	if err != nil {
		return common.Address{}, err
	}
	if addr == (common.Address{}) {
		return common.Address{}, clierr.New(clierr.CodeResolution, "reward configurator is not set on the access controller")
	}
	return addr, nil
}

// populate lists every pool and fetches their names concurrently. Names are
// merged in list order so the first pool registered under a name wins.
func (r *PoolResolver) populate(ctx context.Context) error {
	if r.cache.populated {
		return nil
	}
	configurator, err := r.configurator(ctx)
	if err != nil {
		return err
	}
	data, err := configuratorABI.Pack("list")
	if err != nil {
		return clierr.Wrap(clierr.CodeInternal, "pack list calldata", err)
	}
	raw, err := r.caller.Call(ctx, configurator, data)
	if err != nil {
		return err
	}
	pools, err := unpackAddresses(configuratorABI, "list", raw)
	if err != nil {
		return err
	}

	names := make([]string, len(pools))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(poolNameConcurrency)
	for i, pool := range pools {
		g.Go(func() error {
			name, err := r.poolName(gctx, pool)
			if err != nil {
				return fmt.Errorf("pool %s: %w", pool.Hex(), err)
			}
			names[i] = name
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	byName := make(map[string]common.Address, len(pools))
	for i, pool := range pools {
		key := strings.ToLower(names[i])
		if prev, ok := byName[key]; ok {
			msg := fmt.Sprintf("duplicate pool name %s: %s ignored, keeping %s", names[i], pool.Hex(), prev.Hex())
			r.log.Warn(msg)
			r.warnings = append(r.warnings, msg)
			continue
		}
		byName[key] = pool
	}
	r.log.Debug("reward pools by name", zap.Int("count", len(byName)))
	r.cache = PoolCache{populated: true, byName: byName}
	return nil
}

func (r *PoolResolver) poolName(ctx context.Context, pool common.Address) (string, error) {
	data, err := managedPoolABI.Pack("getPoolName")
	if err != nil {
		return "", clierr.Wrap(clierr.CodeInternal, "pack getPoolName calldata", err)
	}
	raw, err := r.caller.Call(ctx, pool, data)
	if err != nil {
		return "", err
	}
	values, err := managedPoolABI.Unpack("getPoolName", raw)
	if err != nil || len(values) == 0 {
		return "", clierr.Wrap(clierr.CodeUnavailable, "decode getPoolName response", err)
	}
	name, ok := values[0].(string)
	if !ok {
		return "", clierr.New(clierr.CodeUnavailable, "invalid getPoolName response")
	}
	return name, nil
}
