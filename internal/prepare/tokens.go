package prepare

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/augmented-finance/augmented-cli/internal/access"
	clierr "github.com/augmented-finance/augmented-cli/internal/errors"
	"github.com/augmented-finance/augmented-cli/internal/registry"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

var (
	dataProviderABI = registry.MustABI(registry.ProtocolDataProviderABI)
	configuratorABI = registry.MustABI(registry.RewardConfiguratorABI)
	managedPoolABI  = registry.MustABI(registry.ManagedRewardPoolABI)
)

// Caller performs read-only contract calls.
type Caller interface {
	Call(ctx context.Context, to common.Address, data []byte) ([]byte, error)
}

// AddressBook maps access-controller ids to addresses.
type AddressBook interface {
	GetAddress(ctx context.Context, flag access.Flags) (common.Address, error)
}

type TokenDescription struct {
	Token       common.Address `json:"token"`
	PriceToken  common.Address `json:"price_token"`
	RewardPool  common.Address `json:"reward_pool"`
	TokenSymbol string         `json:"token_symbol"`
	Underlying  common.Address `json:"underlying"`
	Decimals    uint8          `json:"decimals"`
	TokenType   uint8          `json:"token_type"`
	Active      bool           `json:"active"`
	Frozen      bool           `json:"frozen"`
}

// TokenCache holds the data provider's token list once fetched.
type TokenCache struct {
	populated bool
	tokens    []TokenDescription
}

func (c *TokenCache) Populated() bool { return c.populated }

func (c *TokenCache) Tokens() []TokenDescription { return c.tokens }

// TokenResolver maps token symbols to the token the price oracle prices them by.
type TokenResolver struct {
	book     AddressBook
	caller   Caller
	cache    TokenCache
	log      *zap.Logger
	warnings []string
}

func NewTokenResolver(book AddressBook, caller Caller, log *zap.Logger) *TokenResolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &TokenResolver{book: book, caller: caller, log: log}
}

func (r *TokenResolver) Warnings() []string { return r.warnings }

func (r *TokenResolver) Cache() *TokenCache { return &r.cache }

// PriceTokens resolves each name. Addresses pass through untouched; symbols
// are matched case-insensitively against the protocol token list. With warn
// set, a price token shared by several tokens is reported.
func (r *TokenResolver) PriceTokens(ctx context.Context, names []string, warn bool) ([]common.Address, error) {
	out := make([]common.Address, 0, len(names))
	for _, name := range names {
		addr, err := r.priceToken(ctx, name, warn)
		if err != nil {
			return nil, err
		}
		out = append(out, addr)
	}
	return out, nil
}

func (r *TokenResolver) priceToken(ctx context.Context, name string, warn bool) (common.Address, error) {
	name = strings.TrimSpace(name)
	if addr, ok := nonZeroAddress(name); ok {
		return addr, nil
	}
	tokens, err := r.tokens(ctx)
	if err != nil {
		return common.Address{}, err
	}

	var matched []TokenDescription
	for _, token := range tokens {
		if strings.EqualFold(token.TokenSymbol, name) {
			matched = append(matched, token)
		}
	}
	switch {
	case len(matched) == 0:
		return common.Address{}, clierr.New(clierr.CodeResolution, "unknown token name: "+name)
	case len(matched) > 1:
		return common.Address{}, clierr.New(clierr.CodeResolution, "ambiguous token name: "+name)
	}

	priceKey := matched[0].PriceToken
	if priceKey == (common.Address{}) {
		return common.Address{}, clierr.New(clierr.CodeResolution, "token has no pricing token: "+name)
	}
	if warn {
		var shared []string
		for _, token := range tokens {
			if token.PriceToken == priceKey {
				shared = append(shared, token.TokenSymbol)
			}
		}
		if len(shared) > 1 {
			msg := fmt.Sprintf("same price is used for: %s", strings.Join(shared, ", "))
			r.log.Warn(msg, zap.String("price_token", priceKey.Hex()))
			r.warnings = append(r.warnings, msg)
		}
	}
	return priceKey, nil
}

func (r *TokenResolver) tokens(ctx context.Context) ([]TokenDescription, error) {
	if r.cache.populated {
		return r.cache.tokens, nil
	}
	provider, err := r.book.GetAddress(ctx, access.DataHelper)
	if err != nil {
		return nil, err
	}
	if provider == (common.Address{}) {
		return nil, clierr.New(clierr.CodeResolution, "data helper is not set on the access controller")
	}
	data, err := dataProviderABI.Pack("getAllTokenDescriptions", true)
	if err != nil {
		return nil, clierr.Wrap(clierr.CodeInternal, "pack getAllTokenDescriptions calldata", err)
	}
	raw, err := r.caller.Call(ctx, provider, data)
	if err != nil {
		return nil, err
	}
	var decoded struct {
		Tokens     []TokenDescription
		TokenCount *big.Int
	}
	if err := dataProviderABI.UnpackIntoInterface(&decoded, "getAllTokenDescriptions", raw); err != nil {
		return nil, clierr.Wrap(clierr.CodeUnavailable, "decode getAllTokenDescriptions response", err)
	}
	tokens := decoded.Tokens
	if decoded.TokenCount != nil && decoded.TokenCount.IsInt64() && decoded.TokenCount.Int64() < int64(len(tokens)) {
		tokens = tokens[:decoded.TokenCount.Int64()]
	}
	r.cache = TokenCache{populated: true, tokens: tokens}
	return tokens, nil
}

func nonZeroAddress(value string) (common.Address, bool) {
	if !common.IsHexAddress(value) {
		return common.Address{}, false
	}
	addr := common.HexToAddress(value)
	return addr, addr != (common.Address{})
}

func unpackAddresses(parsed abi.ABI, method string, raw []byte) ([]common.Address, error) {
	values, err := parsed.Unpack(method, raw)
	if err != nil || len(values) == 0 {
		return nil, clierr.Wrap(clierr.CodeUnavailable, "decode "+method+" response", err)
	}
	out, ok := values[0].([]common.Address)
	if !ok {
		return nil, clierr.New(clierr.CodeUnavailable, "invalid "+method+" response")
	}
	return out, nil
}
