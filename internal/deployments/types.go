package deployments

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
)

// Record is a primary deployment entry. Its key doubles as the contract type id.
type Record struct {
	Key      string         `json:"key"`
	Address  common.Address `json:"address"`
	Deployer common.Address `json:"deployer"`
}

// External is a proxy or third-party address registered with an id and,
// for proxies, the implementation address it was verified against.
type External struct {
	Address    common.Address `json:"address"`
	ID         string         `json:"id"`
	VerifyImpl common.Address `json:"verify_impl"`
}

// Instance is a deployed implementation keyed by address.
type Instance struct {
	Address common.Address `json:"address"`
	ID      string         `json:"id"`
}

// Accessor is the read-only view over one network's deployment records.
type Accessor interface {
	LookupByKey(ctx context.Context, key string) (Record, bool, error)
	ListExternals(ctx context.Context) ([]External, error)
	LookupInstance(ctx context.Context, addr common.Address) (Instance, bool, error)
}

// Counts summarizes an import.
type Counts struct {
	Network   string `json:"network"`
	Records   int    `json:"records"`
	Externals int    `json:"externals"`
	Instances int    `json:"instances"`
}
