package registry

import (
	"fmt"
	"sort"
	"strings"
)

// Network is a named deployment target.
type Network struct {
	Name    string
	ChainID int64
	RPCURL  string
}

// Networks the protocol has been deployed to, keyed by the names used in the
// deployment database.
var networksByName = map[string]Network{
	"main":      {Name: "main", ChainID: 1, RPCURL: "https://eth.llamarpc.com"},
	"ropsten":   {Name: "ropsten", ChainID: 3},
	"kovan":     {Name: "kovan", ChainID: 42},
	"optimism":  {Name: "optimism", ChainID: 10, RPCURL: "https://mainnet.optimism.io"},
	"bsc":       {Name: "bsc", ChainID: 56, RPCURL: "https://bsc-dataseed.binance.org"},
	"matic":     {Name: "matic", ChainID: 137, RPCURL: "https://polygon-rpc.com"},
	"fantom":    {Name: "fantom", ChainID: 250, RPCURL: "https://rpc.ftm.tools"},
	"arbitrum":  {Name: "arbitrum", ChainID: 42161, RPCURL: "https://arb1.arbitrum.io/rpc"},
	"avalanche": {Name: "avalanche", ChainID: 43114, RPCURL: "https://api.avax.network/ext/bc/C/rpc"},
	"mumbai":    {Name: "mumbai", ChainID: 80001},
	"hardhat":   {Name: "hardhat", ChainID: 31337, RPCURL: "http://127.0.0.1:8545"},
	"localhost": {Name: "localhost", ChainID: 31337, RPCURL: "http://127.0.0.1:8545"},
}

func LookupNetwork(name string) (Network, bool) {
	network, ok := networksByName[strings.ToLower(strings.TrimSpace(name))]
	return network, ok
}

func NetworkNames() []string {
	out := make([]string, 0, len(networksByName))
	for name := range networksByName {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func ResolveRPCURL(override, network string) (string, error) {
	if strings.TrimSpace(override) != "" {
		return strings.TrimSpace(override), nil
	}
	value, ok := LookupNetwork(network)
	if !ok {
		return "", fmt.Errorf("unknown network %q", network)
	}
	if value.RPCURL == "" {
		return "", fmt.Errorf("no default rpc configured for network %s; provide --rpc-url", value.Name)
	}
	return value.RPCURL, nil
}
