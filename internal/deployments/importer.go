package deployments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

type jsonEntry struct {
	Address  string `json:"address"`
	Deployer string `json:"deployer"`
}

type jsonInstance struct {
	ID string `json:"id"`
}

type jsonExternal struct {
	ID     string `json:"id"`
	Verify struct {
		Impl string `json:"impl"`
	} `json:"verify"`
}

// ParseJSONDB extracts one network's records from a hardhat deployment
// database. Primary entries are stored as {"<Key>": {"<network>": {...}}};
// instances and externals live under "<network>.instance" and
// "<network>.external" keyed by address.
func ParseJSONDB(r io.Reader, network string) ([]Record, []External, []Instance, error) {
	network = strings.ToLower(strings.TrimSpace(network))
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, nil, nil, fmt.Errorf("decode deployment db: %w", err)
	}

	var (
		records   []Record
		externals []External
		instances []Instance
	)
	for key, value := range raw {
		switch key {
		case network + ".instance":
			var entries map[string]jsonInstance
			if err := json.Unmarshal(value, &entries); err != nil {
				return nil, nil, nil, fmt.Errorf("decode %s: %w", key, err)
			}
			for addr, entry := range entries {
				if !common.IsHexAddress(addr) {
					return nil, nil, nil, fmt.Errorf("decode %s: invalid address %q", key, addr)
				}
				instances = append(instances, Instance{Address: common.HexToAddress(addr), ID: entry.ID})
			}
		case network + ".external":
			var entries map[string]jsonExternal
			if err := json.Unmarshal(value, &entries); err != nil {
				return nil, nil, nil, fmt.Errorf("decode %s: %w", key, err)
			}
			for addr, entry := range entries {
				if !common.IsHexAddress(addr) {
					return nil, nil, nil, fmt.Errorf("decode %s: invalid address %q", key, addr)
				}
				ext := External{Address: common.HexToAddress(addr), ID: entry.ID}
				if common.IsHexAddress(entry.Verify.Impl) {
					ext.VerifyImpl = common.HexToAddress(entry.Verify.Impl)
				}
				externals = append(externals, ext)
			}
		default:
			if strings.Contains(key, ".") {
				continue
			}
			var perNetwork map[string]json.RawMessage
			if err := json.Unmarshal(value, &perNetwork); err != nil {
				continue
			}
			body, ok := perNetwork[network]
			if !ok {
				continue
			}
			var entry jsonEntry
			if err := json.Unmarshal(body, &entry); err != nil {
				return nil, nil, nil, fmt.Errorf("decode %s.%s: %w", key, network, err)
			}
			if !common.IsHexAddress(entry.Address) {
				return nil, nil, nil, fmt.Errorf("decode %s.%s: invalid address %q", key, network, entry.Address)
			}
			rec := Record{Key: key, Address: common.HexToAddress(entry.Address)}
			if common.IsHexAddress(entry.Deployer) {
				rec.Deployer = common.HexToAddress(entry.Deployer)
			}
			records = append(records, rec)
		}
	}

	sort.Slice(records, func(i, j int) bool { return records[i].Key < records[j].Key })
	sort.Slice(externals, func(i, j int) bool { return bytes.Compare(externals[i].Address[:], externals[j].Address[:]) < 0 })
	sort.Slice(instances, func(i, j int) bool { return bytes.Compare(instances[i].Address[:], instances[j].Address[:]) < 0 })
	return records, externals, instances, nil
}

// Import replaces the stored records of network with the contents of r.
func (s *Store) Import(ctx context.Context, r io.Reader, network string) (Counts, error) {
	records, externals, instances, err := ParseJSONDB(r, network)
	if err != nil {
		return Counts{}, err
	}
	if err := s.Replace(ctx, network, records, externals, instances); err != nil {
		return Counts{}, err
	}
	return Counts{
		Network:   strings.ToLower(strings.TrimSpace(network)),
		Records:   len(records),
		Externals: len(externals),
		Instances: len(instances),
	}, nil
}
