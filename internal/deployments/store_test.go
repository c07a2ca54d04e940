package deployments

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

const sampleDB = `{
	"MarketAccessController": {
		"main": {"address": "0x00000000000000000000000000000000000000a1", "deployer": "0x00000000000000000000000000000000000000d1"},
		"kovan": {"address": "0x00000000000000000000000000000000000000b1", "deployer": "0x00000000000000000000000000000000000000d1"}
	},
	"AddressesProviderRegistry": {
		"main": {"address": "0x00000000000000000000000000000000000000a2", "deployer": "0x00000000000000000000000000000000000000d1"}
	},
	"main.instance": {
		"0x00000000000000000000000000000000000000c1": {"id": "RewardBoosterImpl"},
		"0x00000000000000000000000000000000000000c2": {"id": "StakeConfiguratorImpl"}
	},
	"main.external": {
		"0x00000000000000000000000000000000000000e1": {"id": "RewardBooster", "verify": {"impl": "0x00000000000000000000000000000000000000c1"}},
		"0x00000000000000000000000000000000000000e2": {"id": "DAI"}
	},
	"kovan.external": {
		"0x00000000000000000000000000000000000000f1": {"id": "RewardBooster", "verify": {"impl": "0x00000000000000000000000000000000000000c1"}}
	}
}`

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	store, err := OpenStore(filepath.Join(dir, "deployments.db"), filepath.Join(dir, "deployments.lock"))
	if err != nil {
		t.Fatalf("OpenStore failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestImportAndLookup(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	counts, err := store.Import(ctx, strings.NewReader(sampleDB), "main")
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if counts.Records != 2 || counts.Externals != 2 || counts.Instances != 2 {
		t.Fatalf("unexpected import counts: %+v", counts)
	}

	view := store.Network("main")
	rec, ok, err := view.LookupByKey(ctx, "MarketAccessController")
	if err != nil || !ok {
		t.Fatalf("LookupByKey failed: ok=%v err=%v", ok, err)
	}
	if rec.Address != common.HexToAddress("0xa1") {
		t.Fatalf("unexpected record address: %s", rec.Address.Hex())
	}
	if _, ok, _ := view.LookupByKey(ctx, "LendingPool"); ok {
		t.Fatal("did not expect LendingPool record")
	}

	externals, err := view.ListExternals(ctx)
	if err != nil {
		t.Fatalf("ListExternals failed: %v", err)
	}
	if len(externals) != 2 {
		t.Fatalf("expected two externals, got %d", len(externals))
	}
	if externals[0].ID != "RewardBooster" || externals[0].VerifyImpl != common.HexToAddress("0xc1") {
		t.Fatalf("unexpected first external: %+v", externals[0])
	}
	if externals[1].VerifyImpl != (common.Address{}) {
		t.Fatalf("expected external without impl to keep zero impl, got %s", externals[1].VerifyImpl.Hex())
	}

	inst, ok, err := view.LookupInstance(ctx, common.HexToAddress("0xc1"))
	if err != nil || !ok || inst.ID != "RewardBoosterImpl" {
		t.Fatalf("LookupInstance failed: inst=%+v ok=%v err=%v", inst, ok, err)
	}
}

func TestImportIsScopedToNetwork(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if _, err := store.Import(ctx, strings.NewReader(sampleDB), "main"); err != nil {
		t.Fatalf("Import main failed: %v", err)
	}
	if _, err := store.Import(ctx, strings.NewReader(sampleDB), "kovan"); err != nil {
		t.Fatalf("Import kovan failed: %v", err)
	}

	kovan := store.Network("kovan")
	rec, ok, _ := kovan.LookupByKey(ctx, "MarketAccessController")
	if !ok || rec.Address != common.HexToAddress("0xb1") {
		t.Fatalf("unexpected kovan controller record: %+v ok=%v", rec, ok)
	}
	if _, ok, _ := kovan.LookupByKey(ctx, "AddressesProviderRegistry"); ok {
		t.Fatal("did not expect main registry to leak into kovan")
	}

	// Re-importing main replaces its records and leaves kovan untouched.
	if _, err := store.Import(ctx, strings.NewReader(`{"LendingPool":{"main":{"address":"0x00000000000000000000000000000000000000a9"}}}`), "main"); err != nil {
		t.Fatalf("re-import failed: %v", err)
	}
	records, err := store.Network("main").ListRecords(ctx)
	if err != nil {
		t.Fatalf("ListRecords failed: %v", err)
	}
	if len(records) != 1 || records[0].Key != "LendingPool" {
		t.Fatalf("unexpected main records after re-import: %+v", records)
	}
	if externals, _ := kovan.ListExternals(ctx); len(externals) != 1 {
		t.Fatalf("expected kovan externals to survive, got %d", len(externals))
	}
}

func TestParseJSONDBRejectsBadAddress(t *testing.T) {
	_, _, _, err := ParseJSONDB(strings.NewReader(`{"main.instance":{"nope":{"id":"X"}}}`), "main")
	if err == nil {
		t.Fatal("expected invalid address error")
	}
}
