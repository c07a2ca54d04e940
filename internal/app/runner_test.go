package app

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

const deploymentDB = `{
	"MarketAccessController": {
		"kovan": {"address": "0x0000000000000000000000000000000000000ac0", "deployer": "0x00000000000000000000000000000000000000d1"}
	},
	"kovan.instance": {
		"0x00000000000000000000000000000000000000c1": {"id": "RewardBoosterImpl"}
	},
	"kovan.external": {
		"0x00000000000000000000000000000000000000e1": {"id": "RewardBooster", "verify": {"impl": "0x00000000000000000000000000000000000000c1"}}
	}
}`

func isolate(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmp, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(tmp, "cache"))
	for _, key := range []string{
		"AUGMENTED_CONFIG", "AUGMENTED_NETWORK", "AUGMENTED_RPC_URL", "AUGMENTED_CONTROLLER",
		"AUGMENTED_OUTPUT", "AUGMENTED_NO_JOURNAL", "AUGMENTED_PRIVATE_KEY", "AUGMENTED_PRIVATE_KEY_FILE",
		"AUGMENTED_KEYSTORE_PATH", "AUGMENTED_KEYSTORE_PASSWORD", "AUGMENTED_KEYSTORE_PASSWORD_FILE",
	} {
		t.Setenv(key, "")
	}
	return tmp
}

func run(t *testing.T, args ...string) (int, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	r := NewRunnerWithWriters(&stdout, &stderr)
	code := r.Run(append(args, "--log-level", "error"))
	return code, &stdout, &stderr
}

func TestTrimRootPath(t *testing.T) {
	if got := trimRootPath("augmented deployments list"); got != "deployments list" {
		t.Fatalf("unexpected trim result: %s", got)
	}
	if got := trimRootPath("augmented"); got != "augmented" {
		t.Fatalf("unexpected trim result for root: %s", got)
	}
}

func TestSplitCSV(t *testing.T) {
	items := splitCSV("STAKE_ADMIN, 0x20 ,")
	if len(items) != 2 || items[0] != "STAKE_ADMIN" || items[1] != "0x20" {
		t.Fatalf("unexpected split: %#v", items)
	}
	if splitCSV("  ") != nil {
		t.Fatal("expected nil for blank input")
	}
}

func TestRunnerRolesList(t *testing.T) {
	isolate(t)
	code, stdout, stderr := run(t, "roles", "list", "--results-only")
	if code != 0 {
		t.Fatalf("expected exit 0, got %d stderr=%s", code, stderr.String())
	}
	var out []map[string]any
	if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
		t.Fatalf("failed to parse output json: %v output=%s", err, stdout.String())
	}
	if len(out) == 0 {
		t.Fatal("expected roles output, got empty")
	}
	if out[0]["name"] != "EMERGENCY_ADMIN" || out[0]["flag"] != "0x1" || out[0]["bit"].(float64) != 0 {
		t.Fatalf("unexpected first role: %v", out[0])
	}
}

func TestRunnerCommandsList(t *testing.T) {
	isolate(t)
	code, stdout, stderr := run(t, "commands", "list", "--results-only")
	if code != 0 {
		t.Fatalf("expected exit 0, got %d stderr=%s", code, stderr.String())
	}
	var out []map[string]any
	if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
		t.Fatalf("failed to parse output json: %v", err)
	}
	found := false
	for _, item := range out {
		if item["name"] == "setCooldownForAll" {
			found = true
			if item["kind"] != "direct" || item["role"] != "STAKE_ADMIN" {
				t.Fatalf("unexpected direct alias info: %v", item)
			}
		}
	}
	if !found {
		t.Fatalf("setCooldownForAll missing from %s", stdout.String())
	}
}

func TestRunnerTypesList(t *testing.T) {
	isolate(t)
	code, stdout, stderr := run(t, "types", "list", "--results-only")
	if code != 0 {
		t.Fatalf("expected exit 0, got %d stderr=%s", code, stderr.String())
	}
	var names []string
	if err := json.Unmarshal(stdout.Bytes(), &names); err != nil {
		t.Fatalf("failed to parse output json: %v", err)
	}
	want := map[string]bool{"LendingPoolConfigurator": false, "DepositTokenImpl": false, "OracleRouter": false}
	for _, name := range names {
		if _, ok := want[name]; ok {
			want[name] = true
		}
	}
	for name, seen := range want {
		if !seen {
			t.Fatalf("%s missing from %v", name, names)
		}
	}
}

func TestRunnerErrorEnvelopeIgnoresResultsOnly(t *testing.T) {
	isolate(t)
	code, _, stderr := run(t, "roles", "list", "--enable-commands", "networks list", "--results-only")
	if code != 16 {
		t.Fatalf("expected exit 16, got %d stderr=%s", code, stderr.String())
	}
	var env map[string]any
	if err := json.Unmarshal(stderr.Bytes(), &env); err != nil {
		t.Fatalf("failed to parse error envelope: %v output=%s", err, stderr.String())
	}
	if env["success"] != false {
		t.Fatalf("expected success=false, got %v", env["success"])
	}
	errBody := env["error"].(map[string]any)
	if errBody["code"].(float64) != 16 {
		t.Fatalf("unexpected error body: %v", errBody)
	}
}

func TestRunnerCallRequiresCommandAndController(t *testing.T) {
	isolate(t)
	if code, _, stderr := run(t, "call", "--ctl", "0x0000000000000000000000000000000000000ac0"); code != 2 {
		t.Fatalf("expected exit 2 without --cmd, got %d stderr=%s", code, stderr.String())
	}
	code, _, stderr := run(t, "call", "--cmd", "getPrice", "0x0000000000000000000000000000000000000001")
	if code != 2 {
		t.Fatalf("expected exit 2 without a controller, got %d stderr=%s", code, stderr.String())
	}
	if !bytes.Contains(stderr.Bytes(), []byte("unknown access controller")) {
		t.Fatalf("unexpected error output: %s", stderr.String())
	}
}

func TestRunnerCallPolicyPerCommand(t *testing.T) {
	isolate(t)
	code, _, stderr := run(t, "call", "--ctl", "0x0000000000000000000000000000000000000ac0",
		"--cmd", "setMintRate", "--enable-commands", "call getPrice", "1")
	if code != 16 {
		t.Fatalf("expected exit 16, got %d stderr=%s", code, stderr.String())
	}
}

func TestRunnerDeploymentsImportAndGet(t *testing.T) {
	tmp := isolate(t)
	dbPath := filepath.Join(tmp, "deployed-contracts.json")
	if err := os.WriteFile(dbPath, []byte(deploymentDB), 0o644); err != nil {
		t.Fatalf("write deployment db: %v", err)
	}

	code, stdout, stderr := run(t, "deployments", "import", dbPath, "--network", "kovan", "--results-only")
	if code != 0 {
		t.Fatalf("import failed: %d stderr=%s", code, stderr.String())
	}
	var summary map[string]any
	if err := json.Unmarshal(stdout.Bytes(), &summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if summary["records"].(float64) != 1 || summary["externals"].(float64) != 1 || summary["instances"].(float64) != 1 {
		t.Fatalf("unexpected summary: %v", summary)
	}

	code, stdout, stderr = run(t, "deployments", "get", "MarketAccessController", "--network", "kovan", "--results-only")
	if code != 0 {
		t.Fatalf("get failed: %d stderr=%s", code, stderr.String())
	}
	var rec map[string]any
	if err := json.Unmarshal(stdout.Bytes(), &rec); err != nil {
		t.Fatalf("decode record: %v", err)
	}
	if rec["address"] != common.HexToAddress("0xac0").Hex() {
		t.Fatalf("unexpected record: %v", rec)
	}

	if code, _, stderr := run(t, "deployments", "get", "MarketAccessController", "--network", "main"); code != 20 {
		t.Fatalf("expected exit 20 for a missing record, got %d stderr=%s", code, stderr.String())
	}
}

func TestRunnerCallStaticQualifiedAndHistory(t *testing.T) {
	isolate(t)
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     json.RawMessage `json:"id"`
			Method string          `json:"method"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
		if req.Method == "eth_call" {
			calls.Add(1)
			resp["result"] = hexutil.Encode(common.LeftPadBytes([]byte{100}, 32))
		} else {
			resp["error"] = map[string]any{"code": -32601, "message": "method not found"}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	command := "OracleRouter@0x0000000000000000000000000000000000000aaa.getAssetPrice"
	code, stdout, stderr := run(t, "call",
		"--rpc-url", srv.URL,
		"--ctl", "0x0000000000000000000000000000000000000ac0",
		"--cmd", command,
		"0x0000000000000000000000000000000000000001")
	if code != 0 {
		t.Fatalf("call failed: %d stderr=%s", code, stderr.String())
	}
	if n := calls.Load(); n != 1 {
		t.Fatalf("expected one eth_call, got %d", n)
	}
	var env struct {
		Success bool `json:"success"`
		Data    struct {
			Outcomes []struct {
				Mode   string `json:"mode"`
				Static bool   `json:"static"`
				Values []any  `json:"values"`
			} `json:"outcomes"`
		} `json:"data"`
		Meta struct {
			Command   string `json:"command"`
			JournalID string `json:"journal_id"`
		} `json:"meta"`
	}
	if err := json.Unmarshal(stdout.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v output=%s", err, stdout.String())
	}
	if !env.Success || len(env.Data.Outcomes) != 1 {
		t.Fatalf("unexpected envelope: %s", stdout.String())
	}
	o := env.Data.Outcomes[0]
	if o.Mode != "direct" || !o.Static || len(o.Values) != 1 || o.Values[0] != "100" {
		t.Fatalf("unexpected outcome: %+v", o)
	}
	if env.Meta.Command != "call "+command || env.Meta.JournalID == "" {
		t.Fatalf("unexpected meta: %+v", env.Meta)
	}

	code, stdout, stderr = run(t, "history", "show", env.Meta.JournalID, "--results-only")
	if code != 0 {
		t.Fatalf("history show failed: %d stderr=%s", code, stderr.String())
	}
	var entry map[string]any
	if err := json.Unmarshal(stdout.Bytes(), &entry); err != nil {
		t.Fatalf("decode entry: %v", err)
	}
	if entry["status"] != "completed" || entry["command"] != command {
		t.Fatalf("unexpected journal entry: %v", entry)
	}

	code, stdout, _ = run(t, "history", "list", "--status", "failed", "--results-only")
	if code != 0 {
		t.Fatalf("history list failed: %d", code)
	}
	var entries []any
	if err := json.Unmarshal(stdout.Bytes(), &entries); err != nil {
		t.Fatalf("decode entries: %v output=%s", err, stdout.String())
	}
	if len(entries) != 0 {
		t.Fatalf("expected no failed entries, got %d", len(entries))
	}
}

func TestRunnerCallEncodeNeedsNoNode(t *testing.T) {
	isolate(t)
	code, stdout, stderr := run(t, "call",
		"--rpc-url", "http://127.0.0.1:1",
		"--ctl", "0x0000000000000000000000000000000000000ac0",
		"--cmd", "OracleRouter@0x0000000000000000000000000000000000000aaa.getAssetPrice",
		"--encode", "--no-journal", "--plain",
		"0x0000000000000000000000000000000000000001")
	if code != 0 {
		t.Fatalf("encode failed: %d stderr=%s", code, stderr.String())
	}
	if !bytes.Contains(stdout.Bytes(), []byte("data: 0x")) || !bytes.Contains(stdout.Bytes(), []byte("encoded getAssetPrice")) {
		t.Fatalf("unexpected plain output: %s", stdout.String())
	}
}
