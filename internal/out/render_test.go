package out

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/augmented-finance/augmented-cli/internal/config"
	"github.com/augmented-finance/augmented-cli/internal/model"
)

type lines []string

func (l lines) Lines() []string { return l }

func TestRenderJSONSelectResultsOnly(t *testing.T) {
	env := model.Envelope{
		Version: "v1",
		Success: true,
		Data: []model.DeploymentRecord{{
			Network: "kovan",
			Key:     "MarketAccessController",
			Address: "0x0000000000000000000000000000000000000ac0",
		}},
		Meta: model.EnvelopeMeta{Timestamp: time.Now()},
	}
	settings := config.Settings{OutputMode: "json", SelectFields: []string{"key"}, ResultsOnly: true}
	var buf bytes.Buffer
	if err := Render(&buf, env, settings); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	var out []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("json decode failed: %v", err)
	}
	if len(out) != 1 || out[0]["key"] != "MarketAccessController" {
		t.Fatalf("unexpected output: %s", buf.String())
	}
	if _, ok := out[0]["address"]; ok {
		t.Fatalf("field projection failed: %s", buf.String())
	}
}

func TestRenderPlain(t *testing.T) {
	env := model.Envelope{
		Version: "v1",
		Success: true,
		Data:    []model.RoleInfo{{Name: "STAKE_ADMIN", Flag: "0x20", Bit: 5}},
		Meta:    model.EnvelopeMeta{Timestamp: time.Now()},
	}
	settings := config.Settings{OutputMode: "plain", ResultsOnly: true}
	var buf bytes.Buffer
	if err := Render(&buf, env, settings); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !strings.Contains(buf.String(), "name=STAKE_ADMIN") {
		t.Fatalf("unexpected plain output: %s", buf.String())
	}
}

func TestRenderPlainLines(t *testing.T) {
	env := model.Envelope{
		Version:  "v1",
		Success:  true,
		Data:     lines{"OracleRouter@0xaaa.getAssetPrice(0x01)", "  [0] 100"},
		Warnings: []string{"same price is used for: DAI, agDAI"},
		Meta:     model.EnvelopeMeta{Timestamp: time.Now(), JournalID: "j-1"},
	}
	var buf bytes.Buffer
	if err := Render(&buf, env, config.Settings{OutputMode: "plain"}); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	want := "OracleRouter@0xaaa.getAssetPrice(0x01)\n  [0] 100\nwarning: same price is used for: DAI, agDAI\njournal: j-1\n"
	if buf.String() != want {
		t.Fatalf("unexpected plain output:\n%s", buf.String())
	}

	buf.Reset()
	if err := Render(&buf, env, config.Settings{OutputMode: "json", ResultsOnly: true}); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	var out []string
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil || len(out) != 2 {
		t.Fatalf("expected json payload to ignore lines: %s", buf.String())
	}
}

func TestRenderSelectDottedPath(t *testing.T) {
	env := model.Envelope{
		Version: "v1",
		Success: true,
		Data: map[string]any{
			"command": "getPrice",
			"outcomes": []map[string]any{
				{"function": "getAssetsPrices", "values": []string{"100", "101"}},
			},
		},
		Meta: model.EnvelopeMeta{Timestamp: time.Now()},
	}
	settings := config.Settings{OutputMode: "json", SelectFields: []string{"outcomes.values", "missing.field"}, ResultsOnly: true}
	var buf bytes.Buffer
	if err := Render(&buf, env, settings); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	var out map[string][][]string
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("json decode failed: %v output=%s", err, buf.String())
	}
	got := out["outcomes.values"]
	if len(out) != 1 || len(got) != 1 || len(got[0]) != 2 || got[0][1] != "101" {
		t.Fatalf("unexpected projection: %s", buf.String())
	}
}
