package signer

import (
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

const testPrivateKey = "59c6995e998f97a5a0044976f0945388cf9b7e5e5f4f9d2d9d8f1f5b7f6d11d1"

func clearKeyEnv(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	for _, key := range []string{EnvPrivateKey, EnvPrivateKeyFile, EnvKeystorePath, EnvKeystorePassword, EnvKeystorePasswordFile} {
		t.Setenv(key, "")
	}
}

func TestFromEnvHexSignsDynamicFeeTx(t *testing.T) {
	clearKeyEnv(t)
	t.Setenv(EnvPrivateKey, "0x"+testPrivateKey)

	s, err := FromEnv(KeySourceEnv, "")
	if err != nil {
		t.Fatalf("FromEnv failed: %v", err)
	}
	if s.Address() == (common.Address{}) {
		t.Fatal("expected non-zero signer address")
	}
	to := common.HexToAddress("0x0000000000000000000000000000000000000001")
	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   big.NewInt(31337),
		Gas:       21_000,
		GasTipCap: big.NewInt(1),
		GasFeeCap: big.NewInt(2),
		To:        &to,
		Value:     big.NewInt(0),
	})
	signed, err := s.SignTx(big.NewInt(31337), tx)
	if err != nil {
		t.Fatalf("SignTx failed: %v", err)
	}
	sender, err := types.Sender(types.LatestSignerForChainID(big.NewInt(31337)), signed)
	if err != nil {
		t.Fatalf("recover sender: %v", err)
	}
	if sender != s.Address() {
		t.Fatalf("expected sender %s, got %s", s.Address().Hex(), sender.Hex())
	}
}

func TestFromEnvUsesDefaultKeyFile(t *testing.T) {
	clearKeyEnv(t)
	cfgDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", cfgDir)
	keyFile := filepath.Join(cfgDir, "augmented", "key.hex")
	if err := os.MkdirAll(filepath.Dir(keyFile), 0o755); err != nil {
		t.Fatalf("create config dir: %v", err)
	}
	if err := os.WriteFile(keyFile, []byte(testPrivateKey+"\n"), 0o600); err != nil {
		t.Fatalf("write key file: %v", err)
	}

	if _, err := FromEnv(KeySourceAuto, ""); err != nil {
		t.Fatalf("expected auto source to use default key path: %v", err)
	}
	if _, err := FromEnv(KeySourceEnv, ""); err == nil {
		t.Fatal("expected env source to ignore the key file")
	}
}

func TestFromEnvOverrideWins(t *testing.T) {
	clearKeyEnv(t)
	t.Setenv(EnvPrivateKeyFile, "/tmp/does-not-exist")
	if _, err := FromEnv(KeySourceFile, testPrivateKey); err != nil {
		t.Fatalf("expected override to win over file source: %v", err)
	}
}

func TestFromEnvMissingKeyHint(t *testing.T) {
	clearKeyEnv(t)
	_, err := FromEnv(KeySourceAuto, "")
	if err == nil {
		t.Fatal("expected missing key error")
	}
	if !strings.Contains(err.Error(), defaultKeyHintPath) || !strings.Contains(err.Error(), "--private-key") {
		t.Fatalf("unexpected missing key message: %v", err)
	}
}

func TestFromEnvRejectsUnknownSource(t *testing.T) {
	clearKeyEnv(t)
	if _, err := FromEnv("ledger", ""); err == nil {
		t.Fatal("expected unsupported source error")
	}
}
