package signer

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

const (
	EnvPrivateKey           = "AUGMENTED_PRIVATE_KEY"
	EnvPrivateKeyFile       = "AUGMENTED_PRIVATE_KEY_FILE"
	EnvKeystorePath         = "AUGMENTED_KEYSTORE_PATH"
	EnvKeystorePassword     = "AUGMENTED_KEYSTORE_PASSWORD"
	EnvKeystorePasswordFile = "AUGMENTED_KEYSTORE_PASSWORD_FILE"

	KeySourceAuto     = "auto"
	KeySourceEnv      = "env"
	KeySourceFile     = "file"
	KeySourceKeystore = "keystore"

	defaultKeyRelativePath = "augmented/key.hex"
	defaultKeyHintPath     = "~/.config/augmented/key.hex"
)

// Local signs with an in-memory secp256k1 key.
type Local struct {
	key     *ecdsa.PrivateKey
	address common.Address
}

func (s *Local) Address() common.Address { return s.address }

func (s *Local) SignTx(chainID *big.Int, tx *types.Transaction) (*types.Transaction, error) {
	if s == nil || s.key == nil {
		return nil, errors.New("local signer is not initialized")
	}
	return types.SignTx(tx, types.LatestSignerForChainID(chainID), s.key)
}

// Inputs lists every place a key may come from. At most one is used, in field
// order.
type Inputs struct {
	PrivateKeyHex        string
	PrivateKeyFile       string
	KeystorePath         string
	KeystorePassword     string
	KeystorePasswordFile string
}

// InputsFromEnv reads the AUGMENTED_* key variables and narrows them to source.
// A non-empty override replaces every other input.
func InputsFromEnv(source, override string) (Inputs, error) {
	in := Inputs{
		PrivateKeyHex:        strings.TrimSpace(os.Getenv(EnvPrivateKey)),
		PrivateKeyFile:       strings.TrimSpace(os.Getenv(EnvPrivateKeyFile)),
		KeystorePath:         strings.TrimSpace(os.Getenv(EnvKeystorePath)),
		KeystorePassword:     strings.TrimSpace(os.Getenv(EnvKeystorePassword)),
		KeystorePasswordFile: strings.TrimSpace(os.Getenv(EnvKeystorePasswordFile)),
	}
	if strings.TrimSpace(override) != "" {
		return Inputs{PrivateKeyHex: strings.TrimSpace(override)}, nil
	}
	if in.PrivateKeyFile == "" {
		in.PrivateKeyFile = existingFile(defaultKeyPath())
	}

	switch strings.ToLower(strings.TrimSpace(source)) {
	case "", KeySourceAuto:
		return in, nil
	case KeySourceEnv:
		return Inputs{PrivateKeyHex: in.PrivateKeyHex}, nil
	case KeySourceFile:
		return Inputs{PrivateKeyFile: in.PrivateKeyFile}, nil
	case KeySourceKeystore:
		in.PrivateKeyHex, in.PrivateKeyFile = "", ""
		return in, nil
	default:
		return Inputs{}, fmt.Errorf("unsupported key source %q (expected %s|%s|%s|%s)", source, KeySourceAuto, KeySourceEnv, KeySourceFile, KeySourceKeystore)
	}
}

func FromEnv(source, override string) (*Local, error) {
	in, err := InputsFromEnv(source, override)
	if err != nil {
		return nil, err
	}
	return New(in)
}

func New(in Inputs) (*Local, error) {
	key, err := in.load()
	if err != nil {
		return nil, err
	}
	return &Local{key: key, address: crypto.PubkeyToAddress(key.PublicKey)}, nil
}

func (in Inputs) load() (*ecdsa.PrivateKey, error) {
	switch {
	case in.PrivateKeyHex != "":
		return parseHexKey(in.PrivateKeyHex)
	case in.PrivateKeyFile != "":
		buf, err := os.ReadFile(in.PrivateKeyFile)
		if err != nil {
			return nil, fmt.Errorf("read private key file: %w", err)
		}
		return parseHexKey(string(buf))
	case in.KeystorePath != "":
		password, err := in.keystorePassword()
		if err != nil {
			return nil, err
		}
		buf, err := os.ReadFile(in.KeystorePath)
		if err != nil {
			return nil, fmt.Errorf("read keystore file: %w", err)
		}
		key, err := keystore.DecryptKey(buf, password)
		if err != nil {
			return nil, fmt.Errorf("decrypt keystore: %w", err)
		}
		return key.PrivateKey, nil
	}
	return nil, fmt.Errorf("missing signing key: set %s, write %s, set %s, or pass --private-key",
		EnvPrivateKey, defaultKeyHintPath, EnvKeystorePath)
}

func (in Inputs) keystorePassword() (string, error) {
	if in.KeystorePassword != "" {
		return in.KeystorePassword, nil
	}
	if in.KeystorePasswordFile != "" {
		buf, err := os.ReadFile(in.KeystorePasswordFile)
		if err != nil {
			return "", fmt.Errorf("read keystore password file: %w", err)
		}
		if password := strings.TrimSpace(string(buf)); password != "" {
			return password, nil
		}
	}
	return "", fmt.Errorf("keystore password is required")
}

func parseHexKey(raw string) (*ecdsa.PrivateKey, error) {
	clean := strings.TrimPrefix(strings.TrimSpace(raw), "0x")
	if clean == "" {
		return nil, fmt.Errorf("empty private key")
	}
	key, err := crypto.HexToECDSA(clean)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	return key, nil
}

func defaultKeyPath() string {
	base := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME"))
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil || strings.TrimSpace(home) == "" {
			return ""
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, defaultKeyRelativePath)
}

func existingFile(path string) string {
	if path == "" {
		return ""
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return ""
	}
	return path
}
