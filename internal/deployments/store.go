package deployments

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"
)

const lockTimeout = 5 * time.Second

type Store struct {
	db   *sql.DB
	lock *flock.Flock
}

func OpenStore(path, lockPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create deployments directory: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(lockPath), 0o755); err != nil {
		return nil, fmt.Errorf("create deployments lock directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open deployments sqlite: %w", err)
	}

	queries := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		`CREATE TABLE IF NOT EXISTS records (
			network TEXT NOT NULL,
			key TEXT NOT NULL,
			address TEXT NOT NULL,
			deployer TEXT NOT NULL,
			PRIMARY KEY (network, key)
		);`,
		`CREATE TABLE IF NOT EXISTS externals (
			network TEXT NOT NULL,
			address TEXT NOT NULL,
			id TEXT NOT NULL,
			verify_impl TEXT NOT NULL,
			PRIMARY KEY (network, address)
		);`,
		`CREATE TABLE IF NOT EXISTS instances (
			network TEXT NOT NULL,
			address TEXT NOT NULL,
			id TEXT NOT NULL,
			PRIMARY KEY (network, address)
		);`,
		"CREATE INDEX IF NOT EXISTS idx_externals_id ON externals(network, id);",
	}
	for _, q := range queries {
		if _, err := db.Exec(q); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("init deployments schema: %w", err)
		}
	}
	return &Store{db: db, lock: flock.New(lockPath)}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Network returns the read-only accessor for one network.
func (s *Store) Network(network string) *View {
	return &View{store: s, network: strings.ToLower(strings.TrimSpace(network))}
}

// Replace swaps every record of a network for the given set in one transaction.
func (s *Store) Replace(ctx context.Context, network string, records []Record, externals []External, instances []Instance) error {
	network = strings.ToLower(strings.TrimSpace(network))
	if network == "" {
		return fmt.Errorf("replace deployments: missing network")
	}
	locked, err := s.lock.TryLockContext(ctx, lockTimeout)
	if err != nil {
		return fmt.Errorf("lock deployments store: %w", err)
	}
	if !locked {
		return fmt.Errorf("lock deployments store: timeout acquiring lock")
	}
	defer func() { _ = s.lock.Unlock() }()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin deployments import: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"records", "externals", "instances"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE network = ?", network); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	for _, rec := range records {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO records (network, key, address, deployer) VALUES (?, ?, ?, ?)
			ON CONFLICT(network, key) DO UPDATE SET address=excluded.address, deployer=excluded.deployer
		`, network, rec.Key, addressKey(rec.Address), addressKey(rec.Deployer)); err != nil {
			return fmt.Errorf("save record %s: %w", rec.Key, err)
		}
	}
	for _, ext := range externals {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO externals (network, address, id, verify_impl) VALUES (?, ?, ?, ?)
			ON CONFLICT(network, address) DO UPDATE SET id=excluded.id, verify_impl=excluded.verify_impl
		`, network, addressKey(ext.Address), ext.ID, addressKey(ext.VerifyImpl)); err != nil {
			return fmt.Errorf("save external %s: %w", ext.Address.Hex(), err)
		}
	}
	for _, inst := range instances {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO instances (network, address, id) VALUES (?, ?, ?)
			ON CONFLICT(network, address) DO UPDATE SET id=excluded.id
		`, network, addressKey(inst.Address), inst.ID); err != nil {
			return fmt.Errorf("save instance %s: %w", inst.Address.Hex(), err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit deployments import: %w", err)
	}
	return nil
}

// View is the Accessor for one network.
type View struct {
	store   *Store
	network string
}

var _ Accessor = (*View)(nil)

func (v *View) LookupByKey(ctx context.Context, key string) (Record, bool, error) {
	var addr, deployer string
	err := v.store.db.QueryRowContext(ctx,
		"SELECT address, deployer FROM records WHERE network = ? AND key = ?", v.network, key,
	).Scan(&addr, &deployer)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, false, nil
		}
		return Record{}, false, fmt.Errorf("read record: %w", err)
	}
	return Record{Key: key, Address: common.HexToAddress(addr), Deployer: common.HexToAddress(deployer)}, true, nil
}

func (v *View) ListRecords(ctx context.Context) ([]Record, error) {
	rows, err := v.store.db.QueryContext(ctx,
		"SELECT key, address, deployer FROM records WHERE network = ? ORDER BY key", v.network)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	out := make([]Record, 0)
	for rows.Next() {
		var key, addr, deployer string
		if err := rows.Scan(&key, &addr, &deployer); err != nil {
			return nil, fmt.Errorf("scan record row: %w", err)
		}
		out = append(out, Record{Key: key, Address: common.HexToAddress(addr), Deployer: common.HexToAddress(deployer)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate record rows: %w", err)
	}
	return out, nil
}

// ListExternals returns externals ordered by address.
func (v *View) ListExternals(ctx context.Context) ([]External, error) {
	rows, err := v.store.db.QueryContext(ctx,
		"SELECT address, id, verify_impl FROM externals WHERE network = ? ORDER BY address", v.network)
	if err != nil {
		return nil, fmt.Errorf("list externals: %w", err)
	}
	defer rows.Close()

	out := make([]External, 0)
	for rows.Next() {
		var addr, id, impl string
		if err := rows.Scan(&addr, &id, &impl); err != nil {
			return nil, fmt.Errorf("scan external row: %w", err)
		}
		out = append(out, External{Address: common.HexToAddress(addr), ID: id, VerifyImpl: common.HexToAddress(impl)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate external rows: %w", err)
	}
	return out, nil
}

func (v *View) LookupInstance(ctx context.Context, addr common.Address) (Instance, bool, error) {
	var id string
	err := v.store.db.QueryRowContext(ctx,
		"SELECT id FROM instances WHERE network = ? AND address = ?", v.network, addressKey(addr),
	).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Instance{}, false, nil
		}
		return Instance{}, false, fmt.Errorf("read instance: %w", err)
	}
	return Instance{Address: addr, ID: id}, true, nil
}

func addressKey(addr common.Address) string {
	return strings.ToLower(addr.Hex())
}
