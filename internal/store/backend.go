package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"jobtier-engine/internal/config"
	"jobtier-engine/internal/secrets"
)

var (
	// ErrNotFound is returned by Backend.Get when the key is absent.
	ErrNotFound = errors.New("store: key not found")
	// ErrNotConfigured means the selected backend has no connection details.
	ErrNotConfigured = errors.New("store: backend not configured")
)

// Backend stores named JSON blobs. Set is a full-value overwrite.
type Backend interface {
	Name() string
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) (bool, error)
	Keys(ctx context.Context, prefix string) ([]string, error)
	Close() error
}

const (
	BackendAuto   = "auto"
	BackendRedis  = "redis"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Open picks the backend once, at startup. "auto" uses redis when an address
// or URL is configured and local JSON files otherwise.
func Open(ctx context.Context, cfg config.StoreConfig, dataDir string, log *zap.Logger) (Backend, error) {
	if log == nil {
		log = zap.NewNop()
	}
	kind := strings.ToLower(strings.TrimSpace(cfg.Backend))
	if kind == "" || kind == BackendAuto {
		kind = BackendFile
		if cfg.Redis.URL != "" || cfg.Redis.Address != "" {
			kind = BackendRedis
		}
	}

	switch kind {
	case BackendRedis:
		rc := cfg.Redis
		if rc.Password == "" && rc.KeyringAccount != "" {
			pw, err := secrets.GetRedisPassword(rc.KeyringAccount)
			if err != nil {
				log.Warn("redis password not in keyring", zap.String("account", rc.KeyringAccount), zap.Error(err))
			}
			rc.Password = pw
		}
		b, err := OpenRedis(ctx, rc)
		if err != nil {
			return nil, err
		}
		log.Info("store opened", zap.String("backend", b.Name()))
		return b, nil

	case BackendFile:
		dir := cfg.FileDir
		if dir == "" {
			dir = filepath.Join(dataDir, "data")
		}
		b, err := OpenFile(dir)
		if err != nil {
			return nil, err
		}
		log.Info("store opened", zap.String("backend", b.Name()), zap.String("dir", dir))
		return b, nil

	case BackendSQLite:
		path := cfg.SQLite
		if path == "" {
			path = filepath.Join(dataDir, "jobtier.db")
		}
		b, err := OpenSQLite(path)
		if err != nil {
			return nil, err
		}
		log.Info("store opened", zap.String("backend", b.Name()), zap.String("path", path))
		return b, nil
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
}
