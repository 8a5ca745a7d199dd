package config

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

func TestDefaultIsValid(t *testing.T) {
	_, res := NormalizeAndValidate(Default())
	assert.True(t, res.OK(), res.Errors)
	assert.Equal(t, 200*time.Millisecond, Default().Delay())
	assert.Equal(t, 10*24*time.Hour, Default().RecencyWindow())
	assert.Equal(t, 20*time.Second, Default().Timeout())
}

func TestLoadKeepsDefaultsForMissingKeys(t *testing.T) {
	p := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(p, []byte("app:\n  port: 9000\nscrape:\n  workers: 4\n"), 0o644))

	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.App.Port)
	assert.Equal(t, 4, cfg.Scrape.Workers)
	assert.Equal(t, 200, cfg.Scrape.DelayMS)
	assert.Equal(t, 1000, cfg.Tiers.Top)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"TARGET_ROLES":      " Go Engineer, ,SRE ",
		"EXCLUDED_KEYWORDS": "Director",
		"PORT":              "8088",
		"REDIS_ADDRESS":     "localhost:6379",
		"REDIS_DB":          "not-a-number",
	}
	cfg := Default()
	ApplyEnv(&cfg, func(k string) string { return env[k] })

	assert.Equal(t, []string{"go engineer", "sre"}, cfg.Filters.TargetRoles)
	assert.Equal(t, []string{"director"}, cfg.Filters.ExcludedKeywords)
	assert.Equal(t, 8088, cfg.App.Port)
	assert.Equal(t, "localhost:6379", cfg.Store.Redis.Address)
	assert.Equal(t, 0, cfg.Store.Redis.DB)
}

func TestLoadDotEnvDoesNotOverride(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("JOBTIER_TEST_A=from-file\nJOBTIER_TEST_B=from-file\n"), 0o644))
	t.Setenv("JOBTIER_TEST_A", "from-env")

	require.NoError(t, LoadDotEnv(dir))
	assert.Equal(t, "from-env", os.Getenv("JOBTIER_TEST_A"))
	assert.Equal(t, "from-file", os.Getenv("JOBTIER_TEST_B"))
	os.Unsetenv("JOBTIER_TEST_B")
}

func TestNormalizeAndValidate(t *testing.T) {
	cfg := Default()
	cfg.Filters.TargetRoles = []string{" Engineer", "engineer", ""}
	cfg.Store.Backend = "Mongo"
	cfg.Scrape.Workers = 0
	cfg.Scrape.Schedule = "every now and then"
	cfg.Tiers = TierConfig{Top: 500, Middle: 501, Lower: 101, Lowest: 51}
	cfg.Sources.Lever.Companies = []Company{{Slug: " palantir ", Name: ""}, {Name: "No Slug"}}

	out, res := NormalizeAndValidate(cfg)
	assert.False(t, res.OK())
	assert.Equal(t, []string{"engineer"}, out.Filters.TargetRoles)
	assert.Equal(t, "palantir", out.Sources.Lever.Companies[0].Slug)
	assert.Equal(t, "palantir", out.Sources.Lever.Companies[0].Name)

	joined := res.Error()
	for _, want := range []string{"store.backend", "scrape.workers", "scrape.schedule", "tiers must be", "sources.lever.companies[1].slug"} {
		assert.Contains(t, joined, want)
	}
}

func TestConcurrentScrapeNeedsHostSpacing(t *testing.T) {
	cfg := Default()
	cfg.Scrape.Workers = 4
	cfg.Scrape.HostRatePerSec = 2
	_, res := NormalizeAndValidate(cfg)
	assert.True(t, res.OK(), res.Error())

	cfg.Scrape.HostBurst = 3
	_, res = NormalizeAndValidate(cfg)
	assert.False(t, res.OK())
	assert.Contains(t, res.Error(), "scrape.host_burst")

	cfg.Scrape.Workers = 1
	_, res = NormalizeAndValidate(cfg)
	assert.NotContains(t, res.Error(), "scrape.host_burst")
}

func TestSaveAtomicKeepsBackup(t *testing.T) {
	p := filepath.Join(t.TempDir(), "config.yml")
	first := Default()
	require.NoError(t, SaveAtomic(p, first))

	second := Default()
	second.App.Port = 9999
	require.NoError(t, SaveAtomic(p, second))

	got, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, 9999, got.App.Port)

	bak, err := Load(p + ".bak")
	require.NoError(t, err)
	assert.Equal(t, first.App.Port, bak.App.Port)

	bad := Default()
	bad.App.Port = 0
	assert.Error(t, SaveAtomic(p, bad))
}

func TestEnsureUserConfig(t *testing.T) {
	dir := t.TempDir()
	defPath := filepath.Join(dir, "default.yml")
	b, err := yaml.Marshal(Default())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(defPath, b, 0o644))

	dataDir := filepath.Join(dir, "data")
	p, err := EnsureUserConfig(dataDir, defPath)
	require.NoError(t, err)
	assert.FileExists(t, p)

	// no default file: falls back to Default()
	other := filepath.Join(dir, "other")
	p2, err := EnsureUserConfig(other, filepath.Join(dir, "missing.yml"))
	require.NoError(t, err)
	cfg, err := Load(p2)
	require.NoError(t, err)
	assert.Equal(t, Default().App.Port, cfg.App.Port)
}

func TestWatchReloadsOnChange(t *testing.T) {
	p := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, SaveAtomic(p, Default()))

	var val atomic.Value
	val.Store(Default())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = Watch(ctx, p, &val, Load, zap.NewNop())
	}()
	time.Sleep(100 * time.Millisecond)

	next := Default()
	next.Scrape.Workers = 3
	require.NoError(t, SaveAtomic(p, next))

	assert.Eventually(t, func() bool {
		return val.Load().(Config).Scrape.Workers == 3
	}, 3*time.Second, 25*time.Millisecond)

	cancel()
	<-done
}
