package app

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/plateful/plateful/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		BaseURL:     "http://127.0.0.1:0/",
		Token:       "tok",
		Email:       "dana@example.com",
		UID:         "uid-1",
		Timeout:     time.Second,
		Rate:        100,
		DBPath:      filepath.Join(t.TempDir(), "plateful.db"),
		WaterTarget: 8,
	}
}

func TestNewWiresEverything(t *testing.T) {
	deps, err := New(testConfig(t))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer deps.Close()

	if deps.Client == nil || deps.Store == nil || deps.Session == nil ||
		deps.Favorites == nil || deps.Diet == nil || deps.Profile == nil {
		t.Fatalf("missing dependency in container: %+v", deps)
	}
}

func TestIdentityFromConfig(t *testing.T) {
	deps, err := New(testConfig(t))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer deps.Close()

	ident := deps.Identity()
	if ident.UID != "uid-1" || ident.Email != "dana@example.com" || ident.Token != "tok" {
		t.Fatalf("identity mapping wrong: %+v", ident)
	}
}

func TestWaterTargetFlowsIntoDietStore(t *testing.T) {
	cfg := testConfig(t)
	cfg.WaterTarget = 12

	deps, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer deps.Close()

	if got := deps.Diet.TodayStats().WaterTarget; got != 12 {
		t.Fatalf("water target = %d, want 12", got)
	}
}
