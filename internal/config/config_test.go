package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "server.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[server]
id = "server-eu-1"

[network]
bind_address = "127.0.0.1:9999"
write_timeout = "3s"

[simulation]
tick_rate = 30

[snapshot]
interest_radius = 25.5
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.ID != "server-eu-1" {
		t.Fatalf("server id = %q", cfg.Server.ID)
	}
	if cfg.Network.BindAddress != "127.0.0.1:9999" {
		t.Fatalf("bind = %q", cfg.Network.BindAddress)
	}
	if cfg.Network.WriteTimeout != 3*time.Second {
		t.Fatalf("write timeout = %v", cfg.Network.WriteTimeout)
	}
	if cfg.Simulation.TickRate != 30 {
		t.Fatalf("tick rate = %d", cfg.Simulation.TickRate)
	}
	if cfg.Snapshot.InterestRadius != 25.5 {
		t.Fatalf("interest radius = %v", cfg.Snapshot.InterestRadius)
	}

	// Sections absent from the file keep their defaults.
	if cfg.Snapshot.MaxEnemies != 30 {
		t.Fatalf("max enemies = %d, want default 30", cfg.Snapshot.MaxEnemies)
	}
	if cfg.Network.MaxConnections != 8 {
		t.Fatalf("max connections = %d, want default 8", cfg.Network.MaxConnections)
	}
	if cfg.Database.Enabled {
		t.Fatalf("database enabled by default")
	}
}

func TestLoadStampsStartTime(t *testing.T) {
	path := writeConfig(t, "")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.StartTime == 0 {
		t.Fatalf("start time not stamped")
	}
}

func TestLoadMissingFileErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Fatalf("missing file accepted")
	}
}

func TestLoadMalformedTOMLErrors(t *testing.T) {
	path := writeConfig(t, "[server\nid = ")
	if _, err := Load(path); err == nil {
		t.Fatalf("malformed toml accepted")
	}
}

func TestDefaultIsComplete(t *testing.T) {
	cfg := Default()
	if cfg.Network.BindAddress == "" || cfg.Simulation.TickRate <= 0 ||
		cfg.Snapshot.StepsPerSnapshot <= 0 || cfg.Logging.Level == "" {
		t.Fatalf("incomplete defaults: %+v", cfg)
	}
}
