package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRuntimePort(t *testing.T) {
	orig := GetRuntimePort()
	defer SetRuntimePort(orig)

	SetRuntimePort(0)
	if got := GetRuntimePort(); got != orig {
		t.Fatalf("expected port to remain %d, got %d", orig, got)
	}

	SetRuntimePort(9090)
	if got := GetRuntimePort(); got != 9090 {
		t.Fatalf("expected port 9090, got %d", got)
	}
}

func TestRuntimeDataDirAndEnv(t *testing.T) {
	SetRuntimeDataDir("")
	defer SetRuntimeDataDir("")

	tmp := t.TempDir()
	SetRuntimeDataDir(tmp)
	dir, err := GetDataDir()
	if err != nil {
		t.Fatalf("GetDataDir: %v", err)
	}
	if dir != tmp {
		t.Fatalf("expected runtime dir %q, got %q", tmp, dir)
	}

	SetRuntimeDataDir("")
	tmpEnv := filepath.Join(t.TempDir(), "data")
	t.Setenv("FOLIO_DATA_DIR", tmpEnv)
	dir, err = GetDataDir()
	if err != nil {
		t.Fatalf("GetDataDir env: %v", err)
	}
	if dir != tmpEnv {
		t.Fatalf("expected env dir %q, got %q", tmpEnv, dir)
	}
}

func TestGetDBPathEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.sqlite")
	t.Setenv("FOLIO_DB_PATH", path)
	got, err := GetDBPath()
	if err != nil {
		t.Fatalf("GetDBPath: %v", err)
	}
	if got != path {
		t.Fatalf("expected %q, got %q", path, got)
	}
}

func TestLoadSaveConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))

	cfg := UserConfig{
		DBName:           "my.db",
		DataDir:          filepath.Join(home, "data"),
		DefaultPortfolio: "main",
		Scale:            4,
	}
	if err := SaveUserConfig(cfg); err != nil {
		t.Fatalf("SaveUserConfig: %v", err)
	}

	loaded := LoadUserConfig()
	if loaded != cfg {
		t.Fatalf("loaded config mismatch: %+v", loaded)
	}
}

func TestLoadUserConfigDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))

	loaded := LoadUserConfig()
	if loaded.DBName != "folio.db" {
		t.Fatalf("expected default db name, got %q", loaded.DBName)
	}
	if loaded.DefaultPortfolio != "" || loaded.Scale != 0 {
		t.Fatalf("expected zero defaults, got %+v", loaded)
	}
}

func TestGetDBPathFromConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))

	cfg := UserConfig{DBName: "config.db", DataDir: filepath.Join(home, "data")}
	if err := SaveUserConfig(cfg); err != nil {
		t.Fatalf("SaveUserConfig: %v", err)
	}
	path, err := GetDBPath()
	if err != nil {
		t.Fatalf("GetDBPath: %v", err)
	}
	if path != filepath.Join(cfg.DataDir, cfg.DBName) {
		t.Fatalf("expected db path %q, got %q", filepath.Join(cfg.DataDir, cfg.DBName), path)
	}
}

func TestGetDefaultPortfolio(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))

	if got := GetDefaultPortfolio(); got != "" {
		t.Fatalf("expected empty default, got %q", got)
	}

	if err := SaveUserConfig(UserConfig{DBName: "x.db", DefaultPortfolio: "main"}); err != nil {
		t.Fatalf("SaveUserConfig: %v", err)
	}
	if got := GetDefaultPortfolio(); got != "main" {
		t.Fatalf("expected main from config, got %q", got)
	}

	t.Setenv("FOLIO_DEFAULT_PORTFOLIO", "other")
	if got := GetDefaultPortfolio(); got != "other" {
		t.Fatalf("expected env override, got %q", got)
	}
}

func TestGetScale(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))

	if got := GetScale(); got != 0 {
		t.Fatalf("expected zero scale without config, got %d", got)
	}

	t.Setenv("FOLIO_SCALE", "5")
	if got := GetScale(); got != 5 {
		t.Fatalf("expected scale 5 from env, got %d", got)
	}

	t.Setenv("FOLIO_SCALE", "not-a-number")
	if got := GetScale(); got != 0 {
		t.Fatalf("expected invalid env ignored, got %d", got)
	}
}

func TestSaveUserConfigCreatesDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))

	if err := SaveUserConfig(UserConfig{DBName: "a.db"}); err != nil {
		t.Fatalf("SaveUserConfig: %v", err)
	}
	path, err := appConfigPath()
	if err != nil {
		t.Fatalf("appConfigPath: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected config file: %v", err)
	}
}
