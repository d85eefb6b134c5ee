package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
)

// UserConfig is the persisted configuration file. Environment variables
// override every field at runtime.
type UserConfig struct {
	DBName           string `json:"db_name"`
	DataDir          string `json:"data_dir"`
	DefaultPortfolio string `json:"default_portfolio"`
	Scale            int32  `json:"scale"`
}

const defaultDBName = "folio.db"

const (
	envDataDir          = "FOLIO_DATA_DIR"
	envDBPath           = "FOLIO_DB_PATH"
	envDefaultPortfolio = "FOLIO_DEFAULT_PORTFOLIO"
	envScale            = "FOLIO_SCALE"
)

var runtimeDataDir string
var runtimePort = 8000

func SetRuntimeDataDir(dir string) {
	runtimeDataDir = dir
}

func SetRuntimePort(port int) {
	if port > 0 {
		runtimePort = port
	}
}

func GetRuntimePort() int {
	return runtimePort
}

func appConfigDir() (string, error) {
	if runtime.GOOS == "darwin" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, "Library", "Application Support", "Folio"), nil
	}
	if runtime.GOOS == "windows" {
		appData := os.Getenv("APPDATA")
		if appData == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			appData = home
		}
		return filepath.Join(appData, "Folio"), nil
	}
	configDir, err := os.UserConfigDir()
	if err != nil {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".config", "folio"), nil
	}
	return filepath.Join(configDir, "folio"), nil
}

func appConfigPath() (string, error) {
	dir, err := appConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// LoadUserConfig reads the config file, returning defaults when it is
// missing or unreadable.
func LoadUserConfig() UserConfig {
	defaults := UserConfig{DBName: defaultDBName}
	configPath, err := appConfigPath()
	if err != nil {
		return defaults
	}
	file, err := os.Open(configPath)
	if err != nil {
		return defaults
	}
	defer file.Close()

	if err := json.NewDecoder(file).Decode(&defaults); err != nil {
		return UserConfig{DBName: defaultDBName}
	}
	if defaults.DBName == "" {
		defaults.DBName = defaultDBName
	}
	return defaults
}

// SaveUserConfig writes the config file, creating its directory if needed.
func SaveUserConfig(cfg UserConfig) error {
	path, err := appConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// GetDataDir resolves the directory holding the database and logs:
// runtime flag, then FOLIO_DATA_DIR, then the config file, then the
// OS config directory. The directory is created when missing.
func GetDataDir() (string, error) {
	if runtimeDataDir != "" {
		if err := os.MkdirAll(runtimeDataDir, 0o755); err != nil {
			return "", err
		}
		return runtimeDataDir, nil
	}
	if envDir := os.Getenv(envDataDir); envDir != "" {
		if err := os.MkdirAll(envDir, 0o755); err != nil {
			return "", err
		}
		return envDir, nil
	}
	cfg := LoadUserConfig()
	if cfg.DataDir != "" {
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return "", err
		}
		return cfg.DataDir, nil
	}
	defaultDir, err := appConfigDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(defaultDir, 0o755); err != nil {
		return "", err
	}
	return defaultDir, nil
}

// GetDBPath resolves the database file path. FOLIO_DB_PATH overrides
// both the data dir and the configured db name.
func GetDBPath() (string, error) {
	if envPath := os.Getenv(envDBPath); envPath != "" {
		return envPath, nil
	}
	cfg := LoadUserConfig()
	dataDir, err := GetDataDir()
	if err != nil {
		return "", err
	}
	name := cfg.DBName
	if name == "" {
		name = defaultDBName
	}
	return filepath.Join(dataDir, name), nil
}

// GetDefaultPortfolio resolves the portfolio used when a request omits a
// name. Empty means requests must always name one.
func GetDefaultPortfolio() string {
	if env := strings.TrimSpace(os.Getenv(envDefaultPortfolio)); env != "" {
		return env
	}
	return strings.TrimSpace(LoadUserConfig().DefaultPortfolio)
}

// GetScale resolves the decimal scale for floor rounding. Zero means the
// engine default.
func GetScale() int32 {
	if env := strings.TrimSpace(os.Getenv(envScale)); env != "" {
		if i, err := strconv.Atoi(env); err == nil && i > 0 {
			return int32(i)
		}
	}
	cfg := LoadUserConfig()
	if cfg.Scale > 0 {
		return cfg.Scale
	}
	return 0
}
