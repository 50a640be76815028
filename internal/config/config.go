package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	DBPath   string
	DebugDir string

	Org          string
	Registration string
	Password     string

	ListingURL string
	SearchURL  string

	Headless      bool
	SweepMaxPages int
	WatchInterval int // minutes

	LoginWaitSec  int
	SearchWaitSec int
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		DBPath:   getEnv("DB_PATH", filepath.Join(cwd, "data", "app.db")),
		DebugDir: getEnv("DEBUG_DIR", filepath.Join(cwd, "data", "debug")),

		Org:          getEnv("GCE_ORG", ""),
		Registration: getEnv("GCE_MATRICULA", ""),
		Password:     getEnv("GCE_PASSWORD", ""),

		ListingURL: getEnv("GCE_LISTING_URL", "https://gce.intra.rs.gov.br/Atas/ItemAta/ListarTodosItensAtaVigente"),
		SearchURL:  getEnv("GCE_SEARCH_URL", "https://gce.intra.rs.gov.br/Itens/Solicitacao/ConsultaGeralItens"),

		Headless:      getEnvBool("HEADLESS", true),
		SweepMaxPages: getEnvInt("SWEEP_MAX_PAGES", 1),
		WatchInterval: getEnvInt("WATCH_INTERVAL_MIN", 60),

		LoginWaitSec:  getEnvInt("GCE_LOGIN_WAIT_SEC", 30),
		SearchWaitSec: getEnvInt("GCE_SEARCH_WAIT_SEC", 15),
	}

	return cfg, nil
}

// RequireCredentials guards every run mode: without the portal credentials no
// browser session is opened at all.
func (c Config) RequireCredentials() error {
	for _, v := range []struct{ name, value string }{
		{"GCE_ORG", c.Org},
		{"GCE_MATRICULA", c.Registration},
		{"GCE_PASSWORD", c.Password},
	} {
		if strings.TrimSpace(v.value) == "" {
			return fmt.Errorf("missing required env var: %s", v.name)
		}
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(key, "")))
	if value == "" {
		return fallback
	}
	if value == "1" || value == "true" || value == "yes" || value == "on" {
		return true
	}
	if value == "0" || value == "false" || value == "no" || value == "off" {
		return false
	}
	return fallback
}
