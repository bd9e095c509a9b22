package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mindgrove/mindgrove-backend/internal/platform/envutil"
)

// Config holds server-level settings. Component-level settings (Neo4j, Gemini,
// Tavily, Weaviate) stay env-driven inside their own constructors.
type Config struct {
	Server struct {
		Port         string   `yaml:"port"`
		Mode         string   `yaml:"mode"`
		AllowOrigins []string `yaml:"allow_origins"`
	} `yaml:"server"`
	Auth struct {
		JWTSecret string `yaml:"jwt_secret"`
	} `yaml:"auth"`
}

// Load reads an optional YAML file, then applies env overrides. A missing file
// is not an error; a malformed one is.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err == nil {
			if uErr := yaml.Unmarshal(raw, cfg); uErr != nil {
				return nil, fmt.Errorf("config: parse %s: %w", path, uErr)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	cfg.Server.Port = envutil.String("PORT", defaultString(cfg.Server.Port, "8080"))
	cfg.Server.Mode = envutil.String("LOG_MODE", defaultString(cfg.Server.Mode, "development"))
	if raw := envutil.String("CORS_ALLOW_ORIGINS", ""); raw != "" {
		cfg.Server.AllowOrigins = splitCSV(raw)
	}
	if len(cfg.Server.AllowOrigins) == 0 {
		cfg.Server.AllowOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	cfg.Auth.JWTSecret = envutil.String("JWT_SECRET_KEY", cfg.Auth.JWTSecret)

	return cfg, nil
}

func defaultString(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func splitCSV(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
