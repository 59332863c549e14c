package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads the first env file found: $ENV_FILE, then .env.
// Variables already set in the process win. Missing files are ignored.
func LoadDotEnv() {
	if path := strings.TrimSpace(os.Getenv("ENV_FILE")); path != "" {
		if err := godotenv.Load(path); err == nil {
			return
		}
	}
	_ = godotenv.Load()
}

// ApplyEnv overrides file values with environment variables.
func ApplyEnv(c *Config, getenv func(string) string) {
	if v := getenv("NOTION_API_KEY"); v != "" {
		c.Notion.Token = v
	}
	if v := getenv("NOTION_API_DATABASE_ID"); v != "" {
		c.Notion.DatabaseID = v
	}
	if v := getenv("QUALROLE_ADDR"); v != "" {
		c.Server.Addr = v
	} else if v := getenv("PORT"); v != "" {
		c.Server.Addr = ":" + v
	}
	if v := getenv("QUALROLE_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := getenv("QUALROLE_LOG_JSON"); v != "" {
		c.Log.JSON = truthy(v)
	}
	if v := getenv("QUALROLE_CORS_ORIGINS"); v != "" {
		c.Server.CORSOrigins = splitList(v)
	}
	if v := getenv("QUALROLE_DEV_STATIC"); v != "" {
		c.Server.DevStatic = truthy(v)
	}
	if v := getenv("QUALROLE_SEED"); v != "" {
		if seed, err := strconv.ParseUint(v, 10, 64); err == nil {
			c.SeededRNG.Enabled = true
			c.SeededRNG.Seed = seed
		}
	}
}

func truthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
