package config

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"qualrole/internal/notion"
)

type Config struct {
	Version   string       `yaml:"version" json:"version"`
	Server    ServerConfig `yaml:"server" json:"server"`
	Notion    NotionConfig `yaml:"notion" json:"notion"`
	Page      PageConfig   `yaml:"page" json:"page"`
	SeededRNG SeededRNG    `yaml:"seeded_rng" json:"seeded_rng"`
	Log       LogConfig    `yaml:"log" json:"log"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr" json:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout"`
	CORSOrigins     []string      `yaml:"cors_origins" json:"cors_origins"`
	DevStatic       bool          `yaml:"dev_static" json:"dev_static"`
	StaticDir       string        `yaml:"static_dir" json:"static_dir"`
}

// NotionConfig points at the database of goals. Token is never echoed
// back through the JSON encoding.
type NotionConfig struct {
	Token          string        `yaml:"token" json:"-"`
	DatabaseID     string        `yaml:"database_id" json:"database_id"`
	NameProperty   string        `yaml:"name_property" json:"name_property"`
	TypeProperty   string        `yaml:"type_property" json:"type_property"`
	StatusProperty string        `yaml:"status_property" json:"status_property"`
	PageSize       int           `yaml:"page_size" json:"page_size"`
	Timeout        time.Duration `yaml:"timeout" json:"timeout"`
}

type PageConfig struct {
	Title           string `yaml:"title" json:"title"`
	Description     string `yaml:"description" json:"description"`
	SiteName        string `yaml:"site_name" json:"site_name"`
	PreviewImageURL string `yaml:"preview_image_url" json:"preview_image_url"`
}

type SeededRNG struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Seed    uint64 `yaml:"seed" json:"seed"`
}

type LogConfig struct {
	Level string `yaml:"level" json:"level"`
	JSON  bool   `yaml:"json" json:"json"`
}

func (s *ServerConfig) ApplyDefaults() {
	if s.Addr == "" {
		s.Addr = ":3000"
	}
	if s.ShutdownTimeout == 0 {
		s.ShutdownTimeout = 10 * time.Second
	}
	if s.StaticDir == "" {
		s.StaticDir = "static"
	}
}

func (n *NotionConfig) ApplyDefaults() {
	if n.NameProperty == "" {
		n.NameProperty = "Name"
	}
	if n.TypeProperty == "" {
		n.TypeProperty = "Type"
	}
	if n.StatusProperty == "" {
		n.StatusProperty = "Status"
	}
	if n.PageSize == 0 {
		n.PageSize = 100
	}
	if n.Timeout == 0 {
		n.Timeout = 15 * time.Second
	}
}

func (p *PageConfig) ApplyDefaults() {
	if p.Title == "" {
		p.Title = "Qual o próximo rolê?"
	}
	if p.SiteName == "" {
		p.SiteName = "Qual o próximo rolê?"
	}
	if p.Description == "" {
		p.Description = "Plataforma que fiz pra escolher nossos próximos rolês ❤️"
	}
	if p.PreviewImageURL == "" {
		p.PreviewImageURL = "/static/images/logo.png"
	}
}

func (c *Config) ApplyDefaults() {
	c.Server.ApplyDefaults()
	c.Notion.ApplyDefaults()
	c.Page.ApplyDefaults()
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Fetcher returns the adapter settings for the Notion database.
func (n NotionConfig) Fetcher() notion.Config {
	return notion.Config{
		DatabaseID:     n.DatabaseID,
		NameProperty:   n.NameProperty,
		TypeProperty:   n.TypeProperty,
		StatusProperty: n.StatusProperty,
		PageSize:       n.PageSize,
		Timeout:        n.Timeout,
	}
}

// Default is the configuration used when no file is present.
func Default() *Config {
	c := &Config{Version: "1"}
	c.ApplyDefaults()
	return c
}

// Load reads path, applies defaults and then environment overrides.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	var r Config
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, &r); err != nil {
			return nil, errors.Wrapf(err, "parse %s", path)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, errors.Wrapf(err, "read %s", path)
	}
	ApplyEnv(&r, os.Getenv)
	r.ApplyDefaults()
	return &r, nil
}
