// internal/config/config.go
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type EuroBrusselsSource struct {
	Enabled     bool   `yaml:"enabled"`
	BaseURL     string `yaml:"base_url"`
	MaxListings int    `yaml:"max_listings"`
}

type JobsInBrusselsSource struct {
	Enabled       bool   `yaml:"enabled"`
	BaseURL       string `yaml:"base_url"`
	MaxCompanies  int    `yaml:"max_companies"`
	MaxPerCompany int    `yaml:"max_per_company"`
}

type StoryblokSource struct {
	Enabled     bool   `yaml:"enabled"`
	BaseURL     string `yaml:"base_url"`
	Token       string `yaml:"token"`
	PerPage     int    `yaml:"per_page"`
	MaxListings int    `yaml:"max_listings"`
}

type EuractivSource struct {
	Enabled     bool   `yaml:"enabled"`
	FeedURL     string `yaml:"feed_url"`
	MaxListings int    `yaml:"max_listings"`
}

type Config struct {
	App struct {
		DataDir string `yaml:"data_dir"`
		DBFile  string `yaml:"db_file"`
	} `yaml:"app"`

	Fetch struct {
		UserAgent      string  `yaml:"user_agent"`
		TimeoutSeconds int     `yaml:"timeout_seconds"`
		PerHostRPS     float64 `yaml:"per_host_rps"`
		Burst          int     `yaml:"burst"`
		Retries        int     `yaml:"retries"`
		BackoffMillis  int     `yaml:"backoff_millis"`
	} `yaml:"fetch"`

	Sources struct {
		EuroBrussels   EuroBrusselsSource   `yaml:"eurobrussels"`
		JobsInBrussels JobsInBrusselsSource `yaml:"jobsinbrussels"`
		Storyblok      StoryblokSource      `yaml:"storyblok"`
		Euractiv       EuractivSource       `yaml:"euractiv"`
	} `yaml:"sources"`

	Notify struct {
		Enabled      bool   `yaml:"enabled"`
		BaseURL      string `yaml:"base_url"`
		From         string `yaml:"from"`
		BatchSize    int    `yaml:"batch_size"`
		WindowMillis int    `yaml:"window_millis"`
	} `yaml:"notify"`

	Expiry struct {
		DefaultDays int `yaml:"default_days"`
	} `yaml:"expiry"`
}

func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(b, &cfg)
	return cfg, err
}
