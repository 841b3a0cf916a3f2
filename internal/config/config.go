package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Discord struct {
		Token   string `yaml:"token"`
		GuildID string `yaml:"guild_id"`
	} `yaml:"discord"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Redis struct {
		Addr      string `yaml:"addr"`
		Password  string `yaml:"password"`
		DB        int    `yaml:"db"`
		SignupTTL string `yaml:"signup_ttl"`
	} `yaml:"redis"`
	LeetCode struct {
		BaseURL string `yaml:"base_url"`
		Timeout string `yaml:"timeout"`
	} `yaml:"leetcode"`
	Bot struct {
		GroupCapacity    int    `yaml:"group_capacity"`
		DailyPoints      int    `yaml:"daily_points"`
		LeaderboardLimit int    `yaml:"leaderboard_limit"`
		CommandPrefix    string `yaml:"command_prefix"`
	} `yaml:"bot"`
}

// Load reads YAML config from path and fills in bot defaults.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if cfg.Bot.GroupCapacity == 0 {
		cfg.Bot.GroupCapacity = 5
	}
	if cfg.Bot.DailyPoints == 0 {
		cfg.Bot.DailyPoints = 5
	}
	if cfg.Bot.LeaderboardLimit == 0 {
		cfg.Bot.LeaderboardLimit = 10
	}
	if cfg.Bot.CommandPrefix == "" {
		cfg.Bot.CommandPrefix = "!"
	}
	return cfg, nil
}

// TTLDuration parses a duration string or returns the fallback if empty or malformed.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
