package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
		// RegistrationMode is "claim" (default) or "insert".
		RegistrationMode string `yaml:"registration_mode"`
	} `yaml:"postgres"`
	Quiz struct {
		TTL         string `yaml:"ttl"`
		IntroScreen bool   `yaml:"intro_screen"`
	} `yaml:"quiz"`
	Intro struct {
		// Mode is "simple" (default) or "interactive".
		Mode        string `yaml:"mode"`
		ScrollAfter string `yaml:"scroll_after"`
		FinishAfter string `yaml:"finish_after"`
		CTAAfter    string `yaml:"cta_after"`
		Dwell       string `yaml:"dwell"`
	} `yaml:"intro"`
	Catalog struct {
		File string `yaml:"file"`
	} `yaml:"catalog"`
}

const (
	RegistrationModeClaim  = "claim"
	RegistrationModeInsert = "insert"
)

// Load reads YAML config from path.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Duration parses a duration string or returns the fallback if empty or invalid.
func Duration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
