package config

import (
	"log"
	"os"
	"strconv"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
		Env  string `yaml:"env"`
	} `yaml:"server"`

	Database struct {
		Driver string `yaml:"driver"` // postgres (default) or mysql
		DSN    string `yaml:"url"`
	} `yaml:"database"`

	Redis struct {
		URL string `yaml:"url"` // empty disables the aggregator cache
	} `yaml:"redis"`

	JWT struct {
		Secret     string `yaml:"secret"`
		TTLMinutes int    `yaml:"ttl_minutes"`
	} `yaml:"jwt"`

	Aggregator struct {
		BaseURL           string   `yaml:"base_url"`
		AppID             string   `yaml:"app_id"`
		AppKey            string   `yaml:"app_key"`
		Country           string   `yaml:"country"`
		CacheTTLMinutes   int      `yaml:"cache_ttl_minutes"`
		SyncIntervalHours int      `yaml:"sync_interval_hours"`
		SyncQueries       []string `yaml:"sync_queries"` // "title|location" pairs
	} `yaml:"aggregator"`

	Email struct {
		SMTPHost     string `yaml:"smtp_host"`
		SMTPPort     int    `yaml:"smtp_port"`
		SMTPUsername string `yaml:"smtp_user"`
		SMTPPassword string `yaml:"smtp_password"`
		FromEmail    string `yaml:"from_email"`
		FromName     string `yaml:"from_name"`
	} `yaml:"email"`

	Storage struct {
		BasePath string `yaml:"base_path"` // local dir for avatar uploads
		BaseURL  string `yaml:"base_url"`  // public URL prefix
	} `yaml:"storage"`

	FirstAdminEmail    string `yaml:"first_admin_email"`
	FirstAdminPassword string `yaml:"first_admin_password"`
}

var AppConfig *Config

// LoadConfig reads config.yaml, or falls back to environment variables
// when DATABASE_URL is set (the mode integration tests run in).
func LoadConfig() {
	var cfg Config

	dbURL := os.Getenv("DATABASE_URL")

	if dbURL == "" {
		configPath := os.Getenv("CONFIG_PATH")
		if configPath == "" {
			configPath = "config/config.yaml"
		}

		f, err := os.Open(configPath)
		if err != nil {
			log.Fatalf("Failed to open config file at %s: %v", configPath, err)
		}
		defer f.Close()

		decoder := yaml.NewDecoder(f)
		if err := decoder.Decode(&cfg); err != nil {
			log.Fatalf("Failed to parse config file at %s: %v", configPath, err)
		}

		applyDefaults(&cfg)
		AppConfig = &cfg
		return
	}

	log.Println("Loading configuration from environment variables")

	cfg.Database.DSN = dbURL
	cfg.Database.Driver = os.Getenv("DATABASE_DRIVER")
	cfg.Server.Env = os.Getenv("SERVER_ENV")
	cfg.Server.Port, _ = strconv.Atoi(os.Getenv("SERVER_PORT"))
	cfg.JWT.Secret = os.Getenv("JWT_SECRET")
	cfg.JWT.TTLMinutes = 60
	cfg.Redis.URL = os.Getenv("REDIS_URL")

	cfg.Aggregator.BaseURL = os.Getenv("AGGREGATOR_BASE_URL")
	cfg.Aggregator.AppID = os.Getenv("AGGREGATOR_APP_ID")
	cfg.Aggregator.AppKey = os.Getenv("AGGREGATOR_APP_KEY")

	cfg.Email.SMTPHost = os.Getenv("SMTP_HOST")
	cfg.Email.FromEmail = "noreply@jobboard.test"

	cfg.Storage.BasePath = "./uploads"
	cfg.Storage.BaseURL = "/api/v1/files"

	applyDefaults(&cfg)
	AppConfig = &cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "postgres"
	}
	if cfg.JWT.TTLMinutes <= 0 {
		cfg.JWT.TTLMinutes = 60
	}
	if cfg.Aggregator.Country == "" {
		cfg.Aggregator.Country = "us"
	}
	if cfg.Aggregator.CacheTTLMinutes <= 0 {
		cfg.Aggregator.CacheTTLMinutes = 10
	}
	if cfg.Aggregator.SyncIntervalHours <= 0 {
		cfg.Aggregator.SyncIntervalHours = 6
	}
	if cfg.Storage.BasePath == "" {
		cfg.Storage.BasePath = "./uploads"
	}
	if cfg.Storage.BaseURL == "" {
		cfg.Storage.BaseURL = "/api/v1/files"
	}
}

func GetConfig() *Config {
	if AppConfig == nil {
		LoadConfig()
	}
	return AppConfig
}
