package config

import "time"

// Config holds runtime settings for the ExpertConnect CLI.
//
// Durations are time.Duration values; flags express them in whole seconds.
type Config struct {
	APIURL       string
	WSURL        string
	DatabasePath string
	KeyFile      string

	RequestTimeout      time.Duration
	OnlineCheckInterval time.Duration

	LogLevel string
	LogFile  string

	ICEServers []string

	S3Endpoint  string
	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
	S3PublicURL string
}

// LoadDefaults populates c with the local development defaults.
func (c *Config) LoadDefaults() {
	c.APIURL = "http://localhost:8000/api"
	c.WSURL = "ws://localhost:8000/ws"
	c.DatabasePath = "expertconnect.db"
	c.KeyFile = "expertconnect.key"
	c.RequestTimeout = 10 * time.Second
	c.OnlineCheckInterval = 5 * time.Second
	c.LogLevel = "info"
	c.ICEServers = []string{"stun:stun.l.google.com:19302"}
	c.S3Region = "us-east-1"
}

// LoadConfig applies defaults, then the environment (including an optional
// .env file), then a JSON file and finally command-line flags. Later sources
// take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
