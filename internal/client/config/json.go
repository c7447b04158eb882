package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/expertconnect/internal/flagx"
	"github.com/dmitrijs2005/expertconnect/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Durations use
// timex.Duration so they may be written as "3s" or as nanoseconds. Absent
// fields keep the value from earlier sources.
type JsonConfig struct {
	APIURL              string          `json:"api_url"`
	WSURL               string          `json:"ws_url"`
	DatabasePath        string          `json:"database_path"`
	KeyFile             string          `json:"key_file"`
	RequestTimeout      *timex.Duration `json:"request_timeout"`
	OnlineCheckInterval *timex.Duration `json:"online_check_interval"`
	LogLevel            string          `json:"log_level"`
	LogFile             string          `json:"log_file"`
	ICEServers          []string        `json:"ice_servers"`
	S3                  struct {
		Endpoint  string `json:"endpoint"`
		Region    string `json:"region"`
		Bucket    string `json:"bucket"`
		AccessKey string `json:"access_key"`
		SecretKey string `json:"secret_key"`
		PublicURL string `json:"public_url"`
	} `json:"s3"`
}

// parseJson overlays cfg with the file named by -c/-config (or
// EXPERTCONNECT_CONFIG). No path means nothing to do. Read and decode
// errors panic.
func parseJson(cfg *Config) {
	path := flagx.JsonConfigFlags()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}

	set(&cfg.APIURL, jc.APIURL)
	set(&cfg.WSURL, jc.WSURL)
	set(&cfg.DatabasePath, jc.DatabasePath)
	set(&cfg.KeyFile, jc.KeyFile)
	set(&cfg.LogLevel, jc.LogLevel)
	set(&cfg.LogFile, jc.LogFile)
	set(&cfg.S3Endpoint, jc.S3.Endpoint)
	set(&cfg.S3Region, jc.S3.Region)
	set(&cfg.S3Bucket, jc.S3.Bucket)
	set(&cfg.S3AccessKey, jc.S3.AccessKey)
	set(&cfg.S3SecretKey, jc.S3.SecretKey)
	set(&cfg.S3PublicURL, jc.S3.PublicURL)

	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.OnlineCheckInterval != nil {
		cfg.OnlineCheckInterval = jc.OnlineCheckInterval.Duration
	}
	if len(jc.ICEServers) > 0 {
		cfg.ICEServers = jc.ICEServers
	}
}
