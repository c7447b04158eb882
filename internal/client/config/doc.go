// Package config loads runtime configuration for the ExpertConnect CLI.
//
// Sources, later ones winning:
//
//  1. Built-in defaults ((*Config).LoadDefaults).
//  2. Environment variables, after loading an optional .env file.
//  3. A JSON file selected with -c or -config.
//  4. Command-line flags.
//
// Example JSON:
//
//	{
//	  "api_url": "https://expertconnect.example/api",
//	  "request_timeout": "15s",
//	  "online_check_interval": "5s",
//	  "s3": {"bucket": "avatars", "region": "eu-west-1"}
//	}
package config
