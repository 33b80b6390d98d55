// Package config loads service configuration with Viper.
//
// LoadConfig looks for a config.yml next to the service's cmd directory (or
// at the working directory root), loads an optional .env file through
// godotenv, and overlays environment variables on top: REALTIME_HEARTBEAT_INTERVAL
// overrides realtime.heartbeat_interval.
//
//	var cfg app.Config
//	err := config.LoadConfig("montessa", &cfg)
package config
