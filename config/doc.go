// Package config loads service configuration from YAML files and the
// environment using Viper and godotenv.
//
// LoadConfig searches for config.yml and .env in standard locations
// (./cmd/<service>/, ./config/, the working directory and its parents).
// Environment variables override file values; HTTP_TIMEOUT=5s sets
// http.timeout.
//
// # Usage
//
//	var cfg config.ServiceConfig
//	if err := config.LoadConfig("users-api", &cfg); err != nil {
//	    return err
//	}
//	cfg.ApplyDefaults()
//	if err := cfg.Validate(); err != nil {
//	    return err
//	}
//	client, err := apiclient.NewFromConfig[UsersAPI](cfg.Client("users"), adapter, nil)
package config
