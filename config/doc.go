// Package config provides layered configuration loading for the
// analysis service.
//
// Configuration is resolved in three layers, later layers winning:
//
//  1. Built-in defaults describing a single-node development setup
//  2. JSON file layers added with Loader.AddLayer, deep-merged in order
//  3. Environment variables prefixed with MP3ANALYSIS_
//
// Duration fields accept Go duration strings in file layers ("30s",
// "5m") plus a day suffix ("14d"). Loaded configs are validated before
// use; SafeConfig wraps a validated config for concurrent access.
//
// Example:
//
//	loader := config.NewLoader()
//	loader.AddLayer("config.json")
//	loader.AddLayer("config.prod.json")
//	cfg, err := loader.Load()
package config
