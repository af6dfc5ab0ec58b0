// Package config loads client configuration from YAML.
//
// A configuration names the platform endpoints, the application
// credentials, the optional fixed device identifier, the connect retry
// tuning and the component poll interval. Load reads and validates a
// file; Parse works on raw bytes for embedded configurations.
package config
