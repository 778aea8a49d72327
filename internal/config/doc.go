// Package config provides centralized configuration management for VGPulse.
// It loads configuration from defaults, an optional YAML file and the
// environment, validates it, and exposes a type-safe Config to the rest of
// the application.
//
// # Configuration Sources
//
// Configuration is layered in the following order, later sources winning:
//
//  1. Default values (Default())
//  2. YAML configuration file (config.yaml, configs/config.yaml or VGP_CONFIG_FILE)
//  3. Environment variables with the VGP_ prefix
//
// # Environment Variables
//
// Nested sections map to prefixed names:
//
//	VGP_SERVER_PORT=8080
//	VGP_LOGGING_LEVEL=debug
//	VGP_PIPELINE_DATASET_FILE=Video_Games_Sales_as_at_22_Dec_2016.csv
//	VGP_PIPELINE_CUTOFF_YEAR=2016
//	VGP_CACHE_TTL=0s
//
// Manufacturer groups are structured data and can only be set from the YAML
// file:
//
//	pipeline:
//	  manufacturers:
//	    - name: Nintendo
//	      platforms: [Wii, WiiU, DS, 3DS]
//	    - name: Sony
//	      platforms: [PS, PS2, PS3, PS4]
//
// # Validation
//
// Load rejects configurations with out-of-range values, an inverted forecast
// horizon, empty manufacturer groups or a platform claimed by two
// manufacturers.
package config
