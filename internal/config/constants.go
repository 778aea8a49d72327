package config

import (
	"time"

	"vgpulse/pkg/contracts"
	"vgpulse/pkg/contracts/domain"
)

// Application constants
const (
	// Application Info
	AppName    = "VGPulse"
	AppVersion = contracts.Version

	// EnvPrefix namespaces every environment variable read by Load
	EnvPrefix = "VGP"

	// ConfigFileEnv overrides the YAML file search
	ConfigFileEnv = "VGP_CONFIG_FILE"

	// Dataset
	DefaultDatasetFile = "Video_Games_Sales_as_at_22_Dec_2016.csv"
	DefaultCutoffYear  = 2016

	// Distribution
	DefaultTopCategories  = 10
	DefaultDensitySteps   = 200
	DefaultExtentQuantile = 0.95

	// Forecast horizon, inclusive
	DefaultHorizonStart = 2016
	DefaultHorizonEnd   = 2020

	// File Paths (relative to working directory)
	DefaultDataDir   = "data"
	DefaultExportDir = "data/exports"
	DefaultLogsDir   = "logs"

	// Rate Limiting
	DefaultRateLimit = 100
	DefaultBurstSize = 50

	// Timeouts
	DefaultRequestTimeout = 30 * time.Second
	DefaultLoadTimeout    = 2 * time.Minute
)

// DefaultManufacturers returns the console manufacturer groups used when the
// configuration file does not provide its own.
func DefaultManufacturers() []domain.ManufacturerGroup {
	return []domain.ManufacturerGroup{
		{Name: "Nintendo", Platforms: []string{"Wii", "WiiU", "DS", "3DS", "GC", "NES", "SNES", "N64", "GB", "GBA"}},
		{Name: "Sony", Platforms: []string{"PS", "PS2", "PS3", "PS4", "PSP", "PSV"}},
		{Name: "Microsoft", Platforms: []string{"XB", "X360", "XOne"}},
	}
}
