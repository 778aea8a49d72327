// Package app wires the VGPulse web service together and manages its
// lifecycle.
//
// Initialization order:
//
//  1. Load configuration (defaults, YAML file, VGP_ environment)
//  2. Initialize the slog logger and OpenTelemetry providers
//  3. Build the dataset loader and its cache
//  4. Create the dashboard and health services
//  5. Mount middleware and HTTP handlers on a chi router
//  6. Start the HTTP server and warm the dataset cache
//
// Run blocks until SIGINT or SIGTERM and then shuts the server down within
// the configured shutdown timeout.
package app
