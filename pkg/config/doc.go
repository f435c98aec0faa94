// Package config loads and validates the controller configuration.
//
// Configuration comes from a YAML file, with defaults applied for every
// omitted field and environment variable overrides applied last. Secrets
// (the spend API key, the GitHub token) are usually supplied through the
// environment rather than the file.
//
// The loading sequence is:
//
//  1. Read YAML from the config file (a missing file is not an error; the
//     defaults plus environment carry a minimal deployment)
//  2. Apply default values
//  3. Apply CREDITPILOT_SECTION_FIELD environment overrides
//  4. Validate the final configuration
package config
