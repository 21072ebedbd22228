// Package config loads the songbook server configuration.
//
// Values come from several sources with the following precedence:
//  1. Command-line flags (highest priority)
//  2. Environment variables (SONGBOOK_*)
//  3. Config file (--config, SONGBOOK_CONFIG, or songbook.yaml in the current directory)
//  4. Default values (lowest priority)
//
// Config.Sources records where each value came from.
package config
