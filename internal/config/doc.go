// Package config provides configuration loading, merging, and validation
// facilities for the note-keeper client.
//
// Configuration is assembled from multiple sources; for each field the first
// source that sets it wins:
//  1. Command-line flags (see [BindFlags])
//  2. Environment variables
//  3. JSON config file
//  4. Built-in defaults
//
// The main entry point is [GetClientConfig].
package config
