// Package config loads service configuration with Viper.
//
// Values come from, in increasing priority: a YAML file found next to the
// binary's cmd directory, a .env file, and process environment variables.
// Nested keys map to upper-case underscore names, so `server.port` can be
// overridden with SERVER_PORT.
package config
