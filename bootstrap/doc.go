// Package bootstrap runs a clinicq process: it validates configuration,
// initialises logging, starts registered components, runs configure
// callbacks, waits for a shutdown signal and stops everything in reverse.
package bootstrap
