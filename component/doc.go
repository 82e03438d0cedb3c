// Package component manages the lifecycle of long-lived infrastructure
// pieces: the database, the notification broker and the HTTP server. A
// Registry starts components in registration order and stops them in
// reverse, so dependencies are registered first.
package component
