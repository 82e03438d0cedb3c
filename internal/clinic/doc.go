// Package clinic implements the tenant-scoped clinic domain: rooms, patients,
// tickets and the waiting queue. Every committed mutation is announced to the
// tenant's dashboards through the SSE broker.
package clinic
