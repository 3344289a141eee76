// Package services contains the core pipeline logic: the sync engine
// with its change detection and link rewriting, the cleanup pass, and
// the recovery scanner. Services depend only on domain types and
// driven ports; all I/O adapters are injected at construction.
package services
