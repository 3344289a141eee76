// Package driven defines the driven ports (secondary interfaces) the
// core services depend on: the asset fetcher and the per-collection
// persistence stores. Adapters under internal/adapters/driven provide
// the implementations.
package driven
