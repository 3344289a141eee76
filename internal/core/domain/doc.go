// Package domain contains the core types of the mirror pipeline:
// source documents and their fingerprints, extracted asset references,
// and the persisted mapping and failure-ledger records.
//
// Domain types have no dependencies on adapters or infrastructure.
package domain
