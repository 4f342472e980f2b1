// Package core defines the shared language of the leapcrawl system.
//
// This package contains:
//   - Metadata categories and retrieval strategies
//   - The identifier formatting policy (Identifiers)
//   - Adapter configuration and the connection Rows wrapper
//
// The Golden Rule: pkg/core imports ONLY stdlib.
// All other packages depend on core, not the reverse.
package core
