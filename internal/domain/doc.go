// Package domain contains the core model for diagroute: the closed set of
// rendering tools, classification records, rulebooks and regression suites.
//
// The domain is transport- and persistence-agnostic: it does not depend on YAML parsing,
// MCP, or the filesystem. Infra/adapters map into/from these types.
package domain
