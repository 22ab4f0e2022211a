// Package config loads and validates matchday's TOML configuration.
//
// Configuration is the origin of the per-sport pattern-rule sets and
// team alias tables. Both are declared as TOML arrays of tables so that
// declaration order survives decoding; rule priority ties and alias
// collisions are resolved by that order. Compilation happens once at
// load time and produces immutable value objects handed to the
// resolver, never module-level state.
package config
