// Package registry owns the persisted set of configured vaults.
//
// The registry is an identity-keyed map that is written to a YAML file in full
// on every mutation. A write that fails leaves both the file and the map as
// they were. When the identity-keyed file does not exist yet, Load fills the
// map from the legacy name-keyed file without writing it back; the first
// mutation persists the migrated entries.
package registry
