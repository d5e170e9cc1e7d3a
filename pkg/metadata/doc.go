// Package metadata looks up per-package details for the selection panel.
//
// Details are keyed by node ID and hold the install size, the license and
// vulnerability counts. A [Lookup] reports a missing entry with ok=false,
// which is not an error: the panel simply leaves those fields out.
//
// Backends:
//
//   - [MapLookup]: an in-memory map, loaded from a JSON or YAML file
//   - [RedisLookup]: one Redis hash per node
//   - [MongoLookup]: one MongoDB document per node, keyed by _id
package metadata
