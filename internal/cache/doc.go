// Package cache stores transformed rasters under descriptor keys.
//
// Every store honors the same keying contract: a key is the 64-character
// lowercase hex string produced by the descriptor package, and equal keys
// address the same entry. No eviction policy is applied; entries live until
// they are deleted explicitly or the backing medium drops them.
//
// # Stores
//
//   - MemoryStore keeps entries in a map, for a single process.
//   - FileStore writes one JSON file per entry, sharded by the first two key
//     characters.
//   - RedisStore keeps entries in Redis under a configurable prefix.
//   - Layered chains stores fastest first and backfills on hits.
//
// Entries carry the raster as PNG bytes together with its density, so a
// cached image round-trips without loss.
package cache
