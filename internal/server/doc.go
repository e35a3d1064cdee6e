// Package server implements the MCP (Model Context Protocol) server for the image loader.
//
// This package provides a JSON-RPC 2.0 server that exposes content-addressed
// image loading and transformation through the MCP protocol.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
//   - image_key: Compute the SHA-256 cache key of a string, URL or file
//   - image_load: Decode an image and report dimensions, density and key
//   - image_transform: Run a step pipeline and return base64 PNG or write a file
//   - image_cache_evict: Drop a cached result
//
// # Caching
//
// Results are stored under the key of (file identity, steps). The file
// identity covers path, size and modification time, so editing a file
// invalidates its results without an explicit eviction.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string
//
// # Usage
//
//	srv := server.New(server.WithLoader(l), server.WithLogger(logger))
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package server
