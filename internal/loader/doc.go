// Package loader drives a request from identity to pixels.
//
// A Request names a local image file and an ordered list of transform steps.
// Its canonical form combines the file's identity (path, size and
// modification time) with the steps' canonical strings, so the descriptor key
// changes whenever the file is edited or the pipeline differs.
//
// Load computes that key, probes the cache store, and on a miss decodes the
// file, runs the pipeline on the transform engine and stores the result.
package loader
