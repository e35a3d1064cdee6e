// Package transform implements the raster transform engine of the image loader.
//
// Every operation takes a decoded *Raster and returns a *Raster. Inputs are never
// mutated. Operations fall into three groups:
//   - Color: InvertColors, ToGrayscale, ApplyColorFilter
//   - Geometry: MirrorHorizontal, MirrorVertical, Rotate, RoundCorners
//   - Sizing: CropToCenter, FitToCenter, ScaleToFit
//
// # Fast Paths
//
// An operation whose output would have exactly the input's dimensions and content
// returns the input itself rather than a copy. Callers may compare pointers to
// detect this. Color and geometry operations always allocate.
//
// # Ratio Reduction
//
// Sizing decisions never compare floating-point ratios. Both the source and the
// target sizes are reduced by their greatest common divisor and compared as integer
// pairs. Crop windows and letterbox frames are centered with integer division, so an
// odd remainder puts the extra pixel on the right or bottom edge.
//
// # Buffer Lifecycle
//
// Buffers allocated by an Engine are accounted against its Budget. An allocation
// that would exceed the budget fails with an *AllocationError. Intermediate buffers
// an operation creates but does not return are released before the call returns, on
// every path. The caller owns the returned raster and should Release it when done;
// the engine never releases a raster it was given.
//
// # Metadata
//
// Every newly allocated raster carries the source raster's density.
//
// # Thread Safety
//
// An Engine holds only immutable options and an atomic budget, so it is safe for
// concurrent use. A single Raster must not be released while another goroutine is
// reading it.
package transform
