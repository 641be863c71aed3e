// Package palette loads and represents the fixed color tables that
// constrain every output pixel of the conversion pipeline.
//
// A Palette is an ordered, immutable list of RGB entries parsed from a
// binary Adobe color table (.act): 768 bytes of 256 RGB triples, the
// 772-byte legacy variant with ignored trailing metadata, or a smaller
// table whose length is a multiple of 3. Entry order is significant:
// the index into the table is the palette index of indexed-color
// output, and nearest-color ties resolve to the lowest index.
//
// # Metrics
//
// Nearest-color search ranks candidates by a Metric: squared Euclidean
// distance either on the native RGB channels or in CIE Lab. Projecting
// a palette (Palette.Project) converts every entry into the chosen
// space once per job so the per-pixel hot loop does no conversion work
// for the palette side.
//
// # Adaptive palettes
//
// Besides fixed hardware tables, a palette can be derived from the
// image itself: ExtractKMeans clusters pixels in Lab space and
// ExtractDominant picks the weighted dominant colors. Both feed the
// same quantizer as a loaded table.
package palette
