// Package imaging handles raster image essences: JPEG, PNG, and GIF.
//
// The content processor sniffs magic bytes, decodes dimensions, and for JPEG
// cuts the EXIF application segments out of the essence so that attribute
// and namespace data never hides inside the bytes. The EXIF metadata
// processor parses a fixed set of IFD0 tags into flat fields and keeps the
// removed segments verbatim, which lets Embed splice them back for a
// byte-exact round trip. The TIFF walk is deliberately narrow; it reads the
// first image directory only and ignores maker notes and thumbnails.
//
// Resize and Convert build pipeline operators over the stdlib codecs with
// scaling kernels from golang.org/x/image/draw. Operators re-encode, so
// their outputs are fresh essences without metadata namespaces.
package imaging
