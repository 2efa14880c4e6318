// Package format encodes and decodes the archive directory: the fixed
// header, the table directory, and the file directory.
//
// All multi-byte integers are little-endian. Table descriptors and file
// records are 12 bytes each. The header comes in two fixed layouts that
// differ only in the width of the copyright field; the layout is detected
// by probing the copyright text, never declared.
package format
