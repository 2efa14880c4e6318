// Package drs reads and builds DRS resource archives, the container format
// used by Genie-engine strategy games.
//
// An archive consists of four consecutive sections:
//   - Header: copyright text, version, archive type, table count and the
//     offset of the first payload. Two layouts exist (64 and 84 bytes); the
//     layout is detected by probing the copyright text.
//   - Table directory: one 12-byte descriptor per type tag.
//   - File directory: one 12-byte record (id, offset, size) per entry,
//     grouped by table.
//   - Payloads: entry contents, concatenated.
//
// # Reading
//
// Open returns a handle without touching storage. The directory is loaded
// on first use, once per handle, and entries are read with positioned reads
// so concurrent reads of distinct entries are safe:
//
//	a := drs.Open("interfac.drs")
//	defer a.Close()
//	data, err := a.ReadFile(ctx, 50500)
//
// # Building
//
// Builder registers entries first and resolves offsets only when the image
// is serialized, because the directory size depends on the final counts:
//
//	b := drs.NewBuilder()
//	b.AddBytes(drs.TagBinary, 50500, palette)
//	b.AddReader(drs.TagSprite, 3, slpFile)
//	_, err := b.Serialize(ctx, w)
//
// Payload decoding is left to callers; Classify and Dispatcher route raw
// bytes to decoders registered per Kind.
package drs
