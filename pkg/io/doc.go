// Package io decodes JSON, TOML and YAML documents into plain Go value
// graphs for the safe tree builder, and encodes safe trees back out.
//
// # Formats
//
// The format is picked from the file extension by [FormatFromPath] or from a
// media type by [FormatFromContentType]:
//
//	.json          FormatJSON  (numbers kept as json.Number)
//	.toml          FormatTOML  (datetimes decode to time.Time)
//	.yaml, .yml    FormatYAML
//
// # Import
//
// Use [ReadFile] for a path or [Decode] for any io.Reader:
//
//	doc, err := io.ReadFile("config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	line, _ := safetree.Stringify(doc, 3)
//
// Decoding errors carry errors.ErrCodeInvalidFormat; a missing file carries
// errors.ErrCodeFileNotFound.
//
// # Export
//
// [Encode] writes a safe tree as a single JSON line or as a YAML document.
// Property order is preserved in both.
package io
