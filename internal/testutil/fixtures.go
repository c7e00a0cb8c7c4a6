// Package testutil provides record fixtures and a scripted fake transport
// for tests.
package testutil

import (
	"github.com/remkit/remkit/internal/metadata"
)

// RawRecord builds a raw enumeration element with sane bookkeeping defaults.
// typ is metadata.TypeDocument or metadata.TypeCollection.
func RawRecord(id, parent, typ, name string) metadata.Raw {
	return metadata.Raw{
		Filename: ".local/share/remarkable/xochitl/" + id + ".metadata",
		Metadata: map[string]any{
			"deleted":          false,
			"lastModified":     "1690000000000",
			"lastOpened":       "1690000001000",
			"lastOpenedPage":   float64(0),
			"metadatamodified": false,
			"modified":         false,
			"parent":           parent,
			"pinned":           false,
			"synced":           true,
			"type":             typ,
			"version":          float64(1),
			"visibleName":      name,
		},
	}
}

// RawDocument builds a document record carrying a payload type hint.
func RawDocument(id, parent, name, fileType string) metadata.Raw {
	raw := RawRecord(id, parent, metadata.TypeDocument, name)
	raw.FileType = fileType
	return raw
}

// RawFolder builds a collection record.
func RawFolder(id, parent, name string) metadata.Raw {
	return RawRecord(id, parent, metadata.TypeCollection, name)
}

// Deleted marks a raw record as deleted.
func Deleted(raw metadata.Raw) metadata.Raw {
	raw.Metadata["deleted"] = true
	return raw
}
