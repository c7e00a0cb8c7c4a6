// Package metadata models the flat per-document records the device keeps
// under ~/.local/share/remarkable/xochitl, one JSON object per document or
// folder. External key names (camelCase, plus the historical all-lowercase
// "metadatamodified") differ from the canonical internal field names; the
// mapping lives here and nowhere else.
package metadata

import (
	"fmt"
	"path"
	"strings"

	"github.com/goccy/go-json"
)

// Type tags used by the device's metadata schema.
const (
	TypeDocument   = "DocumentType"
	TypeCollection = "CollectionType"
)

// TrashParent is the sentinel parent identifier marking a trashed record.
const TrashParent = "trash"

// Raw is one element of the device-side enumeration output.
type Raw struct {
	Filename string         `json:"filename"`
	Metadata map[string]any `json:"metadata"`
	FileType string         `json:"filetype"`
}

// Record is a fully-populated metadata record.
type Record struct {
	ID               string
	Deleted          bool
	LastModified     string
	LastOpened       string
	LastOpenedPage   int
	MetadataModified bool
	Modified         bool
	Parent           string
	Pinned           bool
	Synced           bool
	Type             string
	Version          int
	VisibleName      string
}

// IsFolder reports whether the record is a collection.
func (r *Record) IsFolder() bool {
	return r.Type == TypeCollection
}

// external is the on-device JSON shape of a record. Field order here fixes
// the key order of rendered .metadata files.
type external struct {
	Deleted          bool   `json:"deleted"`
	LastModified     string `json:"lastModified"`
	LastOpened       string `json:"lastOpened"`
	LastOpenedPage   int    `json:"lastOpenedPage"`
	MetadataModified bool   `json:"metadatamodified"`
	Modified         bool   `json:"modified"`
	Parent           string `json:"parent"`
	Pinned           bool   `json:"pinned"`
	Synced           bool   `json:"synced"`
	Type             string `json:"type"`
	Version          int    `json:"version"`
	VisibleName      string `json:"visibleName"`
}

// MarshalDevice renders the record as the device expects to find it in a
// .metadata file.
func (r *Record) MarshalDevice() ([]byte, error) {
	ext := external{
		Deleted:          r.Deleted,
		LastModified:     r.LastModified,
		LastOpened:       r.LastOpened,
		LastOpenedPage:   r.LastOpenedPage,
		MetadataModified: r.MetadataModified,
		Modified:         r.Modified,
		Parent:           r.Parent,
		Pinned:           r.Pinned,
		Synced:           r.Synced,
		Type:             r.Type,
		Version:          r.Version,
		VisibleName:      r.VisibleName,
	}
	return json.MarshalIndent(ext, "", "    ")
}

// Field is a single metadata field rendered for display.
type Field struct {
	Key   string
	Value string
}

// Fields returns all metadata fields as external key/value pairs in the
// device's key order, for `show` output.
func (r *Record) Fields() []Field {
	return []Field{
		{"deleted", fmt.Sprintf("%t", r.Deleted)},
		{"lastModified", r.LastModified},
		{"lastOpened", r.LastOpened},
		{"lastOpenedPage", fmt.Sprintf("%d", r.LastOpenedPage)},
		{"metadatamodified", fmt.Sprintf("%t", r.MetadataModified)},
		{"modified", fmt.Sprintf("%t", r.Modified)},
		{"parent", r.Parent},
		{"pinned", fmt.Sprintf("%t", r.Pinned)},
		{"synced", fmt.Sprintf("%t", r.Synced)},
		{"type", r.Type},
		{"version", fmt.Sprintf("%d", r.Version)},
		{"visibleName", r.VisibleName},
	}
}

// Normalize converts a raw enumeration element into a Record.
//
// The identifier is the filename stem. Optional fields absent from older
// schema versions get defaults: lastOpened -> "", lastOpenedPage -> 0.
// Every other field is required; a missing required key is an input error
// naming the record and the key.
func Normalize(raw Raw) (*Record, error) {
	id := strings.TrimSuffix(path.Base(raw.Filename), ".metadata")
	if id == "" {
		return nil, fmt.Errorf("record has no filename")
	}

	m := rawMap{id: id, fields: raw.Metadata}
	rec := &Record{
		ID:             id,
		LastOpened:     m.optString("lastOpened", ""),
		LastOpenedPage: m.optInt("lastOpenedPage", 0),
	}
	rec.Deleted = m.reqBool("deleted")
	rec.LastModified = m.reqString("lastModified")
	rec.MetadataModified = m.reqBool("metadatamodified")
	rec.Modified = m.reqBool("modified")
	rec.Parent = m.reqString("parent")
	rec.Pinned = m.reqBool("pinned")
	rec.Synced = m.reqBool("synced")
	rec.Type = m.reqString("type")
	rec.Version = m.reqInt("version")
	rec.VisibleName = m.reqString("visibleName")
	if m.err != nil {
		return nil, m.err
	}

	if rec.Type != TypeDocument && rec.Type != TypeCollection {
		return nil, fmt.Errorf("record %s: unknown type tag %q", id, rec.Type)
	}
	return rec, nil
}

// rawMap extracts typed values from a raw metadata mapping, collecting the
// first error it hits.
type rawMap struct {
	id     string
	fields map[string]any
	err    error
}

func (m *rawMap) lookup(key string, required bool) (any, bool) {
	v, ok := m.fields[key]
	if !ok && required && m.err == nil {
		m.err = fmt.Errorf("record %s: missing required field %q", m.id, key)
	}
	return v, ok
}

func (m *rawMap) badType(key string, v any) {
	if m.err == nil {
		m.err = fmt.Errorf("record %s: field %q has unexpected type %T", m.id, key, v)
	}
}

func (m *rawMap) reqString(key string) string {
	v, ok := m.lookup(key, true)
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		m.badType(key, v)
		return ""
	}
	return s
}

func (m *rawMap) optString(key, def string) string {
	v, ok := m.lookup(key, false)
	if !ok {
		return def
	}
	s, ok := v.(string)
	if !ok {
		m.badType(key, v)
		return def
	}
	return s
}

func (m *rawMap) reqBool(key string) bool {
	v, ok := m.lookup(key, true)
	if !ok {
		return false
	}
	b, ok := v.(bool)
	if !ok {
		m.badType(key, v)
		return false
	}
	return b
}

func (m *rawMap) reqInt(key string) int {
	v, ok := m.lookup(key, true)
	if !ok {
		return 0
	}
	return m.asInt(key, v)
}

func (m *rawMap) optInt(key string, def int) int {
	v, ok := m.lookup(key, false)
	if !ok {
		return def
	}
	return m.asInt(key, v)
}

// asInt accepts the numeric shapes a JSON decoder may hand us.
func (m *rawMap) asInt(key string, v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	case int64:
		return int(n)
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			m.badType(key, v)
			return 0
		}
		return int(i)
	default:
		m.badType(key, v)
		return 0
	}
}
