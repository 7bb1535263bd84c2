package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// RecordFormat is the encoding of a filter record file
type RecordFormat string

const (
	RecordJSON RecordFormat = "json"
	RecordYAML RecordFormat = "yaml"
)

// DefaultFolderPrefix is used when the record has no folder_prefix setting
const DefaultFolderPrefix = "AETH_"

// Record is the persisted sorter configuration: an ordered filter list and settings
type Record struct {
	Filters  []FilterRecord `json:"filters" yaml:"filters"`
	Settings Settings       `json:"settings" yaml:"settings"`
}

// FilterRecord is one persisted filter. Type selects which of the
// remaining fields apply.
type FilterRecord struct {
	Type        string `json:"type" yaml:"type"`
	Destination string `json:"destination,omitempty" yaml:"destination,omitempty"`

	Extensions []string `json:"extensions,omitempty" yaml:"extensions,omitempty"`

	// Size bounds in megabytes. JSON size records always carry
	// min_size_mb, null when unbounded.
	MinSizeMB *float64 `json:"min_size_mb" yaml:"min_size_mb,omitempty"`
	MaxSizeMB *float64 `json:"max_size_mb,omitempty" yaml:"max_size_mb,omitempty"`

	DaysAgo *int    `json:"days_ago,omitempty" yaml:"days_ago,omitempty"`
	Pattern *string `json:"pattern,omitempty" yaml:"pattern,omitempty"`

	// Err is set when a record of a known type could not be decoded.
	// Only Type is filled in then.
	Err error `json:"-" yaml:"-"`
}

// filterTypes are the type tags a record can be decoded as
var filterTypes = map[string]bool{
	"ExtensionFilter":   true,
	"SizeFilter":        true,
	"DateFilter":        true,
	"CustomRegexFilter": true,
}

// IsFilterType reports whether t is a known filter record type
func IsFilterType(t string) bool {
	return filterTypes[t]
}

// MarshalJSON writes min_size_mb only for size records
func (r FilterRecord) MarshalJSON() ([]byte, error) {
	type plain FilterRecord
	if r.Type == "SizeFilter" {
		return json.Marshal(plain(r))
	}

	type withoutMin struct {
		plain
		MinSizeMB *float64 `json:"min_size_mb,omitempty"`
	}
	return json.Marshal(withoutMin{plain: plain(r)})
}

// Settings holds record-level options. Recursive and OverwriteExisting are
// persisted for compatibility but a sort pass never consults them.
type Settings struct {
	Recursive         bool     `json:"recursive" yaml:"recursive"`
	OverwriteExisting bool     `json:"overwrite_existing" yaml:"overwrite_existing"`
	FolderPrefix      *string  `json:"folder_prefix,omitempty" yaml:"folder_prefix,omitempty"`
	Exclude           []string `json:"exclude,omitempty" yaml:"exclude,omitempty"`
}

// Prefix returns the folder prefix, or DefaultFolderPrefix when absent
func (s Settings) Prefix() string {
	if s.FolderPrefix == nil {
		return DefaultFolderPrefix
	}
	return *s.FolderPrefix
}

// RecordFormatFor picks the encoding from the file extension; JSON unless .yaml/.yml
func RecordFormatFor(path string) RecordFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return RecordYAML
	default:
		return RecordJSON
	}
}

// jsonRecord and yamlRecord hold the filter list undecoded so that one
// bad record does not fail the whole file
type jsonRecord struct {
	Filters  []json.RawMessage `json:"filters"`
	Settings Settings          `json:"settings"`
}

type yamlRecord struct {
	Filters  []yaml.Node `yaml:"filters"`
	Settings Settings    `yaml:"settings"`
}

// DecodeRecord parses data in the given format. Only malformed syntax or
// settings fail the decode. Filter records are decoded one at a time:
// a record of unknown type comes back with just its Type, and a known
// record that does not decode comes back with Err set.
func DecodeRecord(data []byte, format RecordFormat) (*Record, error) {
	switch format {
	case RecordYAML:
		var raw yamlRecord
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse record: %w", err)
		}
		rec := &Record{Settings: raw.Settings}
		for i := range raw.Filters {
			node := &raw.Filters[i]
			rec.Filters = append(rec.Filters, decodeFilter(yamlType(node), node.Decode))
		}
		return rec, nil

	default:
		var raw jsonRecord
		dec := json.NewDecoder(bytes.NewReader(data))
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("failed to parse record: %w", err)
		}
		if dec.More() {
			return nil, fmt.Errorf("failed to parse record: trailing data after JSON object")
		}
		rec := &Record{Settings: raw.Settings}
		for _, msg := range raw.Filters {
			rec.Filters = append(rec.Filters, decodeFilter(jsonType(msg), func(v interface{}) error {
				return json.Unmarshal(msg, v)
			}))
		}
		return rec, nil
	}
}

// decodeFilter decodes a record of type t. Unknown types are not decoded
// any further, whatever fields they carry.
func decodeFilter(t string, decode func(interface{}) error) FilterRecord {
	if !IsFilterType(t) {
		return FilterRecord{Type: t}
	}

	var r FilterRecord
	if err := decode(&r); err != nil {
		return FilterRecord{Type: t, Err: fmt.Errorf("failed to parse %s record: %w", t, err)}
	}
	return r
}

// jsonType returns the type tag of a raw filter record, or "" when the
// record is not an object or its type is not a string
func jsonType(msg json.RawMessage) string {
	var probe struct {
		Type json.RawMessage `json:"type"`
	}
	if err := json.Unmarshal(msg, &probe); err != nil {
		return ""
	}
	var t string
	if err := json.Unmarshal(probe.Type, &t); err != nil {
		return ""
	}
	return t
}

func yamlType(node *yaml.Node) string {
	if node.Kind != yaml.MappingNode {
		return ""
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		if key.Value == "type" && value.Kind == yaml.ScalarNode && value.ShortTag() == "!!str" {
			return value.Value
		}
	}
	return ""
}

// EncodeRecord serializes rec in the given format
func EncodeRecord(rec *Record, format RecordFormat) ([]byte, error) {
	switch format {
	case RecordYAML:
		data, err := yaml.Marshal(rec)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal record: %w", err)
		}
		return data, nil
	default:
		data, err := json.MarshalIndent(rec, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal record: %w", err)
		}
		return append(data, '\n'), nil
	}
}

// ReadRecordFile reads and decodes the record at path.
// A missing file is reported with an error satisfying os.IsNotExist.
func ReadRecordFile(fs afero.Fs, path string) (*Record, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, err
	}
	return DecodeRecord(data, RecordFormatFor(path))
}

// WriteRecordFile encodes rec and overwrites path in place
func WriteRecordFile(fs afero.Fs, path string, rec *Record) error {
	data, err := EncodeRecord(rec, RecordFormatFor(path))
	if err != nil {
		return err
	}

	if err := afero.WriteFile(fs, path, data, 0644); err != nil {
		return fmt.Errorf("failed to write record file: %w", err)
	}
	return nil
}
