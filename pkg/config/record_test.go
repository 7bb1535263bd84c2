package config

import (
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/spf13/afero"
)

const sampleRecord = `{
  "filters": [
    {"type": "ExtensionFilter", "extensions": [".jpg", ".png"], "destination": "Images"},
    {"type": "SizeFilter", "min_size_mb": 10, "destination": "LargeFiles"},
    {"type": "DateFilter", "days_ago": 7, "destination": "RecentFiles"},
    {"type": "CustomRegexFilter", "pattern": ".*\\.bak$", "destination": "Backups"}
  ],
  "settings": {"recursive": false, "overwrite_existing": false, "folder_prefix": "AETH_"}
}`

func TestDecodeRecord(t *testing.T) {
	rec, err := DecodeRecord([]byte(sampleRecord), RecordJSON)
	if err != nil {
		t.Fatalf("DecodeRecord() error = %v", err)
	}

	if len(rec.Filters) != 4 {
		t.Fatalf("len(Filters) = %d, want 4", len(rec.Filters))
	}
	if rec.Filters[0].Type != "ExtensionFilter" || len(rec.Filters[0].Extensions) != 2 {
		t.Errorf("Filters[0] = %+v", rec.Filters[0])
	}
	if rec.Filters[1].MinSizeMB == nil || *rec.Filters[1].MinSizeMB != 10 {
		t.Errorf("Filters[1].MinSizeMB = %v", rec.Filters[1].MinSizeMB)
	}
	if rec.Filters[2].DaysAgo == nil || *rec.Filters[2].DaysAgo != 7 {
		t.Errorf("Filters[2].DaysAgo = %v", rec.Filters[2].DaysAgo)
	}
	if rec.Filters[3].Pattern == nil || *rec.Filters[3].Pattern != `.*\.bak$` {
		t.Errorf("Filters[3].Pattern = %v", rec.Filters[3].Pattern)
	}
	if rec.Settings.Prefix() != "AETH_" {
		t.Errorf("Prefix() = %s, want AETH_", rec.Settings.Prefix())
	}
}

func TestDecodeRecordErrors(t *testing.T) {
	tests := map[string]string{
		"Truncated":    `{"filters": [`,
		"Empty":        ``,
		"FiltersMap":   `{"filters": {"type": "DateFilter"}}`,
		"BadSettings":  `{"filters": [], "settings": {"folder_prefix": 5}}`,
		"TrailingData": `{"filters": []} garbage`,
	}

	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := DecodeRecord([]byte(input), RecordJSON); err == nil {
				t.Errorf("DecodeRecord(%q) should fail", input)
			}
		})
	}
}

func TestDecodeRecordBadFilters(t *testing.T) {
	tests := []struct {
		name   string
		format RecordFormat
		input  string
	}{
		{"JSON", RecordJSON, `{
  "filters": [
    {"type": "ExtensionFilter", "extensions": [".jpg"], "destination": "Images"},
    {"type": "ArchiveFilter", "days_ago": "weekly"},
    {"type": "DateFilter", "days_ago": 7.5, "destination": "Recent"},
    {"type": 5, "destination": "Numbers"},
    "not a record",
    {"type": "CustomRegexFilter", "pattern": "bak", "destination": "Backups"}
  ],
  "settings": {"folder_prefix": "X_"}
}`},
		{"YAML", RecordYAML, `filters:
  - type: ExtensionFilter
    extensions: [.jpg]
    destination: Images
  - type: ArchiveFilter
    days_ago: weekly
  - type: DateFilter
    days_ago: 7.5
    destination: Recent
  - type: 5
    destination: Numbers
  - not a record
  - type: CustomRegexFilter
    pattern: bak
    destination: Backups
settings:
  folder_prefix: X_
`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := DecodeRecord([]byte(tt.input), tt.format)
			if err != nil {
				t.Fatalf("DecodeRecord() error = %v", err)
			}

			if rec.Settings.Prefix() != "X_" {
				t.Errorf("Prefix() = %q, want X_", rec.Settings.Prefix())
			}
			if len(rec.Filters) != 6 {
				t.Fatalf("len(Filters) = %d, want 6", len(rec.Filters))
			}

			first, last := rec.Filters[0], rec.Filters[5]
			if first.Err != nil || len(first.Extensions) != 1 {
				t.Errorf("Filters[0] = %+v", first)
			}
			if last.Err != nil || last.Pattern == nil || *last.Pattern != "bak" {
				t.Errorf("Filters[5] = %+v", last)
			}

			unknown := rec.Filters[1]
			if unknown.Type != "ArchiveFilter" || unknown.Err != nil || unknown.DaysAgo != nil {
				t.Errorf("unknown type should come back undecoded, got %+v", unknown)
			}

			bad := rec.Filters[2]
			if bad.Type != "DateFilter" || bad.Err == nil || bad.Destination != "" {
				t.Errorf("fractional days_ago should fail its own record, got %+v", bad)
			}

			for _, i := range []int{3, 4} {
				if rec.Filters[i].Type != "" || rec.Filters[i].Err != nil {
					t.Errorf("Filters[%d] should be an untyped record, got %+v", i, rec.Filters[i])
				}
			}
		})
	}
}

func TestIsFilterType(t *testing.T) {
	for _, typ := range []string{"ExtensionFilter", "SizeFilter", "DateFilter", "CustomRegexFilter"} {
		if !IsFilterType(typ) {
			t.Errorf("IsFilterType(%s) = false", typ)
		}
	}
	if IsFilterType("extensionfilter") || IsFilterType("") {
		t.Error("type tags are case-sensitive and non-empty")
	}
}

func TestSettingsPrefix(t *testing.T) {
	if got := (Settings{}).Prefix(); got != DefaultFolderPrefix {
		t.Errorf("absent prefix = %q, want %q", got, DefaultFolderPrefix)
	}
	empty := ""
	if got := (Settings{FolderPrefix: &empty}).Prefix(); got != "" {
		t.Errorf("explicit empty prefix = %q, want empty", got)
	}
}

func TestEncodeRecordJSON(t *testing.T) {
	ten := 10.0
	days := 0
	prefix := "AETH_"
	rec := &Record{
		Filters: []FilterRecord{
			{Type: "SizeFilter", Destination: "LargeFiles", MinSizeMB: &ten},
			{Type: "SizeFilter", Destination: "Any"},
			{Type: "DateFilter", Destination: "Today", DaysAgo: &days},
			{Type: "ExtensionFilter", Destination: "Images", Extensions: []string{".jpg"}},
		},
		Settings: Settings{FolderPrefix: &prefix},
	}

	data, err := EncodeRecord(rec, RecordJSON)
	if err != nil {
		t.Fatalf("EncodeRecord() error = %v", err)
	}

	var raw struct {
		Filters  []map[string]interface{} `json:"filters"`
		Settings map[string]interface{}   `json:"settings"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, data)
	}

	if raw.Filters[0]["min_size_mb"] != 10.0 {
		t.Errorf("min_size_mb = %v, want 10", raw.Filters[0]["min_size_mb"])
	}
	if v, ok := raw.Filters[1]["min_size_mb"]; !ok || v != nil {
		t.Errorf("unbounded size filter should serialize min_size_mb as null, got %v (present=%v)", v, ok)
	}
	if v, ok := raw.Filters[2]["days_ago"]; !ok || v != 0.0 {
		t.Errorf("days_ago = 0 must be kept, got %v (present=%v)", v, ok)
	}
	if _, ok := raw.Filters[3]["min_size_mb"]; ok {
		t.Error("extension filter should not carry min_size_mb")
	}
	if raw.Settings["recursive"] != false || raw.Settings["overwrite_existing"] != false {
		t.Errorf("settings = %v", raw.Settings)
	}
	if !strings.Contains(string(data), "\n  \"filters\": [") {
		t.Errorf("JSON should be indented with two spaces:\n%s", data)
	}
}

func TestRecordFileRoundTrip(t *testing.T) {
	for _, path := range []string{"/cfg/config.json", "/cfg/filters.yaml", "/cfg/filters.YML"} {
		t.Run(path, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			rec, err := DecodeRecord([]byte(sampleRecord), RecordJSON)
			if err != nil {
				t.Fatalf("DecodeRecord() error = %v", err)
			}
			rec.Settings.Exclude = []string{"*.part"}

			if err := WriteRecordFile(fs, path, rec); err != nil {
				t.Fatalf("WriteRecordFile() error = %v", err)
			}
			loaded, err := ReadRecordFile(fs, path)
			if err != nil {
				t.Fatalf("ReadRecordFile() error = %v", err)
			}

			if len(loaded.Filters) != len(rec.Filters) {
				t.Fatalf("len(Filters) = %d, want %d", len(loaded.Filters), len(rec.Filters))
			}
			for i := range rec.Filters {
				if loaded.Filters[i].Type != rec.Filters[i].Type || loaded.Filters[i].Destination != rec.Filters[i].Destination {
					t.Errorf("Filters[%d] = %+v, want %+v", i, loaded.Filters[i], rec.Filters[i])
				}
			}
			if *loaded.Filters[1].MinSizeMB != 10 || *loaded.Filters[2].DaysAgo != 7 {
				t.Error("size/date parameters not restored")
			}
			if loaded.Settings.Prefix() != "AETH_" || len(loaded.Settings.Exclude) != 1 {
				t.Errorf("Settings = %+v", loaded.Settings)
			}
		})
	}
}

func TestReadRecordFileMissing(t *testing.T) {
	_, err := ReadRecordFile(afero.NewMemMapFs(), "/nope/config.json")
	if !os.IsNotExist(err) {
		t.Errorf("ReadRecordFile() error = %v, want not-exist", err)
	}
}

func TestRecordFormatFor(t *testing.T) {
	tests := map[string]RecordFormat{
		"config.json":  RecordJSON,
		"config":       RecordJSON,
		"filters.yaml": RecordYAML,
		"filters.YML":  RecordYAML,
	}
	for path, want := range tests {
		if got := RecordFormatFor(path); got != want {
			t.Errorf("RecordFormatFor(%s) = %s, want %s", path, got, want)
		}
	}
}
