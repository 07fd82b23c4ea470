package io

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/safetree/pkg/errors"
	"github.com/matzehuels/safetree/pkg/safetree"
)

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{"a.json", FormatJSON, false},
		{"dir/b.TOML", FormatTOML, false},
		{"c.yml", FormatYAML, false},
		{"d.yaml", FormatYAML, false},
		{"e.txt", "", true},
		{"Makefile", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := FormatFromPath(tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("FormatFromPath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("FormatFromPath(%q) = %q, want %q", tt.path, got, tt.want)
			}
			if err != nil && !errors.Is(err, errors.ErrCodeInvalidFormat) {
				t.Errorf("error code = %v, want INVALID_FORMAT", errors.GetCode(err))
			}
		})
	}
}

func TestFormatFromContentType(t *testing.T) {
	tests := []struct {
		ct       string
		want     Format
		wantCode errors.Code
	}{
		{"", FormatJSON, ""},
		{"application/json; charset=utf-8", FormatJSON, ""},
		{"application/toml", FormatTOML, ""},
		{"application/yaml", FormatYAML, ""},
		{"text/x-yaml", FormatYAML, ""},
		{"text/html", "", errors.ErrCodeUnsupported},
		{"not a type;;", "", errors.ErrCodeInvalidFormat},
	}

	for _, tt := range tests {
		got, err := FormatFromContentType(tt.ct)
		if code := errors.GetCode(err); code != tt.wantCode {
			t.Errorf("FormatFromContentType(%q) code = %q, want %q", tt.ct, code, tt.wantCode)
		}
		if got != tt.want {
			t.Errorf("FormatFromContentType(%q) = %q, want %q", tt.ct, got, tt.want)
		}
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		input  string
		want   any
	}{
		{
			name:   "json keeps numbers",
			format: FormatJSON,
			input:  `{"id": 12345678901234567890, "tags": ["a"]}`,
			want:   map[string]any{"id": json.Number("12345678901234567890"), "tags": []any{"a"}},
		},
		{
			name:   "toml",
			format: FormatTOML,
			input:  "name = \"svc\"\n[limits]\ncpu = 2\n",
			want:   map[string]any{"name": "svc", "limits": map[string]any{"cpu": int64(2)}},
		},
		{
			name:   "yaml",
			format: FormatYAML,
			input:  "name: svc\nports:\n  - 80\n  - 443\n",
			want:   map[string]any{"name": "svc", "ports": []any{80, 443}},
		},
		{
			name:   "empty yaml",
			format: FormatYAML,
			input:  "",
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeBytes([]byte(tt.input), tt.format)
			if err != nil {
				t.Fatalf("Decode() error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Decode() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodeTOMLDatetime(t *testing.T) {
	doc, err := DecodeBytes([]byte("at = 2024-01-02T03:04:05Z\n"), FormatTOML)
	if err != nil {
		t.Fatal(err)
	}
	at, ok := doc.(map[string]any)["at"].(time.Time)
	if !ok {
		t.Fatalf("at = %T, want time.Time", doc.(map[string]any)["at"])
	}

	line, err := safetree.Stringify(doc, 3)
	if err != nil {
		t.Fatal(err)
	}
	if want := `{"at":"` + at.Format(time.RFC3339) + `"}`; line != want {
		t.Errorf("Stringify = %s, want %s", line, want)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		input  string
	}{
		{"bad json", FormatJSON, `{"a":`},
		{"trailing json", FormatJSON, `{} {}`},
		{"bad toml", FormatTOML, "a = = b"},
		{"bad yaml", FormatYAML, "a: [1, 2"},
		{"unknown format", Format("xml"), "<a/>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeBytes([]byte(tt.input), tt.format)
			if !errors.Is(err, errors.ErrCodeInvalidFormat) {
				t.Errorf("Decode() error = %v, want INVALID_FORMAT", err)
			}
		})
	}
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.yaml")
	if err := os.WriteFile(path, []byte("a: 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	doc, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	if diff := cmp.Diff(map[string]any{"a": 1}, doc); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}

	_, err = ReadFile(filepath.Join(dir, "missing.json"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestEncode(t *testing.T) {
	obj := safetree.NewObject()
	obj.Set("z", 1)
	obj.Set("a", []any{"x", safetree.MarkerMaxDepth})

	var buf bytes.Buffer
	if err := Encode(&buf, obj, FormatJSON); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "{\"z\":1,\"a\":[\"x\",\"maxdepth\"]}\n" {
		t.Errorf("json = %q", got)
	}

	buf.Reset()
	if err := Encode(&buf, obj, FormatYAML); err != nil {
		t.Fatal(err)
	}
	want := "z: 1\na:\n  - x\n  - maxdepth\n"
	if got := buf.String(); got != want {
		t.Errorf("yaml =\n%s\nwant\n%s", got, want)
	}

	if err := Encode(&buf, obj, FormatTOML); !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("toml export error = %v, want UNSUPPORTED", err)
	}
}

func TestEncodeYAMLQuotesMarkers(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, map[string]any{"ref": safetree.MarkerRefPrefix + ".a"}, FormatYAML); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "refTo^.a") {
		t.Errorf("yaml = %q", buf.String())
	}
}
