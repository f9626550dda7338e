package recognition

import (
	"bytes"
	"errors"
	"image"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/bmp"
)

func TestDecodeFirstObject(t *testing.T) {
	cases := []struct {
		name string
		text string
		want string
	}{
		{"bare", `{"vin":"A"}`, "A"},
		{"prose around", `Result: {"vin":"B"} and then {"vin":"C"}`, "B"},
		{"fenced", "```json\n{\"vin\":\"D\"}\n```", "D"},
		{"broken first", `{vin: nope} {"vin":"E"}`, "E"},
		{"nested", `x {"vin":"F","meta":{"k":1}} y}`, "F"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var got struct {
				VIN string `json:"vin"`
			}
			if err := DecodeFirstObject(tc.text, &got); err != nil {
				t.Fatalf("DecodeFirstObject: %v", err)
			}
			if got.VIN != tc.want {
				t.Fatalf("got %q want %q", got.VIN, tc.want)
			}
		})
	}

	var dst map[string]any
	if err := DecodeFirstObject("no json here", &dst); !errors.Is(err, errNoObject) {
		t.Fatalf("expected errNoObject, got %v", err)
	}
}

func TestExtractLocationCode(t *testing.T) {
	cases := []struct {
		name  string
		text  string
		want  string
		found bool
	}{
		{"bare", "a1", "A1", true},
		{"label", "Location code: B-12.", "B-12", true},
		{"multi word", "ZONE B", "ZONE B", true},
		{"sentence", "The code is A1", "A1", true},
		{"quoted", "`\"c7\"`", "C7", true},
		{"fenced", "```text\nD4\n```", "D4", true},
		{"capped", "warehouse north annex 7", "WAREHOUSE NORTH", true},
		{"sentinel", "UNKNOWN", "", false},
		{"not applicable", "N/A", "", false},
		{"negative", "No code visible", "", false},
		{"negative sentence", "The code is not readable", "", false},
		{"cannot", "I cannot read any code", "", false},
		{"empty", "  \n ", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, found := ExtractLocationCode(tc.text)
			if got != tc.want || found != tc.found {
				t.Fatalf("ExtractLocationCode(%q) = %q, %v; want %q, %v", tc.text, got, found, tc.want, tc.found)
			}
		})
	}
}

func TestSniffImage(t *testing.T) {
	var buf bytes.Buffer
	if err := bmp.Encode(&buf, image.NewGray(image.Rect(0, 0, 5, 7))); err != nil {
		t.Fatalf("encode bmp: %v", err)
	}
	img, err := SniffImage(buf.Bytes())
	if err != nil {
		t.Fatalf("SniffImage: %v", err)
	}
	if img.MIMEType != "image/bmp" || img.Width != 5 || img.Height != 7 {
		t.Fatalf("unexpected image %#v", img)
	}

	if _, err := SniffImage([]byte("%PDF-1.7 not an image")); !errors.Is(err, ErrUnsupportedImage) {
		t.Fatalf("expected ErrUnsupportedImage, got %v", err)
	}
	if _, err := SniffImage(nil); !errors.Is(err, ErrUnsupportedImage) {
		t.Fatalf("expected ErrUnsupportedImage for empty input, got %v", err)
	}
}

func TestLoadImageEnforcesLimit(t *testing.T) {
	var buf bytes.Buffer
	if err := bmp.Encode(&buf, image.NewGray(image.Rect(0, 0, 16, 16))); err != nil {
		t.Fatalf("encode bmp: %v", err)
	}
	path := filepath.Join(t.TempDir(), "photo.jpg")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write image: %v", err)
	}

	img, err := LoadImage(path, int64(buf.Len()))
	if err != nil {
		t.Fatalf("LoadImage: %v", err)
	}
	if img.MIMEType != "image/bmp" {
		t.Fatalf("expected content sniffing to ignore extension, got %s", img.MIMEType)
	}
	if _, err := LoadImage(path, int64(buf.Len()-1)); !errors.Is(err, ErrUnsupportedImage) {
		t.Fatalf("expected size limit error, got %v", err)
	}
}
