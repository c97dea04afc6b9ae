package geodrill

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultFontMeasures(t *testing.T) {
	f, err := DefaultFont()
	if err != nil {
		t.Fatal(err)
	}
	w, h := f.MeasureString("Hangzhou", 16)
	if w <= 0 || h <= 0 {
		t.Errorf("MeasureString = %f,%f, want positive", w, h)
	}
	wide, _ := f.MeasureString("Hangzhou", 32)
	if wide <= w {
		t.Errorf("larger size measured %f, not wider than %f", wide, w)
	}
}

func TestFontFaceCache(t *testing.T) {
	f, err := DefaultFont()
	if err != nil {
		t.Fatal(err)
	}
	if f.Face(15.6) != f.Face(16.4) {
		t.Error("sizes rounding to the same pixel size got different faces")
	}
	if f.Face(0).Size != 1 {
		t.Errorf("Face(0).Size = %f, want 1", f.Face(0).Size)
	}
}

func TestLoadFontFileErrors(t *testing.T) {
	if _, err := LoadFontFile(filepath.Join(t.TempDir(), "missing.ttf")); err == nil {
		t.Error("missing file loaded")
	}
	bad := filepath.Join(t.TempDir(), "bad.ttf")
	if err := os.WriteFile(bad, []byte("not a font"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFontFile(bad); err == nil {
		t.Error("garbage parsed as a font")
	}
	if f, err := LoadFontFile(""); err != nil || f == nil {
		t.Errorf("empty path = %v, %v, want the default font", f, err)
	}
}
