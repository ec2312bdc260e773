package chart

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KaramelBytes/kinderstats/internal/tidy"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func gappyMatrix(t *testing.T) *tidy.Matrix {
	t.Helper()
	recs := []tidy.LongRecord{
		{Region: "Deggendorf", Year: 2003, Value: tidy.Some(6012)},
		{Region: "Deggendorf", Year: 2004, Value: tidy.Some(5998)},
		{Region: "Deggendorf", Year: 2006, Value: tidy.Some(6100)},
		{Region: "Passau", Year: 2005, Value: tidy.Some(9870)},
		{Region: "Regen", Year: 2003, Value: tidy.Missing()},
	}
	m, err := tidy.Pivot(recs, tidy.YearRange{Start: 2003, End: 2006})
	if err != nil {
		t.Fatalf("Pivot: %v", err)
	}
	return m
}

func TestSegmentsSplitAtGaps(t *testing.T) {
	m := gappyMatrix(t)
	segs := segments(m, 0)
	if len(segs) != 2 || len(segs[0]) != 2 || len(segs[1]) != 1 {
		t.Fatalf("unexpected segments: %v", segs)
	}
	if segs[1][0].X != 2006 || segs[1][0].Y != 6100 {
		t.Fatalf("unexpected last point: %+v", segs[1][0])
	}
	if got := segments(m, 2); len(got) != 0 {
		t.Fatalf("empty column should have no segments: %v", got)
	}
}

func TestRenderLinePNG(t *testing.T) {
	img, err := Render(gappyMatrix(t), Options{Kind: Line, Title: "Kinder 0-6", YLabel: "Anzahl"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !bytes.HasPrefix(img, pngMagic) {
		t.Fatalf("expected PNG output")
	}
}

func TestRenderStackedSVG(t *testing.T) {
	img, err := Render(gappyMatrix(t), Options{Kind: Stacked, Format: "svg", Width: 8, Height: 4})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(string(img), "<svg") {
		t.Fatalf("expected SVG output")
	}
}

func TestRenderErrors(t *testing.T) {
	if _, err := Render(&tidy.Matrix{}, Options{}); !errors.Is(err, ErrEmptyChart) {
		t.Fatalf("expected ErrEmptyChart, got %v", err)
	}
	if _, err := Render(gappyMatrix(t), Options{Kind: "pie"}); err == nil {
		t.Fatalf("expected error for unsupported kind")
	}
}

func TestSaveCreatesDirectories(t *testing.T) {
	out := filepath.Join(t.TempDir(), "output", "plot_kinder_0_6.png")
	if err := Save(out, gappyMatrix(t), Options{Kind: Line}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.HasPrefix(b, pngMagic) {
		t.Fatalf("expected PNG on disk")
	}
	if left, _ := filepath.Glob(filepath.Join(filepath.Dir(out), "*.tmp")); len(left) != 0 {
		t.Fatalf("temp files left behind: %v", left)
	}
}

func TestFormatFor(t *testing.T) {
	cases := map[string]string{"a.png": "png", "a.SVG": "svg", "a.pdf": "pdf", "a": "png", "a.gif": "png"}
	for in, want := range cases {
		if got := FormatFor(in); got != want {
			t.Fatalf("FormatFor(%s) = %s, want %s", in, got, want)
		}
	}
}
