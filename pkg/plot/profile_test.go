package plot

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/chrissnell/hydrosphere/pkg/hydrosphere"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func testResult() *hydrosphere.Result {
	return &hydrosphere.Result{
		Status:           hydrosphere.StatusConverged,
		Temperature:      hydrosphere.Profile{-160, -100, -20, 10, 40},
		Depths:           []float64{0, 1000, 2000, 3000, 4000},
		HighestIceExtent: 2000,
	}
}

func TestWriteTo(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTo(&buf, testResult()); err != nil {
		t.Fatalf("WriteTo() error = %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), pngMagic) {
		t.Error("output is not a PNG image")
	}
}

func TestSavePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.png")
	if err := SavePNG(testResult(), path); err != nil {
		t.Fatalf("SavePNG() error = %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(b, pngMagic) {
		t.Error("file is not a PNG image")
	}
}

func TestProfilePlotErrors(t *testing.T) {
	tests := []struct {
		name string
		r    *hydrosphere.Result
	}{
		{"empty profile", &hydrosphere.Result{}},
		{"length mismatch", &hydrosphere.Result{Temperature: hydrosphere.Profile{1, 2}, Depths: []float64{0}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ProfilePlot(tt.r); err == nil {
				t.Error("ProfilePlot() error = nil")
			}
		})
	}
}

func TestProfilePlotUniformProfile(t *testing.T) {
	r := testResult()
	r.Temperature = hydrosphere.Profile{0, 0, 0, 0, 0}
	if _, err := ProfilePlot(r); err != nil {
		t.Errorf("ProfilePlot() on a uniform profile error = %v", err)
	}
}

func TestSaveFrames(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "frames")
	r := testResult()
	frames := []hydrosphere.Profile{r.Temperature, r.Temperature.Clone(), r.Temperature.Clone()}
	frames[2][4] = 45

	paths, err := SaveFrames(dir, r.Depths, frames)
	if err != nil {
		t.Fatalf("SaveFrames() error = %v", err)
	}
	if len(paths) != 3 {
		t.Fatalf("SaveFrames() wrote %d files, want 3", len(paths))
	}
	if filepath.Base(paths[1]) != "frame_00001.png" {
		t.Errorf("second frame name = %s", filepath.Base(paths[1]))
	}

	if _, err := SaveFrames(dir, r.Depths, nil); err == nil {
		t.Error("SaveFrames() with no frames should fail")
	}
	if _, err := SaveFrames(dir, r.Depths[:2], frames); err == nil {
		t.Error("SaveFrames() with mismatched depths should fail")
	}
}
