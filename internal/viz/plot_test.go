package viz

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestWritePNG(t *testing.T) {
	var buf bytes.Buffer
	err := WritePNG(&buf, "sphere / genetic",
		Series{Name: "best", Values: []float64{10, 4, 2, 1, 0.5}},
		Series{Name: "mean", Values: []float64{40, 20, 9, 5, 3}},
	)
	if err != nil {
		t.Fatalf("WritePNG failed: %v", err)
	}

	// PNG magic bytes
	if buf.Len() < 8 || !bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG\r\n\x1a\n")) {
		t.Fatalf("output is not a PNG (%d bytes)", buf.Len())
	}
}

func TestWritePNG_Errors(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePNG(&buf, "title"); err == nil {
		t.Error("expected error with no series")
	}
	if err := WritePNG(&buf, "title", Series{Name: "best"}); err == nil {
		t.Error("expected error with empty series")
	}
}

func TestSavePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "convergence.png")
	err := SavePNG(path, "rastrigin / pso", Series{Name: "best", Values: []float64{5, 3, 1}})
	if err != nil {
		t.Fatalf("SavePNG failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("plot file missing: %v", err)
	}
	if info.Size() == 0 {
		t.Fatal("plot file is empty")
	}
}
