package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteOutput(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "photo.png")
	if err := os.WriteFile(input, []byte("png"), 0o644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "out.jpg")

	if err := writeOutput(out, input, []byte("first"), false); err != nil {
		t.Fatalf("first write: %v", err)
	}
	err := writeOutput(out, input, []byte("second"), false)
	if !errors.Is(err, errOutputExists) {
		t.Fatalf("second write without force: %v", err)
	}
	if data, _ := os.ReadFile(out); string(data) != "first" {
		t.Errorf("existing output changed to %q", data)
	}

	if err := writeOutput(out, input, []byte("forced"), true); err != nil {
		t.Fatalf("forced write: %v", err)
	}
	if data, _ := os.ReadFile(out); string(data) != "forced" {
		t.Errorf("forced write left %q", data)
	}

	if err := writeOutput(input, input, []byte("x"), true); err == nil {
		t.Error("expected refusal to overwrite the input")
	}
	if data, _ := os.ReadFile(input); string(data) != "png" {
		t.Errorf("input changed to %q", data)
	}
}
