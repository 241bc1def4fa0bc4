package hasher

import (
	"bytes"
	"testing"
)

func TestSum_StableAndStreaming(t *testing.T) {
	data := bytes.Repeat([]byte("newsimg"), 1000)
	a := Sum(data)
	if len(a) != 16 {
		t.Fatalf("digest length: %d", len(a))
	}
	if a != Sum(data) {
		t.Error("digest not stable")
	}
	b, err := SumReader(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Errorf("streaming digest differs: %s vs %s", a, b)
	}
	if Sum([]byte("other")) == a {
		t.Error("different input, same digest")
	}
}
