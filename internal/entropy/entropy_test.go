package entropy

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"fileshredder_enterprise/internal/model"
)

func writeTemp(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample.bin")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}

func TestFileEntropySingleRepeatedByte(t *testing.T) {
	data := make([]byte, 4096)
	for i := range data {
		data[i] = 0x41
	}
	path := writeTemp(t, data)

	c := New(&Interrupt{}, nil)
	got := c.FileEntropy(path)
	if got != 0 {
		t.Fatalf("FileEntropy() = %v, want 0", got)
	}
}

func TestFileEntropyUniformRandomNearEight(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	data := make([]byte, 1<<20)
	rng.Read(data)
	path := writeTemp(t, data)

	c := New(&Interrupt{}, nil)
	got := c.FileEntropy(path)
	if got < 7.9 || got > 8.0 {
		t.Fatalf("FileEntropy() = %v, want within [7.9, 8.0]", got)
	}
}

func TestFileEntropyBounded(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	data := make([]byte, 8192)
	rng.Read(data)
	path := writeTemp(t, data)

	c := New(&Interrupt{}, nil)
	got := c.FileEntropy(path)
	if got < 0 || got > 8 {
		t.Fatalf("FileEntropy() = %v, want within [0, 8]", got)
	}
}

func TestFileEntropyInterrupted(t *testing.T) {
	data := make([]byte, 1<<20)
	path := writeTemp(t, data)

	interrupt := &Interrupt{}
	interrupt.Set()
	c := New(interrupt, nil)
	got := c.FileEntropy(path)
	if got != model.UnknownEntropy {
		t.Fatalf("FileEntropy() = %v, want UnknownEntropy", got)
	}
}

func TestEstimate(t *testing.T) {
	const size = int64(1 << 10) // epsilon(size) = 1e-3 for size < 1MiB
	eps := epsilon(size)

	cases := []struct {
		name    string
		entropy float64
		want    model.Classification
	}{
		{"encrypted", 8.0 - eps/2, model.Encrypted},
		{"plain", 5.0, model.Plain},
		{"binary", 7.0, model.Binary},
		{"unknown", model.UnknownEntropy, model.Unknown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Estimate(tc.entropy, size); got != tc.want {
				t.Errorf("Estimate(%v, %d) = %v, want %v", tc.entropy, size, got, tc.want)
			}
		})
	}
}

func TestMinCompressedSize(t *testing.T) {
	got := MinCompressedSize(4.0, 1000)
	want := int64(500)
	if got != want {
		t.Fatalf("MinCompressedSize() = %d, want %d", got, want)
	}
}
