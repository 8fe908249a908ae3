//go:build !windows

package partition

import "testing"

func TestNonWindowsProviderReportsNoPartitions(t *testing.T) {
	p := New()
	parts, err := p.Partitions()
	if err != nil {
		t.Fatalf("Partitions() error = %v", err)
	}
	if len(parts) != 0 {
		t.Fatalf("Partitions() = %v, want empty on non-Windows", parts)
	}
	if p.RootStringSize() != RootSize {
		t.Fatalf("RootStringSize() = %d, want %d", p.RootStringSize(), RootSize)
	}
}
