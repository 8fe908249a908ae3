package hashkey

import "testing"

func TestXXHashIsStableAndDistinguishesPaths(t *testing.T) {
	h := XXHash{}

	a1 := h.Hash(`C:\USERS\TEST\A.TXT`)
	a2 := h.Hash(`C:\USERS\TEST\A.TXT`)
	b := h.Hash(`C:\USERS\TEST\B.TXT`)

	if a1 != a2 {
		t.Fatalf("Hash() not stable: %q != %q", a1, a2)
	}
	if a1 == b {
		t.Fatalf("Hash() collided for distinct paths: %q", a1)
	}
	if len(a1) != 16 {
		t.Fatalf("Hash() length = %d, want 16 (hex uint64)", len(a1))
	}
}
