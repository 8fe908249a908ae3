package partition

import "testing"

func TestRootSizeMatchesDriveLetterPrefixLength(t *testing.T) {
	if RootSize != len(`C:\`) {
		t.Fatalf("RootSize = %d, want %d (len of \"C:\\\\\")", RootSize, len(`C:\`))
	}
}
