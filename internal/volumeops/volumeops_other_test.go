//go:build !windows

package volumeops

import "testing"

func TestNonWindowsCleanNTFSJournalIsAlwaysFalse(t *testing.T) {
	v := New()
	if v.CleanNTFSJournal(`C:\`) {
		t.Fatalf("CleanNTFSJournal() = true on non-Windows, want false")
	}
}
