package model

import "testing"

func TestFileFlagsBitsDoNotInterfere(t *testing.T) {
	for _, systemAdded := range []bool{true, false} {
		for _, isFile := range []bool{true, false} {
			f := FileFlags(0).WithSystemAdded(systemAdded).WithIsFile(isFile)
			if f.SystemAdded() != systemAdded {
				t.Fatalf("SystemAdded()=%v, want %v (flags=%v)", f.SystemAdded(), systemAdded, f)
			}
			if f.IsFile() != isFile {
				t.Fatalf("IsFile()=%v, want %v (flags=%v)", f.IsFile(), isFile, f)
			}
		}
	}
}

func TestCanonicalPathUppercases(t *testing.T) {
	got := CanonicalPath(`c:\Users\test\File.txt`)
	want := `C:\USERS\TEST\FILE.TXT`
	if got != want {
		t.Fatalf("CanonicalPath() = %q, want %q", got, want)
	}
}

func TestClassificationString(t *testing.T) {
	cases := map[Classification]string{
		Unknown:   "Unknown",
		Plain:     "Plain",
		Binary:    "Binary",
		Encrypted: "Encrypted",
	}
	for c, want := range cases {
		if got := c.String(); got != want {
			t.Errorf("Classification(%d).String() = %q, want %q", c, got, want)
		}
	}
}
