// Package obfuscate implements the name obfuscator: a multi-step rename of
// a filesystem node into a trash location, followed by unlink, so residual
// directory-entry metadata does not leak the original name.
package obfuscate

import (
	"os"
	"path/filepath"
	"strings"
)

// pattern drives the three-step rename: each character, repeated to the
// original name's length, becomes the next name in the same directory.
const pattern = "abc"

// trashStem is the fixed GUID-like name the final rename lands on before
// deletion, matching the platform trash area's well-known slot.
const trashStem = "892F575F-DE37-4A0F-8A3E-427618C7D64C.tmp"

// recycleBinDir is the platform trash directory name under the volume root.
const recycleBinDir = "$Recycle.Bin"

// CheatFileNode renames path through "aaa...", "bbb...", "ccc..." (each
// repeated to the original name's length), then into
// <root>/$Recycle.Bin/892F575F-DE37-4A0F-8A3E-427618C7D64C.tmp, then
// deletes it. Any rename failure aborts the sequence and returns false.
func CheatFileNode(path string) bool {
	dir := filepath.Dir(path)
	nameLen := len([]rune(filepath.Base(path)))

	current := path
	for _, c := range pattern {
		newName := strings.Repeat(string(c), nameLen)
		newPath := filepath.Join(dir, newName)
		if err := os.Rename(current, newPath); err != nil {
			return false
		}
		current = newPath
	}

	root := filepath.VolumeName(current) + string(filepath.Separator)
	if filepath.VolumeName(current) == "" {
		// No drive letter (non-Windows build/test environment): fall back
		// to a trash directory alongside the file rather than the
		// filesystem root.
		root = dir
	}
	recycleBin := filepath.Join(root, recycleBinDir)
	if err := os.MkdirAll(recycleBin, 0o700); err != nil {
		return false
	}
	finalPath := filepath.Join(recycleBin, trashStem)

	if err := os.Rename(current, finalPath); err != nil {
		return false
	}
	if err := os.Remove(finalPath); err != nil {
		return false
	}
	return true
}
