// Package volumeops implements the VolumeOps capability: NTFS USN journal
// purging on a drive root.
package volumeops
