// Package capability declares the narrow interfaces the shredding engine
// consumes from its external collaborators: logging, persistence, volume
// operations and partition enumeration. The core never depends on a
// concrete implementation of any of these — only on these contracts.
package capability

import "fileshredder_enterprise/internal/model"

// Logger is the structured event sink the core emits through. Fields are
// passed as alternating key/value pairs, in the teacher's logging idiom.
type Logger interface {
	Log(level, message string, fields ...interface{})
}

// ProgressCallback receives progress notifications from the entropy
// classifier: Init once with the total byte count, Progress at each
// reporting boundary, and Cleanup once the result has been stored by the
// coordinator (not by the classifier itself).
type ProgressCallback interface {
	Init(totalBytes int64)
	Progress(bytesSoFar int64)
	Cleanup()
}

// WorkListStore is the persistence capability backing the work list: the
// four logical operations of spec plus drop-table and user-row deletion.
type WorkListStore interface {
	ReadAll() ([]model.WorkRecord, error)
	Insert(key model.FileKey, path string, flags model.FileFlags) error
	UpdateEntropy(key model.FileKey, entropy float64) error
	Delete(key model.FileKey) error
	DropTable() error
	DeleteUserRows() error
}

// VolumeOps is the raw volume-handle/IOCTL capability used to purge the
// NTFS USN journal of a drive root after a shred completes.
type VolumeOps interface {
	CleanNTFSJournal(root string) bool
}

// PartitionInfoProvider enumerates the fixed local drives the engine may
// manage, along with their filesystem name and SSD/HDD classification.
type PartitionInfoProvider interface {
	Partitions() ([]model.PortablePartition, error)
	RootStringSize() int
}
