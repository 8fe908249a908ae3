//go:build windows

package volumeops

import (
	"fmt"
	"unsafe"

	winio "github.com/Microsoft/go-winio"
	"golang.org/x/sys/windows"
)

// privilegesEnabled tracks whether the process has already raised its
// volume-management privileges, so CleanNTFSJournal does not repeat a
// successful elevation; a failed attempt is retried on the next call.
var privilegesEnabled bool

// VolumeOps implements capability.VolumeOps against a real NTFS volume via
// FSCTL_CREATE_USN_JOURNAL / FSCTL_QUERY_USN_JOURNAL / FSCTL_DELETE_USN_JOURNAL.
type VolumeOps struct{}

// New returns the Windows VolumeOps implementation.
func New() *VolumeOps { return &VolumeOps{} }

// ensurePrivileges attempts to enable SeManageVolumePrivilege, falling
// back to SeBackupPrivilege, on the process token. The FSCTL_*_USN_JOURNAL
// calls below routinely fail for a non-elevated service account without
// one of these; the caller ignores a failure here and attempts the journal
// clean regardless.
func ensurePrivileges() error {
	if privilegesEnabled {
		return nil
	}
	err := winio.EnableProcessPrivileges([]string{"SeManageVolumePrivilege"})
	if err != nil {
		err = winio.EnableProcessPrivileges([]string{winio.SeBackupPrivilege})
	}
	if err == nil {
		privilegesEnabled = true
	}
	return err
}

const (
	fsctlCreateUSNJournal = 0x000900E7
	fsctlQueryUSNJournal  = 0x000900F4
	fsctlDeleteUSNJournal = 0x000900F8
	usnDeleteFlagDelete   = 0x00000001
	usnDeleteFlagNotify   = 0x00000002
)

type createUSNJournalData struct {
	MaximumSize     uint64
	AllocationDelta uint64
}

type usnJournalData struct {
	UsnJournalID    uint64
	FirstUsn        int64
	NextUsn         int64
	LowestValidUsn  int64
	MaxUsn          int64
	MaximumSize     uint64
	AllocationDelta uint64
}

type deleteUSNJournalData struct {
	UsnJournalID uint64
	DeleteFlags  uint32
	_            uint32 // alignment padding
}

// CleanNTFSJournal opens \\.\<L>: , verifies the volume is NTFS, then
// issues the create/query/delete IOCTL sequence. Returns false on any
// failure.
func (VolumeOps) CleanNTFSJournal(root string) bool {
	if len(root) == 0 {
		return false
	}
	_ = ensurePrivileges() // best-effort; DeviceIoControl below fails cleanly if this did not take
	letter := root[0]

	volumeRoot := fmt.Sprintf("%c:\\", letter)
	volumePath := fmt.Sprintf("\\\\.\\%c:", letter)

	var fsName [windows.MAX_PATH]uint16
	rootPtr, err := windows.UTF16PtrFromString(volumeRoot)
	if err != nil {
		return false
	}
	if err := windows.GetVolumeInformation(rootPtr, nil, 0, nil, nil, nil, &fsName[0], uint32(len(fsName))); err != nil {
		return false
	}
	if windows.UTF16ToString(fsName[:]) != "NTFS" {
		return false
	}

	pathPtr, err := windows.UTF16PtrFromString(volumePath)
	if err != nil {
		return false
	}
	handle, err := windows.CreateFile(pathPtr,
		windows.GENERIC_READ|windows.GENERIC_WRITE,
		windows.FILE_SHARE_READ|windows.FILE_SHARE_WRITE,
		nil, windows.OPEN_EXISTING, windows.FILE_ATTRIBUTE_READONLY, 0)
	if err != nil {
		return false
	}
	defer windows.CloseHandle(handle)

	var bytesReturned uint32

	create := createUSNJournalData{}
	if err := windows.DeviceIoControl(handle, fsctlCreateUSNJournal,
		(*byte)(unsafe.Pointer(&create)), uint32(unsafe.Sizeof(create)), nil, 0, &bytesReturned, nil); err != nil {
		return false
	}

	var info usnJournalData
	if err := windows.DeviceIoControl(handle, fsctlQueryUSNJournal,
		nil, 0, (*byte)(unsafe.Pointer(&info)), uint32(unsafe.Sizeof(info)), &bytesReturned, nil); err != nil {
		return false
	}

	del := deleteUSNJournalData{
		UsnJournalID: info.UsnJournalID,
		DeleteFlags:  usnDeleteFlagDelete | usnDeleteFlagNotify,
	}
	overlapped := new(windows.Overlapped)
	event, err := windows.CreateEvent(nil, 1, 0, nil)
	if err == nil {
		overlapped.HEvent = event
		defer windows.CloseHandle(event)
	}

	err = windows.DeviceIoControl(handle, fsctlDeleteUSNJournal,
		(*byte)(unsafe.Pointer(&del)), uint32(unsafe.Sizeof(del)), nil, 0, &bytesReturned, overlapped)
	if err != nil && err != windows.ERROR_IO_PENDING {
		return false
	}
	if event != 0 {
		windows.WaitForSingleObject(event, windows.INFINITE)
	}
	return true
}
