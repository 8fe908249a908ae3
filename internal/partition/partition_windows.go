//go:build windows

package partition

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"

	"fileshredder_enterprise/internal/model"
)

// Provider enumerates fixed local drives via GetLogicalDrives/GetDriveType,
// skipping removable/network/CD-ROM drives, in the idiom of the teacher's
// syscall-backed disk enumeration.
type Provider struct{}

// New returns the Windows PartitionInfoProvider.
func New() *Provider { return &Provider{} }

// RootStringSize returns the fixed drive-root prefix length.
func (Provider) RootStringSize() int { return RootSize }

// Partitions enumerates every fixed local drive, assigning each a stable
// drive index (its position in the bitmask) and classifying it SSD/HDD via
// IOCTL_STORAGE_QUERY_PROPERTY; a drive whose query fails is treated as HDD
// (IsSSD false).
func (Provider) Partitions() ([]model.PortablePartition, error) {
	mask, err := getLogicalDrives()
	if err != nil {
		return nil, fmt.Errorf("partition: enumerate drives: %w", err)
	}

	var out []model.PortablePartition
	for i := 0; i < 26; i++ {
		if mask&(1<<uint(i)) == 0 {
			continue
		}
		letter := byte('A' + i)
		root := fmt.Sprintf("%c:\\", letter)

		rootPtr, err := windows.UTF16PtrFromString(root)
		if err != nil {
			continue
		}
		driveType := windows.GetDriveType(rootPtr)
		if driveType != windows.DRIVE_FIXED {
			continue
		}

		var fsName [windows.MAX_PATH]uint16
		if err := windows.GetVolumeInformation(rootPtr, nil, 0, nil, nil, nil, &fsName[0], uint32(len(fsName))); err != nil {
			continue
		}

		out = append(out, model.PortablePartition{
			Root:           root,
			FilesystemName: windows.UTF16ToString(fsName[:]),
			DriveIndex:     i,
			IsSSD:          isSolidState(letter),
		})
	}
	return out, nil
}

func getLogicalDrives() (uint32, error) {
	kernel32 := windows.NewLazySystemDLL("kernel32.dll")
	proc := kernel32.NewProc("GetLogicalDrives")
	ret, _, err := proc.Call()
	if ret == 0 {
		return 0, err
	}
	return uint32(ret), nil
}

const (
	ioctlStorageQueryProperty = 0x002D1400
	propertyStandardQuery     = 0
	storageDeviceSeekPenalty  = 7 // StorageDeviceSeekPenaltyProperty
)

type storagePropertyQuery struct {
	PropertyID           uint32
	QueryType            uint32
	AdditionalParameters [1]byte
}

type deviceSeekPenaltyDescriptor struct {
	Version            uint32
	Size               uint32
	IncursSeekPenalty  byte
	_                  [3]byte
}

// isSolidState opens the physical volume behind letter and queries the
// seek-penalty device property: SSDs report no seek penalty.
func isSolidState(letter byte) bool {
	path := fmt.Sprintf("\\\\.\\%c:", letter)
	pathPtr, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return false
	}
	handle, err := windows.CreateFile(pathPtr, 0,
		windows.FILE_SHARE_READ|windows.FILE_SHARE_WRITE,
		nil, windows.OPEN_EXISTING, 0, 0)
	if err != nil {
		return false
	}
	defer windows.CloseHandle(handle)

	query := storagePropertyQuery{PropertyID: storageDeviceSeekPenalty, QueryType: propertyStandardQuery}
	var desc deviceSeekPenaltyDescriptor
	var bytesReturned uint32

	err = windows.DeviceIoControl(handle, ioctlStorageQueryProperty,
		(*byte)(unsafe.Pointer(&query)), uint32(unsafe.Sizeof(query)),
		(*byte)(unsafe.Pointer(&desc)), uint32(unsafe.Sizeof(desc)),
		&bytesReturned, nil)
	if err != nil {
		return false
	}
	return desc.IncursSeekPenalty == 0
}
