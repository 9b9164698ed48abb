//go:build windows

package store

import "golang.org/x/sys/windows"

func statDisk(dir string) (DiskSpace, error) {
	path, err := windows.UTF16PtrFromString(dir)
	if err != nil {
		return DiskSpace{}, err
	}
	var available, total, free uint64
	if err := windows.GetDiskFreeSpaceEx(path, &available, &total, &free); err != nil {
		return DiskSpace{}, err
	}
	return DiskSpace{TotalBytes: total, AvailableBytes: available}, nil
}
