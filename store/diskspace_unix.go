//go:build !windows

package store

import "golang.org/x/sys/unix"

func statDisk(dir string) (DiskSpace, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(dir, &stat); err != nil {
		return DiskSpace{}, err
	}
	return DiskSpace{
		TotalBytes:     uint64(stat.Blocks) * uint64(stat.Bsize),
		AvailableBytes: uint64(stat.Bavail) * uint64(stat.Bsize),
	}, nil
}
