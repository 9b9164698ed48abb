package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// DiskSpace describes the filesystem holding a working directory.
type DiskSpace struct {
	TotalBytes     uint64
	AvailableBytes uint64
}

// CheckDiskSpace returns the space available to unprivileged writers in
// dir, creating dir when it does not exist.
func CheckDiskSpace(dir string) (DiskSpace, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return DiskSpace{}, fmt.Errorf("resolve working dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return DiskSpace{}, fmt.Errorf("create working dir: %w", err)
	}

	space, err := statDisk(abs)
	if err != nil {
		return DiskSpace{}, fmt.Errorf("stat filesystem: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"function":        "CheckDiskSpace",
		"dir":             abs,
		"total_bytes":     space.TotalBytes,
		"available_bytes": space.AvailableBytes,
	}).Debug("Working directory disk space")

	return space, nil
}
