package indexer

import (
	"errors"
	"os"
	"syscall"
	"time"
)

// creationTime approximates a file's creation time from its inode
// status-change time. Linux stat(2) has no true birth time; ctime is
// the closest available signal and is what the teacher's cache
// invalidation already reads off syscall.Stat_t.
func creationTime(path string, info os.FileInfo) (time.Time, error) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return time.Time{}, errors.New("indexer: no syscall.Stat_t for " + path)
	}
	return time.Unix(stat.Ctim.Sec, stat.Ctim.Nsec).UTC(), nil
}
