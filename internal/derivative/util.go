package derivative

import (
	"os"
	"path/filepath"
)

func statSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// dirSize sums the size of every regular file under dir. Used for
// directory-shaped cache entries (HLS segments) where Cache.Touch is
// called once for the whole rendition rather than per segment.
func dirSize(dir string) int64 {
	var total int64
	filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if info, statErr := d.Info(); statErr == nil {
			total += info.Size()
		}
		return nil
	})
	return total
}
