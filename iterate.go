package fatnav

import (
	"fmt"

	"github.com/aligator/fatnav/checkpoint"
)

// visitFunc is called for every file and directory record of a directory.
// last is true for the final record slot of the current cluster.
// Returning true stops the walk and makes forEachEntry return the result.
type visitFunc[R any] func(entry *EntryHeader, last bool) (R, bool)

// forEachEntry walks the directory starting at start and feeds its records to
// visit. It reports whether visit matched. Reaching the end of the directory
// without a match is not an error.
//
// fat must already be loaded; buf must hold at least one cluster.
func forEachEntry[R any](fs *Fs, fat *fatTable, buf []byte, start uint32, visit visitFunc[R]) (R, bool, error) {
	var zero R

	clusterSize := fs.boot.ClusterSize()
	if clusterSize == 0 || clusterSize > MaxClusterSize {
		return zero, false, checkpoint.Wrap(fmt.Errorf("cluster size %d", clusterSize), ErrClusterSize)
	}
	if start < firstDataCluster {
		return zero, false, checkpoint.Wrap(fmt.Errorf("directory cluster %d", start), ErrInvalidCluster)
	}

	records := clusterSize / DirEntrySize
	var entry EntryHeader

	cluster := start
	for visited := 0; !IsEndOfChain(cluster); visited++ {
		if visited > fat.entries() {
			return zero, false, checkpoint.Wrap(fmt.Errorf("directory at cluster %d", start), ErrChainLoop)
		}

		if err := readCluster(fs.reader, fs.geometry.DataRegionOffset, fs.boot.BytesPerSector, fs.boot.SectorsPerCluster, cluster, buf); err != nil {
			return zero, false, err
		}

		for i := 0; i < records; i++ {
			raw := buf[i*DirEntrySize : (i+1)*DirEntrySize]

			switch classify(raw) {
			case EntryEnd:
				return zero, false, nil
			case EntryDeleted, EntryLongName, EntryVolumeLabel:
				continue
			}

			decodeEntry(raw, &entry)
			if res, ok := visit(&entry, i == records-1); ok {
				return res, true, nil
			}
		}

		next := fat.next(cluster)
		if next == 0 {
			break
		}
		cluster = next
	}

	return zero, false, nil
}
