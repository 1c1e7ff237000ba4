package fatnav

import (
	"fmt"
	"io"
	"math"

	"github.com/aligator/fatnav/checkpoint"
)

// clusterOffset returns the absolute byte offset of cluster in the data region.
func clusterOffset(dataRegionOffset int64, clusterSize int, cluster uint32) (int64, error) {
	if cluster < firstDataCluster {
		return 0, checkpoint.Wrap(fmt.Errorf("cluster %d", cluster), ErrInvalidCluster)
	}

	index := uint64(cluster - firstDataCluster)
	size := uint64(clusterSize)
	if dataRegionOffset < 0 || (size != 0 && index > (math.MaxInt64-uint64(dataRegionOffset))/size) {
		return 0, checkpoint.Wrap(fmt.Errorf("cluster %d of %d bytes after %d", cluster, clusterSize, dataRegionOffset), ErrOffsetOverflow)
	}

	return dataRegionOffset + int64(index*size), nil
}

// readCluster reads exactly one cluster into the start of out.
func readCluster(r io.ReaderAt, dataRegionOffset int64, bytesPerSector uint16, sectorsPerCluster uint8, cluster uint32, out []byte) error {
	if cluster < firstDataCluster {
		return checkpoint.Wrap(fmt.Errorf("cluster %d", cluster), ErrInvalidCluster)
	}

	clusterSize := int(bytesPerSector) * int(sectorsPerCluster)
	if clusterSize > len(out) {
		return checkpoint.Wrap(fmt.Errorf("cluster size %d, buffer %d", clusterSize, len(out)), ErrBufferTooSmall)
	}

	off, err := clusterOffset(dataRegionOffset, clusterSize, cluster)
	if err != nil {
		return err
	}

	return checkpoint.From(readFullAt(r, out[:clusterSize], off))
}
