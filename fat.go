package fatnav

import (
	"io"

	"github.com/aligator/fatnav/checkpoint"
)

// MaxFATSize is the number of FAT bytes loaded per operation. Larger tables are
// loaded partially; chains reaching past the loaded prefix end there.
const MaxFATSize = 64 * 1024

const (
	fatEntrySize      = 4
	fatEntryMask      = 0x0FFFFFFF
	fatEndOfChainMin  = 0x0FFFFFF8
	fatBadCluster     = 0x0FFFFFF7
	fatReservedMin    = 0x0FFFFFF0
	firstDataCluster  = 2
	fatOutOfTableNext = 0x0FFFFFFF
)

// fatEntry is a single raw FAT32 table entry. Only the lower 28 bits are used.
type fatEntry uint32

// Value returns the entry without the reserved top nibble.
func (e fatEntry) Value() uint32 {
	return uint32(e) & fatEntryMask
}

// IsFree reports an unallocated cluster.
func (e fatEntry) IsFree() bool {
	return e.Value() == 0
}

// IsBad reports a cluster marked as defective.
func (e fatEntry) IsBad() bool {
	return e.Value() == fatBadCluster
}

// IsReserved reports values which are neither a next cluster nor end of chain.
func (e fatEntry) IsReserved() bool {
	v := e.Value()
	return v == 1 || (v >= fatReservedMin && v < fatBadCluster)
}

// IsEndOfChain reports the last cluster of a chain.
func (e fatEntry) IsEndOfChain() bool {
	return IsEndOfChain(e.Value())
}

// IsEndOfChain reports whether a masked FAT value marks the end of a chain.
func IsEndOfChain(cluster uint32) bool {
	return cluster >= fatEndOfChainMin
}

// fatEntryAt returns the masked entry for cluster. Clusters outside of table
// read as end of chain.
func fatEntryAt(table []byte, cluster uint32) uint32 {
	off := uint64(cluster) * fatEntrySize
	if off+fatEntrySize > uint64(len(table)) {
		return fatOutOfTableNext
	}
	return fatEntry(le32(table[off:])).Value()
}

// fatTable is a fixed size snapshot of the first FAT copy.
type fatTable struct {
	buf       [MaxFATSize]byte
	n         int
	truncated bool
}

func (t *fatTable) bytes() []byte {
	return t.buf[:t.n]
}

// next returns the cluster following cluster in its chain.
func (t *fatTable) next(cluster uint32) uint32 {
	return fatEntryAt(t.bytes(), cluster)
}

// entries returns how many FAT entries the snapshot holds. No valid chain can be
// longer than that without visiting a cluster twice.
func (t *fatTable) entries() int {
	return t.n / fatEntrySize
}

// loadFAT reads min(MaxFATSize, fatSizeSectors*bytesPerSector) bytes of the FAT.
func loadFAT(r io.ReaderAt, fatRegionOffset int64, bytesPerSector uint16, fatSizeSectors uint32, t *fatTable) error {
	fatBytes := uint64(fatSizeSectors) * uint64(bytesPerSector)

	size := uint64(len(t.buf))
	t.truncated = fatBytes > size
	if fatBytes < size {
		size = fatBytes
	}

	t.n = 0
	if err := readFullAt(r, t.buf[:size], fatRegionOffset); err != nil {
		return checkpoint.From(err)
	}
	t.n = int(size)
	return nil
}
