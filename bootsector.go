package fatnav

import (
	"fmt"
	"io"
	"math"

	"github.com/aligator/fatnav/checkpoint"
)

const (
	// BootSectorSize is the size of the FAT32 boot sector.
	BootSectorSize = 512

	// MaxClusterSize is the largest cluster (bytes per sector * sectors per cluster)
	// this package reads. Volumes with bigger clusters are rejected at mount time.
	MaxClusterSize = 64 * 1024
)

// BPB field offsets inside the boot sector.
const (
	offBytesPerSector    = 11
	offSectorsPerCluster = 13
	offReservedSectors   = 14
	offFATCount          = 16
	offFATSize32         = 36
	offRootCluster       = 44
	offSignature         = 510
)

// BootSector holds the BIOS Parameter Block fields needed to navigate the volume.
// It is parsed once when the volume is opened and never changes afterwards.
type BootSector struct {
	BytesPerSector       uint16
	SectorsPerCluster    uint8
	ReservedSectorsCount uint16
	FATCount             uint8
	FATSizeSectors       uint32
	RootCluster          uint32
}

// Geometry contains the absolute byte offsets of the FAT and the data region.
type Geometry struct {
	FATRegionOffset  int64
	DataRegionOffset int64
}

// VerifySignature reports whether the boot sector ends with 0x55 0xAA.
func VerifySignature(buf *[BootSectorSize]byte) bool {
	return buf[offSignature] == 0x55 && buf[offSignature+1] == 0xAA
}

// ParseBootSector extracts the BPB fields at their fixed offsets.
// Call VerifySignature first; an unverified buffer just yields meaningless values.
func ParseBootSector(buf *[BootSectorSize]byte) BootSector {
	return BootSector{
		BytesPerSector:       le16(buf[offBytesPerSector:]),
		SectorsPerCluster:    buf[offSectorsPerCluster],
		ReservedSectorsCount: le16(buf[offReservedSectors:]),
		FATCount:             buf[offFATCount],
		FATSizeSectors:       le32(buf[offFATSize32:]),
		RootCluster:          le32(buf[offRootCluster:]),
	}
}

// ReadBootSector reads, verifies and parses the boot sector at offset 0 of r.
func ReadBootSector(r io.ReaderAt) (BootSector, error) {
	var buf [BootSectorSize]byte
	if err := readFullAt(r, buf[:], 0); err != nil {
		return BootSector{}, err
	}

	if !VerifySignature(&buf) {
		return BootSector{}, checkpoint.Wrap(fmt.Errorf("found 0x%02X 0x%02X", buf[offSignature], buf[offSignature+1]), ErrInvalidSignature)
	}

	bs := ParseBootSector(&buf)
	if err := bs.Validate(); err != nil {
		return BootSector{}, err
	}
	return bs, nil
}

// ClusterSize returns the size of one cluster in bytes.
func (bs BootSector) ClusterSize() int {
	return int(bs.BytesPerSector) * int(bs.SectorsPerCluster)
}

// Validate rejects geometries this package cannot navigate.
func (bs BootSector) Validate() error {
	size := bs.ClusterSize()
	if size == 0 || size > MaxClusterSize {
		return checkpoint.Wrap(fmt.Errorf("%d bytes per sector * %d sectors per cluster", bs.BytesPerSector, bs.SectorsPerCluster), ErrClusterSize)
	}
	return nil
}

// Geometry derives the region offsets. The multiplication is done in 64 bit,
// the largest possible result (255 FATs of 2^32 sectors of 64 KiB) still fits.
func (bs BootSector) Geometry() Geometry {
	fatOffset := uint64(bs.ReservedSectorsCount) * uint64(bs.BytesPerSector)
	dataOffset := fatOffset + uint64(bs.FATCount)*uint64(bs.FATSizeSectors)*uint64(bs.BytesPerSector)

	return Geometry{
		FATRegionOffset:  clampOffset(fatOffset),
		DataRegionOffset: clampOffset(dataOffset),
	}
}

func clampOffset(v uint64) int64 {
	if v > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(v)
}

// readFullAt reads exactly len(p) bytes at off. Anything less is ErrShortRead.
func readFullAt(r io.ReaderAt, p []byte, off int64) error {
	n, err := r.ReadAt(p, off)
	if n == len(p) {
		// io.ReaderAt may report io.EOF together with a complete read.
		return nil
	}
	if err == nil || err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return checkpoint.Wrap(fmt.Errorf("read %d of %d bytes at %d: %w", n, len(p), off, err), ErrShortRead)
}
