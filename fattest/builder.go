// Package fattest builds small FAT32 images in memory for tests.
package fattest

import (
	"bytes"
	"encoding/binary"
	"sort"
)

// Values of the FAT and of directory records.
const (
	EndOfChain = 0x0FFFFFFF

	AttrReadOnly  byte = 0x01
	AttrHidden    byte = 0x02
	AttrSystem    byte = 0x04
	AttrVolumeID  byte = 0x08
	AttrDirectory byte = 0x10
	AttrArchive   byte = 0x20
	AttrLongName       = AttrReadOnly | AttrHidden | AttrSystem | AttrVolumeID

	recordSize = 32
)

// Builder assembles a FAT32 volume. The zero value is not usable, use
// NewBuilder.
type Builder struct {
	BytesPerSector    uint16
	SectorsPerCluster uint8
	ReservedSectors   uint16
	FATCount          uint8
	FATSizeSectors    uint32
	RootCluster       uint32
	Label             string
	VolumeID          uint32

	fat      map[uint32]uint32
	clusters map[uint32][]byte
}

// NewBuilder returns a builder for a volume with 512 byte sectors and
// clusters, 32 reserved sectors and two FATs of one sector each.
func NewBuilder() *Builder {
	return &Builder{
		BytesPerSector:    512,
		SectorsPerCluster: 1,
		ReservedSectors:   32,
		FATCount:          2,
		FATSizeSectors:    1,
		RootCluster:       2,
		Label:             "NO NAME",
		VolumeID:          0x1234ABCD,
		fat:               map[uint32]uint32{},
		clusters:          map[uint32][]byte{},
	}
}

// ClusterSize returns the cluster size in bytes.
func (b *Builder) ClusterSize() int {
	return int(b.BytesPerSector) * int(b.SectorsPerCluster)
}

// FATOffset returns the byte offset of the first FAT.
func (b *Builder) FATOffset() int64 {
	return int64(b.ReservedSectors) * int64(b.BytesPerSector)
}

// DataOffset returns the byte offset of cluster 2.
func (b *Builder) DataOffset() int64 {
	return b.FATOffset() + int64(b.FATCount)*int64(b.FATSizeSectors)*int64(b.BytesPerSector)
}

// ClusterOffset returns the byte offset of cluster.
func (b *Builder) ClusterOffset(cluster uint32) int64 {
	return b.DataOffset() + int64(cluster-2)*int64(b.ClusterSize())
}

// SetNext sets the raw FAT entry of cluster.
func (b *Builder) SetNext(cluster, next uint32) *Builder {
	b.fat[cluster] = next
	return b
}

// Chain links the clusters in order and ends the chain after the last one.
func (b *Builder) Chain(clusters ...uint32) *Builder {
	for i, c := range clusters {
		if i == len(clusters)-1 {
			b.fat[c] = EndOfChain
		} else {
			b.fat[c] = clusters[i+1]
		}
	}
	return b
}

// SetCluster stores data at the start of cluster. Data longer than a cluster
// is cut.
func (b *Builder) SetCluster(cluster uint32, data []byte) *Builder {
	buf := make([]byte, b.ClusterSize())
	copy(buf, data)
	b.clusters[cluster] = buf
	return b
}

// SetChain links clusters and spreads data over them.
func (b *Builder) SetChain(data []byte, clusters ...uint32) *Builder {
	b.Chain(clusters...)
	size := b.ClusterSize()
	for i, c := range clusters {
		start := i * size
		if start >= len(data) {
			b.SetCluster(c, nil)
			continue
		}
		end := start + size
		if end > len(data) {
			end = len(data)
		}
		b.SetCluster(c, data[start:end])
	}
	return b
}

// SetDir links clusters and writes the directory records over them.
func (b *Builder) SetDir(records []Record, clusters ...uint32) *Builder {
	var buf bytes.Buffer
	for _, r := range records {
		raw := r.Bytes()
		buf.Write(raw[:])
	}
	return b.SetChain(buf.Bytes(), clusters...)
}

func (b *Builder) maxCluster() uint32 {
	highest := b.RootCluster
	for c := range b.clusters {
		if c > highest {
			highest = c
		}
	}
	for c := range b.fat {
		if c > highest {
			highest = c
		}
	}
	return highest
}

// BootSector returns the 512 byte boot sector.
func (b *Builder) BootSector() []byte {
	bs := make([]byte, 512)
	le := binary.LittleEndian

	copy(bs[0:3], []byte{0xEB, 0x58, 0x90})
	copy(bs[3:11], "MSWIN4.1")
	le.PutUint16(bs[11:], b.BytesPerSector)
	bs[13] = b.SectorsPerCluster
	le.PutUint16(bs[14:], b.ReservedSectors)
	bs[16] = b.FATCount
	bs[21] = 0xF8
	le.PutUint16(bs[24:], 32)
	le.PutUint16(bs[26:], 64)
	le.PutUint32(bs[32:], b.totalSectors())
	le.PutUint32(bs[36:], b.FATSizeSectors)
	le.PutUint32(bs[44:], b.RootCluster)
	le.PutUint16(bs[48:], 1)
	le.PutUint16(bs[50:], 6)
	bs[64] = 0x80
	bs[66] = 0x29
	le.PutUint32(bs[67:], b.VolumeID)
	copy(bs[71:82], pad(b.Label, 11))
	copy(bs[82:90], "FAT32   ")
	bs[510] = 0x55
	bs[511] = 0xAA
	return bs
}

func (b *Builder) totalSectors() uint32 {
	dataSectors := uint32(b.maxCluster()-1) * uint32(b.SectorsPerCluster)
	return uint32(b.DataOffset()/int64(b.BytesPerSector)) + dataSectors
}

// Bytes renders the whole volume.
func (b *Builder) Bytes() []byte {
	size := b.ClusterOffset(b.maxCluster() + 1)
	img := make([]byte, size)

	copy(img, b.BootSector())

	fat := make([]byte, int(b.FATSizeSectors)*int(b.BytesPerSector))
	le := binary.LittleEndian
	le.PutUint32(fat[0:], 0x0FFFFFF8)
	le.PutUint32(fat[4:], EndOfChain)

	clusters := make([]uint32, 0, len(b.fat))
	for c := range b.fat {
		clusters = append(clusters, c)
	}
	sort.Slice(clusters, func(i, j int) bool { return clusters[i] < clusters[j] })
	for _, c := range clusters {
		off := int(c) * 4
		if off+4 <= len(fat) {
			le.PutUint32(fat[off:], b.fat[c])
		}
	}

	for i := 0; i < int(b.FATCount); i++ {
		copy(img[b.FATOffset()+int64(i)*int64(len(fat)):], fat)
	}

	for c, data := range b.clusters {
		copy(img[b.ClusterOffset(c):], data)
	}
	return img
}

// Reader renders the volume as an io.ReaderAt.
func (b *Builder) Reader() *bytes.Reader {
	return bytes.NewReader(b.Bytes())
}

func pad(s string, n int) []byte {
	out := bytes.Repeat([]byte{' '}, n)
	copy(out, s)
	return out
}
