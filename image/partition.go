package image

import (
	"fmt"

	diskfs "github.com/diskfs/go-diskfs"
	"github.com/diskfs/go-diskfs/partition"
	"github.com/diskfs/go-diskfs/partition/gpt"
	"github.com/diskfs/go-diskfs/partition/mbr"
)

// Partition is one used entry of an MBR or GPT partition table.
type Partition struct {
	// Index is the 1-based position in the table.
	Index int
	Start int64
	Size  int64
	Type  string
	// FAT marks partition types that normally hold a FAT32 volume.
	FAT bool
}

// readPartitions reads the partition table of the host file at path.
func readPartitions(path string) ([]Partition, error) {
	disk, err := diskfs.Open(path, diskfs.WithOpenMode(diskfs.ReadOnly))
	if err != nil {
		return nil, fmt.Errorf("open disk image: %w", err)
	}
	defer disk.Close()

	pt, err := disk.GetPartitionTable()
	if err != nil {
		return nil, fmt.Errorf("%w: get partition table: %v", ErrNoVolume, err)
	}
	return partitions(pt, disk.LogicalBlocksize), nil
}

func partitions(pt partition.Table, blockSize int64) []Partition {
	var parts []Partition

	switch t := pt.(type) {
	case *gpt.Table:
		for i, p := range t.Partitions {
			if p.Start == 0 && p.End == 0 {
				continue
			}
			parts = append(parts, Partition{
				Index: i + 1,
				Start: int64(p.Start) * blockSize,
				Size:  int64(p.End-p.Start+1) * blockSize,
				Type:  string(p.Type),
				FAT:   p.Type == gpt.EFISystemPartition || p.Type == gpt.MicrosoftBasicData,
			})
		}
	case *mbr.Table:
		for i, p := range t.Partitions {
			if p.Type == mbr.Empty || p.Size == 0 {
				continue
			}
			parts = append(parts, Partition{
				Index: i + 1,
				Start: int64(p.Start) * blockSize,
				Size:  int64(p.Size) * blockSize,
				Type:  fmt.Sprintf("0x%02x", byte(p.Type)),
				FAT:   p.Type == mbr.Fat32LBA || p.Type == mbr.Fat32CHS,
			})
		}
	}

	return parts
}

// choosePartition returns the partition with the given index, or for index 0
// the first FAT partition whose boot sector passes check.
func choosePartition(parts []Partition, index int, check func(Partition) bool) (Partition, error) {
	if index > 0 {
		for _, p := range parts {
			if p.Index == index {
				return p, nil
			}
		}
		return Partition{}, fmt.Errorf("%w: partition %d does not exist", ErrNoVolume, index)
	}

	for _, p := range parts {
		if p.FAT && check(p) {
			return p, nil
		}
	}
	return Partition{}, fmt.Errorf("%w: no FAT32 partition among %d partitions", ErrNoVolume, len(parts))
}
