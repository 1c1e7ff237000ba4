package fatnav

import (
	"encoding/binary"
	"io"
	"strings"

	"github.com/aligator/fatnav/checkpoint"
	"github.com/go-restruct/restruct"
)

// bootRecordSize covers the BPB and the FAT32 extended boot record.
const bootRecordSize = 90

// BootRecord is the complete FAT32 BPB and extended boot record. The navigator
// itself only needs BootSector; BootRecord feeds volume information and image
// sniffing.
type BootRecord struct {
	JumpBoot            [3]byte
	OEMName             [8]byte
	BytesPerSector      uint16
	SectorsPerCluster   uint8
	ReservedSectorCount uint16
	NumFATs             uint8
	RootEntryCount      uint16
	TotalSectors16      uint16
	Media               uint8
	FATSize16           uint16
	SectorsPerTrack     uint16
	NumberOfHeads       uint16
	HiddenSectors       uint32
	TotalSectors32      uint32
	FATSize32           uint32
	ExtFlags            uint16
	FSVersion           uint16
	RootCluster         uint32
	FSInfo              uint16
	BackupBootSector    uint16
	Reserved            [12]byte
	DriveNumber         uint8
	Reserved1           uint8
	BootSignature       uint8
	VolumeID            uint32
	VolumeLabel         [11]byte
	FileSystemType      [8]byte
}

// ParseBootRecord decodes the first 90 bytes of a boot sector.
func ParseBootRecord(buf []byte) (BootRecord, error) {
	var br BootRecord
	if len(buf) < bootRecordSize {
		return br, checkpoint.Wrap(io.ErrUnexpectedEOF, ErrShortRead)
	}
	if err := restruct.Unpack(buf[:bootRecordSize], binary.LittleEndian, &br); err != nil {
		return br, checkpoint.From(err)
	}
	return br, nil
}

// ReadBootRecord reads and decodes the boot record at offset 0 of r.
func ReadBootRecord(r io.ReaderAt) (BootRecord, error) {
	var buf [bootRecordSize]byte
	if err := readFullAt(r, buf[:], 0); err != nil {
		return BootRecord{}, err
	}
	return ParseBootRecord(buf[:])
}

// Label returns the trimmed volume label of the extended boot record.
func (br BootRecord) Label() string {
	return strings.TrimRight(string(br.VolumeLabel[:]), " \x00")
}

// OEM returns the trimmed OEM name.
func (br BootRecord) OEM() string {
	return strings.TrimRight(string(br.OEMName[:]), " \x00")
}

// FSType returns the informational filesystem type string, usually "FAT32".
func (br BootRecord) FSType() string {
	return strings.TrimRight(string(br.FileSystemType[:]), " \x00")
}

// TotalSectors returns whichever total sector field is in use.
func (br BootRecord) TotalSectors() uint32 {
	if br.TotalSectors16 != 0 {
		return uint32(br.TotalSectors16)
	}
	return br.TotalSectors32
}

// LooksLikeFAT32 is a heuristic telling a FAT32 volume boot record apart from
// a partition table sector, both of which end with 0x55 0xAA.
func (br BootRecord) LooksLikeFAT32() bool {
	// Check for valid jump instructions.
	if !(br.JumpBoot[0] == 0xEB && br.JumpBoot[2] == 0x90) && br.JumpBoot[0] != 0xE9 {
		return false
	}

	switch br.BytesPerSector {
	case 512, 1024, 2048, 4096:
	default:
		return false
	}

	spc := br.SectorsPerCluster
	if spc == 0 || spc&(spc-1) != 0 {
		return false
	}

	return br.ReservedSectorCount != 0 && br.NumFATs != 0 && br.FATSize16 == 0 && br.FATSize32 != 0
}
