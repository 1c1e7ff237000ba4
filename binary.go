package fatnav

import "encoding/binary"

// FAT32 stores every multi-byte field little endian.

func le16(b []byte) uint16 {
	return binary.LittleEndian.Uint16(b)
}

func le32(b []byte) uint32 {
	return binary.LittleEndian.Uint32(b)
}
