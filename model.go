// File model contains the on-disk directory entry layout of FAT32.

package fatnav

// DirEntrySize is the size of one directory record.
const DirEntrySize = 32

// Directory entry attribute bits.
const (
	AttrReadOnly  byte = 0x01
	AttrHidden    byte = 0x02
	AttrSystem    byte = 0x04
	AttrVolumeID  byte = 0x08
	AttrDirectory byte = 0x10
	AttrArchive   byte = 0x20
	AttrLongName       = AttrReadOnly | AttrHidden | AttrSystem | AttrVolumeID
)

// First byte markers of a directory record.
const (
	markerEndOfDirectory byte = 0x00
	markerDeleted        byte = 0xE5
)

// Record field offsets.
const (
	offEntryName      = 0
	offEntryExt       = 8
	offEntryAttribute = 11
	offEntryCreateTm  = 14
	offEntryCreateDt  = 16
	offEntryAccessDt  = 18
	offEntryClusterHi = 20
	offEntryWriteTime = 22
	offEntryWriteDate = 24
	offEntryClusterLo = 26
	offEntryFileSize  = 28
)

// EntryHeader is one decoded 8.3 directory record.
type EntryHeader struct {
	Name           [8]byte
	Ext            [3]byte
	Attribute      byte
	CreateTime     uint16
	CreateDate     uint16
	LastAccessDate uint16
	FirstClusterHI uint16
	WriteTime      uint16
	WriteDate      uint16
	FirstClusterLO uint16
	FileSize       uint32
}

// decodeEntry fills h from a 32 byte record.
func decodeEntry(raw []byte, h *EntryHeader) {
	copy(h.Name[:], raw[offEntryName:offEntryName+8])
	copy(h.Ext[:], raw[offEntryExt:offEntryExt+3])
	h.Attribute = raw[offEntryAttribute]
	h.CreateTime = le16(raw[offEntryCreateTm:])
	h.CreateDate = le16(raw[offEntryCreateDt:])
	h.LastAccessDate = le16(raw[offEntryAccessDt:])
	h.FirstClusterHI = le16(raw[offEntryClusterHi:])
	h.WriteTime = le16(raw[offEntryWriteTime:])
	h.WriteDate = le16(raw[offEntryWriteDate:])
	h.FirstClusterLO = le16(raw[offEntryClusterLo:])
	h.FileSize = le32(raw[offEntryFileSize:])
}

// StartCluster joins the high and low cluster words.
func (h *EntryHeader) StartCluster() uint32 {
	return uint32(h.FirstClusterHI)<<16 | uint32(h.FirstClusterLO)
}

// IsDir reports the directory attribute.
func (h *EntryHeader) IsDir() bool {
	return h.Attribute&AttrDirectory != 0
}
