package fattest

import "encoding/binary"

// Record is one 32 byte directory record.
type Record struct {
	Name      string
	Ext       string
	Attr      byte
	Cluster   uint32
	Size      uint32
	WriteTime uint16
	WriteDate uint16

	// Deleted replaces the first name byte with 0xE5.
	Deleted bool
}

// File returns a regular file record.
func File(name, ext string, cluster, size uint32) Record {
	return Record{Name: name, Ext: ext, Attr: AttrArchive, Cluster: cluster, Size: size}
}

// Dir returns a directory record.
func Dir(name string, cluster uint32) Record {
	return Record{Name: name, Attr: AttrDirectory, Cluster: cluster}
}

// Dot returns the "." and ".." records of a subdirectory. parent 0 is the root.
func Dot(self, parent uint32) []Record {
	return []Record{Dir(".", self), Dir("..", parent)}
}

// VolumeLabel returns a volume label record.
func VolumeLabel(label string) Record {
	name, ext := label, ""
	if len(label) > 8 {
		name, ext = label[:8], label[8:]
	}
	return Record{Name: name, Ext: ext, Attr: AttrVolumeID}
}

// LongName returns a long file name fragment record.
func LongName() Record {
	return Record{Name: "\x41h\x00e\x00l\x00", Ext: "l\x00o", Attr: AttrLongName}
}

// Bytes encodes the record.
func (r Record) Bytes() [recordSize]byte {
	var raw [recordSize]byte
	copy(raw[0:8], pad(r.Name, 8))
	copy(raw[8:11], pad(r.Ext, 3))
	if r.Deleted {
		raw[0] = 0xE5
	}
	raw[11] = r.Attr

	le := binary.LittleEndian
	le.PutUint16(raw[20:], uint16(r.Cluster>>16))
	le.PutUint16(raw[22:], r.WriteTime)
	le.PutUint16(raw[24:], r.WriteDate)
	le.PutUint16(raw[26:], uint16(r.Cluster))
	le.PutUint32(raw[28:], r.Size)
	return raw
}
