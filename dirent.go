package fatnav

// EntryKind classifies a raw directory record.
type EntryKind int

const (
	EntryEnd EntryKind = iota
	EntryDeleted
	EntryLongName
	EntryVolumeLabel
	EntryDirectory
	EntryFile
)

func (k EntryKind) String() string {
	switch k {
	case EntryEnd:
		return "end"
	case EntryDeleted:
		return "deleted"
	case EntryLongName:
		return "long name"
	case EntryVolumeLabel:
		return "volume label"
	case EntryDirectory:
		return "directory"
	case EntryFile:
		return "file"
	}
	return "unknown"
}

// classify applies the record rules in priority order.
func classify(raw []byte) EntryKind {
	switch raw[0] {
	case markerEndOfDirectory:
		return EntryEnd
	case markerDeleted:
		return EntryDeleted
	}

	attr := raw[offEntryAttribute]
	switch {
	case attr&AttrLongName == AttrLongName:
		return EntryLongName
	case attr&AttrVolumeID != 0:
		return EntryVolumeLabel
	case attr&AttrDirectory != 0:
		return EntryDirectory
	}
	return EntryFile
}

// maxShortNameLen is 8 name bytes, the dot and 3 extension bytes.
const maxShortNameLen = 12

// shortName writes the printable lowercase 8.3 name into out and returns its length.
func shortName(name, ext []byte, out *[maxShortNameLen]byte) int {
	n := 0
	for _, c := range name[:trimSpaceRight(name)] {
		out[n] = lowerASCII(c)
		n++
	}

	extLen := trimSpaceRight(ext)
	if extLen == 0 {
		return n
	}

	out[n] = '.'
	n++
	for _, c := range ext[:extLen] {
		out[n] = lowerASCII(c)
		n++
	}
	return n
}

func trimSpaceRight(b []byte) int {
	end := len(b)
	for end > 0 && b[end-1] == ' ' {
		end--
	}
	return end
}

func lowerASCII(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}

// ShortName returns the lowercase name.ext form of the entry.
func (h *EntryHeader) ShortName() string {
	var out [maxShortNameLen]byte
	n := shortName(h.Name[:], h.Ext[:], &out)
	return string(out[:n])
}

// matchShortName compares the decoded name with a path component. The comparison
// is ASCII case-insensitive and length exact.
func matchShortName(h *EntryHeader, component string) bool {
	if len(component) > maxShortNameLen {
		return false
	}

	var out [maxShortNameLen]byte
	n := shortName(h.Name[:], h.Ext[:], &out)
	if n != len(component) {
		return false
	}

	for i := 0; i < n; i++ {
		if out[i] != lowerASCII(component[i]) {
			return false
		}
	}
	return true
}
