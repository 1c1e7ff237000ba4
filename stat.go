package fatnav

import (
	"os"
	"time"
)

// FileInfo describes the entry as an os.FileInfo. The name is the lowercase
// short name.
func (h *EntryHeader) FileInfo() os.FileInfo {
	return entryHeaderFileInfo{*h}
}

type entryHeaderFileInfo struct {
	entry EntryHeader
}

func (e entryHeaderFileInfo) Name() string {
	return e.entry.ShortName()
}

func (e entryHeaderFileInfo) Size() int64 {
	if e.IsDir() {
		return 0
	}
	return int64(e.entry.FileSize)
}

// Mode is always read-only.
func (e entryHeaderFileInfo) Mode() os.FileMode {
	if e.IsDir() {
		return os.ModeDir | 0555
	}
	return 0444
}

// ModTime joins the write date and time. Entries with an invalid write date
// have the zero time.
func (e entryHeaderFileInfo) ModTime() time.Time {
	writeDate := ParseDate(e.entry.WriteDate)
	if writeDate.IsZero() {
		return time.Time{}
	}

	writeTime := ParseTime(e.entry.WriteTime)
	return time.Date(writeDate.Year(), writeDate.Month(), writeDate.Day(), writeTime.Hour(), writeTime.Minute(), writeTime.Second(), 0, time.UTC)
}

func (e entryHeaderFileInfo) IsDir() bool {
	return e.entry.IsDir()
}

// Sys returns the EntryHeader.
func (e entryHeaderFileInfo) Sys() interface{} {
	return e.entry
}
