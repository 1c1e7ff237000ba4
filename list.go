package fatnav

import (
	"fmt"
	"io"

	"github.com/aligator/fatnav/checkpoint"
)

const (
	branchConnector = "├─ "
	lastConnector   = "└─ "
	folderGlyph     = "📁 "
	documentGlyph   = "📄 "
	ruleLine        = "_______________________________________________________________________________"
)

// listPrinter writes a directory as a tree. It holds one entry back so the
// final entry of the whole directory, not of a cluster, gets lastConnector.
type listPrinter struct {
	w   io.Writer
	err error

	pending    bool
	pendingDir bool
	name       [maxShortNameLen]byte
	nameLen    int
}

func (p *listPrinter) printf(format string, args ...interface{}) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *listPrinter) emit(last bool) {
	if !p.pending {
		return
	}
	connector := branchConnector
	if last {
		connector = lastConnector
	}
	glyph := documentGlyph
	if p.pendingDir {
		glyph = folderGlyph
	}
	p.printf("%s%s%s\n", connector, glyph, p.name[:p.nameLen])
	p.pending = false
}

func (p *listPrinter) add(e *EntryHeader) {
	p.emit(false)
	p.nameLen = shortName(e.Name[:], e.Ext[:], &p.name)
	p.pendingDir = e.IsDir()
	p.pending = true
}

// List writes the directory starting at cluster to w: the title, one line per
// file or directory and a closing rule.
func (fs *Fs) List(w io.Writer, cluster uint32, title string) error {
	return fs.withScratch(func(s *scratch) error {
		return fs.list(s, w, cluster, title)
	})
}

func (fs *Fs) list(s *scratch, w io.Writer, cluster uint32, title string) error {
	p := listPrinter{w: w}
	p.printf("%s\n\n", title)

	_, _, err := forEachEntry(fs, &s.fat, s.cluster[:], cluster, func(e *EntryHeader, _ bool) (struct{}, bool) {
		p.add(e)
		return struct{}{}, p.err != nil
	})
	if err != nil {
		return err
	}

	p.emit(true)
	p.printf("%s\n", ruleLine)
	if p.err != nil {
		return checkpoint.From(p.err)
	}
	return nil
}
