package fatnav

import (
	"fmt"
	"io"

	"github.com/aligator/fatnav/checkpoint"
)

const (
	currentDirName = "."
	parentDirName  = ".."
)

// pathWalker splits a slash separated path into components. Repeated slashes
// are collapsed. A component is final only if nothing, not even a slash,
// follows it.
type pathWalker struct {
	path string
	pos  int
}

func (w *pathWalker) next() (component string, final bool, ok bool) {
	for w.pos < len(w.path) && w.path[w.pos] == '/' {
		w.pos++
	}
	if w.pos >= len(w.path) {
		return "", false, false
	}

	start := w.pos
	for w.pos < len(w.path) && w.path[w.pos] != '/' {
		w.pos++
	}
	return w.path[start:w.pos], w.pos == len(w.path), true
}

// startCluster picks the root for absolute paths and current otherwise.
func (fs *Fs) startCluster(current uint32, path string) uint32 {
	if len(path) > 0 && path[0] == '/' {
		return fs.boot.RootCluster
	}
	return current
}

// entryFilter restricts which records may match a component.
type entryFilter int

const (
	onlyDirectories entryFilter = iota
	onlyFiles
	anyEntry
)

func (f entryFilter) accepts(e *EntryHeader) bool {
	switch f {
	case onlyDirectories:
		return e.IsDir()
	case onlyFiles:
		return !e.IsDir()
	}
	return true
}

// findChild searches dir for a record named name.
func (fs *Fs) findChild(s *scratch, dir uint32, name string, filter entryFilter) (EntryHeader, error) {
	wrongKind := false
	entry, ok, err := forEachEntry(fs, &s.fat, s.cluster[:], dir, func(e *EntryHeader, _ bool) (EntryHeader, bool) {
		if !matchShortName(e, name) {
			return EntryHeader{}, false
		}
		if !filter.accepts(e) {
			wrongKind = true
			return EntryHeader{}, false
		}
		return *e, true
	})
	if err != nil {
		return EntryHeader{}, err
	}
	if !ok {
		if wrongKind && filter == onlyDirectories {
			return EntryHeader{}, checkpoint.Wrap(fmt.Errorf("%q in cluster %d", name, dir), ErrNotDirectory)
		}
		return EntryHeader{}, checkpoint.Wrap(fmt.Errorf("%q in cluster %d", name, dir), ErrNotFound)
	}

	fs.log.Debugw("resolved path component", "component", name, "dir", dir, "cluster", entry.StartCluster())
	return entry, nil
}

// parentOf follows the ".." record of dir. A parent cluster below 2 is the root.
func (fs *Fs) parentOf(s *scratch, dir uint32) (uint32, error) {
	entry, err := fs.findChild(s, dir, parentDirName, anyEntry)
	if err != nil {
		return 0, err
	}

	parent := entry.StartCluster()
	if parent < firstDataCluster {
		parent = fs.boot.RootCluster
	}
	return parent, nil
}

// resolveDir walks path as a chain of directories.
func (fs *Fs) resolveDir(s *scratch, current uint32, path string) (uint32, error) {
	cluster := fs.startCluster(current, path)
	w := pathWalker{path: path}

	for {
		component, _, ok := w.next()
		if !ok {
			return cluster, nil
		}

		switch component {
		case currentDirName:
			continue
		case parentDirName:
			parent, err := fs.parentOf(s, cluster)
			if err != nil {
				return 0, err
			}
			cluster = parent
		default:
			entry, err := fs.findChild(s, cluster, component, onlyDirectories)
			if err != nil {
				return 0, err
			}
			cluster = entry.StartCluster()
		}
	}
}

// ChangeDirectory resolves path against the directory at current and returns
// the cluster of the target directory. Only directories match; "." stays and
// ".." follows the parent record. An empty path returns current unchanged.
//
// On success the target directory is listed to w, titled with path. On failure
// the caller must keep its current directory. A component naming a file fails
// with ErrNotDirectory, a missing one with ErrNotFound.
func (fs *Fs) ChangeDirectory(w io.Writer, current uint32, path string) (uint32, error) {
	if path == "" {
		return current, nil
	}

	var target uint32
	err := fs.withScratch(func(s *scratch) error {
		cluster, err := fs.resolveDir(s, current, path)
		if err != nil {
			return err
		}

		if err := fs.list(s, w, cluster, path); err != nil {
			return err
		}
		target = cluster
		return nil
	})
	if err != nil {
		return 0, err
	}
	return target, nil
}

// ReadFile resolves path against the directory at current and writes the file
// content to w. Every component but the last must be a directory, the last one
// must not be.
//
// If the cluster chain of the file ends before its size is reached, ReadFile
// writes what the chain holds and still succeeds.
func (fs *Fs) ReadFile(w io.Writer, current uint32, path string) error {
	if path == "" {
		return checkpoint.Wrap(fmt.Errorf("empty path"), ErrNotFound)
	}

	return fs.withScratch(func(s *scratch) error {
		cluster := fs.startCluster(current, path)
		walker := pathWalker{path: path}

		for {
			component, final, ok := walker.next()
			if !ok {
				// Ran out of components without reaching a file.
				return checkpoint.Wrap(fmt.Errorf("%q is a directory", path), ErrNotFound)
			}

			switch {
			case component == currentDirName:
				continue
			case component == parentDirName:
				parent, err := fs.parentOf(s, cluster)
				if err != nil {
					return err
				}
				cluster = parent
			case !final:
				entry, err := fs.findChild(s, cluster, component, onlyDirectories)
				if err != nil {
					return err
				}
				cluster = entry.StartCluster()
			default:
				entry, err := fs.findChild(s, cluster, component, onlyFiles)
				if err != nil {
					return err
				}
				return fs.streamFile(s, w, entry.StartCluster(), entry.FileSize)
			}
		}
	})
}

// streamFile writes size bytes of the chain starting at start to w.
func (fs *Fs) streamFile(s *scratch, w io.Writer, start uint32, size uint32) error {
	if start < firstDataCluster {
		// Empty files have no cluster.
		return nil
	}

	clusterSize := fs.boot.ClusterSize()
	if clusterSize == 0 || clusterSize > MaxClusterSize {
		return checkpoint.Wrap(fmt.Errorf("cluster size %d", clusterSize), ErrClusterSize)
	}

	remaining := uint64(size)
	cluster := start
	for visited := 0; remaining > 0 && !IsEndOfChain(cluster); visited++ {
		if visited > s.fat.entries() {
			return checkpoint.Wrap(fmt.Errorf("file at cluster %d", start), ErrChainLoop)
		}

		if err := readCluster(fs.reader, fs.geometry.DataRegionOffset, fs.boot.BytesPerSector, fs.boot.SectorsPerCluster, cluster, s.cluster[:]); err != nil {
			return err
		}

		n := uint64(clusterSize)
		if remaining < n {
			n = remaining
		}
		if _, err := w.Write(s.cluster[:n]); err != nil {
			return checkpoint.From(err)
		}
		remaining -= n

		if remaining == 0 {
			break
		}

		next := s.fat.next(cluster)
		if next == 0 || IsEndOfChain(next) {
			break
		}
		cluster = next
	}

	if remaining > 0 {
		fs.log.Warnw("cluster chain ended before the file size was reached",
			"startCluster", start,
			"fileSize", size,
			"missing", remaining,
		)
	}
	return nil
}

// Lookup resolves path against the directory at current and returns the entry
// of its last component, which may be a file or a directory. Paths that end at
// a directory without naming it ("/", "a/..") yield a synthetic directory
// entry pointing at the resolved cluster.
func (fs *Fs) Lookup(current uint32, path string) (EntryHeader, error) {
	var result EntryHeader

	err := fs.withScratch(func(s *scratch) error {
		cluster := fs.startCluster(current, path)
		entry := directoryEntry("/", cluster)
		walker := pathWalker{path: path}

		for {
			component, final, ok := walker.next()
			if !ok {
				result = entry
				return nil
			}

			switch component {
			case currentDirName:
				continue
			case parentDirName:
				parent, err := fs.parentOf(s, cluster)
				if err != nil {
					return err
				}
				cluster = parent
				entry = directoryEntry(parentDirName, cluster)
			default:
				filter := onlyDirectories
				if final {
					filter = anyEntry
				}
				found, err := fs.findChild(s, cluster, component, filter)
				if err != nil {
					return err
				}
				entry = found
				cluster = found.StartCluster()
			}
		}
	})
	if err != nil {
		return EntryHeader{}, err
	}
	return result, nil
}

// directoryEntry builds an in-memory directory record.
func directoryEntry(name string, cluster uint32) EntryHeader {
	e := EntryHeader{
		Attribute:      AttrDirectory,
		FirstClusterHI: uint16(cluster >> 16),
		FirstClusterLO: uint16(cluster),
	}
	for i := range e.Name {
		e.Name[i] = ' '
	}
	for i := range e.Ext {
		e.Ext[i] = ' '
	}
	copy(e.Name[:], name)
	return e
}
