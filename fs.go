package fatnav

import (
	"errors"
	"fmt"
	"io"
	iofs "io/fs"
	"os"
	"sync"
	"syscall"
	"time"

	"github.com/aligator/fatnav/checkpoint"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// scratch holds the fixed size working buffers of one operation.
type scratch struct {
	fat     fatTable
	cluster [MaxClusterSize]byte
}

var scratchPool = sync.Pool{
	New: func() interface{} { return new(scratch) },
}

// Option configures an Fs.
type Option func(fs *Fs)

// WithLogger sets the logger used for mount and lookup diagnostics.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(fs *Fs) {
		if log != nil {
			fs.log = log
		}
	}
}

// Fs is a read-only FAT32 volume.
// All reads go through the io.ReaderAt passed to New and are serialized.
//
// Besides the navigation operations (List, ChangeDirectory, ReadFile) Fs
// implements afero.Fs, so it can be used with afero.Walk, afero.ReadFile and
// afero.NewIOFS.
type Fs struct {
	lock     sync.Mutex
	reader   io.ReaderAt
	boot     BootSector
	record   BootRecord
	geometry Geometry
	log      *zap.SugaredLogger
}

var _ afero.Fs = (*Fs)(nil)

// New opens the FAT32 volume which starts at offset 0 of reader.
func New(reader io.ReaderAt, opts ...Option) (*Fs, error) {
	fs := &Fs{
		reader: reader,
		log:    zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(fs)
	}

	boot, err := ReadBootSector(reader)
	if err != nil {
		return nil, err
	}

	record, err := ReadBootRecord(reader)
	if err != nil {
		return nil, err
	}

	fs.boot = boot
	fs.record = record
	fs.geometry = boot.Geometry()

	fs.log.Infow("mounted FAT32 volume",
		"label", record.Label(),
		"clusterSize", boot.ClusterSize(),
		"rootCluster", boot.RootCluster,
		"fatOffset", fs.geometry.FATRegionOffset,
		"dataOffset", fs.geometry.DataRegionOffset,
	)

	if fs.fatTruncated() {
		fs.log.Warnw("FAT is larger than the load buffer, chains past the loaded part end early",
			"fatBytes", uint64(boot.FATSizeSectors)*uint64(boot.BytesPerSector),
			"loaded", MaxFATSize,
		)
	}

	return fs, nil
}

// BootSector returns the parsed BPB fields.
func (fs *Fs) BootSector() BootSector {
	return fs.boot
}

// Geometry returns the region offsets of the volume.
func (fs *Fs) Geometry() Geometry {
	return fs.geometry
}

// RootCluster returns the first cluster of the root directory.
func (fs *Fs) RootCluster() uint32 {
	return fs.boot.RootCluster
}

// Label returns the volume label from the extended boot record.
func (fs *Fs) Label() string {
	return fs.record.Label()
}

// withScratch runs fn with the image locked, a pooled buffer set and the FAT loaded.
func (fs *Fs) withScratch(fn func(s *scratch) error) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	s := scratchPool.Get().(*scratch)
	defer scratchPool.Put(s)

	if err := loadFAT(fs.reader, fs.geometry.FATRegionOffset, fs.boot.BytesPerSector, fs.boot.FATSizeSectors, &s.fat); err != nil {
		return err
	}

	return fn(s)
}

// IOFS exposes the volume as an io/fs.FS.
func (fs *Fs) IOFS() iofs.FS {
	return afero.NewIOFS(fs)
}

func readOnly(op, name string) error {
	return &os.PathError{Op: op, Path: name, Err: syscall.EROFS}
}

func (fs *Fs) Create(name string) (afero.File, error) {
	return nil, readOnly("create", name)
}

func (fs *Fs) Mkdir(name string, perm os.FileMode) error {
	return readOnly("mkdir", name)
}

func (fs *Fs) MkdirAll(path string, perm os.FileMode) error {
	return readOnly("mkdir", path)
}

// Open resolves name from the root directory. "", "." and "/" open the root.
func (fs *Fs) Open(name string) (afero.File, error) {
	entry, err := fs.Lookup(fs.boot.RootCluster, absolute(name))
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrNotDirectory) {
		return nil, &os.PathError{Op: "open", Path: name, Err: checkpoint.Wrap(err, os.ErrNotExist)}
	}
	if err != nil {
		return nil, &os.PathError{Op: "open", Path: name, Err: err}
	}

	cluster := entry.StartCluster()
	if entry.IsDir() && cluster < firstDataCluster {
		cluster = fs.boot.RootCluster
	}

	return &File{
		fs:           fs,
		path:         name,
		isDirectory:  entry.IsDir(),
		isReadOnly:   entry.Attribute&AttrReadOnly != 0,
		isHidden:     entry.Attribute&AttrHidden != 0,
		isSystem:     entry.Attribute&AttrSystem != 0,
		firstCluster: cluster,
		stat:         entry.FileInfo(),
	}, nil
}

// OpenFile only supports read access.
func (fs *Fs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	if flag&(os.O_WRONLY|os.O_RDWR|os.O_APPEND|os.O_CREATE|os.O_TRUNC) != 0 {
		return nil, readOnly("open", name)
	}
	return fs.Open(name)
}

func (fs *Fs) Remove(name string) error {
	return readOnly("remove", name)
}

func (fs *Fs) RemoveAll(path string) error {
	return readOnly("remove", path)
}

func (fs *Fs) Rename(oldname, newname string) error {
	return readOnly("rename", oldname)
}

func (fs *Fs) Stat(name string) (os.FileInfo, error) {
	f, err := fs.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return f.Stat()
}

func (fs *Fs) Name() string {
	return "fatnav"
}

func (fs *Fs) Chmod(name string, mode os.FileMode) error {
	return readOnly("chmod", name)
}

func (fs *Fs) Chown(name string, uid, gid int) error {
	return readOnly("chown", name)
}

func (fs *Fs) Chtimes(name string, atime time.Time, mtime time.Time) error {
	return readOnly("chtimes", name)
}

// absolute turns afero style names ("", ".", "dir/file") into volume paths.
func absolute(name string) string {
	if name == "" || name == "." {
		return "/"
	}
	if name[0] != '/' {
		return "/" + name
	}
	return name
}

// readDir returns every file and directory record of the directory at cluster
// except "." and "..".
func (fs *Fs) readDir(cluster uint32) ([]EntryHeader, error) {
	var content []EntryHeader

	err := fs.withScratch(func(s *scratch) error {
		_, _, err := forEachEntry(fs, &s.fat, s.cluster[:], cluster, func(e *EntryHeader, _ bool) (struct{}, bool) {
			if matchShortName(e, currentDirName) || matchShortName(e, parentDirName) {
				return struct{}{}, false
			}
			content = append(content, *e)
			return struct{}{}, false
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return content, nil
}

// readFileAt reads up to readSize bytes at offset of the file starting at
// cluster. Reads are cut at fileSize, which is reported as io.EOF. A chain
// that ends before the requested bytes is io.ErrUnexpectedEOF.
func (fs *Fs) readFileAt(cluster uint32, fileSize int64, offset int64, readSize int64) ([]byte, error) {
	if offset < 0 || readSize < 0 {
		return nil, checkpoint.Wrap(fmt.Errorf("%w, offset: %v, size: %v", syscall.EINVAL, offset, readSize), ErrReadFile)
	}
	if offset >= fileSize {
		return nil, io.EOF
	}

	want := readSize
	cut := false
	if want > fileSize-offset {
		want = fileSize - offset
		cut = true
	}
	if want == 0 {
		return nil, nil
	}

	data := make([]byte, 0, want)
	err := fs.withScratch(func(s *scratch) error {
		clusterSize := int64(fs.boot.ClusterSize())
		if clusterSize == 0 || clusterSize > MaxClusterSize {
			return checkpoint.Wrap(fmt.Errorf("cluster size %d", clusterSize), ErrClusterSize)
		}

		current := cluster
		if current < firstDataCluster {
			return checkpoint.Wrap(io.ErrUnexpectedEOF, ErrReadFile)
		}

		for skip := offset / clusterSize; skip > 0; skip-- {
			next := s.fat.next(current)
			if next < firstDataCluster || IsEndOfChain(next) {
				return checkpoint.Wrap(io.ErrUnexpectedEOF, ErrReadFile)
			}
			current = next
		}

		within := offset % clusterSize
		for {
			if err := readCluster(fs.reader, fs.geometry.DataRegionOffset, fs.boot.BytesPerSector, fs.boot.SectorsPerCluster, current, s.cluster[:]); err != nil {
				return err
			}

			chunk := s.cluster[within:clusterSize]
			if missing := want - int64(len(data)); int64(len(chunk)) > missing {
				chunk = chunk[:missing]
			}
			data = append(data, chunk...)
			within = 0

			if int64(len(data)) == want {
				return nil
			}

			next := s.fat.next(current)
			if next < firstDataCluster || IsEndOfChain(next) {
				return checkpoint.Wrap(io.ErrUnexpectedEOF, ErrReadFile)
			}
			current = next
		}
	})
	if err != nil {
		return data, err
	}

	if cut {
		return data, io.EOF
	}
	return data, nil
}
