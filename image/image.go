// Package image opens disk images on the host and locates the FAT32 volume
// inside them.
package image

import (
	"errors"
	"fmt"
	"io"

	"github.com/aligator/fatnav"
	"github.com/aligator/fatnav/logger"
	"github.com/spf13/afero"
)

var (
	// ErrNoVolume is returned when no FAT32 volume can be found in the image.
	ErrNoVolume = errors.New("no FAT32 volume found")
	// ErrTooLarge is returned when a compressed image unpacks to more than
	// Options.MaxDecompressedSize bytes.
	ErrTooLarge = errors.New("decompressed image exceeds the size limit")
)

// Options control how an image is opened.
type Options struct {
	// Partition selects a partition by its 1-based table index. 0 picks the
	// first FAT32 partition.
	Partition int
	// Offset is the byte offset of the volume. A positive value skips all
	// detection.
	Offset int64
	// MaxDecompressedSize bounds compressed images. 0 means no limit.
	MaxDecompressedSize int64
	// TempDir receives unpacked images. Empty means the system default.
	TempDir string
}

// Image is a read-only view of the FAT32 volume inside an image file.
type Image struct {
	fs      afero.Fs
	file    afero.File
	temp    string
	section *io.SectionReader
	offset  int64
}

var _ io.ReaderAt = (*Image)(nil)

// Open opens the image at path on fs. Compressed images are unpacked into a
// temporary file on the same fs first.
func Open(fs afero.Fs, path string, opts Options) (*Image, error) {
	log := logger.Logger()

	if opts.Offset < 0 {
		return nil, fmt.Errorf("invalid volume offset %d", opts.Offset)
	}
	if opts.Partition < 0 {
		return nil, fmt.Errorf("invalid partition index %d", opts.Partition)
	}

	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image file: %w", err)
	}

	img := &Image{fs: fs, file: f}
	hostPath := path
	if codec := codecFor(path); codec != nil {
		log.Infof("Decompressing %s image %s", codec.name, path)
		tmp, err := unpack(fs, f, codec, opts)
		_ = f.Close()
		if err != nil {
			return nil, err
		}
		img.file = tmp
		img.temp = tmp.Name()
		hostPath = tmp.Name()
	}

	fi, err := img.file.Stat()
	if err != nil {
		_ = img.Close()
		return nil, fmt.Errorf("stat image file: %w", err)
	}

	r := newReaderAt(img.file)
	offset, size, err := locate(r, fi.Size(), fs, hostPath, opts)
	if err != nil {
		_ = img.Close()
		return nil, err
	}
	log.Infof("FAT32 volume of %d bytes at offset %d in %s", size, offset, path)

	img.offset = offset
	img.section = io.NewSectionReader(r, offset, size)
	return img, nil
}

// ReadAt reads from the volume. Offset 0 is the volume's boot sector.
func (img *Image) ReadAt(p []byte, off int64) (int, error) {
	return img.section.ReadAt(p, off)
}

// Size is the size of the volume in bytes.
func (img *Image) Size() int64 {
	return img.section.Size()
}

// Offset is the position of the volume inside the image file.
func (img *Image) Offset() int64 {
	return img.offset
}

// Close closes the image and removes an unpacked temporary copy.
func (img *Image) Close() error {
	if img.file == nil {
		return nil
	}
	err := img.file.Close()
	img.file = nil
	if img.temp != "" {
		if rmErr := img.fs.Remove(img.temp); rmErr != nil && err == nil {
			err = rmErr
		}
		img.temp = ""
	}
	return err
}

// locate finds the volume inside an image of the given size and returns its
// offset and length.
func locate(r io.ReaderAt, size int64, fs afero.Fs, hostPath string, opts Options) (int64, int64, error) {
	log := logger.Logger()

	if opts.Offset > 0 {
		if opts.Offset >= size {
			return 0, 0, fmt.Errorf("volume offset %d is beyond the image size %d", opts.Offset, size)
		}
		return opts.Offset, size - opts.Offset, nil
	}

	if opts.Partition == 0 && isFAT32(r, 0) {
		log.Debugf("Image starts with a FAT32 boot sector")
		return 0, size, nil
	}

	if _, ok := fs.(*afero.OsFs); !ok {
		return 0, 0, fmt.Errorf("%w: partition tables can only be read from host files", ErrNoVolume)
	}

	parts, err := readPartitions(hostPath)
	if err != nil {
		return 0, 0, err
	}
	p, err := choosePartition(parts, opts.Partition, func(p Partition) bool { return isFAT32(r, p.Start) })
	if err != nil {
		return 0, 0, err
	}
	log.Debugf("Using partition %d (%s) at offset %d", p.Index, p.Type, p.Start)

	if p.Start >= size {
		return 0, 0, fmt.Errorf("%w: partition %d starts beyond the image end", ErrNoVolume, p.Index)
	}
	length := p.Size
	if p.Start+length > size {
		length = size - p.Start
	}
	return p.Start, length, nil
}

func isFAT32(r io.ReaderAt, offset int64) bool {
	buf := make([]byte, fatnav.BootSectorSize)
	if _, err := r.ReadAt(buf, offset); err != nil {
		return false
	}
	if buf[510] != 0x55 || buf[511] != 0xAA {
		return false
	}
	br, err := fatnav.ParseBootRecord(buf)
	return err == nil && br.LooksLikeFAT32()
}
