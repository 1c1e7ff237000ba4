package fatnav

import "errors"

// Mount errors. Any of them aborts opening the volume.
var (
	ErrInvalidSignature = errors.New("invalid boot sector signature")
	ErrClusterSize      = errors.New("unsupported cluster size")
)

// I/O errors fail the single operation they occur in.
var (
	ErrShortRead      = errors.New("short read from image")
	ErrInvalidCluster = errors.New("cluster is not addressable")
	ErrBufferTooSmall = errors.New("buffer too small for a cluster")
	ErrOffsetOverflow = errors.New("cluster offset overflows")
	ErrChainLoop      = errors.New("cluster chain does not terminate")
)

// Lookup errors.
var (
	ErrNotFound     = errors.New("no such file or directory")
	ErrNotDirectory = errors.New("not a directory")
)

// These errors may occur while processing a File.
var (
	ErrReadFile = errors.New("could not read file completely")
	ErrSeekFile = errors.New("could not seek inside of the file")
	ErrReadDir  = errors.New("could not read the directory")
)
