package fatnav

import (
	"bytes"
	"errors"
	"io"
	iofs "io/fs"
	"os"
	"reflect"
	"sort"
	"syscall"
	"testing"
	"time"

	"github.com/aligator/fatnav/fattest"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		image   func() []byte
		wantErr error
	}{
		{
			name:  "sample volume",
			image: func() []byte { return fattest.Sample().Bytes() },
		},
		{
			name: "no signature",
			image: func() []byte {
				img := fattest.Sample().Bytes()
				img[510] = 0
				return img
			},
			wantErr: ErrInvalidSignature,
		},
		{
			name:    "empty image",
			image:   func() []byte { return nil },
			wantErr: ErrShortRead,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs, err := New(bytes.NewReader(tt.image()))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if err == nil && fs.RootCluster() != fattest.SampleRootCluster {
				t.Errorf("Fs.RootCluster() = %v, want %v", fs.RootCluster(), fattest.SampleRootCluster)
			}
		})
	}
}

func TestNew_largeFATIsLogged(t *testing.T) {
	b := fattest.Sample()
	b.FATSizeSectors = 200

	core, logs := observer.New(zapcore.InfoLevel)
	fs, err := New(b.Reader(), WithLogger(zap.New(core).Sugar()))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if n := logs.FilterMessage("mounted FAT32 volume").Len(); n != 1 {
		t.Errorf("got %d mount messages, want 1", n)
	}
	if n := logs.FilterLevelExact(zapcore.WarnLevel).Len(); n != 1 {
		t.Errorf("got %d warnings, want 1", n)
	}
	if !fs.Info().FATTruncated {
		t.Errorf("Fs.Info().FATTruncated = false, want true")
	}

	// Chains inside of the loaded part still work.
	var out bytes.Buffer
	if err := fs.ReadFile(&out, fs.RootCluster(), "big.bin"); err != nil {
		t.Fatalf("Fs.ReadFile() error = %v", err)
	}
	if !bytes.Equal(out.Bytes(), fattest.SampleBig()) {
		t.Errorf("Fs.ReadFile() returned wrong content")
	}
}

func TestFs_Info(t *testing.T) {
	fs := mountSample(t)

	want := Info{
		Label:             fattest.SampleLabel,
		OEMName:           "MSWIN4.1",
		FileSystemType:    "FAT32",
		VolumeID:          0x1234ABCD,
		Media:             0xF8,
		BytesPerSector:    512,
		SectorsPerCluster: 1,
		ClusterSize:       512,
		ReservedSectors:   32,
		FATCount:          2,
		FATSizeSectors:    1,
		TotalSectors:      34 + 12,
		RootCluster:       2,
		FATRegionOffset:   16384,
		DataRegionOffset:  17408,
	}
	if got := fs.Info(); got != want {
		t.Errorf("Fs.Info() = %+v, want %+v", got, want)
	}
	if fs.Label() != fattest.SampleLabel {
		t.Errorf("Fs.Label() = %q", fs.Label())
	}
}

func TestFs_readFileAt(t *testing.T) {
	big := fattest.SampleBig()

	tests := []struct {
		name     string
		cluster  uint32
		size     int64
		offset   int64
		readSize int64
		want     []byte
		wantErr  error
	}{
		{name: "first bytes", cluster: fattest.SampleBigCluster, size: fattest.SampleBigSize, offset: 0, readSize: 10, want: big[:10]},
		{name: "across a cluster boundary", cluster: fattest.SampleBigCluster, size: fattest.SampleBigSize, offset: 500, readSize: 100, want: big[500:600]},
		{name: "starting in a later cluster", cluster: fattest.SampleBigCluster, size: fattest.SampleBigSize, offset: 1030, readSize: 100, want: big[1030:1130]},
		{name: "cut at the file size", cluster: fattest.SampleBigCluster, size: fattest.SampleBigSize, offset: 1100, readSize: 200, want: big[1100:], wantErr: io.EOF},
		{name: "at the end", cluster: fattest.SampleBigCluster, size: fattest.SampleBigSize, offset: fattest.SampleBigSize, readSize: 1, want: nil, wantErr: io.EOF},
		{name: "nothing requested", cluster: fattest.SampleBigCluster, size: fattest.SampleBigSize, offset: 10, readSize: 0, want: nil},
		{name: "negative offset", cluster: fattest.SampleBigCluster, size: fattest.SampleBigSize, offset: -1, readSize: 1, wantErr: syscall.EINVAL},
		{name: "chain shorter than the size", cluster: fattest.SampleShortCluster, size: fattest.SampleShortSize, offset: 0, readSize: 1000, want: fattest.SampleShort(), wantErr: io.ErrUnexpectedEOF},
		{name: "offset behind the chain", cluster: fattest.SampleShortCluster, size: fattest.SampleShortSize, offset: 600, readSize: 10, want: nil, wantErr: io.ErrUnexpectedEOF},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := mountSample(t)

			got, err := fs.readFileAt(tt.cluster, tt.size, tt.offset, tt.readSize)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Fs.readFileAt() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr == io.ErrUnexpectedEOF && !errors.Is(err, ErrReadFile) {
				t.Errorf("Fs.readFileAt() error = %v, want ErrReadFile", err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("Fs.readFileAt() = %d bytes, want %d bytes", len(got), len(tt.want))
			}
		})
	}
}

func TestFs_readDir(t *testing.T) {
	fs := mountSample(t)

	entries, err := fs.readDir(fattest.SampleDocsCluster)
	if err != nil {
		t.Fatalf("Fs.readDir() error = %v", err)
	}

	var names []string
	for _, e := range entries {
		names = append(names, e.ShortName())
	}
	if want := []string{"notes.txt", "sub"}; !reflect.DeepEqual(names, want) {
		t.Errorf("Fs.readDir() = %v, want %v", names, want)
	}
}

func TestFs_Open(t *testing.T) {
	tests := []struct {
		name        string
		path        string
		wantDir     bool
		wantCluster uint32
		wantErr     error
	}{
		{name: "root", path: "/", wantDir: true, wantCluster: fattest.SampleRootCluster},
		{name: "empty name", path: "", wantDir: true, wantCluster: fattest.SampleRootCluster},
		{name: "dot", path: ".", wantDir: true, wantCluster: fattest.SampleRootCluster},
		{name: "relative directory", path: "docs", wantDir: true, wantCluster: fattest.SampleDocsCluster},
		{name: "parent of a first level directory", path: "/docs/..", wantDir: true, wantCluster: fattest.SampleRootCluster},
		{name: "file", path: "/docs/sub/deep.txt", wantCluster: fattest.SampleDeepCluster},
		{name: "missing", path: "/nope", wantErr: os.ErrNotExist},
		{name: "file as directory", path: "/readme.txt/x", wantErr: os.ErrNotExist},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := mountSample(t)

			f, err := fs.Open(tt.path)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Fs.Open() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if err != nil {
				var pathErr *os.PathError
				if !errors.As(err, &pathErr) || pathErr.Path != tt.path {
					t.Errorf("Fs.Open() error = %v, want a PathError for %q", err, tt.path)
				}
				return
			}
			defer f.Close()

			file := f.(*File)
			if file.isDirectory != tt.wantDir {
				t.Errorf("File.isDirectory = %v, want %v", file.isDirectory, tt.wantDir)
			}
			if file.firstCluster != tt.wantCluster {
				t.Errorf("File.firstCluster = %v, want %v", file.firstCluster, tt.wantCluster)
			}
		})
	}
}

func TestFs_readOnly(t *testing.T) {
	fs := mountSample(t)

	tests := []struct {
		name string
		call func() error
	}{
		{name: "Create", call: func() error { _, err := fs.Create("/new.txt"); return err }},
		{name: "Mkdir", call: func() error { return fs.Mkdir("/new", 0755) }},
		{name: "MkdirAll", call: func() error { return fs.MkdirAll("/new/deeper", 0755) }},
		{name: "Remove", call: func() error { return fs.Remove("/readme.txt") }},
		{name: "RemoveAll", call: func() error { return fs.RemoveAll("/docs") }},
		{name: "Rename", call: func() error { return fs.Rename("/readme.txt", "/other.txt") }},
		{name: "Chmod", call: func() error { return fs.Chmod("/readme.txt", 0644) }},
		{name: "Chown", call: func() error { return fs.Chown("/readme.txt", 1, 1) }},
		{name: "Chtimes", call: func() error { return fs.Chtimes("/readme.txt", time.Now(), time.Now()) }},
		{name: "OpenFile for writing", call: func() error { _, err := fs.OpenFile("/readme.txt", os.O_RDWR, 0); return err }},
		{name: "OpenFile with create", call: func() error { _, err := fs.OpenFile("/x", os.O_CREATE|os.O_WRONLY, 0644); return err }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); !errors.Is(err, syscall.EROFS) {
				t.Errorf("Fs.%s() error = %v, want EROFS", tt.name, err)
			}
		})
	}

	f, err := fs.OpenFile("/readme.txt", os.O_RDONLY, 0)
	if err != nil {
		t.Fatalf("Fs.OpenFile(O_RDONLY) error = %v", err)
	}
	f.Close()
}

func TestFs_afero(t *testing.T) {
	fs := mountSample(t)

	t.Run("ReadFile", func(t *testing.T) {
		got, err := afero.ReadFile(fs, "/docs/notes.txt")
		if err != nil {
			t.Fatalf("afero.ReadFile() error = %v", err)
		}
		if string(got) != fattest.SampleNotes {
			t.Errorf("afero.ReadFile() = %q, want %q", got, fattest.SampleNotes)
		}
	})

	t.Run("ReadFile over several clusters", func(t *testing.T) {
		got, err := afero.ReadFile(fs, "big.bin")
		if err != nil {
			t.Fatalf("afero.ReadFile() error = %v", err)
		}
		if !bytes.Equal(got, fattest.SampleBig()) {
			t.Errorf("afero.ReadFile() returned wrong content")
		}
	})

	t.Run("ReadFile with a short chain fails", func(t *testing.T) {
		_, err := afero.ReadFile(fs, "short.bin")
		if !errors.Is(err, io.ErrUnexpectedEOF) {
			t.Errorf("afero.ReadFile() error = %v, want io.ErrUnexpectedEOF", err)
		}
	})

	t.Run("Stat", func(t *testing.T) {
		info, err := fs.Stat("/README.TXT")
		if err != nil {
			t.Fatalf("Fs.Stat() error = %v", err)
		}
		if info.Name() != "readme.txt" || info.Size() != int64(len(fattest.SampleReadme)) || info.IsDir() {
			t.Errorf("Fs.Stat() = %s %d %v", info.Name(), info.Size(), info.IsDir())
		}
		if want := time.Date(2020, 12, 26, 20, 30, 32, 0, time.UTC); !info.ModTime().Equal(want) {
			t.Errorf("Fs.Stat().ModTime() = %v, want %v", info.ModTime(), want)
		}
		if info.Mode() != 0444 {
			t.Errorf("Fs.Stat().Mode() = %v, want 0444", info.Mode())
		}
	})

	t.Run("Walk", func(t *testing.T) {
		var paths []string
		err := afero.Walk(fs, "/", func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			paths = append(paths, path)
			return nil
		})
		if err != nil {
			t.Fatalf("afero.Walk() error = %v", err)
		}

		want := []string{
			"/",
			"/big.bin",
			"/docs",
			"/docs/notes.txt",
			"/docs/sub",
			"/docs/sub/deep.txt",
			"/empty.txt",
			"/readme.txt",
			"/short.bin",
		}
		if !reflect.DeepEqual(paths, want) {
			t.Errorf("afero.Walk() = %v, want %v", paths, want)
		}
	})

	t.Run("IOFS", func(t *testing.T) {
		got, err := iofs.ReadFile(fs.IOFS(), "docs/sub/deep.txt")
		if err != nil {
			t.Fatalf("fs.ReadFile() error = %v", err)
		}
		if string(got) != fattest.SampleDeep {
			t.Errorf("fs.ReadFile() = %q, want %q", got, fattest.SampleDeep)
		}

		entries, err := iofs.ReadDir(fs.IOFS(), ".")
		if err != nil {
			t.Fatalf("fs.ReadDir() error = %v", err)
		}
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		if !sort.StringsAreSorted(names) || len(names) != 5 {
			t.Errorf("fs.ReadDir() = %v", names)
		}
	})
}
