package fatnav

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/aligator/fatnav/fattest"
)

func bootSectorOf(b *fattest.Builder) *[BootSectorSize]byte {
	var buf [BootSectorSize]byte
	copy(buf[:], b.BootSector())
	return &buf
}

func TestVerifySignature(t *testing.T) {
	tests := []struct {
		name   string
		modify func(buf *[BootSectorSize]byte)
		want   bool
	}{
		{
			name:   "valid",
			modify: func(buf *[BootSectorSize]byte) {},
			want:   true,
		},
		{
			name:   "swapped bytes",
			modify: func(buf *[BootSectorSize]byte) { buf[510], buf[511] = 0xAA, 0x55 },
			want:   false,
		},
		{
			name:   "zeroed",
			modify: func(buf *[BootSectorSize]byte) { buf[510], buf[511] = 0, 0 },
			want:   false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := bootSectorOf(fattest.NewBuilder())
			tt.modify(buf)
			if got := VerifySignature(buf); got != tt.want {
				t.Errorf("VerifySignature() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseBootSector(t *testing.T) {
	b := fattest.NewBuilder()
	b.BytesPerSector = 4096
	b.SectorsPerCluster = 8
	b.ReservedSectors = 38
	b.FATCount = 2
	b.FATSizeSectors = 0x12345
	b.RootCluster = 0x01020304

	want := BootSector{
		BytesPerSector:       4096,
		SectorsPerCluster:    8,
		ReservedSectorsCount: 38,
		FATCount:             2,
		FATSizeSectors:       0x12345,
		RootCluster:          0x01020304,
	}
	if got := ParseBootSector(bootSectorOf(b)); got != want {
		t.Errorf("ParseBootSector() = %+v, want %+v", got, want)
	}
}

func TestReadBootSector(t *testing.T) {
	tests := []struct {
		name    string
		image   func() []byte
		want    BootSector
		wantErr error
	}{
		{
			name:  "sample volume",
			image: func() []byte { return fattest.Sample().Bytes() },
			want: BootSector{
				BytesPerSector:       512,
				SectorsPerCluster:    1,
				ReservedSectorsCount: 32,
				FATCount:             2,
				FATSizeSectors:       1,
				RootCluster:          2,
			},
		},
		{
			name: "invalid signature",
			image: func() []byte {
				img := fattest.Sample().Bytes()
				img[511] = 0
				return img
			},
			wantErr: ErrInvalidSignature,
		},
		{
			name: "zero sectors per cluster",
			image: func() []byte {
				b := fattest.Sample()
				b.SectorsPerCluster = 0
				return b.BootSector()
			},
			wantErr: ErrClusterSize,
		},
		{
			name: "cluster larger than 64 KiB",
			image: func() []byte {
				b := fattest.NewBuilder()
				b.BytesPerSector = 4096
				b.SectorsPerCluster = 32
				return b.BootSector()
			},
			wantErr: ErrClusterSize,
		},
		{
			name:    "image shorter than a sector",
			image:   func() []byte { return fattest.Sample().Bytes()[:100] },
			wantErr: ErrShortRead,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadBootSector(bytes.NewReader(tt.image()))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ReadBootSector() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if got != tt.want {
				t.Errorf("ReadBootSector() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestBootSector_Geometry(t *testing.T) {
	tests := []struct {
		name string
		bs   BootSector
		want Geometry
	}{
		{
			name: "sample volume",
			bs:   BootSector{BytesPerSector: 512, SectorsPerCluster: 1, ReservedSectorsCount: 32, FATCount: 2, FATSizeSectors: 1},
			want: Geometry{FATRegionOffset: 16384, DataRegionOffset: 17408},
		},
		{
			name: "values above 32 bit",
			bs:   BootSector{BytesPerSector: 4096, ReservedSectorsCount: 0xFFFF, FATCount: 2, FATSizeSectors: 0xFFFFFFFF},
			want: Geometry{
				FATRegionOffset:  0xFFFF * 4096,
				DataRegionOffset: 0xFFFF*4096 + 2*0xFFFFFFFF*4096,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.bs.Geometry(); got != tt.want {
				t.Errorf("BootSector.Geometry() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func Test_readFullAt(t *testing.T) {
	data := []byte("0123456789")

	tests := []struct {
		name      string
		size      int
		off       int64
		wantErr   error
		wantCause error
	}{
		{
			name: "complete read",
			size: 4,
			off:  2,
		},
		{
			name: "complete read up to the end",
			size: 4,
			off:  6,
		},
		{
			name:      "short read",
			size:      4,
			off:       8,
			wantErr:   ErrShortRead,
			wantCause: io.ErrUnexpectedEOF,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := make([]byte, tt.size)
			err := readFullAt(bytes.NewReader(data), p, tt.off)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("readFullAt() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !errors.Is(err, tt.wantCause) {
				t.Errorf("readFullAt() error = %v, want cause %v", err, tt.wantCause)
			}
			if err == nil && !bytes.Equal(p, data[tt.off:tt.off+int64(tt.size)]) {
				t.Errorf("readFullAt() read %q", p)
			}
		})
	}
}
