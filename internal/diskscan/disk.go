package diskscan

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/open-edge-platform/testdisk-scan/internal/utils/logger"
	"github.com/ulikunitz/xz"
)

// Reader is the minimal read path the scanner needs from a block device or
// disk image (§6): a reentrant-safe-for-sequential-callers ReadAt.
type Reader interface {
	io.ReaderAt
}

// Geometry is the cylinder/head/sector shape a Disk is interpreted under.
type Geometry struct {
	Cylinders        uint64
	HeadsPerCylinder uint32
	SectorsPerHead   uint32
}

// Disk is immutable for the duration of a scan (§3). RealSize is the
// number of bytes actually readable (e.g. truncated sparse image or a
// declared-but-absent region of a real device); DeclaredSize may differ
// after a geometry override.
type Disk struct {
	DeviceID     string
	RealSize     uint64
	DeclaredSize uint64
	SectorSize   uint32
	Geometry     Geometry
	Architecture Architecture

	r Reader
}

// NewDisk wraps an already-open Reader with the geometry and architecture
// metadata the scan engine needs. Sector size must be a power of two, >=512
// (§3); callers violating this get an error rather than a silently broken
// scan.
func NewDisk(deviceID string, r Reader, realSize, declaredSize uint64, sectorSize uint32, geom Geometry, arch Architecture) (*Disk, error) {
	if sectorSize < 512 || sectorSize&(sectorSize-1) != 0 {
		return nil, fmt.Errorf("disk %s: sector size %d is not a power of two >= 512", deviceID, sectorSize)
	}
	return &Disk{
		DeviceID:     deviceID,
		RealSize:     realSize,
		DeclaredSize: declaredSize,
		SectorSize:   sectorSize,
		Geometry:     geom,
		Architecture: arch,
		r:            r,
	}, nil
}

// Read fills buf (up to len(buf) bytes) starting at byteOffset, returning
// the number of bytes actually read. A non-EOF error is a read failure per
// §7; EOF is reported with whatever partial read io.ReaderAt already
// produced, matching io.ReaderAt's contract.
func (d *Disk) Read(buf []byte, byteOffset uint64) (int, error) {
	n, err := d.r.ReadAt(buf, int64(byteOffset))
	if err != nil && err != io.EOF {
		return n, fmt.Errorf("read disk %s at %d: %w", d.DeviceID, byteOffset, err)
	}
	return n, nil
}

// Description returns a human string identifying the disk, for log lines
// only (never parsed by the scanner itself).
func (d *Disk) Description() string {
	return fmt.Sprintf("%s (%d bytes, %d/%d/%d geometry, sector %d)",
		d.DeviceID, d.RealSize, d.Geometry.Cylinders, d.Geometry.HeadsPerCylinder, d.Geometry.SectorsPerHead, d.SectorSize)
}

// OpenCompressed opens path for scanning, transparently decompressing it
// into a temporary seekable buffer when it is a recognized compressed disk
// image (.gz, .zst, .xz). Raw images and real block devices are opened
// directly. This is purely a disk-reading concern: probes never see a
// compressed byte stream.
func OpenCompressed(path string) (*os.File, func() error, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}

	var decompressor io.Reader
	switch {
	case strings.HasSuffix(path, ".gz"):
		gz, gzErr := gzip.NewReader(f)
		if gzErr != nil {
			f.Close()
			return nil, nil, fmt.Errorf("gzip header %s: %w", path, gzErr)
		}
		decompressor = gz
	case strings.HasSuffix(path, ".zst"):
		zr, zErr := zstd.NewReader(f)
		if zErr != nil {
			f.Close()
			return nil, nil, fmt.Errorf("zstd header %s: %w", path, zErr)
		}
		defer zr.Close()
		decompressor = zr
	case strings.HasSuffix(path, ".xz"):
		xr, xErr := xz.NewReader(f)
		if xErr != nil {
			f.Close()
			return nil, nil, fmt.Errorf("xz header %s: %w", path, xErr)
		}
		decompressor = xr
	default:
		return f, f.Close, nil
	}

	tmp, err := os.CreateTemp("", "diskscan-*.raw")
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("create scratch image for %s: %w", path, err)
	}
	logger.Logger().Infof("decompressing %s into scratch image %s for scanning", path, tmp.Name())

	if _, err := io.Copy(tmp, decompressor); err != nil {
		tmp.Close()
		f.Close()
		os.Remove(tmp.Name())
		return nil, nil, fmt.Errorf("decompress %s: %w", path, err)
	}
	f.Close()

	cleanup := func() error {
		name := tmp.Name()
		if err := tmp.Close(); err != nil {
			return err
		}
		return os.Remove(name)
	}
	return tmp, cleanup, nil
}
