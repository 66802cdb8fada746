package diskscan

import "testing"

func testDisk(t *testing.T, arch Architecture) *Disk {
	t.Helper()
	d, err := NewDisk("test0", bytesReaderAt(nil), 64*miB, 64*miB, 512,
		Geometry{Cylinders: 130, HeadsPerCylinder: 16, SectorsPerHead: 63}, arch)
	if err != nil {
		t.Fatalf("NewDisk: %v", err)
	}
	return d
}

type bytesReaderAt []byte

func (b bytesReaderAt) ReadAt(p []byte, off int64) (int, error) {
	if off >= int64(len(b)) {
		return 0, nil
	}
	n := copy(p, b[off:])
	return n, nil
}

func TestOffsetCHSRoundTrip(t *testing.T) {
	d := testDisk(t, ArchI386)
	maxOffset := d.Geometry.Cylinders * uint64(d.Geometry.HeadsPerCylinder) * uint64(d.Geometry.SectorsPerHead) * uint64(d.SectorSize)

	for _, offset := range []uint64{0, 512, 63 * 512, 64 * 512, maxOffset - 512} {
		c := OffsetToCHS(d, offset)
		back := CHSToOffset(d, c)
		if back != offset {
			t.Errorf("offset %d -> CHS %+v -> %d, want round trip", offset, c, back)
		}
	}
}

func TestCHSOffsetRoundTrip(t *testing.T) {
	d := testDisk(t, ArchI386)
	for _, c := range []CHS{{0, 0, 1}, {1, 2, 3}, {5, 15, 63}} {
		offset := CHSToOffset(d, c)
		back := OffsetToCHS(d, offset)
		if back != c {
			t.Errorf("CHS %+v -> offset %d -> %+v, want round trip", c, offset, back)
		}
	}
}

func TestLocationBoundary(t *testing.T) {
	if got := LocationBoundary(testDisk(t, ArchMac)); got != macBoundary {
		t.Errorf("mac boundary = %d, want %d", got, macBoundary)
	}
	if got := LocationBoundary(testDisk(t, ArchI386)); got != 512 {
		t.Errorf("i386 boundary = %d, want sector size", got)
	}
	sun := testDisk(t, ArchSun)
	if got := LocationBoundary(sun); got != sun.CylinderSize() {
		t.Errorf("sun boundary = %d, want cylinder size %d", got, sun.CylinderSize())
	}
}

func TestAlignBoundaryPrefersCoarsest(t *testing.T) {
	d := testDisk(t, ArchI386)
	if got := AlignBoundary(miB, d); got != miB {
		t.Errorf("1MiB-aligned offset should align to 1MiB, got %d", got)
	}
	if got := AlignBoundary(d.HeadSize(), d); got != d.CylinderSize() {
		t.Errorf("one head into the cylinder should align to cylinder size, got %d", got)
	}
	if got := AlignBoundary(2*d.HeadSize(), d); got != d.HeadSize() {
		t.Errorf("two heads in (neither 0 nor 1 head mod cylinder) should align to head size, got %d", got)
	}
	if got := AlignBoundary(512, d); got != 512 {
		t.Errorf("sector-only-aligned offset should align to sector size, got %d", got)
	}
}
