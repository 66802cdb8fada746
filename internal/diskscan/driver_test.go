package diskscan

import "testing"

func scanDisk(t *testing.T, size uint64, rec Recognizers) (*Disk, *ScanResult) {
	t.Helper()
	d, err := NewDisk("img0", bytesReaderAt(make([]byte, size)), size, size, 512,
		Geometry{Cylinders: size / (16 * 63 * 512), HeadsPerCylinder: 16, SectorsPerHead: 63}, ArchI386)
	if err != nil {
		t.Fatalf("NewDisk: %v", err)
	}
	res := Scan(d, PolicyFor(ArchI386), ScanOptions{Recognizers: rec})
	return d, res
}

func TestScanEmptyDiskYieldsNoPartitions(t *testing.T) {
	_, res := scanDisk(t, 64*miB, Recognizers{})

	if res.Good.Len() != 0 {
		t.Errorf("expected empty good list, got %d entries", res.Good.Len())
	}
	if res.Bad.Len() != 0 {
		t.Errorf("expected empty bad list, got %d entries", res.Bad.Len())
	}
}

func TestScanAdmitsKnownPartitionAtNaturalProbePoint(t *testing.T) {
	const partSize = 10 * miB
	rec := Recognizers{
		PartType: func(d *Disk, buf []byte, offset uint64, out *Partition) bool {
			if offset != miB {
				return false
			}
			out.Start = offset
			out.Size = partSize
			out.Kind = FSNTFS
			return true
		},
	}
	_, res := scanDisk(t, 64*miB, rec)

	if res.Good.Len() != 1 {
		t.Fatalf("expected exactly one admitted partition, got %d", res.Good.Len())
	}
	got := res.Good.Slice()[0]
	if got.Start != miB || got.Size != partSize || got.Kind != FSNTFS {
		t.Errorf("unexpected partition: %+v", got)
	}
	if got.Status != StatusDeleted {
		t.Errorf("freshly recovered partitions should be stamped deleted, got %v", got.Status)
	}
}

func TestScanRoutesOffDiskPartitionToBadList(t *testing.T) {
	const diskSize = 16 * miB
	rec := Recognizers{
		PartType: func(d *Disk, buf []byte, offset uint64, out *Partition) bool {
			if offset != miB {
				return false
			}
			out.Start = offset
			out.Size = diskSize // extends past the disk
			out.Kind = FSExt4
			return true
		},
	}
	_, res := scanDisk(t, diskSize, rec)

	if res.Good.Len() != 0 {
		t.Errorf("partition extending past the disk must not be admitted, got %d good entries", res.Good.Len())
	}
	if res.Bad.Len() != 1 {
		t.Errorf("expected 1 bad-list entry, got %d", res.Bad.Len())
	}
}

func TestScanRejectsUnknownKind(t *testing.T) {
	rec := Recognizers{
		PartType: func(d *Disk, buf []byte, offset uint64, out *Partition) bool {
			if offset != miB {
				return false
			}
			out.Start = offset
			out.Size = 4 * miB
			out.Kind = FSUnknown
			return true
		},
	}
	_, res := scanDisk(t, 64*miB, rec)
	if res.Good.Len() != 0 || res.Bad.Len() != 0 {
		t.Errorf("unknown-kind candidate inside the disk should be dropped, got good=%d bad=%d", res.Good.Len(), res.Bad.Len())
	}
}

func TestScanDeterministic(t *testing.T) {
	rec := Recognizers{
		PartType: func(d *Disk, buf []byte, offset uint64, out *Partition) bool {
			if offset != miB && offset != 20*miB {
				return false
			}
			out.Start = offset
			out.Size = 5 * miB
			out.Kind = FSExt4
			return true
		},
	}
	_, res1 := scanDisk(t, 64*miB, rec)
	_, res2 := scanDisk(t, 64*miB, rec)

	s1, s2 := res1.Good.Sorted(), res2.Good.Sorted()
	if len(s1) != len(s2) {
		t.Fatalf("non-deterministic result lengths: %d vs %d", len(s1), len(s2))
	}
	for i := range s1 {
		if s1[i].Start != s2[i].Start || s1[i].Size != s2[i].Size || s1[i].Kind != s2[i].Kind {
			t.Fatalf("non-deterministic result at %d: %+v vs %+v", i, s1[i], s2[i])
		}
	}
}

func TestAdvancePrefersNearestHintOverStepper(t *testing.T) {
	hints := NewHintSet()
	hints.Insert(500)
	raidHints := NewHintSet()

	next := advance(100, identityStepper, hints, raidHints, 512)
	if next != 500 {
		t.Errorf("advance should jump to the nearer pending hint, got %d", next)
	}
}

func TestAdvanceFallsBackToOneSector(t *testing.T) {
	hints := NewHintSet()
	raidHints := NewHintSet()

	next := advance(100, identityStepper, hints, raidHints, 512)
	if next != 612 {
		t.Errorf("advance with no hints and an identity stepper should move one sector forward, got %d", next)
	}
}

func TestRaidHintOffsetsZeroSizeIsAmbiguousResolvedToNoHints(t *testing.T) {
	if got := raidHintOffsets(1024, 0, 512); got != nil {
		t.Errorf("zero-size match should generate no RAID hints (§9 open question), got %v", got)
	}
}

func TestRaidHintOffsetsMatchesFlooredByteDomainFormula(t *testing.T) {
	const start, size, sectorSize = 0, uint64(8 * 1024 * 1024), uint32(512)
	got := raidHintOffsets(start, size, sectorSize)

	// disk_factor=1, k=0: byteSum = 8MiB - 1 = 8388607, floored to a
	// multiple of 64KiB (65536) = 8388608 - 65536 = 8323072 bytes.
	wantFirst := mdNewSizeSectors(8323072/uint64(sectorSize)) * uint64(sectorSize)
	if len(got) == 0 || got[0] != wantFirst {
		t.Fatalf("disk_factor=1,k=0 hint = %v, want first entry %d", got, wantFirst)
	}

	// disk_factor=1, k=1: byteSum = 8MiB + 65536 - 1 = 8454143, floored to
	// 8454144 - 65536 = 8388608 bytes (exactly 8MiB, not inflated by 512x).
	wantSecond := mdNewSizeSectors(8388608/uint64(sectorSize)) * uint64(sectorSize)
	if len(got) < 2 || got[1] != wantSecond {
		t.Fatalf("disk_factor=1,k=1 hint = %v, want second entry %d", got, wantSecond)
	}
}

func TestSetRaidHitReassignsRatherThanAccumulates(t *testing.T) {
	var s scanState
	s.setRaidHit(true)
	if !s.searchRaid {
		t.Fatalf("expected searchRaid true after a hit")
	}
	s.setRaidHit(false)
	if s.searchRaid {
		t.Errorf("setRaidHit(false) must clear a prior hit instead of OR-accumulating it")
	}
}
