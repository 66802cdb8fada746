package diskscan

// Recognizer is an externally-provided, pure signature predicate: given a
// disk, a small read buffer anchored at offset, it either rejects the
// candidate (false) or populates out and returns true (§6:
// "recover_<FS>(disk, header_buffer, descriptor_out, verbose, dump_ind) ->
// nonneg on match"). The scanner contracts only on the boolean result and
// the descriptor it populates; per-filesystem parsing internals are out of
// scope (§1 Non-goals).
type Recognizer func(d *Disk, buf []byte, offset uint64, out *Partition) bool

// ProbeResult is the tri-state return of a probe slot (§4.4): Match (a
// descriptor was populated), NoMatch, or ReadError (read failed at this
// location).
type ProbeResult int

const (
	ProbeNoMatch ProbeResult = iota
	ProbeMatch
	ProbeReadError
)

// Probe is one slot of the fixed battery in §4.4. index identifies its
// position 0..13; run performs the trigger check and, on a hit, invokes the
// matching Recognizer(s).
type Probe struct {
	Index int
	Name  string
	run   func(s *scanState, offset uint64) (ProbeResult, Partition)
}

// Recognizers bundles every external signature predicate the probe battery
// dispatches to. A caller wires real recover_* implementations; tests wire
// fakes.
type Recognizers struct {
	MDRaid   Recognizer
	FAT      Recognizer
	ExFAT    Recognizer
	NTFS     Recognizer
	HFS      Recognizer
	Ext2     Recognizer
	PartType Recognizer // partition-table probes #6-#8 (type 2/1/0) all call this one recognizer; the table variant is not passed to it
	Type8    Recognizer
	Type16   Recognizer
	Type64   Recognizer
	Type128  Recognizer
	Type2048 Recognizer
}

// scanState is the per-iteration context handed to a probe: everything it
// may read, nothing it may retain across calls (§5: "No probe retains
// references to driver state across calls").
type scanState struct {
	disk        *Disk
	rec         Recognizers
	buf16       [16 * 4096]byte // buffer_disk0: 16-sector scratch, sized generously; driver slices to SectorSize*16
	searchNow   bool
	searchRaid  bool
	fastMode    int
	chs         CHS
}

func sectorBuf(s *scanState, n int) []byte {
	sz := int(s.disk.SectorSize) * n
	if sz > len(s.buf16) {
		sz = len(s.buf16)
	}
	return s.buf16[:sz]
}

func readAt(s *scanState, offset uint64, n int) ([]byte, bool) {
	buf := sectorBuf(s, n)
	read, err := s.disk.Read(buf, offset)
	if err != nil {
		return nil, false
	}
	return buf[:read], true
}

// probeBattery builds the 14-entry, order-significant probe battery of
// §4.4. Triggers are evaluated fresh every call against the current
// scanState (cursor position, search_now/search_now_raid gates, fast mode).
func probeBattery() []Probe {
	return []Probe{
		{0, "md-raid", probeMDRaid},
		{1, "fat-backup", probeFATBackup},
		{2, "exfat-backup", probeExFATBackup},
		{3, "ntfs-backup", probeNTFSBackup},
		{4, "hfs-backup", probeHFSBackup},
		{5, "ext234-backup", probeExt2Backup},
		{6, "part-table-2", probePartTable(2)},
		{7, "part-table-1", probePartTable(1)},
		{8, "part-table-0", probePartTable(0)},
		{9, "type-8", probeAlways(func(r Recognizers) Recognizer { return r.Type8 })},
		{10, "type-16-bsd-pre-ffs", probeAlways(func(r Recognizers) Recognizer { return r.Type16 })},
		{11, "type-64", probeAlways(func(r Recognizers) Recognizer { return r.Type64 })},
		{12, "type-128-bsd-disklabel", probeType128},
		{13, "type-2048-gpt-boot", probeAlways(func(r Recognizers) Recognizer { return r.Type2048 })},
	}
}

func invoke(rec Recognizer, s *scanState, offset uint64, nSectors int) (ProbeResult, Partition) {
	if rec == nil {
		return ProbeNoMatch, Partition{}
	}
	buf, ok := readAt(s, offset, nSectors)
	if !ok {
		return ProbeReadError, Partition{}
	}
	var out Partition
	if rec(s.disk, buf, offset, &out) {
		return ProbeMatch, out
	}
	return ProbeNoMatch, Partition{}
}

// probe #0: MD-RAID (0.9 and 1.x). Triggers on a RAID hint hit or fast
// mode > 1; reads 8 sectors and lets the recognizer back-compute the
// partition start from the superblock's offset-or-size field.
func probeMDRaid(s *scanState, offset uint64) (ProbeResult, Partition) {
	if !(s.searchRaid || s.fastMode > 1) {
		return ProbeNoMatch, Partition{}
	}
	return invoke(s.rec.MDRaid, s, offset, 8)
}

// probe #1: FAT backup boot sector, at "sector 7 of head <= 2" on i386, or
// the GPT/flat-layout analogues (§4.4).
func probeFATBackup(s *scanState, offset uint64) (ProbeResult, Partition) {
	if !fatBackupTrigger(s, offset, 7) {
		return ProbeNoMatch, Partition{}
	}
	return invoke(s.rec.FAT, s, offset, 1)
}

// probe #2: exFAT backup, same trigger family as FAT but at sector 13.
func probeExFATBackup(s *scanState, offset uint64) (ProbeResult, Partition) {
	if !fatBackupTrigger(s, offset, 13) {
		return ProbeNoMatch, Partition{}
	}
	return invoke(s.rec.ExFAT, s, offset, 1)
}

// fatBackupTrigger implements the shared boundary-check family used by the
// FAT/exFAT backup probes: an i386 "sector N of head <= 2" position, a GPT
// 2048-sector stride offset, a flat location_boundary stride offset, or an
// exact sector-N match when there is no architecture.
func fatBackupTrigger(s *scanState, offset uint64, sectorN uint32) bool {
	sectorSize := uint64(s.disk.SectorSize)
	switch s.disk.Architecture {
	case ArchI386:
		return s.chs.Sector == sectorN && s.chs.Head <= 2
	case ArchGPT:
		return offset%gptSectorSize2K == uint64(sectorN-1)*sectorSize
	case ArchNone:
		return offset == uint64(sectorN-1)*sectorSize
	default:
		boundary := LocationBoundary(s.disk)
		return boundary != 0 && offset%boundary == uint64(sectorN-1)*sectorSize
	}
}

// probe #3: NTFS backup boot sector, anchored at end-of-head (i386),
// the last sector slot of the 2048-sector GPT stride, or
// boundary-512 elsewhere.
func probeNTFSBackup(s *scanState, offset uint64) (ProbeResult, Partition) {
	if !endOfHeadTrigger(s, offset) {
		return ProbeNoMatch, Partition{}
	}
	return invoke(s.rec.NTFS, s, offset, 1)
}

// probe #4: HFS backup, same trigger family as NTFS backup.
func probeHFSBackup(s *scanState, offset uint64) (ProbeResult, Partition) {
	if !endOfHeadTrigger(s, offset) {
		return ProbeNoMatch, Partition{}
	}
	return invoke(s.rec.HFS, s, offset, 1)
}

func endOfHeadTrigger(s *scanState, offset uint64) bool {
	sectorSize := uint64(s.disk.SectorSize)
	switch s.disk.Architecture {
	case ArchI386:
		return s.chs.Sector == s.disk.Geometry.SectorsPerHead
	case ArchGPT:
		return offset%gptSectorSize2K == 2047*sectorSize
	default:
		boundary := LocationBoundary(s.disk)
		return boundary != 0 && offset%boundary == boundary-sectorSize
	}
}

// probe #5: ext2/3/4 backup superblock. For each plausible
// s_log_block_size in {0,1,2}, checks whether offset minus the group-0
// backup displacement lands on the architecture's group-0 alignment before
// reading 1 KiB and letting the recognizer verify the EXT2 magic and a
// non-zero block-group number.
func probeExt2Backup(s *scanState, offset uint64) (ProbeResult, Partition) {
	for _, logBlockSize := range []uint{0, 1, 2} {
		blockSize := uint64(1024) << logBlockSize
		displacement := 3 * 8 * blockSize * blockSize
		if logBlockSize == 0 {
			// the 1 KiB block-size case has its superblock one block
			// further in than block 0, a small correction over the
			// general formula.
			displacement += blockSize
		}
		if offset < displacement {
			continue
		}
		candidate := offset - displacement
		boundary := LocationBoundary(s.disk)
		if boundary == 0 || candidate%boundary != 0 {
			continue
		}
		nSectors := 1
		if s.disk.SectorSize < 1024 {
			nSectors = int(1024 / s.disk.SectorSize)
		}
		res, part := invoke(s.rec.Ext2, s, offset, nSectors)
		if res == ProbeMatch {
			return res, part
		}
		if res == ProbeReadError {
			return res, part
		}
	}
	return ProbeNoMatch, Partition{}
}

// probePartTable returns a probe func for partition-table slots #6-#8,
// gated on the driver's search_now signal (§4.4). The variant argument
// only labels the slot: every variant reads the same 16 sectors and calls
// the same PartType recognizer, so the three slots do not distinguish
// table types.
func probePartTable(variant int) func(*scanState, uint64) (ProbeResult, Partition) {
	return func(s *scanState, offset uint64) (ProbeResult, Partition) {
		if !s.searchNow {
			return ProbeNoMatch, Partition{}
		}
		return invoke(s.rec.PartType, s, offset, 16)
	}
}

// probeAlways wraps a recognizer lookup for the unconditional probes
// (#9-#11, #13), which run every iteration regardless of search_now.
func probeAlways(pick func(Recognizers) Recognizer) func(*scanState, uint64) (ProbeResult, Partition) {
	return func(s *scanState, offset uint64) (ProbeResult, Partition) {
		return invoke(pick(s.rec), s, offset, 16)
	}
}

// probe #12: type 128 (BSD disklabel). First warms the cache with a read
// at offset+(63+16)*512 before invoking the recognizer; the warm-up read's
// failure is a read-path concern, not a correctness one (§9), so it is
// ignored.
func probeType128(s *scanState, offset uint64) (ProbeResult, Partition) {
	warmOffset := offset + (63+16)*512
	_, _ = readAt(s, warmOffset, 1)
	return invoke(s.rec.Type128, s, offset, 16)
}
