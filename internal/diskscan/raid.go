package diskscan

// MD-RAID superblock placement constants, preserved exactly per §9: they
// encode the historical mdadm 0.9/1.x superblock placement rules, not
// heuristics.
const (
	mdReservedBytes  = 64 * 1024
	mdMaxChunkSize   = 4096 * 1024
	mdDiskFactorMax  = 6
)

// mdNewSizeSectors mirrors MD_NEW_SIZE_SECTORS(x): round x (a sector count)
// down to a multiple of 2 so the superblock lands on an even sector, the
// mdadm 0.9/1.x convention.
func mdNewSizeSectors(sectors uint64) uint64 {
	return sectors &^ 1
}

// raidHintOffsets computes the follow-up RAID-hint offsets generated after
// a non-MD-RAID match of the given size, per §4.5 step 5 and the original's
// MD_NEW_SIZE_SECTORS((part_size/disk_factor + help_factor*MD_RESERVED_BYTES
// - 1) / MD_RESERVED_BYTES * MD_RESERVED_BYTES / 512) * 512
// (_examples/original_source/src/godmode.c:1094): the byte sum is floored to
// a multiple of MD_RESERVED_BYTES first, and only then converted to
// sectors — the 512 divide/multiply never touches MD_RESERVED_BYTES itself.
//
// for disk_factor in 1..6 and k (help_factor) in
// 0..MD_MAX_CHUNK_SIZE/MD_RESERVED_BYTES+3.
//
// When size == 0 the source's call site may still reach here with a
// zero-size partition (§9 open question); this implementation treats that
// as "no RAID hints to generate" rather than guessing at a scaled offset,
// since any hint derived from a zero size would be degenerate (`start`
// itself for k <= 1, and fixed multiples of MD_RESERVED_BYTES past `start`
// for larger k, independent of any partition size).
func raidHintOffsets(start, size uint64, sectorSize uint32) []uint64 {
	if size == 0 {
		return nil
	}
	var out []uint64
	maxK := mdMaxChunkSize/mdReservedBytes + 3
	for diskFactor := uint64(1); diskFactor <= mdDiskFactorMax; diskFactor++ {
		for k := uint64(0); k <= uint64(maxK); k++ {
			byteSum := size/diskFactor + k*mdReservedBytes
			if byteSum == 0 {
				continue // would underflow the -1 below; no valid hint here
			}
			byteSum--
			flooredBytes := (byteSum / mdReservedBytes) * mdReservedBytes
			sectors := mdNewSizeSectors(flooredBytes / uint64(sectorSize))
			offset := start + sectors*uint64(sectorSize)
			out = append(out, offset)
		}
	}
	return out
}
