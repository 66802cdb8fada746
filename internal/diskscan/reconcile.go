package diskscan

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/open-edge-platform/testdisk-scan/internal/utils/logger"
)

// ExtendedMode toggles min/max extended-partition synthesis (§4.7).
type ExtendedMode int

const (
	ExtendedMin ExtendedMode = iota
	ExtendedMax
)

// Diagnostics aggregates every post-scan advisory the operator should see
// (§4.8). Individual causes are never dropped; they are combined with
// multierr so a caller can either log the combined message or range over
// multierr.Errors(diag.Err) for the originals.
type Diagnostics struct {
	Err                       error
	InferredHeadsPerCylinder  uint32
	GeometryMismatch          bool
}

// Reconcile runs the full post-scan pipeline of §4.6-§4.8 over a completed
// scan: NTFS-backup-anchored retry, i386 extended-partition synthesis,
// alignment, and off-disk/geometry diagnostics. It mutates good in place
// (bad is only reported on) and returns the aggregated diagnostics.
func Reconcile(d *Disk, policy ArchPolicy, good, bad *PartitionList, rec Recognizers, mode ExtendedMode) Diagnostics {
	log := logger.Logger()

	ntfsBackupRetry(d, policy, good, rec)

	if d.Architecture == ArchI386 {
		synthesizeExtended(d, good, mode)
	}

	AlignList(good, d, true)

	policy.InitStructure(d, good)
	policy.InitPartOrder(d, good)

	diag := Diagnostics{}
	if bad.Len() > 0 {
		diag.Err = multierr.Append(diag.Err, fmt.Errorf("disk too small: %d partitions extend past the disk", bad.Len()))
		log.Warnf("%d partitions extend past the disk and cannot be recovered from this scan", bad.Len())
	}

	if inferred, mismatch := geometryCheck(d, good); mismatch {
		diag.InferredHeadsPerCylinder = inferred
		diag.GeometryMismatch = true
		diag.Err = multierr.Append(diag.Err, fmt.Errorf(
			"geometry mismatch: current heads-per-cylinder %d, inferred %d", d.Geometry.HeadsPerCylinder, inferred))
		log.Warnf("geometry mismatch: recommend heads-per-cylinder=%d (currently %d)", inferred, d.Geometry.HeadsPerCylinder)
	}

	return diag
}

// ntfsBackupRetry implements §4.6: for each admitted NTFS partition whose
// SBOffset != 0, retry the NTFS recognizer at start-i*sector_size for
// i=32..1, adding an earlier-offset recovery to good if it passes the same
// admission gates as the main scan.
func ntfsBackupRetry(d *Disk, policy ArchPolicy, good *PartitionList, rec Recognizers) {
	if rec.NTFS == nil {
		return
	}
	sectorSize := uint64(d.SectorSize)
	minLoc := policy.MinLocation(d)
	sMax := searchMax(d)

	for _, p := range good.Slice() {
		if p.Kind != FSNTFS || p.SBOffset == 0 {
			continue
		}
		for i := uint64(32); i >= 1; i-- {
			if p.Start < i*sectorSize {
				continue
			}
			candidate := p.Start - i*sectorSize
			buf := make([]byte, sectorSize)
			n, err := d.Read(buf, candidate)
			if err != nil || uint64(n) < sectorSize {
				continue
			}
			var out Partition
			if rec.NTFS(d, buf[:n], candidate, &out) && policy.IsKnownPart(out) && out.Size > 1 &&
				out.Start >= minLoc && out.Start+out.Size <= sMax {
				good.Insert(out)
			}
		}
	}
}

// synthesizeExtended implements §4.7: drop existing `extended` entries,
// and if any `logical` partitions remain, compute enclosing boundaries and
// insert a fresh `extended`/`extended-LBA` entry.
func synthesizeExtended(d *Disk, list *PartitionList, mode ExtendedMode) {
	list.RemoveStatus(StatusExtended)

	sorted := list.Sorted()
	var logicals []Partition
	var nonLogicals []Partition
	for _, p := range sorted {
		if p.Status == StatusLogical {
			logicals = append(logicals, p)
		} else {
			nonLogicals = append(nonLogicals, p)
		}
	}
	if len(logicals) == 0 {
		return
	}
	if len(nonLogicals) == 4 {
		mode = ExtendedMax
	}

	first, last := logicals[0], logicals[len(logicals)-1]

	var extStart, extEnd uint64
	allMiBAligned := true
	for _, l := range logicals {
		if l.Start%miB != 0 {
			allMiBAligned = false
			break
		}
	}

	switch mode {
	case ExtendedMax:
		extStart = prevPrimaryEnd(nonLogicals, first.Start)
		if extStart == 0 {
			if first.Start >= miB {
				extStart = first.Start - miB
			} else {
				extStart = first.Start - d.HeadSize()
			}
		}
		extEnd = nextPrimaryStart(nonLogicals, last.Start+last.Size)
		if extEnd == 0 {
			extEnd = d.DeclaredSize
		}
		if allMiBAligned {
			extStart = roundDown(extStart, miB)
			extEnd = roundUp(extEnd, miB)
		} else {
			extStart = roundDown(extStart, d.CylinderSize())
			extEnd = roundUp(extEnd, d.CylinderSize())
		}
	case ExtendedMin:
		extStart = first.Start - uint64(d.SectorSize)
		extEnd = last.Start + last.Size
		if allMiBAligned {
			extStart = roundDown(extStart, miB)
			extEnd = roundUp(extEnd, miB)
		} else {
			extStart = roundDown(extStart, d.CylinderSize())
			extEnd = roundUp(extEnd, d.CylinderSize())
		}
	}

	endChs := OffsetToCHS(d, extEnd)
	kind := FSExtended
	if endChs.Cylinder > 1023 {
		kind = FSExtendedLBA
	}

	ext := Partition{
		Start:  extStart,
		Size:   extEnd - extStart,
		Kind:   kind,
		Status: StatusExtended,
	}
	list.InsertSorted(ext)
}

func prevPrimaryEnd(nonLogicals []Partition, before uint64) uint64 {
	var best uint64
	for _, p := range nonLogicals {
		end := p.Start + p.Size
		if end <= before && end > best {
			best = end
		}
	}
	return best
}

func nextPrimaryStart(nonLogicals []Partition, after uint64) uint64 {
	var best uint64
	for _, p := range nonLogicals {
		if p.Start >= after && (best == 0 || p.Start < best) {
			best = p.Start
		}
	}
	return best
}

func roundDown(v, boundary uint64) uint64 {
	if boundary == 0 {
		return v
	}
	return v - v%boundary
}

// geometryCheck implements §4.8's geometry diagnostic: derive
// inferred_heads_per_cylinder from the discovered partitions' boundary
// statistics (for each candidate head count 16, 32, 64, 128, 240 and 255,
// how many partition starts are a multiple of that cylinder size; the
// candidate with the highest count wins) and compare it against the disk's
// current geometry on i386/Sun.
func geometryCheck(d *Disk, good *PartitionList) (inferred uint32, mismatch bool) {
	if d.Architecture != ArchI386 && d.Architecture != ArchSun {
		return 0, false
	}
	parts := good.Slice()
	if len(parts) == 0 {
		return 0, false
	}

	counts := map[uint32]int{}
	for _, candidate := range []uint32{16, 32, 64, 128, 240, 255} {
		headSize := uint64(candidate) * uint64(d.Geometry.SectorsPerHead) * uint64(d.SectorSize)
		for _, p := range parts {
			if headSize != 0 && p.Start%headSize == 0 {
				counts[candidate]++
			}
		}
	}

	var bestCount int
	for heads, count := range counts {
		if count > bestCount {
			bestCount = count
			inferred = heads
		}
	}
	if inferred == 0 || inferred == d.Geometry.HeadsPerCylinder {
		return d.Geometry.HeadsPerCylinder, false
	}
	return inferred, true
}
