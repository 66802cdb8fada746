package diskscan

import (
	"github.com/open-edge-platform/testdisk-scan/internal/utils/logger"
)

// Stepper mirrors search_location_update: an opaque, externally-provided
// monotone function that may skip large known-uninteresting regions. The
// driver treats it as monotone and never relies on it skipping anything in
// particular; tests substitute the identity stepper to exercise exhaustive
// scanning (§4.5, §9).
type Stepper func(cursor uint64) uint64

func identityStepper(cursor uint64) uint64 { return cursor }

// ProgressFunc is invoked at each progress checkpoint (cylinder change, or
// every 32K sectors on flat-layout disks) — the driver's replacement for
// the original's direct-to-terminal status line (§4.5 step 1, SPEC_FULL
// "Progress callback granularity").
type ProgressFunc func(chs CHS, cursor, searchMax uint64)

// ScanOptions configures a single Scan invocation.
type ScanOptions struct {
	FastMode    int // 0, 1, or 2 per §4.5/§9 "Fast mode"
	Stepper     Stepper
	Recognizers Recognizers
	Progress    ProgressFunc

	// Signals delivers operator steering input (§4.5, §5). A nil channel
	// means the scan always behaves as if SignalContinue were received.
	Signals <-chan OperatorSignal

	// ConfirmStop is consulted when a bare `stop` signal arrives; returning
	// true transitions to quit, matching "stop with confirmation becomes
	// quit" (§4.5). A nil ConfirmStop always confirms.
	ConfirmStop func() bool
}

// ScanResult holds the good and bad partition lists produced by a scan,
// plus the session summary supplementing the original's godmode.c final
// report (SPEC_FULL "Session summary report").
type ScanResult struct {
	Good   *PartitionList
	Bad    *PartitionList
	Report Report
}

// Report summarizes a completed scan for the operator.
type Report struct {
	GoodCount int
	BadCount  int
	Quit      bool
}

// searchMax implements §4.5's termination bound: max(disk_size rounded up
// to a full cylinder, real_size).
func searchMax(d *Disk) uint64 {
	cyl := d.CylinderSize()
	rounded := d.DeclaredSize
	if cyl > 0 {
		rounded = roundUp(d.DeclaredSize, cyl)
	}
	if rounded > d.RealSize {
		return rounded
	}
	return d.RealSize
}

// Scan runs the main driver loop of §4.5 over d using the given
// architecture policy, returning the raw good/bad lists as discovered
// (post-scan reconciliation, §4.6-§4.8, is a separate call: see Reconcile).
func Scan(d *Disk, policy ArchPolicy, opts ScanOptions) *ScanResult {
	log := logger.Logger()

	if opts.Stepper == nil {
		opts.Stepper = identityStepper
	}

	good := NewPartitionList()
	bad := NewPartitionList()
	hints := NewHintSet()
	raidHints := NewHintSet()

	sMax := searchMax(d)
	cursor := policy.MinLocation(d)
	minLoc := cursor

	battery := probeBattery()

	state := &scanState{disk: d, rec: opts.Recognizers, fastMode: opts.FastMode}

	var sectorsSinceProgress uint64
	lastCylinder := ^uint64(0)
	quit := false

	for cursor < sMax && !quit {
		state.chs = OffsetToCHS(d, cursor)

		cylinderChanged := state.chs.Cylinder != lastCylinder
		sectorsSinceProgress++
		if cylinderChanged || sectorsSinceProgress >= 32*1024 {
			if opts.Progress != nil {
				opts.Progress(state.chs, cursor, sMax)
			}
			lastCylinder = state.chs.Cylinder
			sectorsSinceProgress = 0
		}

		signal := pollSignal(opts.Signals)
		switch signal {
		case SignalQuit:
			quit = true
			continue
		case SignalStop:
			confirm := opts.ConfirmStop == nil || opts.ConfirmStop()
			if confirm {
				quit = true
				continue
			}
		case SignalSkip:
			if next, ok := hints.PeekGT(cursor); ok {
				cursor = next
				continue
			}
			quit = true
			continue
		case SignalPlus:
			step := sMax / 20 // 5%
			if step < miB {
				step = miB
			}
			cursor += step
			continue
		}

		_, hitCursor := hints.DrainLEQ(cursor)
		state.searchNow = hitCursor
		_, hitRaidCursor := raidHints.DrainLEQ(cursor)
		state.setRaidHit(hitRaidCursor)

		state.searchNow = state.searchNow || naturalProbePoint(d, state.chs, cursor, opts.FastMode)

		var matched bool
		var matchedPart Partition
		var matchedProbeIdx int
		readErr := false

		for _, p := range battery {
			res, part := p.run(state, cursor)
			switch res {
			case ProbeMatch:
				matched = true
				matchedPart = part
				matchedProbeIdx = p.Index
			case ProbeReadError:
				readErr = true
			}
			if matched || readErr {
				break
			}
		}

		if readErr {
			log.Debugf("read error at offset %d", cursor)
			if cursor >= d.RealSize {
				cursor = sMax
				continue
			}
			cursor = advance(cursor, opts.Stepper, hints, raidHints, d.SectorSize)
			continue
		}

		if matched {
			matchedPart.Status = StatusDeleted
			log.Infof("candidate at offset %d kind=%v size=%d", matchedPart.Start, matchedPart.Kind, matchedPart.Size)

			end := matchedPart.Start + matchedPart.Size
			switch {
			case policy.IsKnownPart(matchedPart) && matchedPart.Size > 1 && matchedPart.Start >= minLoc && end <= sMax:
				if good.Insert(matchedPart) {
					hints.Insert(end)
					hints.Insert(roundUp(end, d.HeadSize()))
				}
			case end <= d.DeclaredSize:
				// inside the declared disk but not a known kind: drop silently.
			default:
				bad.Insert(matchedPart)
			}

			if matchedProbeIdx != 0 { // not the MD-RAID probe
				for _, off := range raidHintOffsets(matchedPart.Start, matchedPart.Size, d.SectorSize) {
					raidHints.Insert(off)
				}
			}

			if opts.FastMode == 0 && matchedPart.Size >= uint64(d.SectorSize) {
				cursor = matchedPart.Start + matchedPart.Size - uint64(d.SectorSize)
				continue
			}
		}

		cursor = advance(cursor, opts.Stepper, hints, raidHints, d.SectorSize)
	}

	return &ScanResult{
		Good: good,
		Bad:  bad,
		Report: Report{
			GoodCount: good.Len(),
			BadCount:  bad.Len(),
			Quit:      quit,
		},
	}
}

// advance implements §4.5 step 6: the candidate is the stepper's output, or
// one sector forward when the stepper does not move past the cursor; the
// next pending hint/raid-hint strictly greater than the cursor replaces the
// candidate when it is nearer.
func advance(cursor uint64, step Stepper, hints, raidHints *HintSet, sectorSize uint32) uint64 {
	next := step(cursor)
	if next <= cursor {
		next = cursor + uint64(sectorSize)
	}

	if h, ok := hints.PeekGT(cursor); ok && h < next {
		next = h
	}
	if h, ok := raidHints.PeekGT(cursor); ok && h < next {
		next = h
	}
	return next
}

// naturalProbePoint implements §4.5 step 4's architecture-specific
// "natural" probe points.
func naturalProbePoint(d *Disk, chs CHS, cursor uint64, fastMode int) bool {
	if d.Architecture == ArchI386 {
		if chs.Sector == 1 && chs.Head <= 2 {
			return true
		}
		if cursor%miB == 0 {
			return true
		}
		if fastMode > 1 && chs.Sector == 1 {
			return true
		}
		return false
	}
	boundary := LocationBoundary(d)
	return boundary != 0 && cursor%boundary == 0
}

func pollSignal(ch <-chan OperatorSignal) OperatorSignal {
	if ch == nil {
		return SignalContinue
	}
	select {
	case s := <-ch:
		return s
	default:
		return SignalContinue
	}
}

// setRaidHit recomputes the RAID-hint-hit bit for the current cursor, the
// same per-iteration reassignment searchNow gets (§4.5 step 3): it replaces
// the previous value rather than accumulating across iterations.
func (s *scanState) setRaidHit(hit bool) {
	s.searchRaid = hit
}
