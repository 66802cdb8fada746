// Package diskscan implements the partition-discovery engine exemplified by
// TestDisk's search_part: a driven linear scan of a block device or disk
// image that probes architecture-specific offsets for filesystem-superblock
// and boot-sector signatures, deduplicates candidates into a partition
// list, and reconciles the result (geometry warnings, alignment, extended
// partition synthesis, NTFS-backup retries, off-disk triage).
//
// File-carving, terminal UI, log formatting and per-filesystem superblock
// parsing internals are treated as external collaborators; see §1 and §6 of
// the specification this package implements.
package diskscan

// FSKind tags the filesystem (or container) a partition descriptor was
// recognized as. The set is closed: §6 of the spec enumerates every tag a
// scanner may emit.
type FSKind int

const (
	FSUnknown FSKind = iota
	FSFAT12
	FSFAT16
	FSFAT32
	FSExFAT
	FSFATX
	FSNTFS
	FSReFS
	FSExt2
	FSExt3
	FSExt4
	FSHFS
	FSHFSPlus
	FSHFSX
	FSUFS
	FSUFS2LE
	FSBeOS
	FSBTRFS
	FSXFSv1
	FSXFSv2
	FSXFSv3
	FSXFSv4
	FSXFSv5
	FSJFS
	FSReiserV2
	FSReiserV3
	FSReiserV4
	FSZFS
	FSAPFS
	FSMD
	FSMD1
	FSLUKS
	FSLVM1
	FSLVM2
	FSLinSwap
	FSLinSwap2
	FSLinSwapOld
	FSLinSwapSwapped
	FSExtended
	FSExtendedLBA
	FSCramFS
	FSF2FS
	FSFreeBSD
	FSGFS2
	FSHPFS
	FSISO
	FSNetWare
	FSOpenBSD
	FSOS2MB
	FSSun
	FSSysV4
	FSVMFS
	FSWBFS
)

// PartitionStatus is the admission/role state of a partition descriptor.
type PartitionStatus int

const (
	StatusDeleted PartitionStatus = iota // freshly recovered, not yet classified as primary/logical
	StatusPrimary
	StatusPrimaryBoot
	StatusLogical
	StatusExtended
	StatusExtendedInExtended
)

// Architecture identifies the disk-layout policy in force for a scan, per
// §4.3. None of these names leak into probe logic beyond what the policy
// object exposes.
type Architecture int

const (
	ArchNone Architecture = iota
	ArchI386
	ArchGPT
	ArchMac
	ArchSun
	ArchXbox
	ArchHumax
)

func (a Architecture) String() string {
	switch a {
	case ArchI386:
		return "i386"
	case ArchGPT:
		return "gpt"
	case ArchMac:
		return "mac"
	case ArchSun:
		return "sun"
	case ArchXbox:
		return "xbox"
	case ArchHumax:
		return "humax"
	default:
		return "none"
	}
}

// OperatorSignal is the cooperative cancellation/steering channel the driver
// polls once per scan iteration (§4.5, §5). Produced by an external
// collaborator (a terminal UI, a signal handler, ...); the driver only
// consumes it.
type OperatorSignal int

const (
	SignalContinue OperatorSignal = iota
	SignalStop
	SignalSkip
	SignalQuit
	SignalPlus
)

// SuperblockError tags a read failure located while validating a candidate's
// superblock or extent, per §3's error-code tag field.
type SuperblockError int

const (
	SBErrNone SuperblockError = iota
	SBErrSuperblockRead
	SBErrExtentRead
)
