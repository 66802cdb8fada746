package diskscan

import (
	"github.com/diskfs/go-diskfs/partition/gpt"
	"github.com/diskfs/go-diskfs/partition/mbr"
	"github.com/google/uuid"
)

// ArchPolicy is the capability set a disk architecture exposes to the
// driver and reconciliation (§4.3): §9 models the original's
// function-pointer struct as a plain interface consulted through named
// operations, never by identity comparison.
type ArchPolicy interface {
	// MinLocation is the smallest byte offset the driver will admit a
	// partition at.
	MinLocation(d *Disk) uint64

	// IsKnownPart is the filesystem-kind acceptance predicate gating
	// admission into the good list.
	IsKnownPart(p Partition) bool

	// InitStructure performs architecture-specific post-processing once
	// the scan has produced a list (e.g. Mac's apple_partition_table
	// handling).
	InitStructure(d *Disk, list *PartitionList)

	// InitPartOrder assigns Order to partitions in list, in place; the list
	// itself is not reordered. i386 numbers only primary/extended entries
	// (1..4) and logical entries (from 5); the other layouts number every
	// entry in ascending-Start order.
	InitPartOrder(d *Disk, list *PartitionList)

	// TestStructure is a validity gate over the final list.
	TestStructure(list *PartitionList) bool
}

// PolicyFor returns the ArchPolicy for arch.
func PolicyFor(arch Architecture) ArchPolicy {
	switch arch {
	case ArchI386:
		return i386Policy{}
	case ArchGPT:
		return gptPolicy{}
	case ArchMac:
		return macPolicy{}
	case ArchSun:
		return sunPolicy{}
	case ArchXbox:
		return xboxPolicy{}
	case ArchHumax:
		return humaxPolicy{}
	default:
		return nonePolicy{}
	}
}

// nonePolicy is the architecture-less fallback: every location is valid,
// nothing is filtered, no ordering is imposed.
type nonePolicy struct{}

func (nonePolicy) MinLocation(*Disk) uint64              { return 0 }
func (nonePolicy) IsKnownPart(Partition) bool             { return true }
func (nonePolicy) InitStructure(*Disk, *PartitionList)    {}
func (nonePolicy) InitPartOrder(*Disk, *PartitionList)    {}
func (nonePolicy) TestStructure(*PartitionList) bool      { return true }

// i386Policy implements the classic MBR/extended-partition layout.
type i386Policy struct{}

func (i386Policy) MinLocation(d *Disk) uint64 { return uint64(d.SectorSize) }

func (i386Policy) IsKnownPart(p Partition) bool {
	switch p.Kind {
	case FSUnknown:
		return false
	default:
		return true
	}
}

// InitStructure tags every admitted partition with the MBR type byte
// go-diskfs's partition/mbr package carries for its recognized Kind, the
// same decode/encode vocabulary mbr.Table entries use.
func (i386Policy) InitStructure(d *Disk, list *PartitionList) {
	for n := list.head; n != nil; n = n.next {
		n.part.Types.I386 = mbrTypeForKind(n.part.Kind)
	}
}

func (i386Policy) InitPartOrder(d *Disk, list *PartitionList) {
	order := 1
	for _, p := range list.Sorted() {
		if p.Status == StatusPrimary || p.Status == StatusPrimaryBoot || p.Status == StatusExtended {
			if order <= 4 {
				list.setOrder(p.Start, order)
				order++
			}
		}
	}
	seq := 5
	for _, p := range list.Sorted() {
		if p.Status == StatusLogical || p.Status == StatusExtendedInExtended {
			list.setOrder(p.Start, seq)
			seq++
		}
	}
}

func (i386Policy) TestStructure(list *PartitionList) bool {
	primaries := 0
	for _, p := range list.Slice() {
		if p.Status == StatusPrimary || p.Status == StatusPrimaryBoot || p.Status == StatusExtended {
			primaries++
		}
	}
	return primaries <= 4
}

// gptPolicy implements GUID Partition Table layout rules.
type gptPolicy struct{}

func (gptPolicy) MinLocation(d *Disk) uint64 {
	return 2*uint64(d.SectorSize) + 16384
}
func (gptPolicy) IsKnownPart(p Partition) bool { return p.Kind != FSUnknown }

// InitStructure tags every admitted partition with its GPT partition-type
// GUID, decoded through go-diskfs's partition/gpt.Type the same way its
// gpt.Table entries carry one, then parsed into the uuid.UUID the
// partition descriptor's GPTTypeGUID field already exposes.
func (gptPolicy) InitStructure(d *Disk, list *PartitionList) {
	for n := list.head; n != nil; n = n.next {
		if id, err := uuid.Parse(string(gptTypeForKind(n.part.Kind))); err == nil {
			n.part.GPTTypeGUID = id
		}
	}
}
func (gptPolicy) InitPartOrder(d *Disk, list *PartitionList) {
	for i, p := range list.Sorted() {
		list.setOrder(p.Start, i+1)
	}
}
func (gptPolicy) TestStructure(*PartitionList) bool { return true }

// macPolicy implements Apple Partition Map layout rules.
type macPolicy struct{}

func (macPolicy) MinLocation(*Disk) uint64   { return macBoundary }
func (macPolicy) IsKnownPart(p Partition) bool { return p.Kind != FSUnknown }
func (macPolicy) InitStructure(*Disk, *PartitionList) {
	// apple_partition_table bookkeeping: the map itself occupies the first
	// block(s); nothing further to normalize once the list has been built
	// from admitted descriptors.
}
func (macPolicy) InitPartOrder(d *Disk, list *PartitionList) {
	for i, p := range list.Sorted() {
		list.setOrder(p.Start, i+1)
	}
}
func (macPolicy) TestStructure(*PartitionList) bool { return true }

// sunPolicy implements Sun disklabel layout rules.
type sunPolicy struct{}

func (sunPolicy) MinLocation(d *Disk) uint64  { return d.CylinderSize() }
func (sunPolicy) IsKnownPart(p Partition) bool { return p.Kind != FSUnknown }
func (sunPolicy) InitStructure(*Disk, *PartitionList) {}
func (sunPolicy) InitPartOrder(d *Disk, list *PartitionList) {
	for i, p := range list.Sorted() {
		list.setOrder(p.Start, i+1)
	}
}
func (sunPolicy) TestStructure(*PartitionList) bool { return true }

// xboxPolicy implements the Xbox/Xbox360 fixed-layout partition table.
type xboxPolicy struct{}

func (xboxPolicy) MinLocation(*Disk) uint64   { return xboxMinLocation }
func (xboxPolicy) IsKnownPart(p Partition) bool { return p.Kind != FSUnknown }
func (xboxPolicy) InitStructure(*Disk, *PartitionList) {}
func (xboxPolicy) InitPartOrder(d *Disk, list *PartitionList) {
	for i, p := range list.Sorted() {
		list.setOrder(p.Start, i+1)
	}
}
func (xboxPolicy) TestStructure(*PartitionList) bool { return true }

// humaxPolicy implements the Humax PVR disk layout rules.
type humaxPolicy struct{}

func (humaxPolicy) MinLocation(d *Disk) uint64 { return uint64(d.SectorSize) }
func (humaxPolicy) IsKnownPart(p Partition) bool { return p.Kind != FSUnknown }
func (humaxPolicy) InitStructure(*Disk, *PartitionList) {}
func (humaxPolicy) InitPartOrder(d *Disk, list *PartitionList) {
	for i, p := range list.Sorted() {
		list.setOrder(p.Start, i+1)
	}
}
func (humaxPolicy) TestStructure(*PartitionList) bool { return true }

// mbrTypeForKind maps a recognized filesystem kind to the partition type
// byte go-diskfs's mbr.Partition.Type carries for it. Unrecognized kinds
// get mbr.Type(0), the same "empty" code an uninitialized mbr.Partition has.
func mbrTypeForKind(kind FSKind) mbr.Type {
	switch kind {
	case FSFAT12:
		return mbr.Type(0x01)
	case FSFAT16:
		return mbr.Type(0x06)
	case FSFAT32:
		return mbr.Type(0x0c)
	case FSNTFS, FSExFAT, FSReFS:
		return mbr.Type(0x07)
	case FSExt2, FSExt3, FSExt4:
		return mbr.Type(0x83)
	case FSLinSwap, FSLinSwap2, FSLinSwapOld, FSLinSwapSwapped:
		return mbr.Type(0x82)
	case FSLVM1, FSLVM2:
		return mbr.Type(0x8e)
	case FSMD, FSMD1:
		return mbr.Type(0xfd)
	case FSExtended:
		return mbr.Type(0x05)
	case FSExtendedLBA:
		return mbr.Type(0x0f)
	default:
		return mbr.Type(0x00)
	}
}

// gptTypeForKind maps a recognized filesystem kind to the well-known GPT
// partition-type GUID go-diskfs's gpt.Partition.Type carries for it
// (the "Linux filesystem data", "Linux swap", "Linux LVM", "Linux RAID" and
// "Microsoft basic data" GUIDs the UEFI/GPT spec assigns). Unrecognized
// kinds map to the all-zero GUID, gpt's own "unused entry" type.
func gptTypeForKind(kind FSKind) gpt.Type {
	switch kind {
	case FSNTFS, FSExFAT, FSReFS, FSFAT12, FSFAT16, FSFAT32:
		return gpt.Type("EBD0A0A2-B9E5-4433-87C0-68B6B72699C7")
	case FSExt2, FSExt3, FSExt4, FSBTRFS, FSXFSv1, FSXFSv2, FSXFSv3, FSXFSv4, FSXFSv5, FSJFS, FSF2FS:
		return gpt.Type("0FC63DAF-8483-4772-8E79-3D69D8477DE4")
	case FSLinSwap, FSLinSwap2, FSLinSwapOld, FSLinSwapSwapped:
		return gpt.Type("0657FD6D-A4AB-43C4-84E5-0933C84B4F4F")
	case FSLVM1, FSLVM2:
		return gpt.Type("E6D6D379-F507-44C2-A23C-238F2A3DF928")
	case FSMD, FSMD1:
		return gpt.Type("A19D880F-05FC-4D3B-A006-743F0F84911E")
	default:
		return gpt.Type("00000000-0000-0000-0000-000000000000")
	}
}

// setOrder is a small unexported helper shared by every policy's
// InitPartOrder, mutating Order in place by Start.
func (l *PartitionList) setOrder(start uint64, order int) {
	for n := l.head; n != nil; n = n.next {
		if n.part.Start == start {
			n.part.Order = order
			return
		}
	}
}
