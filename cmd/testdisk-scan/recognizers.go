package main

import (
	"encoding/binary"

	"github.com/open-edge-platform/testdisk-scan/internal/diskscan"
)

// defaultRecognizers wires a minimal, magic-byte-only signature battery so
// the CLI has something real to scan with out of the box. Real deployments
// are expected to supply a fuller battery (the spec treats recover_<FS> as
// externally provided, §6); this is deliberately thin, grounded the way the
// teacher's fs_raw.go reads raw on-media structures byte by byte rather
// than through a parsing library.
func defaultRecognizers() diskscan.Recognizers {
	return diskscan.Recognizers{
		Ext2:     recoverExt2,
		NTFS:     recoverNTFS,
		FAT:      recoverFATBackup,
		PartType: recoverBootSignature,
		Type8:    nil,
		Type16:   nil,
		Type64:   nil,
		Type128:  nil,
		Type2048: nil,
		MDRaid:   nil,
		ExFAT:    nil,
		HFS:      nil,
	}
}

// recoverExt2 validates the ext2/3/4 magic 0xEF53 at byte 56 of a 1 KiB
// superblock buffer and requires a non-zero block-group number at byte 90.
func recoverExt2(d *diskscan.Disk, buf []byte, offset uint64, out *diskscan.Partition) bool {
	if len(buf) < 1024 {
		return false
	}
	magic := binary.LittleEndian.Uint16(buf[56:58])
	if magic != 0xEF53 {
		return false
	}
	blockGroupNr := binary.LittleEndian.Uint16(buf[90:92])
	if blockGroupNr == 0 {
		return false
	}
	logBlockSize := binary.LittleEndian.Uint32(buf[24:28])
	blockSize := uint64(1024) << logBlockSize
	blocksCount := uint64(binary.LittleEndian.Uint32(buf[4:8]))

	displacement := 3 * 8 * blockSize * blockSize
	if logBlockSize == 0 {
		displacement += blockSize
	}
	if offset < displacement {
		return false
	}

	out.Start = offset - displacement
	out.Size = blocksCount * blockSize
	out.Kind = diskscan.FSExt4
	out.SBOffset = displacement
	return true
}

// recoverNTFS validates the "NTFS    " OEM ID at byte 3 of a boot sector.
func recoverNTFS(d *diskscan.Disk, buf []byte, offset uint64, out *diskscan.Partition) bool {
	if len(buf) < 512 {
		return false
	}
	if string(buf[3:11]) != "NTFS    " {
		return false
	}
	sectorsPerCluster := uint64(buf[13])
	bytesPerSector := uint64(binary.LittleEndian.Uint16(buf[11:13]))
	totalSectors := binary.LittleEndian.Uint64(buf[40:48])
	if bytesPerSector == 0 || sectorsPerCluster == 0 {
		return false
	}
	out.Size = totalSectors * bytesPerSector
	out.Kind = diskscan.FSNTFS
	out.Start = offset
	return true
}

// recoverFATBackup validates a FAT32 backup boot sector signature 0x55AA.
func recoverFATBackup(d *diskscan.Disk, buf []byte, offset uint64, out *diskscan.Partition) bool {
	if len(buf) < 512 {
		return false
	}
	if buf[510] != 0x55 || buf[511] != 0xAA {
		return false
	}
	totalSectors := uint64(binary.LittleEndian.Uint32(buf[32:36]))
	bytesPerSector := uint64(binary.LittleEndian.Uint16(buf[11:13]))
	if bytesPerSector == 0 {
		return false
	}
	out.Size = totalSectors * bytesPerSector
	out.Kind = diskscan.FSFAT32
	out.Start = offset
	return true
}

// recoverBootSignature is the stand-in for the partition-table probes
// (#6-#8): it only checks for the 0x55AA boot signature at byte 510/511
// and emits an unknown-kind candidate, leaving real MBR table walking to a
// fuller recognizer battery.
func recoverBootSignature(d *diskscan.Disk, buf []byte, offset uint64, out *diskscan.Partition) bool {
	if len(buf) < 512 {
		return false
	}
	if buf[510] != 0x55 || buf[511] != 0xAA {
		return false
	}
	out.Start = offset
	out.Size = 2 * uint64(d.SectorSize)
	out.Kind = diskscan.FSUnknown
	return true
}
