package diskscan

import "testing"

func TestI386InitStructureTagsMBRType(t *testing.T) {
	d := testDisk(t, ArchI386)
	list := NewPartitionList()
	list.Insert(Partition{Start: miB, Size: miB, Kind: FSExt4, Status: StatusPrimary})
	list.Insert(Partition{Start: 2 * miB, Size: miB, Kind: FSFAT32, Status: StatusPrimary})

	i386Policy{}.InitStructure(d, list)

	for _, p := range list.Slice() {
		switch p.Kind {
		case FSExt4:
			if p.Types.I386 != 0x83 {
				t.Errorf("ext4 partition should get mbr type 0x83, got 0x%x", p.Types.I386)
			}
		case FSFAT32:
			if p.Types.I386 != 0x0c {
				t.Errorf("FAT32 partition should get mbr type 0x0c, got 0x%x", p.Types.I386)
			}
		}
	}
}

func TestGPTInitStructureTagsTypeGUID(t *testing.T) {
	d := testDisk(t, ArchGPT)
	list := NewPartitionList()
	list.Insert(Partition{Start: miB, Size: miB, Kind: FSExt4, Status: StatusPrimary})

	gptPolicy{}.InitStructure(d, list)

	p := list.Slice()[0]
	want := "0fc63daf-8483-4772-8e79-3d69d8477de4"
	if p.GPTTypeGUID.String() != want {
		t.Errorf("ext4 partition should get Linux filesystem GUID %s, got %s", want, p.GPTTypeGUID)
	}
}

func TestMBRTypeForKindUnknownIsEmpty(t *testing.T) {
	if got := mbrTypeForKind(FSUnknown); got != 0x00 {
		t.Errorf("unrecognized kind should map to the empty mbr type, got 0x%x", got)
	}
}
