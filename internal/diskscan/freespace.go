package diskscan

// FreeExtent is one gap the scanner leaves behind for the carving engine to
// consume (§3 "Search-space allocation list"): a half-open [Start, End)
// byte range with no admitted partition. BuildFreeSpace always sets Kind to
// FSUnknown; extents are not tagged with a neighboring partition's kind.
type FreeExtent struct {
	Start, End uint64
	Kind       FSKind
}

// BuildFreeSpace derives the free-extent list from the good list's
// admitted partitions, for consumption by the (out-of-scope, §1)
// file-carving engine. The scanner only initializes this list; it never
// reads from it.
func BuildFreeSpace(d *Disk, good *PartitionList) []FreeExtent {
	parts := good.Sorted()

	var extents []FreeExtent
	cursor := uint64(0)
	for _, p := range parts {
		if p.Start > cursor {
			extents = append(extents, FreeExtent{Start: cursor, End: p.Start, Kind: FSUnknown})
		}
		end := p.Start + p.Size
		if end > cursor {
			cursor = end
		}
	}
	if cursor < d.DeclaredSize {
		extents = append(extents, FreeExtent{Start: cursor, End: d.DeclaredSize, Kind: FSUnknown})
	}
	return extents
}
