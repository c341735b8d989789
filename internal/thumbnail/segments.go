package thumbnail

import "sort"

// JPEG start-of-image and end-of-image markers.
var (
	soiMarker = [2]byte{0xFF, 0xD8}
	eoiMarker = [2]byte{0xFF, 0xD9}
)

// Segment is a candidate embedded JPEG inside a RAW container, covering the
// byte range [Start, End) including both markers.
type Segment struct {
	Start int
	End   int
}

// Len returns the segment size in bytes.
func (s Segment) Len() int {
	return s.End - s.Start
}

// ScanSegments walks data once, pairing each start-of-image marker with the
// next end-of-image marker after it. Scanning resumes right after a claimed
// segment, so segments never overlap and the scan is linear in len(data). A
// start marker with no end marker after it terminates the scan.
func ScanSegments(data []byte) []Segment {
	var segments []Segment

	for i := 0; i+1 < len(data); {
		if data[i] != soiMarker[0] || data[i+1] != soiMarker[1] {
			i++
			continue
		}

		start := i
		end := -1
		for j := start + 2; j+1 < len(data); j++ {
			if data[j] == eoiMarker[0] && data[j+1] == eoiMarker[1] {
				end = j + 2
				break
			}
		}
		if end < 0 {
			break
		}

		segments = append(segments, Segment{Start: start, End: end})
		i = end
	}

	return segments
}

// rankSegments orders candidates largest first. Ties keep their position in
// the file.
func rankSegments(segments []Segment) []Segment {
	ranked := make([]Segment, len(segments))
	copy(ranked, segments)
	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].Len() > ranked[b].Len()
	})
	return ranked
}
