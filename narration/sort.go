package narration

import (
	"slices"

	"github.com/bookplay-cli/bookplay/book"
)

// SortAudioSegments orders segments for playback. Segments carrying a numeric
// ordering key play first, in ascending key order; segments without one keep
// their document order after all keyed segments. The sort is stable, so equal
// keys never reorder.
func SortAudioSegments(segments []*book.AudioSegment) {
	slices.SortStableFunc(segments, func(a, b *book.AudioSegment) int {
		switch {
		case a.OrderingKey < b.OrderingKey:
			return -1
		case a.OrderingKey > b.OrderingKey:
			return 1
		default:
			return 0
		}
	})
}
