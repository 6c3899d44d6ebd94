package book

import (
	"math"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/bookplay-cli/bookplay/constant"
)

// UnorderedKey is the sentinel ordering key for segments whose translation group
// declares no explicit order. It sorts after every keyed segment.
const UnorderedKey = math.MaxInt

// AudioSegment is a unit of narratable content: either a whole playable block or
// a sub-sentence span inside a block.
type AudioSegment struct {
	// ID keys the recording file for this segment.
	ID string
	// Sel is the element carrying the recording.
	Sel *goquery.Selection
	// Block is the enclosing playable block (equal to Sel for block segments).
	Block *goquery.Selection
	// IsBlock marks a whole-block segment as opposed to a sub-sentence span.
	IsBlock bool
	// Duration is the precomputed recording length in seconds; zero when the
	// markup omits it (no probing is attempted).
	Duration float64
	// EndTimes is the cumulative end-offset table for sub-spans of a block
	// recording, in seconds. Empty for span segments.
	EndTimes []float64
	// OrderingKey is inherited from the enclosing translation group; segments
	// play in ascending key order, document order breaking ties.
	OrderingKey int
	// ImageDescription marks segments narrating an image, whose container is
	// highlighted together with the text.
	ImageDescription bool
}

// String returns the segment identifier.
func (s *AudioSegment) String() string {
	return s.ID
}

// SubSpans returns the sub-sentence spans of a block segment in document order,
// one per end-time table entry.
func (s *AudioSegment) SubSpans() []*goquery.Selection {
	var spans []*goquery.Selection
	s.Block.Find("." + constant.AudioSentenceClass).Each(func(_ int, span *goquery.Selection) {
		spans = append(spans, span)
	})
	return spans
}

// AudioSegments scans the page for narratable segments, filtered to blocks that
// belong to currently-visible language groups. Segments are returned in document
// order; play order is decided by the narration engine's sort.
func (p *Page) AudioSegments() []*AudioSegment {
	var segments []*AudioSegment

	p.Root.Find("." + constant.AudioBlockClass).Each(func(_ int, block *goquery.Selection) {
		if !visible(block) {
			return
		}

		key := orderingKey(block)
		imageDesc := isImageDescription(block)

		if raw, ok := block.Attr(constant.EndTimesAttr); ok {
			// Whole-block recording with a sub-span timing table.
			segments = append(segments, &AudioSegment{
				ID:               block.AttrOr("id", ""),
				Sel:              block,
				Block:            block,
				IsBlock:          true,
				Duration:         durationOf(block),
				EndTimes:         parseEndTimes(raw),
				OrderingKey:      key,
				ImageDescription: imageDesc,
			})
			return
		}

		spans := block.Find("." + constant.AudioSentenceClass)
		if spans.Length() == 0 {
			if id, ok := block.Attr("id"); ok && id != "" {
				segments = append(segments, &AudioSegment{
					ID:               id,
					Sel:              block,
					Block:            block,
					IsBlock:          true,
					Duration:         durationOf(block),
					OrderingKey:      key,
					ImageDescription: imageDesc,
				})
			}
			return
		}

		// Per-sentence recordings inside the block.
		spans.Each(func(_ int, span *goquery.Selection) {
			if !visible(span) {
				return
			}
			segments = append(segments, &AudioSegment{
				ID:               span.AttrOr("id", ""),
				Sel:              span,
				Block:            block,
				Duration:         durationOf(span),
				OrderingKey:      key,
				ImageDescription: imageDesc,
			})
		})
	})

	return segments
}

// orderingKey resolves the tabindex-like play order inherited from the closest
// enclosing translation group.
func orderingKey(sel *goquery.Selection) int {
	group := sel.Closest("." + constant.TranslationGroupClass)
	if group.Length() == 0 {
		return UnorderedKey
	}

	raw, ok := group.Attr(constant.OrderingAttr)
	if !ok {
		return UnorderedKey
	}

	key, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return UnorderedKey
	}
	return key
}

func isImageDescription(sel *goquery.Selection) bool {
	return sel.Closest("."+constant.ImageDescriptionClass).Length() > 0
}

func durationOf(sel *goquery.Selection) float64 {
	raw, ok := sel.Attr(constant.DurationAttr)
	if !ok {
		return 0
	}

	d, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || d < 0 {
		return 0
	}
	return d
}

func parseEndTimes(raw string) []float64 {
	var times []float64
	for _, field := range strings.Fields(raw) {
		t, err := strconv.ParseFloat(field, 64)
		if err != nil {
			continue
		}
		times = append(times, t)
	}
	return times
}
