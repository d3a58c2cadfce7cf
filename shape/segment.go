package shape

import (
	"golang.org/x/text/unicode/bidi"
)

// Segment represents a contiguous run of text with the same direction.
type Segment struct {
	Text      string
	Start     int // rune index of the first rune
	End       int // rune index one past the last rune
	Direction Direction
}

// Segmenter splits text into directionally uniform runs.
type Segmenter interface {
	Segment(text string) []Segment
}

// BidiSegmenter splits text into runs by resolved bidi level using the
// Unicode bidirectional algorithm. Each returned segment can be shaped
// independently with its own direction.
type BidiSegmenter struct {
	// BaseDirection is the paragraph base direction used to resolve
	// neutral characters.
	BaseDirection Direction
}

// NewBidiSegmenter creates a segmenter with an LTR base direction.
func NewBidiSegmenter() *BidiSegmenter {
	return &BidiSegmenter{BaseDirection: DirectionLTR}
}

// Segment implements Segmenter.
func (s *BidiSegmenter) Segment(text string) []Segment {
	if text == "" {
		return nil
	}
	runes := []rune(text)
	levels := s.computeBidiLevels(text, len(runes))

	var segments []Segment
	start := 0
	for i := 1; i <= len(runes); i++ {
		if i < len(runes) && levels[i] == levels[start] {
			continue
		}
		dir := DirectionLTR
		if levels[start]%2 == 1 {
			dir = DirectionRTL
		}
		segments = append(segments, Segment{
			Text:      string(runes[start:i]),
			Start:     start,
			End:       i,
			Direction: dir,
		})
		start = i
	}
	return segments
}

// computeBidiLevels returns the resolved bidi embedding level per rune.
func (s *BidiSegmenter) computeBidiLevels(text string, runeCount int) []int {
	levels := make([]int, runeCount)

	var defaultDir bidi.Direction
	if s.BaseDirection == DirectionRTL {
		defaultDir = bidi.RightToLeft
	} else {
		defaultDir = bidi.Neutral
	}

	p := bidi.Paragraph{}
	_, _ = p.SetString(text, bidi.DefaultDirection(defaultDir))

	ordering, err := p.Order()
	if err != nil {
		return levels
	}

	// run.Pos() returns RUNE indices (start, end inclusive)
	for i := 0; i < ordering.NumRuns(); i++ {
		run := ordering.Run(i)
		startRune, endRune := run.Pos()
		runLevel := 0
		if run.Direction() == bidi.RightToLeft {
			runLevel = 1
		}
		for j := startRune; j <= endRune && j < len(levels); j++ {
			levels[j] = runLevel
		}
	}

	return levels
}
