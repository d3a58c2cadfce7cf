package shape

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/go-text/typesetting/di"
	gtfont "github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/math/fixed"

	"github.com/gogpu/textmesh/font"
)

// HarfBuzzShaper provides OpenType text shaping using go-text/typesetting.
// It supports ligature substitution, kerning pairs, contextual alternates,
// right-to-left scripts, and complex scripts (Devanagari, Thai, etc.).
//
// Text is first split into directionally uniform runs by a BidiSegmenter,
// then each run is shaped with its own direction and script. Advances and
// offsets are reported in font design units: the shaper feeds the font's
// units-per-em as the shaping size, so no pixel scale is baked in.
//
// HarfBuzzShaper is safe for concurrent use. It caches parsed
// gtfont.Font objects (which are thread-safe) and creates lightweight
// gtfont.Face instances per Shape() call (gtfont.Face is NOT safe for
// concurrent use). The HarfbuzzShaper instances are pooled via sync.Pool
// since they also are not concurrent-safe.
type HarfBuzzShaper struct {
	// segmenter splits input text into bidi runs before shaping.
	segmenter Segmenter

	// shaperPool pools shaping.HarfbuzzShaper instances for concurrent use.
	shaperPool sync.Pool

	// mu protects the font cache.
	mu sync.RWMutex

	// fontCache maps Source pointers to parsed go-text Font objects.
	// gtfont.Font is read-only and safe for concurrent use, unlike
	// gtfont.Face. This avoids re-parsing the font data on every call.
	fontCache map[*font.Source]*gtfont.Font
}

// NewHarfBuzzShaper creates a shaper backed by go-text/typesetting's
// HarfBuzz implementation.
func NewHarfBuzzShaper() *HarfBuzzShaper {
	return &HarfBuzzShaper{
		segmenter: NewBidiSegmenter(),
		shaperPool: sync.Pool{
			New: func() any {
				return &shaping.HarfbuzzShaper{}
			},
		},
		fontCache: make(map[*font.Source]*gtfont.Font),
	}
}

// Shape implements the Shaper interface.
func (s *HarfBuzzShaper) Shape(src *font.Source, text string) ([]Glyph, error) {
	if text == "" {
		return nil, nil
	}
	if src == nil {
		return nil, ErrNilSource
	}

	goTextFont, err := s.getOrCreateFont(src)
	if err != nil {
		return nil, fmt.Errorf("shape: parse font %q: %w", src.Name(), err)
	}

	// gtfont.Face is NOT safe for concurrent use, so each Shape() call
	// gets its own instance. gtfont.NewFace is cheap, it wraps the
	// thread-safe *Font and initializes glyph caches.
	goTextFace := gtfont.NewFace(goTextFont)

	// Shaping at the em size keeps advances in font design units.
	upem := src.Parsed().UnitsPerEm()
	size := fixed.I(upem)

	runes := []rune(text)

	hbShaper := s.shaperPool.Get().(*shaping.HarfbuzzShaper)
	defer s.shaperPool.Put(hbShaper)

	var glyphs []Glyph
	for _, seg := range s.segmenter.Segment(text) {
		input := shaping.Input{
			Text:      runes,
			RunStart:  seg.Start,
			RunEnd:    seg.End,
			Direction: mapDirection(seg.Direction),
			Face:      goTextFace,
			Size:      size,
			Script:    detectScript(runes[seg.Start:seg.End]),
			Language:  language.NewLanguage("en"),
		}
		output := hbShaper.Shape(input)
		glyphs = convertGlyphs(glyphs, output.Glyphs, input.Direction)
	}
	return glyphs, nil
}

// getOrCreateFont returns a cached go-text Font for the given source,
// parsing and caching on first use.
func (s *HarfBuzzShaper) getOrCreateFont(src *font.Source) (*gtfont.Font, error) {
	// Fast path: check cache with read lock.
	s.mu.RLock()
	if f, ok := s.fontCache[src]; ok {
		s.mu.RUnlock()
		return f, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	// Double-check after acquiring write lock.
	if f, ok := s.fontCache[src]; ok {
		return f, nil
	}

	reader := bytes.NewReader(src.Data())
	goTextFace, err := gtfont.ParseTTF(reader)
	if err != nil {
		return nil, err
	}

	// Cache the Font (thread-safe), not the Face.
	s.fontCache[src] = goTextFace.Font
	return goTextFace.Font, nil
}

// RemoveSource removes the cached parsed font for a specific Source.
func (s *HarfBuzzShaper) RemoveSource(src *font.Source) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.fontCache, src)
}

// ClearCache removes all cached parsed fonts.
func (s *HarfBuzzShaper) ClearCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fontCache = make(map[*font.Source]*gtfont.Font)
}

// mapDirection converts shape.Direction to go-text's di.Direction.
func mapDirection(d Direction) di.Direction {
	if d == DirectionRTL {
		return di.DirectionRTL
	}
	return di.DirectionLTR
}

// detectScript inspects the runes and returns the script of the first
// non-space character. For mixed-script text within one bidi run this is
// a heuristic; split runs by script before shaping if that matters.
func detectScript(runes []rune) language.Script {
	for _, r := range runes {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			continue
		}
		return language.LookupScript(r)
	}
	return language.Latin
}

// convertGlyphs appends go-text output glyphs to dst in our Glyph format.
func convertGlyphs(dst []Glyph, glyphs []shaping.Glyph, dir di.Direction) []Glyph {
	for _, g := range glyphs {
		out := Glyph{
			GID:     font.GlyphID(uint16(g.GlyphID)),
			Cluster: g.TextIndex(),
			XOffset: fixedToFloat(g.XOffset),
			YOffset: fixedToFloat(g.YOffset),
		}
		if dir.IsVertical() {
			out.YAdvance = fixedToFloat(g.Advance)
		} else {
			out.XAdvance = fixedToFloat(g.Advance)
		}
		dst = append(dst, out)
	}
	return dst
}

// fixedToFloat converts a fixed.Int26_6 value to float64.
func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64.0
}
