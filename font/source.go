package font

import (
	"fmt"
	"os"
	"sync/atomic"
)

// sourceIDCounter issues unique IDs for Sources, used as cache keys by
// downstream glyph mesh caches.
var sourceIDCounter atomic.Uint64

// Source represents a loaded font file.
// One Source feeds every stage of the pipeline: shaping reads the raw data,
// outline extraction reads the parsed form. Source is heavyweight and
// should be shared across the application.
//
// Source is safe for concurrent use after creation.
// Source must not be copied after creation (enforced by copyCheck).
type Source struct {
	// addr is used for copy protection (Ebitengine pattern).
	// It must point to the Source itself.
	addr *Source

	// id is a process-unique identifier for cache keys.
	id uint64

	// Font data
	data   []byte
	parsed ParsedFont // Abstracted font interface (pluggable backend)

	// Metadata
	name string

	// Configuration
	config sourceConfig
}

// SourceOption configures a Source.
type SourceOption func(*sourceConfig)

type sourceConfig struct {
	parserName string
}

func defaultSourceConfig() sourceConfig {
	return sourceConfig{parserName: defaultParserName}
}

// WithParserBackend selects a registered parser backend by name.
// The default backend is "ximage" (golang.org/x/image).
func WithParserBackend(name string) SourceOption {
	return func(c *sourceConfig) {
		c.parserName = name
	}
}

// NewSource creates a Source from font data (TTF or OTF).
// The data slice is copied internally and can be reused after this call.
func NewSource(data []byte, opts ...SourceOption) (*Source, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFontData
	}

	config := defaultSourceConfig()
	for _, opt := range opts {
		opt(&config)
	}

	parser := getParser(config.parserName)
	parsed, err := parser.Parse(data)
	if err != nil {
		return nil, err
	}

	dataCopy := make([]byte, len(data))
	copy(dataCopy, data)

	s := &Source{
		id:     sourceIDCounter.Add(1),
		data:   dataCopy,
		parsed: parsed,
		name:   parsed.Name(),
		config: config,
	}
	s.addr = s // Self-reference for copy detection

	return s, nil
}

// NewSourceFromFile loads a Source from a font file path.
func NewSourceFromFile(path string, opts ...SourceOption) (*Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("font: read %s: %w", path, err)
	}
	return NewSource(data, opts...)
}

// copyCheck panics if the Source was copied after creation.
func (s *Source) copyCheck() {
	if s.addr != s {
		panic("font: illegal use of non-zero Source copied by value")
	}
}

// ID returns the process-unique identifier of this Source.
func (s *Source) ID() uint64 {
	s.copyCheck()
	return s.id
}

// Name returns the font family name, or empty string if unavailable.
func (s *Source) Name() string {
	s.copyCheck()
	return s.name
}

// Data returns the raw font bytes. The returned slice must not be modified.
func (s *Source) Data() []byte {
	s.copyCheck()
	return s.data
}

// Parsed returns the parsed font.
func (s *Source) Parsed() ParsedFont {
	s.copyCheck()
	return s.parsed
}
