package tables

import (
	"fmt"

	"github.com/tsawler/census/layout"
)

// Strategy names the edge source for one axis.
type Strategy string

const (
	// StrategyLines uses ruling lines and rectangle edges.
	StrategyLines Strategy = "lines"
	// StrategyLinesStrict uses ruling lines only.
	StrategyLinesStrict Strategy = "lines_strict"
	// StrategyText infers edges from aligned words.
	StrategyText Strategy = "text"
)

// Settings controls table finding. All distances are in points.
type Settings struct {
	Vertical   Strategy `yaml:"vertical" json:"vertical"`
	Horizontal Strategy `yaml:"horizontal" json:"horizontal"`

	// SnapTolerance is how far apart parallel edges may be and still be
	// snapped onto one position.
	SnapTolerance float64 `yaml:"snap_tolerance" json:"snap_tolerance"`

	// JoinTolerance is the largest gap bridged between collinear edges.
	JoinTolerance float64 `yaml:"join_tolerance" json:"join_tolerance"`

	// EdgeMinLength drops shorter edges after merging.
	EdgeMinLength float64 `yaml:"edge_min_length" json:"edge_min_length"`

	// IntersectionTolerance is how far an edge may stop short of a
	// perpendicular edge and still intersect it.
	IntersectionTolerance float64 `yaml:"intersection_tolerance" json:"intersection_tolerance"`

	// RulingThickness is the largest side a rectangle may have to count as
	// a ruling line.
	RulingThickness float64 `yaml:"ruling_thickness" json:"ruling_thickness"`

	// TextXTolerance and TextYTolerance group glyphs into words and lines,
	// both for cell text and for the text strategy.
	TextXTolerance float64 `yaml:"text_x_tolerance" json:"text_x_tolerance"`
	TextYTolerance float64 `yaml:"text_y_tolerance" json:"text_y_tolerance"`

	// MinWordsVertical and MinWordsHorizontal are how many aligned words
	// the text strategy needs before it draws an edge.
	MinWordsVertical   int `yaml:"min_words_vertical" json:"min_words_vertical"`
	MinWordsHorizontal int `yaml:"min_words_horizontal" json:"min_words_horizontal"`
}

// DefaultSettings returns the permissive line-following configuration.
func DefaultSettings() Settings {
	return Settings{
		Vertical:              StrategyLines,
		Horizontal:            StrategyLines,
		SnapTolerance:         3,
		JoinTolerance:         3,
		EdgeMinLength:         3,
		IntersectionTolerance: 3,
		RulingThickness:       2,
		TextXTolerance:        3,
		TextYTolerance:        3,
		MinWordsVertical:      3,
		MinWordsHorizontal:    1,
	}
}

// StrictSettings follows ruling lines exactly with a tight snap tolerance.
func StrictSettings() Settings {
	s := DefaultSettings()
	s.Vertical = StrategyLinesStrict
	s.Horizontal = StrategyLinesStrict
	s.SnapTolerance = 1
	s.JoinTolerance = 1
	return s
}

// TextSettings infers both axes from word alignment.
func TextSettings() Settings {
	s := DefaultSettings()
	s.Vertical = StrategyText
	s.Horizontal = StrategyText
	return s
}

// Validate checks that both strategies are registered and tolerances are
// not negative.
func (s Settings) Validate() error {
	for _, st := range []Strategy{s.Vertical, s.Horizontal} {
		if GetEdgeFinder(st) == nil {
			return fmt.Errorf("tables: unknown strategy %q", st)
		}
	}
	if s.SnapTolerance < 0 || s.JoinTolerance < 0 || s.IntersectionTolerance < 0 ||
		s.EdgeMinLength < 0 || s.RulingThickness < 0 {
		return fmt.Errorf("tables: negative tolerance in %s", s)
	}
	return nil
}

// String summarizes the settings for logs.
func (s Settings) String() string {
	return fmt.Sprintf("%s/%s snap=%g join=%g", s.Vertical, s.Horizontal, s.SnapTolerance, s.JoinTolerance)
}

func (s Settings) layoutConfig() layout.Config {
	cfg := layout.DefaultConfig()
	if s.TextXTolerance > 0 {
		cfg.XTolerance = s.TextXTolerance
	}
	if s.TextYTolerance > 0 {
		cfg.YTolerance = s.TextYTolerance
	}
	return cfg
}
