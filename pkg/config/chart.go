// Package config defines the chart styling configuration and its loading
// from YAML or JSON files with environment overrides.
package config

import (
	"fmt"
	"strings"
)

// FigureConfig controls the output canvas.
type FigureConfig struct {
	// Width and Height are the canvas size in pixels.
	Width  int `json:"width"`
	Height int `json:"height"`
	// Scale multiplies all coordinates, the SVG analogue of DPI.
	Scale float64 `json:"scale"`
}

// FontConfig controls text rendering.
type FontConfig struct {
	Family string `json:"family"`
	// Size is the base font size in pixels for axis and lane labels.
	Size int `json:"size"`
	// AnnotationSize is the font size for episode annotation boxes.
	AnnotationSize int `json:"annotation_size"`
}

// ColorConfig holds the fixed chart colors as hex codes or SVG color names.
type ColorConfig struct {
	Background string `json:"background"`
	Axis       string `json:"axis"`
	Grid       string `json:"grid"`
	Text       string `json:"text"`
	// NoCluster is used for segments whose cluster is null or outside the
	// palette range.
	NoCluster string `json:"no_cluster"`
	Connector string `json:"connector"`
}

// SegmentConfig controls how episode segments are drawn.
type SegmentConfig struct {
	// Height is the stroke width of a segment line in pixels.
	Height int `json:"height"`
	// OpenEndedDash is the SVG stroke-dasharray for open-ended segments.
	OpenEndedDash string `json:"open_ended_dash"`
}

// MarkerConfig controls the marker drawn for zero-length episodes.
type MarkerConfig struct {
	// Shape is one of "circle", "square", "diamond" or "triangle".
	Shape string `json:"shape"`
	Size  int    `json:"size"`
}

// MarginConfig is the space around the plot area in pixels.
type MarginConfig struct {
	Top    int `json:"top"`
	Bottom int `json:"bottom"`
	Left   int `json:"left"`
	Right  int `json:"right"`
}

// Chart is the complete styling configuration for timeline rendering.
type Chart struct {
	Figure  FigureConfig  `json:"figure"`
	Font    FontConfig    `json:"font"`
	Colors  ColorConfig   `json:"colors"`
	Segment SegmentConfig `json:"segment"`
	Marker  MarkerConfig  `json:"marker"`
	Margins MarginConfig  `json:"margins"`
	// Palette maps 1-based cluster labels to colors.
	Palette []string `json:"palette"`
	// HideLegend suppresses the cluster legend.
	HideLegend bool `json:"hide_legend"`
}

// Default returns the full default chart configuration.
func Default() *Chart {
	c := &Chart{}
	c.SetDefaults()
	return c
}

// SetDefaults fills unset fields with sane defaults.
func (c *Chart) SetDefaults() {
	if c.Figure.Width == 0 {
		c.Figure.Width = 1200
	}
	if c.Figure.Height == 0 {
		c.Figure.Height = 500
	}
	if c.Figure.Scale == 0 {
		c.Figure.Scale = 1.0
	}
	if c.Font.Family == "" {
		c.Font.Family = "Arial, sans-serif"
	}
	if c.Font.Size == 0 {
		c.Font.Size = 12
	}
	if c.Font.AnnotationSize == 0 {
		c.Font.AnnotationSize = 8
	}
	if c.Colors.Background == "" {
		c.Colors.Background = "#ffffff"
	}
	if c.Colors.Axis == "" {
		c.Colors.Axis = "#333333"
	}
	if c.Colors.Grid == "" {
		c.Colors.Grid = "#cccccc"
	}
	if c.Colors.Text == "" {
		c.Colors.Text = "#333333"
	}
	if c.Colors.NoCluster == "" {
		c.Colors.NoCluster = "gray"
	}
	if c.Colors.Connector == "" {
		c.Colors.Connector = "#999999"
	}
	if c.Segment.Height == 0 {
		c.Segment.Height = 6
	}
	if c.Segment.OpenEndedDash == "" {
		c.Segment.OpenEndedDash = "6,4"
	}
	if c.Marker.Shape == "" {
		c.Marker.Shape = "circle"
	}
	if c.Marker.Size == 0 {
		c.Marker.Size = 4
	}
	if c.Margins.Top == 0 {
		c.Margins.Top = 40
	}
	if c.Margins.Bottom == 0 {
		c.Margins.Bottom = 50
	}
	if c.Margins.Left == 0 {
		c.Margins.Left = 80
	}
	if c.Margins.Right == 0 {
		c.Margins.Right = 40
	}
	if len(c.Palette) == 0 {
		c.Palette = []string{"red", "green", "blue", "orange", "purple", "brown", "cyan"}
	}
}

var markerShapes = map[string]bool{
	"circle":   true,
	"square":   true,
	"diamond":  true,
	"triangle": true,
}

// Validate checks the configuration for values the renderer cannot work
// with.
func (c Chart) Validate() error {
	if c.Figure.Width <= 0 || c.Figure.Height <= 0 {
		return fmt.Errorf("figure size must be positive, got %dx%d", c.Figure.Width, c.Figure.Height)
	}
	if c.Figure.Scale <= 0 {
		return fmt.Errorf("figure scale must be positive, got %g", c.Figure.Scale)
	}
	if c.Margins.Left+c.Margins.Right >= c.Figure.Width {
		return fmt.Errorf("horizontal margins exceed figure width")
	}
	if c.Margins.Top+c.Margins.Bottom >= c.Figure.Height {
		return fmt.Errorf("vertical margins exceed figure height")
	}
	if !markerShapes[strings.ToLower(c.Marker.Shape)] {
		return fmt.Errorf("unknown marker shape %s", c.Marker.Shape)
	}
	if len(c.Palette) == 0 {
		return fmt.Errorf("palette must not be empty")
	}
	return nil
}
