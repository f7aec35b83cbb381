// Package render turns a laid-out timeline chart into an SVG document.
package render

import (
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/dipendrapant/patient-trajectory/pkg/config"
	"github.com/dipendrapant/patient-trajectory/pkg/timeline"
)

// SVG renders the chart as a standalone SVG document using the given
// styling. A nil config uses the defaults.
func SVG(ch *timeline.Chart, cfg *config.Chart) (string, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return "", err
	}
	if ch == nil || len(ch.Lanes) == 0 {
		return "", fmt.Errorf("chart has no lanes")
	}

	// Element ids are prefixed per chart so several charts can be inlined
	// in one document.
	idPrefix := "tl-" + uuid.NewString()[:8]

	width := cfg.Figure.Width
	height := cfg.Figure.Height
	plotLeft := cfg.Margins.Left
	plotRight := width - cfg.Margins.Right
	plotTop := cfg.Margins.Top
	plotBottom := height - cfg.Margins.Bottom

	axis := ch.Axis
	span := axis.Max - axis.Min
	if span <= 0 {
		return "", fmt.Errorf("invalid axis span %g", span)
	}
	xPos := func(v float64) float64 {
		return float64(plotLeft) + (v-axis.Min)/span*float64(plotRight-plotLeft)
	}
	laneHeight := float64(plotBottom-plotTop) / float64(len(ch.Lanes))
	yCenter := func(lane int) float64 {
		return float64(plotTop) + laneHeight*float64(lane) + laneHeight/2
	}

	var svg strings.Builder
	svg.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg width="%g" height="%g" viewBox="0 0 %d %d" xmlns="http://www.w3.org/2000/svg">
<rect width="100%%" height="100%%" fill="%s"/>
<defs>
<style>
.lane-label { font-family: %s; font-size: %dpx; fill: %s; }
.tick-label { font-family: %s; font-size: %dpx; fill: %s; }
.annotation-text { font-family: %s; font-size: %dpx; fill: %s; }
.legend-text { font-family: %s; font-size: %dpx; fill: %s; }
</style>
<clipPath id="%s-plot"><rect x="%d" y="%d" width="%d" height="%d"/></clipPath>
</defs>
`, float64(width)*cfg.Figure.Scale, float64(height)*cfg.Figure.Scale, width, height,
		cfg.Colors.Background,
		cfg.Font.Family, cfg.Font.Size, cfg.Colors.Text,
		cfg.Font.Family, cfg.Font.Size-2, cfg.Colors.Text,
		cfg.Font.Family, cfg.Font.AnnotationSize, cfg.Colors.Text,
		cfg.Font.Family, cfg.Font.Size-2, cfg.Colors.Text,
		idPrefix, plotLeft, plotTop, plotRight-plotLeft, plotBottom-plotTop))

	drawGrid(&svg, ch, cfg, xPos, plotTop, plotBottom, plotLeft, plotRight)

	// Lane labels on the left edge.
	for i, lane := range ch.Lanes {
		svg.WriteString(fmt.Sprintf(`<text x="%d" y="%.1f" text-anchor="end" dominant-baseline="middle" class="lane-label">%s</text>`,
			plotLeft-8, yCenter(i), escapeXML(lane.Subject)))
		svg.WriteString("\n")
	}

	svg.WriteString(fmt.Sprintf(`<g clip-path="url(#%s-plot)">`, idPrefix))
	svg.WriteString("\n")
	for i, lane := range ch.Lanes {
		y := yCenter(i)
		for _, conn := range lane.Connectors {
			drawConnector(&svg, cfg, xPos(conn.FromX), xPos(conn.ToX), y, laneHeight)
		}
		for _, seg := range lane.Segments {
			drawSegment(&svg, cfg, seg, xPos(seg.Start), xPos(seg.End), y)
		}
	}
	svg.WriteString("</g>\n")

	// Annotations sit outside the clip so labels near the edges stay
	// readable.
	for i, lane := range ch.Lanes {
		y := yCenter(i)
		for _, seg := range lane.Segments {
			drawAnnotation(&svg, cfg, seg, xPos(seg.Start), y)
		}
	}

	if !cfg.HideLegend && (len(ch.Clusters) > 0 || ch.HasNoCluster) {
		drawLegend(&svg, ch, cfg, plotRight)
	}

	svg.WriteString("</svg>\n")
	return svg.String(), nil
}

// Save renders the chart and writes it to the given path.
func Save(ch *timeline.Chart, cfg *config.Chart, path string) error {
	content, err := SVG(ch, cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("error writing SVG file: %w", err)
	}
	return nil
}

// SegmentColor resolves the fill color for a segment: the 1-based palette
// entry for its cluster, or the no-cluster color when the cluster is null
// or outside the palette.
func SegmentColor(seg timeline.Segment, cfg *config.Chart) string {
	if seg.Cluster == nil {
		return cfg.Colors.NoCluster
	}
	idx := *seg.Cluster - 1
	if idx < 0 || idx >= len(cfg.Palette) {
		return cfg.Colors.NoCluster
	}
	return cfg.Palette[idx]
}

// AnnotationText joins the segment's annotation values as
// "column: value; column: value". Null values were already removed during
// layout, so absent columns simply do not appear.
func AnnotationText(annotations []timeline.Annotation) string {
	parts := make([]string, 0, len(annotations))
	for _, a := range annotations {
		parts = append(parts, fmt.Sprintf("%s: %s", a.Column, a.Value))
	}
	return strings.Join(parts, "; ")
}

func drawGrid(svg *strings.Builder, ch *timeline.Chart, cfg *config.Chart, xPos func(float64) float64, plotTop, plotBottom, plotLeft, plotRight int) {
	for _, tick := range ch.Axis.Ticks() {
		x := xPos(tick)
		svg.WriteString(fmt.Sprintf(`<line x1="%.1f" y1="%d" x2="%.1f" y2="%d" stroke="%s" stroke-width="0.5" opacity="0.6"/>`,
			x, plotTop, x, plotBottom, cfg.Colors.Grid))
		svg.WriteString("\n")
		svg.WriteString(fmt.Sprintf(`<text x="%.1f" y="%d" text-anchor="middle" class="tick-label">%s</text>`,
			x, plotBottom+cfg.Font.Size+4, escapeXML(ch.Axis.TickLabel(tick))))
		svg.WriteString("\n")
	}
	svg.WriteString(fmt.Sprintf(`<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="%s" stroke-width="1"/>`,
		plotLeft, plotBottom, plotRight, plotBottom, cfg.Colors.Axis))
	svg.WriteString("\n")
}

func drawSegment(svg *strings.Builder, cfg *config.Chart, seg timeline.Segment, x1, x2, y float64) {
	color := SegmentColor(seg, cfg)
	if x2-x1 < 1 {
		drawMarker(svg, cfg, x1, y, color)
		return
	}
	dash := ""
	if seg.OpenEnded {
		dash = fmt.Sprintf(` stroke-dasharray="%s"`, cfg.Segment.OpenEndedDash)
	}
	svg.WriteString(fmt.Sprintf(`<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="%d" stroke-linecap="round"%s/>`,
		x1, y, x2, y, color, cfg.Segment.Height, dash))
	svg.WriteString("\n")
}

// drawMarker draws the configured marker shape for zero-length episodes.
func drawMarker(svg *strings.Builder, cfg *config.Chart, x, y float64, color string) {
	size := float64(cfg.Marker.Size)

	switch strings.ToLower(cfg.Marker.Shape) {
	case "square":
		svg.WriteString(fmt.Sprintf(`<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"/>`,
			x-size, y-size, size*2, size*2, color))

	case "diamond":
		svg.WriteString(fmt.Sprintf(`<polygon points="%.1f,%.1f %.1f,%.1f %.1f,%.1f %.1f,%.1f" fill="%s"/>`,
			x, y-size, x+size, y, x, y+size, x-size, y, color))

	case "triangle":
		height := size * 1.5
		svg.WriteString(fmt.Sprintf(`<polygon points="%.1f,%.1f %.1f,%.1f %.1f,%.1f" fill="%s"/>`,
			x, y-height, x-size, y+height/2, x+size, y+height/2, color))

	default:
		svg.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s"/>`,
			x, y, size, color))
	}
	svg.WriteString("\n")
}

// drawConnector draws a shallow guide curve from one episode's end to the
// next episode's start within a lane.
func drawConnector(svg *strings.Builder, cfg *config.Chart, x1, x2, y, laneHeight float64) {
	midX := (x1 + x2) / 2
	ctrlY := y - laneHeight/4
	svg.WriteString(fmt.Sprintf(`<path d="M%.1f,%.1f Q%.1f,%.1f %.1f,%.1f" stroke="%s" stroke-width="1" fill="none"/>`,
		x1, y, midX, ctrlY, x2, y, cfg.Colors.Connector))
	svg.WriteString("\n")
}

func drawAnnotation(svg *strings.Builder, cfg *config.Chart, seg timeline.Segment, x, y float64) {
	text := AnnotationText(seg.Annotations)
	if text == "" {
		return
	}
	fontSize := cfg.Font.AnnotationSize
	textWidth := estimateTextWidth(text, fontSize)
	boxHeight := float64(fontSize) + 6
	boxY := y - float64(cfg.Segment.Height)/2 - boxHeight - 3

	svg.WriteString(fmt.Sprintf(`<rect x="%.1f" y="%.1f" width="%d" height="%.1f" rx="3" fill="white" stroke="grey" stroke-width="0.5" opacity="0.7"/>`,
		x+4, boxY, textWidth+8, boxHeight))
	svg.WriteString("\n")
	svg.WriteString(fmt.Sprintf(`<text x="%.1f" y="%.1f" class="annotation-text">%s</text>`,
		x+8, boxY+float64(fontSize)+1, escapeXML(text)))
	svg.WriteString("\n")
}

func drawLegend(svg *strings.Builder, ch *timeline.Chart, cfg *config.Chart, plotRight int) {
	labels := make([]string, 0, len(ch.Clusters)+1)
	for _, c := range ch.Clusters {
		labels = append(labels, fmt.Sprintf("Cluster %d", c))
	}
	if ch.HasNoCluster {
		labels = append(labels, "No cluster")
	}
	entries := len(labels)
	lineHeight := cfg.Font.Size + 6

	// Swatch, gaps and padding around the widest label.
	boxWidth := 36
	for _, label := range labels {
		if w := 36 + estimateTextWidth(label, cfg.Font.Size-2); w > boxWidth {
			boxWidth = w
		}
	}
	boxX := plotRight - boxWidth
	boxY := 8

	svg.WriteString(fmt.Sprintf(`<rect x="%d" y="%d" width="%d" height="%d" rx="3" fill="white" stroke="%s" stroke-width="0.5" opacity="0.9"/>`,
		boxX, boxY, boxWidth, entries*lineHeight+8, cfg.Colors.Axis))
	svg.WriteString("\n")

	row := 0
	writeEntry := func(color, label string) {
		y := boxY + 8 + row*lineHeight
		svg.WriteString(fmt.Sprintf(`<rect x="%d" y="%d" width="%d" height="%d" fill="%s"/>`,
			boxX+6, y, 12, cfg.Segment.Height, color))
		svg.WriteString("\n")
		svg.WriteString(fmt.Sprintf(`<text x="%d" y="%d" class="legend-text">%s</text>`,
			boxX+24, y+cfg.Segment.Height, escapeXML(label)))
		svg.WriteString("\n")
		row++
	}
	for _, c := range ch.Clusters {
		color := cfg.Colors.NoCluster
		if c >= 1 && c <= len(cfg.Palette) {
			color = cfg.Palette[c-1]
		}
		writeEntry(color, fmt.Sprintf("Cluster %d", c))
	}
	if ch.HasNoCluster {
		writeEntry(cfg.Colors.NoCluster, "No cluster")
	}
}

// estimateTextWidth estimates the width of text in pixels based on
// character count.
func estimateTextWidth(text string, fontSize int) int {
	avgCharWidth := float64(fontSize) * 0.6
	return int(float64(len(text)) * avgCharWidth)
}

// escapeXML escapes special XML characters so annotation and label text
// cannot break the SVG document.
func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, "\"", "&quot;")
	s = strings.ReplaceAll(s, "'", "&apos;")
	return s
}
