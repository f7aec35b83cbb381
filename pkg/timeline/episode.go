// Package timeline lays out prepared episode tables as per-subject lanes
// of positioned segments, ready for rendering.
package timeline

import (
	"time"

	"github.com/dipendrapant/patient-trajectory/pkg/logger"
)

// Axis selects the horizontal coordinate system.
type Axis int

const (
	// AxisAge positions episodes by a numeric column, with durations
	// derived from the episode dates when present.
	AxisAge Axis = iota
	// AxisDate positions episodes by calendar date, expressed as days
	// since the earliest start in the table.
	AxisDate
)

// ConnectOrder selects how consecutive episodes of a subject are paired
// when connecting curves are requested.
type ConnectOrder int

const (
	// ConnectChronological sorts each subject's episodes by start before
	// pairing them. This is the default.
	ConnectChronological ConnectOrder = iota
	// ConnectInputOrder pairs episodes in table row order. With unsorted
	// input this can draw visually crossing curves; it exists for parity
	// with datasets whose row order is meaningful.
	ConnectInputOrder
)

// Limits are explicit axis bounds in axis units (years of age for AxisAge,
// days since origin for AxisDate).
type Limits struct {
	Min float64
	Max float64
}

// Options configures the layout of one chart.
type Options struct {
	// SubjectColumn identifies the lane each episode belongs to. Required.
	SubjectColumn string
	// StartColumn and EndColumn name the episode date columns. StartColumn
	// is required for AxisDate and for computing durations on AxisAge.
	StartColumn string
	EndColumn   string
	// PositionColumn names the numeric column giving the start position on
	// AxisAge. Required for AxisAge, ignored for AxisDate.
	PositionColumn string
	// ClusterColumn names the integer column used for color coding.
	// Optional; null values get the no-cluster style.
	ClusterColumn string
	// AnnotationColumns lists columns whose values are shown as text next
	// to each segment. Null values are skipped.
	AnnotationColumns []string
	// Axis selects age or calendar positioning.
	Axis Axis
	// Limits fixes the axis bounds. Nil means automatic bounds padded to
	// the tick step.
	Limits *Limits
	// Connect draws curves between consecutive episodes of each subject.
	Connect bool
	// ConnectOrder selects row order or chronological pairing.
	ConnectOrder ConnectOrder
	// Logger receives layout diagnostics. Nil means no logging.
	Logger logger.Logger
}

// Annotation is one labeled value shown next to a segment.
type Annotation struct {
	Column string
	Value  string
}

// Segment is one episode placed on the axis.
type Segment struct {
	// Start and End are axis coordinates. For open-ended segments End is
	// the axis upper bound.
	Start float64
	End   float64
	// OpenEnded marks segments whose episode has no end date.
	OpenEnded bool
	// Cluster is the 1-based cluster label, nil when absent.
	Cluster *int
	// Annotations holds the requested annotation values in column order,
	// nulls already removed.
	Annotations []Annotation
	// Row is the source row index in the input table.
	Row int
	// StartDate is the parsed episode start, zero when the column was
	// null or not configured.
	StartDate time.Time
}

// Connector links one episode's end to the next episode's start within a
// lane. Coordinates are axis units.
type Connector struct {
	FromX float64
	ToX   float64
}

// Lane holds all segments of one subject.
type Lane struct {
	Subject    string
	Segments   []Segment
	Connectors []Connector
}

// Scale describes the computed horizontal axis.
type Scale struct {
	Kind Axis
	Min  float64
	Max  float64
	// TickStep is the distance between grid lines in axis units.
	TickStep float64
	// Origin anchors AxisDate coordinates: x is days since Origin.
	Origin time.Time
}

// Chart is the laid-out result, one lane per subject in order of first
// appearance.
type Chart struct {
	Lanes []Lane
	Axis  Scale
	// Clusters lists the distinct non-null cluster labels in order of
	// first appearance, for the legend.
	Clusters []int
	// HasNoCluster reports whether any segment lacks a cluster label.
	HasNoCluster bool
}
