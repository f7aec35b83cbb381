package timeline

import (
	"fmt"
	"sort"
	"time"

	"github.com/dipendrapant/patient-trajectory/pkg/dataset"
	"github.com/dipendrapant/patient-trajectory/pkg/logger"
)

// daysPerYear converts day spans to fractional years on the age axis.
const daysPerYear = 365.2425

// Build lays out the prepared table as a chart: one lane per subject, one
// segment per row, positioned on the chosen axis. Row order within a lane
// is preserved; subjects appear in order of first occurrence.
func Build(t *dataset.Table, opts Options) (*Chart, error) {
	log := opts.Logger
	if log == nil {
		log = logger.NopLogger{}
	}
	if err := opts.validate(t); err != nil {
		return nil, err
	}
	if t.NumRows() == 0 {
		return nil, fmt.Errorf("no episodes to plot")
	}

	rows, origin, err := collectRows(t, opts)
	if err != nil {
		return nil, err
	}
	log.Debugf("collected %d episodes across axis kind %d", len(rows), opts.Axis)

	scale, err := buildScale(rows, opts, origin)
	if err != nil {
		return nil, err
	}
	log.Debugf("axis [%g, %g] tick step %g", scale.Min, scale.Max, scale.TickStep)

	chart := &Chart{Axis: scale}
	laneIndex := map[string]int{}
	clusterSeen := map[int]bool{}
	for _, r := range rows {
		i, ok := laneIndex[r.subject]
		if !ok {
			i = len(chart.Lanes)
			laneIndex[r.subject] = i
			chart.Lanes = append(chart.Lanes, Lane{Subject: r.subject})
		}
		seg := Segment{
			Start:       r.start,
			End:         r.end,
			OpenEnded:   r.openEnded,
			Cluster:     r.cluster,
			Annotations: r.annotations,
			Row:         r.row,
			StartDate:   r.startDate,
		}
		if seg.OpenEnded {
			seg.End = scale.Max
		}
		if r.cluster != nil {
			if !clusterSeen[*r.cluster] {
				clusterSeen[*r.cluster] = true
				chart.Clusters = append(chart.Clusters, *r.cluster)
			}
		} else {
			chart.HasNoCluster = true
		}
		chart.Lanes[i].Segments = append(chart.Lanes[i].Segments, seg)
	}

	if opts.Connect {
		for i := range chart.Lanes {
			chart.Lanes[i].Connectors = connectors(chart.Lanes[i].Segments, opts.ConnectOrder)
		}
	}

	return chart, nil
}

func (o Options) validate(t *dataset.Table) error {
	if o.SubjectColumn == "" {
		return fmt.Errorf("subject column is required")
	}
	if _, err := t.ColumnIndex(o.SubjectColumn); err != nil {
		return err
	}
	switch o.Axis {
	case AxisAge:
		if o.PositionColumn == "" {
			return fmt.Errorf("position column is required for the age axis")
		}
		if _, err := t.ColumnIndex(o.PositionColumn); err != nil {
			return err
		}
	case AxisDate:
		if o.StartColumn == "" {
			return fmt.Errorf("start column is required for the date axis")
		}
	default:
		return fmt.Errorf("unknown axis kind %d", o.Axis)
	}
	for _, col := range []string{o.StartColumn, o.EndColumn, o.ClusterColumn} {
		if col == "" {
			continue
		}
		if _, err := t.ColumnIndex(col); err != nil {
			return err
		}
	}
	for _, col := range o.AnnotationColumns {
		if _, err := t.ColumnIndex(col); err != nil {
			return err
		}
	}
	if o.Limits != nil && o.Limits.Min >= o.Limits.Max {
		return fmt.Errorf("invalid axis limits: min %g must be below max %g", o.Limits.Min, o.Limits.Max)
	}
	return nil
}

type layoutRow struct {
	subject     string
	start       float64
	end         float64
	openEnded   bool
	cluster     *int
	annotations []Annotation
	row         int
	startDate   time.Time
}

// collectRows extracts one layoutRow per table row. For AxisDate the
// returned origin is the earliest start date; coordinates are days since
// that origin.
func collectRows(t *dataset.Table, opts Options) ([]layoutRow, time.Time, error) {
	n := t.NumRows()

	starts := make([]time.Time, n)
	hasStart := make([]bool, n)
	if opts.StartColumn != "" {
		for r := 0; r < n; r++ {
			cell, err := t.Value(r, opts.StartColumn)
			if err != nil {
				return nil, time.Time{}, err
			}
			if cell.IsNull() {
				continue
			}
			ts, err := cell.Time()
			if err != nil {
				return nil, time.Time{}, fmt.Errorf("row %d: %w", r, err)
			}
			starts[r] = ts
			hasStart[r] = true
		}
	}

	var origin time.Time
	if opts.Axis == AxisDate {
		for r := 0; r < n; r++ {
			if !hasStart[r] {
				return nil, time.Time{}, fmt.Errorf("row %d: start date is required on the date axis", r)
			}
			if origin.IsZero() || starts[r].Before(origin) {
				origin = starts[r]
			}
		}
	}

	rows := make([]layoutRow, 0, n)
	for r := 0; r < n; r++ {
		subjectCell, err := t.Value(r, opts.SubjectColumn)
		if err != nil {
			return nil, time.Time{}, err
		}
		if subjectCell.IsNull() {
			return nil, time.Time{}, fmt.Errorf("row %d: subject is null", r)
		}

		var endDate time.Time
		hasEnd := false
		if opts.EndColumn != "" {
			cell, err := t.Value(r, opts.EndColumn)
			if err != nil {
				return nil, time.Time{}, err
			}
			if !cell.IsNull() {
				endDate, err = cell.Time()
				if err != nil {
					return nil, time.Time{}, fmt.Errorf("row %d: %w", r, err)
				}
				hasEnd = true
			}
		}
		if hasStart[r] && hasEnd && endDate.Before(starts[r]) {
			return nil, time.Time{}, fmt.Errorf(
				"row %d (subject %s): episode end %s precedes start %s",
				r, subjectCell.Text(), endDate.Format("2006-01-02"), starts[r].Format("2006-01-02"))
		}

		lr := layoutRow{subject: subjectCell.Text(), row: r}
		if hasStart[r] {
			lr.startDate = starts[r]
		}

		switch opts.Axis {
		case AxisAge:
			posCell, err := t.Value(r, opts.PositionColumn)
			if err != nil {
				return nil, time.Time{}, err
			}
			pos, err := posCell.Float()
			if err != nil {
				return nil, time.Time{}, fmt.Errorf("row %d: position column '%s': %w", r, opts.PositionColumn, err)
			}
			lr.start = pos
			switch {
			case hasStart[r] && hasEnd:
				lr.end = pos + endDate.Sub(starts[r]).Hours()/24/daysPerYear
			case hasStart[r] && !hasEnd && opts.EndColumn != "":
				lr.openEnded = true
			default:
				// Without dates the duration is unknown; the segment
				// collapses to its start position.
				lr.end = pos
			}
		case AxisDate:
			lr.start = starts[r].Sub(origin).Hours() / 24
			if hasEnd {
				lr.end = endDate.Sub(origin).Hours() / 24
			} else if opts.EndColumn != "" {
				lr.openEnded = true
			} else {
				lr.end = lr.start
			}
		}

		if opts.ClusterColumn != "" {
			cell, err := t.Value(r, opts.ClusterColumn)
			if err != nil {
				return nil, time.Time{}, err
			}
			if !cell.IsNull() {
				c, err := cell.Int()
				if err != nil {
					return nil, time.Time{}, fmt.Errorf("row %d: cluster column '%s': %w", r, opts.ClusterColumn, err)
				}
				lr.cluster = &c
			}
		}

		for _, col := range opts.AnnotationColumns {
			cell, err := t.Value(r, col)
			if err != nil {
				return nil, time.Time{}, err
			}
			if cell.IsNull() {
				continue
			}
			lr.annotations = append(lr.annotations, Annotation{Column: col, Value: cell.Text()})
		}

		rows = append(rows, lr)
	}
	return rows, origin, nil
}

// connectors pairs consecutive segments of one lane in the requested
// order. Curves run from each segment's drawn end to the next segment's
// start.
func connectors(segments []Segment, order ConnectOrder) []Connector {
	if len(segments) < 2 {
		return nil
	}
	idx := make([]int, len(segments))
	for i := range idx {
		idx[i] = i
	}
	if order == ConnectChronological {
		sort.SliceStable(idx, func(a, b int) bool {
			sa, sb := segments[idx[a]], segments[idx[b]]
			switch {
			case !sa.StartDate.IsZero() && !sb.StartDate.IsZero():
				return sa.StartDate.Before(sb.StartDate)
			case !sa.StartDate.IsZero():
				return true
			case !sb.StartDate.IsZero():
				return false
			default:
				return sa.Start < sb.Start
			}
		})
	}
	out := make([]Connector, 0, len(segments)-1)
	for i := 0; i < len(idx)-1; i++ {
		from := segments[idx[i]]
		to := segments[idx[i+1]]
		out = append(out, Connector{FromX: from.End, ToX: to.Start})
	}
	return out
}
