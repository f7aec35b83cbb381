package timeline

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
)

// axisTargetTicks is the grid density the tick step aims for.
const axisTargetTicks = 8

// buildScale derives the axis bounds and tick step from the laid-out rows.
// Explicit limits win; otherwise bounds cover every finite coordinate,
// expanded outward to the tick step.
func buildScale(rows []layoutRow, opts Options, origin time.Time) (Scale, error) {
	coords := make([]float64, 0, 2*len(rows))
	for _, r := range rows {
		coords = append(coords, r.start)
		if !r.openEnded {
			coords = append(coords, r.end)
		}
	}
	if len(coords) == 0 {
		return Scale{}, fmt.Errorf("no positions on the axis")
	}

	min := floats.Min(coords)
	max := floats.Max(coords)
	if opts.Limits != nil {
		min, max = opts.Limits.Min, opts.Limits.Max
	} else if min == max {
		// A single point still needs a visible span.
		min, max = min-1, max+1
	}

	step := niceStep(max - min)
	if opts.Limits == nil {
		min = math.Floor(min/step) * step
		max = math.Ceil(max/step) * step
	}

	return Scale{
		Kind:     opts.Axis,
		Min:      min,
		Max:      max,
		TickStep: step,
		Origin:   origin,
	}, nil
}

// niceStep picks a 1/2/5*10^k step so the span holds about
// axisTargetTicks ticks.
func niceStep(span float64) float64 {
	raw := span / axisTargetTicks
	if raw <= 0 {
		return 1
	}
	mag := math.Pow(10, math.Floor(math.Log10(raw)))
	switch {
	case raw/mag < 1.5:
		return mag
	case raw/mag < 3.5:
		return 2 * mag
	case raw/mag < 7.5:
		return 5 * mag
	default:
		return 10 * mag
	}
}

// Ticks returns the tick positions within the axis bounds.
func (s Scale) Ticks() []float64 {
	var ticks []float64
	start := math.Ceil(s.Min/s.TickStep) * s.TickStep
	for v := start; v <= s.Max+s.TickStep/1e6; v += s.TickStep {
		ticks = append(ticks, v)
	}
	return ticks
}

// TickLabel formats a tick value: plain numbers on the age axis, calendar
// dates on the date axis.
func (s Scale) TickLabel(v float64) string {
	if s.Kind == AxisDate {
		return s.Origin.Add(time.Duration(v * 24 * float64(time.Hour))).Format("2006-01-02")
	}
	return fmt.Sprintf("%g", v)
}
