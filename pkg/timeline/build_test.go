package timeline

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dipendrapant/patient-trajectory/pkg/dataset"
)

func episodeTable(t *testing.T) *dataset.Table {
	t.Helper()
	table, err := dataset.New("pasient", "episode_start_date", "episode_end_date", "age", "cluster", "diagnosis")
	require.NoError(t, err)
	require.NoError(t, table.AppendRow(
		dataset.String("5"), dataset.String("2001-01-01"), dataset.String("2001-06-01"),
		dataset.String("0"), dataset.String("1"), dataset.String("Allergy")))
	require.NoError(t, table.AppendRow(
		dataset.String("5"), dataset.String("2003-05-10"), dataset.Null(),
		dataset.String("2.35"), dataset.Null(), dataset.Null()))
	require.NoError(t, table.AppendRow(
		dataset.String("6"), dataset.String("2010-01-01"), dataset.String("2010-12-31"),
		dataset.String("50"), dataset.String("3"), dataset.String("C")))
	return table
}

func ageOptions() Options {
	return Options{
		SubjectColumn:     "pasient",
		StartColumn:       "episode_start_date",
		EndColumn:         "episode_end_date",
		PositionColumn:    "age",
		ClusterColumn:     "cluster",
		AnnotationColumns: []string{"diagnosis"},
		Axis:              AxisAge,
	}
}

func TestBuildLanesPerSubject(t *testing.T) {
	chart, err := Build(episodeTable(t), ageOptions())
	require.NoError(t, err)

	require.Len(t, chart.Lanes, 2)
	assert.Equal(t, "5", chart.Lanes[0].Subject)
	assert.Equal(t, "6", chart.Lanes[1].Subject)
	assert.Len(t, chart.Lanes[0].Segments, 2)
	assert.Len(t, chart.Lanes[1].Segments, 1)
}

func TestBuildAgeAxisPositions(t *testing.T) {
	chart, err := Build(episodeTable(t), ageOptions())
	require.NoError(t, err)

	first := chart.Lanes[0].Segments[0]
	assert.Equal(t, 0.0, first.Start)
	// 151 days from 2001-01-01 to 2001-06-01.
	assert.InDelta(t, 151.0/365.2425, first.End, 1e-9)
	assert.False(t, first.OpenEnded)
	require.NotNil(t, first.Cluster)
	assert.Equal(t, 1, *first.Cluster)
}

func TestBuildOpenEndedSegment(t *testing.T) {
	chart, err := Build(episodeTable(t), ageOptions())
	require.NoError(t, err)

	open := chart.Lanes[0].Segments[1]
	assert.True(t, open.OpenEnded)
	assert.Equal(t, chart.Axis.Max, open.End, "open end extends to the axis upper bound")
	assert.Nil(t, open.Cluster)
	assert.True(t, chart.HasNoCluster)
	assert.False(t, open.End != open.End, "coordinates must never be NaN")
}

func TestBuildAnnotationsSkipNulls(t *testing.T) {
	chart, err := Build(episodeTable(t), ageOptions())
	require.NoError(t, err)

	withDiag := chart.Lanes[0].Segments[0]
	require.Len(t, withDiag.Annotations, 1)
	assert.Equal(t, "diagnosis", withDiag.Annotations[0].Column)
	assert.Equal(t, "Allergy", withDiag.Annotations[0].Value)

	noDiag := chart.Lanes[0].Segments[1]
	assert.Empty(t, noDiag.Annotations)
}

func TestBuildExplicitLimits(t *testing.T) {
	opts := ageOptions()
	opts.Limits = &Limits{Min: 0, Max: 60}
	chart, err := Build(episodeTable(t), opts)
	require.NoError(t, err)
	assert.Equal(t, 0.0, chart.Axis.Min)
	assert.Equal(t, 60.0, chart.Axis.Max)
}

func TestBuildInvalidLimits(t *testing.T) {
	opts := ageOptions()
	opts.Limits = &Limits{Min: 10, Max: 10}
	_, err := Build(episodeTable(t), opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "axis limits")
}

func TestBuildMissingColumnFailsFast(t *testing.T) {
	opts := ageOptions()
	opts.ClusterColumn = "klynge"
	_, err := Build(episodeTable(t), opts)
	require.Error(t, err)

	var colErr *dataset.ColumnError
	require.True(t, errors.As(err, &colErr))
	assert.Equal(t, "klynge", colErr.Column)
}

func TestBuildEndBeforeStart(t *testing.T) {
	table, err := dataset.New("pasient", "episode_start_date", "episode_end_date", "age")
	require.NoError(t, err)
	require.NoError(t, table.AppendRow(
		dataset.String("1"), dataset.String("2005-01-01"), dataset.String("2004-01-01"), dataset.String("3")))

	opts := Options{
		SubjectColumn:  "pasient",
		StartColumn:    "episode_start_date",
		EndColumn:      "episode_end_date",
		PositionColumn: "age",
		Axis:           AxisAge,
	}
	_, err = Build(table, opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "precedes start")
}

func TestBuildDateAxis(t *testing.T) {
	opts := ageOptions()
	opts.Axis = AxisDate
	chart, err := Build(episodeTable(t), opts)
	require.NoError(t, err)

	assert.Equal(t, AxisDate, chart.Axis.Kind)
	assert.Equal(t, 2001, chart.Axis.Origin.Year())

	first := chart.Lanes[0].Segments[0]
	assert.Equal(t, 0.0, first.Start)
	assert.InDelta(t, 151.0, first.End, 1e-9)
}

func TestBuildDateAxisRequiresStart(t *testing.T) {
	table, err := dataset.New("pasient", "episode_start_date")
	require.NoError(t, err)
	require.NoError(t, table.AppendRow(dataset.String("1"), dataset.Null()))

	_, err = Build(table, Options{
		SubjectColumn: "pasient",
		StartColumn:   "episode_start_date",
		Axis:          AxisDate,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "start date is required")
}

func TestBuildTiesKeepRowOrder(t *testing.T) {
	table, err := dataset.New("pasient", "age", "diagnosis")
	require.NoError(t, err)
	require.NoError(t, table.AppendRow(dataset.String("1"), dataset.String("5"), dataset.String("first")))
	require.NoError(t, table.AppendRow(dataset.String("1"), dataset.String("5"), dataset.String("second")))

	chart, err := Build(table, Options{
		SubjectColumn:     "pasient",
		PositionColumn:    "age",
		AnnotationColumns: []string{"diagnosis"},
		Axis:              AxisAge,
	})
	require.NoError(t, err)

	segs := chart.Lanes[0].Segments
	require.Len(t, segs, 2)
	assert.Equal(t, "first", segs[0].Annotations[0].Value)
	assert.Equal(t, "second", segs[1].Annotations[0].Value)
	assert.Equal(t, 0, segs[0].Row)
	assert.Equal(t, 1, segs[1].Row)
}

func connectTable(t *testing.T) *dataset.Table {
	t.Helper()
	// Rows deliberately out of chronological order.
	table, err := dataset.New("pasient", "episode_start_date", "episode_end_date", "age")
	require.NoError(t, err)
	require.NoError(t, table.AppendRow(
		dataset.String("1"), dataset.String("2010-01-01"), dataset.String("2010-06-01"), dataset.String("10")))
	require.NoError(t, table.AppendRow(
		dataset.String("1"), dataset.String("2002-01-01"), dataset.String("2002-06-01"), dataset.String("2")))
	require.NoError(t, table.AppendRow(
		dataset.String("1"), dataset.String("2006-01-01"), dataset.String("2006-06-01"), dataset.String("6")))
	return table
}

func TestConnectChronologicalSortsPerSubject(t *testing.T) {
	opts := Options{
		SubjectColumn:  "pasient",
		StartColumn:    "episode_start_date",
		EndColumn:      "episode_end_date",
		PositionColumn: "age",
		Axis:           AxisAge,
		Connect:        true,
		ConnectOrder:   ConnectChronological,
	}
	chart, err := Build(connectTable(t), opts)
	require.NoError(t, err)

	conns := chart.Lanes[0].Connectors
	require.Len(t, conns, 2)
	// 2002 episode -> 2006 episode -> 2010 episode.
	assert.InDelta(t, 2.0+151.0/365.2425, conns[0].FromX, 1e-9)
	assert.Equal(t, 6.0, conns[0].ToX)
	assert.InDelta(t, 6.0+151.0/365.2425, conns[1].FromX, 1e-9)
	assert.Equal(t, 10.0, conns[1].ToX)
}

func TestConnectInputOrderPreservesRows(t *testing.T) {
	opts := Options{
		SubjectColumn:  "pasient",
		StartColumn:    "episode_start_date",
		EndColumn:      "episode_end_date",
		PositionColumn: "age",
		Axis:           AxisAge,
		Connect:        true,
		ConnectOrder:   ConnectInputOrder,
	}
	chart, err := Build(connectTable(t), opts)
	require.NoError(t, err)

	conns := chart.Lanes[0].Connectors
	require.Len(t, conns, 2)
	// Row order: 2010 episode -> 2002 episode -> 2006 episode.
	assert.Equal(t, 2.0, conns[0].ToX)
	assert.Equal(t, 6.0, conns[1].ToX)
}

func TestNiceStep(t *testing.T) {
	cases := []struct {
		span float64
		want float64
	}{
		{80, 10},
		{100, 10},
		{8, 1},
		{40, 5},
		{0.8, 0.1},
		{2000, 200},
	}
	for _, c := range cases {
		if got := niceStep(c.span); got != c.want {
			t.Errorf("niceStep(%g) = %g, want %g", c.span, got, c.want)
		}
	}
}

func TestScaleTicks(t *testing.T) {
	s := Scale{Min: 0, Max: 60, TickStep: 10}
	ticks := s.Ticks()
	assert.Equal(t, []float64{0, 10, 20, 30, 40, 50, 60}, ticks)
	assert.Equal(t, "20", s.TickLabel(20))
}

func TestEmptyTable(t *testing.T) {
	table, err := dataset.New("pasient", "age")
	require.NoError(t, err)
	_, err = Build(table, Options{SubjectColumn: "pasient", PositionColumn: "age", Axis: AxisAge})
	require.Error(t, err)
}
