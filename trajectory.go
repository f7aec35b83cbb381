package trajectory

import (
	"github.com/dipendrapant/patient-trajectory/pkg/config"
	"github.com/dipendrapant/patient-trajectory/pkg/dataset"
	"github.com/dipendrapant/patient-trajectory/pkg/logger"
	"github.com/dipendrapant/patient-trajectory/pkg/render"
	"github.com/dipendrapant/patient-trajectory/pkg/timeline"
)

// Visualizer ties the pipeline together: load, prepare, plot, render.
type Visualizer struct {
	preparer dataset.Preparer
	dateCols []string
	dateMode dataset.DateErrorMode
	chartCfg *config.Chart
	log      logger.Logger
}

// Option configures a Visualizer.
type Option func(*Visualizer)

// WithPreparer sets the table preparation steps applied by Prepare.
func WithPreparer(p dataset.Preparer) Option {
	return func(v *Visualizer) { v.preparer = p }
}

// WithDateColumns names the columns Prepare coerces to timestamps, and how
// malformed values are treated.
func WithDateColumns(mode dataset.DateErrorMode, columns ...string) Option {
	return func(v *Visualizer) {
		v.dateCols = columns
		v.dateMode = mode
	}
}

// WithChartConfig sets the chart styling. Defaults are used otherwise.
func WithChartConfig(cfg *config.Chart) Option {
	return func(v *Visualizer) { v.chartCfg = cfg }
}

// WithLogger sets the diagnostics logger.
func WithLogger(l logger.Logger) Option {
	return func(v *Visualizer) { v.log = l }
}

// New creates a Visualizer with the given options.
func New(opts ...Option) *Visualizer {
	v := &Visualizer{
		chartCfg: config.Default(),
		log:      logger.NopLogger{},
		dateCols: []string{"episode_start_date", "episode_end_date"},
		dateMode: dataset.DateErrorNull,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// LoadCSV reads a CSV file into a table.
func (v *Visualizer) LoadCSV(path string) (*dataset.Table, error) {
	return dataset.ReadCSV(path)
}

// LoadParquet reads a Parquet episode file into a table.
func (v *Visualizer) LoadParquet(path string) (*dataset.Table, error) {
	return dataset.ReadParquet(path)
}

// Prepare applies the configured preparation steps and date coercion,
// returning a new table. Rows are preserved; missing values stay null.
func (v *Visualizer) Prepare(t *dataset.Table) (*dataset.Table, error) {
	out, err := v.preparer.Prepare(t)
	if err != nil {
		return nil, err
	}
	for _, col := range v.dateCols {
		if !out.HasColumn(col) {
			continue
		}
		if err := dataset.CoerceDates(out, []string{col}, v.dateMode); err != nil {
			return nil, err
		}
	}
	v.log.Debugf("prepared table: %d rows, columns %v", out.NumRows(), out.Columns())
	return out, nil
}

// Plot lays the prepared table out as a chart.
func (v *Visualizer) Plot(t *dataset.Table, opts timeline.Options) (*timeline.Chart, error) {
	if opts.Logger == nil {
		opts.Logger = v.log
	}
	return timeline.Build(t, opts)
}

// Render returns the chart as an SVG document.
func (v *Visualizer) Render(ch *timeline.Chart) (string, error) {
	return render.SVG(ch, v.chartCfg)
}

// Save renders the chart and writes it to path.
func (v *Visualizer) Save(ch *timeline.Chart, path string) error {
	if err := render.Save(ch, v.chartCfg, path); err != nil {
		return err
	}
	v.log.Infof("timeline chart written to %s", path)
	return nil
}
