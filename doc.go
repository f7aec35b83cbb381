// Package trajectory renders per-subject episode timelines as SVG charts.
//
// The library is a straight pipeline: load a tabular dataset, prepare it
// (select, rename, drop columns, coerce dates), lay the episodes out as one
// lane per subject, and render the result to SVG.
//
// # Basic Usage
//
//	viz := trajectory.New(
//		trajectory.WithPreparer(dataset.Preparer{
//			SelectedColumns: []string{"patient_id", "episode_start_date", "episode_end_date", "age", "cluster", "diagnosis"},
//			RenameColumns:   map[string]string{"patient_id": "pasient"},
//		}),
//	)
//
//	table, err := viz.LoadCSV("episodes.csv")
//	if err != nil {
//		log.Fatal(err)
//	}
//	prepared, err := viz.Prepare(table)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	chart, err := viz.Plot(prepared, timeline.Options{
//		SubjectColumn:     "pasient",
//		StartColumn:       "episode_start_date",
//		EndColumn:         "episode_end_date",
//		PositionColumn:    "age",
//		ClusterColumn:     "cluster",
//		AnnotationColumns: []string{"diagnosis"},
//		Axis:              timeline.AxisAge,
//		Limits:            &timeline.Limits{Min: 0, Max: 60},
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	if err := viz.Save(chart, "trajectories.svg"); err != nil {
//		log.Fatal(err)
//	}
//
// Episodes with a missing end date are drawn open-ended to the axis upper
// bound. Cluster labels pick colors from a configurable palette; episodes
// without a cluster use a dedicated gray style. Connecting curves between
// consecutive episodes of a subject are opt-in, with an explicit choice
// between chronological and input-row pairing.
package trajectory
