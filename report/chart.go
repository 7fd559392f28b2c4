package report

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/GerbenAaltink/libsql-client-server-benchmark/bench"
)

// Chart renders a grouped bar chart of the per-phase durations and saves
// it to path. The image format follows the file extension.
func Chart(path string, results []bench.Result) error {
	if len(results) == 0 {
		return fmt.Errorf("no results to chart")
	}

	p := plot.New()
	p.Title.Text = "local vs remote"
	p.Y.Label.Text = "milliseconds"

	width := vg.Points(20)
	groupSpan := width * vg.Length(len(results)-1)

	for i, r := range results {
		values := plotter.Values{
			float64(r.CreateMs),
			float64(r.InsertMs),
			float64(r.VisibilityWaitMs),
			float64(r.TotalMs),
		}

		bars, err := plotter.NewBarChart(values, width)
		if err != nil {
			return fmt.Errorf("bar chart for %s: %w", r.Target, err)
		}

		bars.LineStyle.Width = vg.Length(0)
		bars.Color = plotutil.Color(i)
		bars.Offset = width*vg.Length(i) - groupSpan/2

		p.Add(bars)
		p.Legend.Add(r.Target, bars)
	}

	p.Legend.Top = true
	p.NominalX("create", "insert", "visibility wait", "total")

	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("save chart %s: %w", path, err)
	}

	return nil
}
