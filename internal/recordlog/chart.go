package recordlog

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// WriteChart renders an interactive HTML scatter of tracked positions,
// colored by heading.
func WriteChart(records []Record, w io.Writer) error {
	data := make([]opts.ScatterData, 0, len(records))
	var maxX, maxY int
	for _, r := range records {
		if r.Position == nil {
			continue
		}
		heading := 0.0
		if r.Orientation != nil {
			heading = r.Orientation.Heading
		}
		data = append(data, opts.ScatterData{
			Value: []interface{}{r.Position.X, r.Position.Y, heading},
		})
		maxX = max(maxX, r.Position.X)
		maxY = max(maxY, r.Position.Y)
	}
	if len(data) == 0 {
		return errors.New("recordlog: no positions to chart")
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Tracked positions", Width: "900px", Height: "700px"}),
		charts.WithTitleOpts(opts.Title{Title: "Tracked positions", Subtitle: fmt.Sprintf("detections=%d records=%d", len(data), len(records))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: 0, Max: maxX, Name: "x (px)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: 0, Max: maxY, Name: "y (px)", NameLocation: "middle", NameGap: 30}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Dimension:  "2",
			Min:        0,
			Max:        360,
			InRange:    &opts.VisualMapInRange{Color: []string{"#440154", "#3e4989", "#26828e", "#35b779", "#fde725"}},
		}),
	)
	scatter.AddSeries("position", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 4}))

	return scatter.Render(w)
}
