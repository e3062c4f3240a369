package tracker

import (
	"fmt"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	ts "github.com/samuelfneumann/discreteq/timestep"
)

// Chart tracks the lengths of episodes and saves them as an HTML line
// chart, with one point per episode.
type Chart struct {
	lengths  *EpisodeLength
	title    string
	filename string
}

// NewChart returns a new Chart which renders to filename
func NewChart(title, filename string) *Chart {
	return &Chart{NewEpisodeLength(""), title, filename}
}

// Track caches the length of an episode when t is its last timestep
func (c *Chart) Track(t ts.TimeStep) {
	c.lengths.Track(t)
}

// Save renders the chart of tracked episode lengths to disk
func (c *Chart) Save() error {
	lengths := c.lengths.Lengths()

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title: c.title,
		}),
		charts.WithInitializationOpts(opts.Initialization{
			Theme: "shine",
		}),
	)

	episodes := make([]string, len(lengths))
	items := make([]opts.LineData, len(lengths))
	for i, length := range lengths {
		episodes[i] = fmt.Sprintf("%d", i)
		items[i] = opts.LineData{Value: length}
	}
	line.SetXAxis(episodes).AddSeries("episode length", items)

	page := components.NewPage()
	page.AddCharts(line)

	file, err := os.Create(c.filename)
	if err != nil {
		return fmt.Errorf("save: could not create chart file: %w", err)
	}

	if err := page.Render(file); err != nil {
		file.Close()
		return fmt.Errorf("save: could not render chart: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("save: could not close chart file: %w", err)
	}
	return nil
}
