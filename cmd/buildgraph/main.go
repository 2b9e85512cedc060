package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"image/color"
	"os"
	"sort"
	"strconv"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// BenchmarkResult mirrors the schema written by cmd/bench.
type BenchmarkResult struct {
	Implementation string  `json:"implementation"`
	SubQueues      int     `json:"sub_queues"`
	DequeueAtRatio float64 `json:"dequeue_at_ratio"`
	Enqueued       int64   `json:"enqueued"`
	Dequeued       int64   `json:"dequeued"`
	TestDuration   string  `json:"test_duration"`
	ActualElapsed  string  `json:"actual_elapsed"`
	Throughput     float64 `json:"throughput_ops_sec"`
	Timestamp      int64   `json:"timestamp"`
	GoVersion      string  `json:"go_version"`
}

// SystemInfo holds system information.
type SystemInfo struct {
	NumCPU      int     `json:"num_cpu"`
	CPUModel    string  `json:"cpu_model,omitempty"`
	CPUSpeedMHz float64 `json:"cpu_speed_mhz,omitempty"`
	GOARCH      string  `json:"go_arch"`
	TotalMemory uint64  `json:"total_memory_bytes,omitempty"`
}

// FullReport represents a complete bench session.
type FullReport struct {
	SessionTime string            `json:"session_time"`
	SystemInfo  SystemInfo        `json:"system_info"`
	Benchmarks  []BenchmarkResult `json:"benchmarks"`
}

// kStats holds min, median and max time per op for one sub-queue count.
type kStats struct {
	x      float64 // category index on the X axis
	orig   float64 // original sub-queue count
	min    float64
	median float64
	max    float64
}

// statsPoints implements XYer and YErrorer for kStats, so we can plot lines
// plus error bars.
type statsPoints []kStats

func (s statsPoints) Len() int                { return len(s) }
func (s statsPoints) XY(i int) (x, y float64) { return s[i].x, s[i].median }
func (s statsPoints) YError(i int) (low, high float64) {
	low = s[i].median - s[i].min
	high = s[i].max - s[i].median
	return low, high
}

// categoryTicks implements a categorical X-axis: 0,1,2,... => sub-queue counts.
type categoryTicks struct {
	positions []float64
	labels    []string
}

func (ct categoryTicks) Ticks(min, max float64) []plot.Tick {
	var ticks []plot.Tick
	for i, pos := range ct.positions {
		if pos >= min && pos <= max {
			ticks = append(ticks, plot.Tick{Value: pos, Label: ct.labels[i]})
		}
	}
	return ticks
}

func main() {
	jsonFile := flag.String("jsonfile", "test-results.json", "Path to JSON file containing bench sessions")
	outputPrefix := flag.String("out", "benchmark_graph", "Output graph image filename prefix")
	flag.Parse()

	data, err := os.ReadFile(*jsonFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading JSON file: %v\n", err)
		os.Exit(1)
	}

	var sessions []FullReport
	if err := json.Unmarshal(data, &sessions); err != nil {
		fmt.Fprintf(os.Stderr, "Error unmarshalling JSON: %v\n", err)
		os.Exit(1)
	}

	// Group data by workload ratio -> implementation -> sub-queue count -> ns/op values.
	pointsByRatio := make(map[float64]map[string]map[float64][]float64)

	for _, session := range sessions {
		for _, b := range session.Benchmarks {
			dur, err := time.ParseDuration(b.ActualElapsed)
			if err != nil || b.Dequeued == 0 {
				continue
			}
			nsPerOp := float64(dur.Nanoseconds()) / float64(b.Dequeued)

			implMap, ok := pointsByRatio[b.DequeueAtRatio]
			if !ok {
				implMap = make(map[string]map[float64][]float64)
				pointsByRatio[b.DequeueAtRatio] = implMap
			}
			if _, ok := implMap[b.Implementation]; !ok {
				implMap[b.Implementation] = make(map[float64][]float64)
			}
			k := float64(b.SubQueues)
			implMap[b.Implementation][k] = append(implMap[b.Implementation][k], nsPerOp)
		}
	}

	// For each workload ratio, produce a plot.
	for ratio, implMap := range pointsByRatio {
		p := plot.New()
		p.Title.Text = fmt.Sprintf("Time per op (min / median / max) vs. sub-queue count, dequeueAt ratio %.2f", ratio)
		p.X.Label.Text = "Sub-queues (K)"
		p.Y.Label.Text = "Time per Op (ns)"

		// Dark theme.
		p.BackgroundColor = color.RGBA{R: 30, G: 30, B: 30, A: 255}
		white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
		p.Title.TextStyle.Color = white
		p.X.Label.TextStyle.Color = white
		p.Y.Label.TextStyle.Color = white
		p.X.Color = white
		p.Y.Color = white
		p.X.Tick.Label.Color = white
		p.Y.Tick.Label.Color = white
		p.Legend.Top = true
		p.Legend.Left = true
		p.Legend.TextStyle.Color = white

		p.Add(plotter.NewGrid())

		// Build union of sub-queue counts for this workload.
		kSet := make(map[float64]struct{})
		for _, implData := range implMap {
			for k := range implData {
				kSet[k] = struct{}{}
			}
		}
		var kValues []float64
		for val := range kSet {
			kValues = append(kValues, val)
		}
		sort.Float64s(kValues)

		// Map sub-queue count => category index.
		kMapping := make(map[float64]float64)
		var positions []float64
		var labels []string
		for i, val := range kValues {
			kMapping[val] = float64(i)
			positions = append(positions, float64(i))
			labels = append(labels, strconv.FormatFloat(val, 'f', -1, 64))
		}
		p.X.Tick.Marker = categoryTicks{positions: positions, labels: labels}

		// Sort implementations alphabetically for consistent legend ordering.
		var implNames []string
		for implName := range implMap {
			implNames = append(implNames, implName)
		}
		sort.Strings(implNames)

		colors := plotutil.SoftColors
		shapes := []draw.GlyphDrawer{
			draw.CircleGlyph{},
			draw.SquareGlyph{},
			draw.TriangleGlyph{},
		}

		// Slight offset so each implementation is visually separated.
		offsetRange := 0.3
		offsetStep := offsetRange / float64(len(implNames))
		startOffset := -offsetRange/2 + offsetStep/2

		for i, impl := range implNames {
			stats := buildStats(implMap[impl])
			if len(stats) == 0 {
				continue
			}
			for j := range stats {
				baseX := kMapping[stats[j].orig]
				stats[j].x = baseX + startOffset + float64(i)*offsetStep
			}
			sort.Slice(stats, func(a, b int) bool {
				return stats[a].x < stats[b].x
			})
			sp := statsPoints(stats)

			line, err := plotter.NewLine(sp)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error creating line: %v\n", err)
				continue
			}
			line.Color = colors[i%len(colors)]

			points, err := plotter.NewScatter(sp)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error creating scatter: %v\n", err)
				continue
			}
			points.GlyphStyle.Radius = vg.Points(5)
			points.Color = colors[i%len(colors)]
			points.Shape = shapes[i%len(shapes)]

			yErrBars, err := plotter.NewYErrorBars(sp)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error creating error bars: %v\n", err)
				continue
			}
			yErrBars.Color = colors[i%len(colors)]

			p.Add(line, points, yErrBars)
			p.Legend.Add(impl, line, points)
		}

		filename := fmt.Sprintf("%s_ratio%03.0f.png", *outputPrefix, ratio*100)
		if err := p.Save(12*vg.Inch, 9*vg.Inch, filename); err != nil {
			fmt.Fprintf(os.Stderr, "Error saving plot for ratio %.2f: %v\n", ratio, err)
			continue
		}
		fmt.Printf("Graph for dequeueAt ratio %.2f saved to %s\n", ratio, filename)
	}
}

// buildStats computes min, median and max for each sub-queue count.
func buildStats(kMap map[float64][]float64) []kStats {
	var out []kStats
	for x, vals := range kMap {
		if len(vals) == 0 {
			continue
		}
		sort.Float64s(vals)
		out = append(out, kStats{
			x:      x,
			orig:   x,
			min:    vals[0],
			median: median(vals),
			max:    vals[len(vals)-1],
		})
	}
	return out
}

func median(sorted []float64) float64 {
	n := len(sorted)
	mid := n / 2
	if n%2 == 1 {
		return sorted[mid]
	}
	return 0.5 * (sorted[mid-1] + sorted[mid])
}
