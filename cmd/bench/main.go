package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/y-shindoh/multi-queue/internal/testbench"
	"github.com/y-shindoh/multi-queue/pkg/shadowtrace"
	"github.com/y-shindoh/multi-queue/pkg/tagscan"
)

// BenchmarkResult holds results for one test run.
type BenchmarkResult struct {
	Implementation string  `json:"implementation"`
	SubQueues      int     `json:"sub_queues"`
	DequeueAtRatio float64 `json:"dequeue_at_ratio"`
	Enqueued       int64   `json:"enqueued"`
	Dequeued       int64   `json:"dequeued"`
	TestDuration   string  `json:"test_duration"`       // e.g. "2s"
	ActualElapsed  string  `json:"actual_elapsed"`      // measured time
	Throughput     float64 `json:"throughput_ops_sec"`  // based on dequeued count
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

// benchQueueInterface is the operation set the bench drives, instantiated
// for *int elements.
type benchQueueInterface = interface {
	Len() int
	LenAt(i int) int
	Empty() bool
	EmptyAt(i int) bool
	Front() *int
	FrontAt(i int) *int
	Enqueue(i int, val *int) bool
	Dequeue()
	DequeueAt(i int)
}

// Implementation represents one multi-queue strategy.
type Implementation struct {
	name        string
	pkgName     string
	description string
	features    []string
	newQueue    func(k int) benchQueueInterface
}

// getImplementations enumerates the multi-queue strategies.
func getImplementations() []Implementation {
	return []Implementation{
		{
			name:        "TagScan",
			pkgName:     "tagscan",
			description: "Tags every value with an arrival sequence number and scans the K sub-queue fronts for the merged front.",
			features:    []string{"FIFO", "Global-Order", "O(K) global dequeue"},
			newQueue: func(k int) benchQueueInterface {
				return tagscan.New[*int](k)
			},
		},
		{
			name:        "ShadowTrace",
			pkgName:     "shadowtrace",
			description: "Records arrival order in a shadow trace of sub-queue indexes and lazily purges entries invalidated by per-sub-queue dequeues.",
			features:    []string{"FIFO", "Global-Order", "Amortized O(1) dequeue"},
			newQueue: func(k int) benchQueueInterface {
				return shadowtrace.New[*int](k)
			},
		},
	}
}

// outputMarkdownTable loads the JSON file and outputs a Markdown table.
func outputMarkdownTable(jsonFile string) {
	data, err := os.ReadFile(jsonFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading JSON file %q: %v\n", jsonFile, err)
		os.Exit(1)
	}
	var sessions []FullReport
	if err := json.Unmarshal(data, &sessions); err != nil {
		fmt.Fprintf(os.Stderr, "Error unmarshalling JSON: %v\n", err)
		os.Exit(1)
	}
	if len(sessions) == 0 {
		fmt.Fprintln(os.Stderr, "No sessions found in JSON.")
		os.Exit(1)
	}
	// Use the last session for the table.
	lastSession := sessions[len(sessions)-1]
	implMetaMap := make(map[string]Implementation)
	for _, impl := range getImplementations() {
		implMetaMap[impl.name] = impl
	}
	type tableRow struct {
		implementation string
		pkgName        string
		features       string
		subQueues      int
		ratio          float64
		throughput     float64
	}
	var rows []tableRow
	for _, bench := range lastSession.Benchmarks {
		meta, ok := implMetaMap[bench.Implementation]
		var pkgName, features string
		if ok {
			pkgName = meta.pkgName
			features = strings.Join(meta.features, ", ")
		}
		rows = append(rows, tableRow{
			implementation: bench.Implementation,
			pkgName:        pkgName,
			features:       features,
			subQueues:      bench.SubQueues,
			ratio:          bench.DequeueAtRatio,
			throughput:     bench.Throughput,
		})
	}
	// Sort rows by throughput descending.
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].throughput > rows[j].throughput
	})
	fmt.Println("## Last Session Benchmark Summary")
	fmt.Println()
	fmt.Println("| Implementation | Package      | Features                                 | K    | DequeueAt | Throughput (ops/sec) |")
	fmt.Println("|----------------|--------------|------------------------------------------|------|-----------|----------------------|")
	for _, r := range rows {
		fmt.Printf("| %-14s | %-12s | %-40s | %4d | %9.2f | %20.0f |\n",
			r.implementation, r.pkgName, r.features, r.subQueues, r.ratio, r.throughput)
	}
}

func main() {
	// Flags.
	testIterations := flag.Int("iter", 5, "Number of test iterations per configuration")
	kFlag := flag.Int("k", 0, "If non-zero, test only that sub-queue count; if 0, sweep common values")
	durationFlag := flag.Duration("duration", 2*time.Second, "Duration of each test run")
	jsonExport := flag.Bool("json", false, "Export results as JSON to test-results.json")
	markdownTable := flag.Bool("markdown-table", false, "Output markdown table from test-results.json and exit")
	jsonFileForMarkdown := flag.String("jsonfile", "test-results.json", "Path to JSON file for markdown table")
	progressFlag := flag.Bool("progress", false, "Display a progress bar with ETA")
	flag.Parse()

	if *markdownTable {
		outputMarkdownTable(*jsonFileForMarkdown)
		return
	}

	var kSettings []int
	if *kFlag > 0 {
		kSettings = []int{*kFlag}
	} else {
		kSettings = []int{1, 2, 4, 8, 16, 32, 64, 128}
	}

	// Workload shapes: how much of the removal traffic bypasses the merged
	// view and goes through per-sub-queue dequeues.
	ratios := []float64{0.0, 0.5, 0.9}

	impls := getImplementations()
	totalTests := len(kSettings) * len(ratios) * (*testIterations) * len(impls)

	var bar *progressbar.ProgressBar
	if *progressFlag {
		bar = progressbar.NewOptions(totalTests,
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("bench"),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
		)
	}

	sysInfo := gatherSystemInfo()
	var results []BenchmarkResult

	for _, k := range kSettings {
		fmt.Printf("\n=============================\n")
		fmt.Printf("Sub-queues K = %d\n", k)
		fmt.Printf("=============================\n")

		for _, ratio := range ratios {
			fmt.Printf("  [Workload: dequeueAt ratio=%.2f]\n", ratio)
			cfg := testbench.Config{SubQueues: k, DequeueAtRatio: ratio}

			for iteration := 1; iteration <= *testIterations; iteration++ {
				for _, impl := range impls {
					runtime.GC()
					q := impl.newQueue(k)

					enqueued, dequeued, actualTime := testbench.RunTimedTest(
						q,
						cfg,
						*durationFlag,
						func(i int) *int {
							v := i
							return &v
						},
					)
					throughput := float64(dequeued) / actualTime.Seconds()

					if bar != nil {
						fmt.Printf("\r")
					}
					fmt.Printf("    %s => enqueued=%d, dequeued=%d, throughput=%.0f ops/s, took=%v\n",
						impl.name, enqueued, dequeued, throughput, actualTime)
					if bar != nil {
						bar.Add(1)
					}

					results = append(results, BenchmarkResult{
						Implementation: impl.name,
						SubQueues:      k,
						DequeueAtRatio: ratio,
						Enqueued:       enqueued,
						Dequeued:       dequeued,
						TestDuration:   durationFlag.String(),
						ActualElapsed:  actualTime.String(),
						Throughput:     throughput,
						Timestamp:      time.Now().Unix(),
						GoVersion:      runtime.Version(),
					})
				}
			}
		}
	}

	if bar != nil {
		fmt.Fprintln(os.Stderr)
	}

	session := FullReport{
		SessionTime: time.Now().Format(time.RFC3339),
		SystemInfo:  sysInfo,
		Benchmarks:  results,
	}

	// If JSON export is requested, append the new session to test-results.json.
	if *jsonExport {
		const filename = "test-results.json"
		var previous []FullReport
		if _, err := os.Stat(filename); err == nil {
			data, err := os.ReadFile(filename)
			if err == nil && len(data) > 0 {
				json.Unmarshal(data, &previous)
			}
		}
		updated := append(previous, session)
		data, err := json.MarshalIndent(updated, "", "  ")
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error marshalling JSON:", err)
			os.Exit(1)
		}
		if err = os.WriteFile(filename, data, 0644); err != nil {
			fmt.Fprintln(os.Stderr, "Error writing JSON file:", err)
			os.Exit(1)
		}
		fmt.Printf("\nWrote results to %s\n", filename)
	}
}

// gatherSystemInfo collects basic CPU and memory details.
func gatherSystemInfo() SystemInfo {
	numCPU := runtime.NumCPU()
	goArch := runtime.GOARCH

	var cpuModel string
	var cpuSpeed float64
	if infos, err := cpu.Info(); err == nil && len(infos) > 0 {
		cpuModel = infos[0].ModelName
		cpuSpeed = infos[0].Mhz
	}

	var totalMemory uint64
	if vm, err := mem.VirtualMemory(); err == nil {
		totalMemory = vm.Total
	}

	return SystemInfo{
		NumCPU:      numCPU,
		CPUModel:    cpuModel,
		CPUSpeedMHz: cpuSpeed,
		GOARCH:      goArch,
		TotalMemory: totalMemory,
	}
}
