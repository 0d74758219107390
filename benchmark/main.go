// Package main provides a latency benchmarking tool for the solaredge CLI.
// It runs a set of endpoint commands against one site, first without the
// timezone cache and then with it, treating the first cached run as cold and
// averaging the rest as warm, and writes the timings to CSV.
//
// Prerequisites:
// - solaredge binary installed and available in PATH
// - SOLAREDGE_API_KEY set in the environment
//
// Usage: go run benchmark/main.go [site-id]
package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"os/exec"
	"time"
)

// BenchmarkResult holds the timings of one command (no-cache average, cold run and average of warm runs).
type BenchmarkResult struct {
	Command     string
	NoCacheTime string
	ColdTime    string
	WarmTime    string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	SiteID      string
	Timeout     time.Duration
	NoCacheRuns int
	CacheRuns   int
	Commands    [][]string
}

func main() {
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [site-id]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		SiteID:      os.Args[1],
		Timeout:     time.Minute,
		NoCacheRuns: 3,
		CacheRuns:   4,
		// Daily API quota is 300 requests per site; keep the matrix small.
		Commands: [][]string{
			{"site-overview"},
			{"site-energy", "--time-unit", "DAY"},
			{"site-power"},
			{"site-energy-details", "--meters", "Production,Consumption"},
		},
	}

	if err := checkPrerequisites(); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Clearing cache...\n")
	clearCmd := exec.Command("solaredge", "cache", "clear")
	if output, err := clearCmd.CombinedOutput(); err != nil {
		fmt.Printf("Warning: failed to clear cache: %v\nOutput: %s\n", err, string(output))
	} else {
		fmt.Printf("Cache cleared successfully\n")
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// checkPrerequisites verifies that the binary and API key are available.
func checkPrerequisites() error {
	if _, err := exec.LookPath("solaredge"); err != nil {
		return fmt.Errorf("solaredge binary not found in PATH")
	}
	if os.Getenv("SOLAREDGE_API_KEY") == "" {
		return fmt.Errorf("SOLAREDGE_API_KEY is not set")
	}
	return nil
}

// runBenchmarks executes every configured command in both cache phases.
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	fmt.Printf("Starting benchmark: site %s, %d commands, %v timeout, no-cache: %d runs, cache: %d runs\n",
		config.SiteID, len(config.Commands), config.Timeout, config.NoCacheRuns, config.CacheRuns)

	results := make([]BenchmarkResult, 0, len(config.Commands))
	for _, command := range config.Commands {
		results = append(results, runBenchmarkSuite(config, command))
	}
	return results
}

// runBenchmarkSuite runs both no-cache and cache phases for a command.
func runBenchmarkSuite(config BenchmarkConfig, command []string) BenchmarkResult {
	fmt.Printf("Running %s\n", command[0])

	runPhase := func(cacheBackend string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times := runBenchmark(config, command, cacheBackend, numRuns)
		if len(times) == 0 {
			return cold, "FAILED"
		}
		var sum float64
		for _, t := range times {
			sum += t
		}
		return cold, fmt.Sprintf("%.3fs", sum/float64(len(times)))
	}

	_, noCacheAvg := runPhase("none", config.NoCacheRuns, "No-cache")
	coldTime, warmAvg := runPhase("sqlite", config.CacheRuns, "Cache")

	coldTimeStr := "FAILED"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  No-cache average: %s, Cold time: %s, Warm average: %s\n", noCacheAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Command:     command[0],
		NoCacheTime: noCacheAvg,
		ColdTime:    coldTimeStr,
		WarmTime:    warmAvg,
	}
}

// runBenchmark runs a command numRuns times and returns the first time and the rest.
func runBenchmark(config BenchmarkConfig, command []string, cacheBackend string, numRuns int) (coldTime float64, warmTimes []float64) {
	args := append([]string{command[0], config.SiteID, "--cache-backend", cacheBackend, "--output", "json"}, command[1:]...)

	var times []float64
	for run := 1; run <= numRuns; run++ {
		start := time.Now()
		cmd := exec.Command("solaredge", args...)

		done := make(chan error, 1)
		go func() {
			_, err := cmd.CombinedOutput()
			done <- err
		}()

		select {
		case err := <-done:
			if err == nil {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			_ = cmd.Process.Kill()
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// saveResults writes benchmark results to a timestamped CSV file.
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("/tmp/solaredge_benchmark_%s.csv", timestamp)

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"cmd", "no_cache_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, result := range results {
		if err := writer.Write([]string{result.Command, result.NoCacheTime, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary.
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, result := range results {
		fmt.Printf("  %-22s: No-cache: %s, Cold: %s, Warm: %s\n", result.Command, result.NoCacheTime, result.ColdTime, result.WarmTime)
	}
}
