package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/awmpietro/guard-patrol-case/internal/transport/patroldto"
)

const sampleGrid = `....#.....
.........#
..........
..#.......
.......#..
..........
.#..^.....
........#.
#.........
......#...
`

type result struct {
	latency time.Duration
	status  int
	err     error
}

type summary struct {
	requests    int
	ok          int
	non2xx      int
	errs        int
	achievedRPS float64
	avg         time.Duration
	p50         time.Duration
	p90         time.Duration
	p99         time.Duration
}

func main() {
	url := flag.String("url", "http://localhost:8080/patrol", "patrol endpoint URL")
	gridFile := flag.String("grid", "", "grid file to post (default: built-in sample)")
	mode := flag.String("mode", "extrapolate", "obstacle search mode")
	rps := flag.Int("rps", 50, "target requests per second")
	duration := flag.Duration("duration", 60*time.Second, "test duration")
	workers := flag.Int("workers", 50, "number of concurrent workers")
	timeout := flag.Duration("timeout", 5*time.Second, "HTTP client timeout")
	maxP90 := flag.Duration("max-p90", 30*time.Millisecond, "P90 latency the run must stay under")
	flag.Parse()

	if *rps <= 0 || *duration <= 0 || *workers <= 0 {
		fmt.Fprintln(os.Stderr, "rps, duration and workers must be > 0")
		os.Exit(2)
	}

	grid := sampleGrid
	if *gridFile != "" {
		b, err := os.ReadFile(*gridFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "read grid: %v\n", err)
			os.Exit(1)
		}
		grid = string(b)
	}
	body, err := json.Marshal(patroldto.PatrolRequest{Grid: grid, Mode: *mode})
	if err != nil {
		fmt.Fprintf(os.Stderr, "marshal payload: %v\n", err)
		os.Exit(1)
	}

	client := &http.Client{Timeout: *timeout}
	results := drive(client, *url, body, *rps, *workers, *duration)
	if len(results) == 0 {
		fmt.Fprintln(os.Stderr, "no requests executed")
		os.Exit(1)
	}

	s := summarize(results, *duration)
	fmt.Printf("Load test finished\n")
	fmt.Printf("- target_rps: %d\n", *rps)
	fmt.Printf("- achieved_rps: %.2f\n", s.achievedRPS)
	fmt.Printf("- duration: %s\n", duration.String())
	fmt.Printf("- mode: %s\n", *mode)
	fmt.Printf("- requests: %d\n", s.requests)
	fmt.Printf("- 2xx: %d\n", s.ok)
	fmt.Printf("- non_2xx: %d\n", s.non2xx)
	fmt.Printf("- errors: %d\n", s.errs)
	fmt.Printf("- avg_ms: %.3f\n", ms(s.avg))
	fmt.Printf("- p50_ms: %.3f\n", ms(s.p50))
	fmt.Printf("- p90_ms: %.3f\n", ms(s.p90))
	fmt.Printf("- p99_ms: %.3f\n", ms(s.p99))

	if s.achievedRPS >= float64(*rps)*0.98 && s.p90 < *maxP90 && s.errs == 0 && s.non2xx == 0 {
		fmt.Printf("PASS: meets %d RPS and P90 < %s\n", *rps, *maxP90)
		return
	}

	fmt.Println("FAIL: does not meet target (or has request errors)")
	os.Exit(1)
}

// drive posts body at a fixed rate until d elapses and returns one result
// per request sent.
func drive(client *http.Client, url string, body []byte, rps, workers int, d time.Duration) []result {
	jobs := make(chan struct{}, workers)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results = make([]result, 0, rps*int(d.Seconds())+1)
	)
	record := func(r result) {
		mu.Lock()
		results = append(results, r)
		mu.Unlock()
	}

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range jobs {
				record(post(client, url, body))
			}
		}()
	}

	ticker := time.NewTicker(time.Second / time.Duration(rps))
	defer ticker.Stop()
	deadline := time.Now().Add(d)
	for now := range ticker.C {
		if now.After(deadline) {
			break
		}
		jobs <- struct{}{}
	}
	close(jobs)
	wg.Wait()

	return results
}

func post(client *http.Client, url string, body []byte) result {
	start := time.Now()
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return result{latency: time.Since(start), err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	lat := time.Since(start)
	if err != nil {
		return result{latency: lat, err: err}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
	return result{latency: lat, status: resp.StatusCode}
}

func summarize(results []result, d time.Duration) summary {
	latencies := make([]time.Duration, 0, len(results))
	s := summary{requests: len(results)}

	var total time.Duration
	for _, r := range results {
		latencies = append(latencies, r.latency)
		total += r.latency
		switch {
		case r.err != nil:
			s.errs++
		case r.status >= 200 && r.status < 300:
			s.ok++
		default:
			s.non2xx++
		}
	}
	slices.Sort(latencies)

	s.avg = total / time.Duration(len(latencies))
	s.p50 = percentile(latencies, 50)
	s.p90 = percentile(latencies, 90)
	s.p99 = percentile(latencies, 99)
	s.achievedRPS = float64(len(latencies)) / d.Seconds()
	return s
}

func percentile(sorted []time.Duration, p int) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	return sorted[(len(sorted)-1)*p/100]
}

func ms(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000.0
}
