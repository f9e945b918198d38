// simulate fires concurrent booking requests at a running api-server and
// checks the contention behavior: for every (date, department, slot) target
// exactly one request may win; everyone else must see a conflict.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"os"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/kartikeycare/opd-booking/internal/booking"
)

type SimConfig struct {
	APIBaseURL string
	Workers    int
	Targets    int
	Duration   time.Duration
}

type Target struct {
	Date       string
	Department string
	Slot       string
}

func (t Target) Key() string {
	return t.Date + "|" + t.Department + "|" + t.Slot
}

type Metrics struct {
	Total     int64
	Success   int64
	Conflict  int64
	Error     int64
	mu        sync.Mutex
	latencies []time.Duration
	winners   map[string]int
}

func (m *Metrics) Record(key string, latency time.Duration, status int) {
	atomic.AddInt64(&m.Total, 1)

	switch {
	case status == http.StatusCreated:
		atomic.AddInt64(&m.Success, 1)
		m.mu.Lock()
		m.winners[key]++
		m.mu.Unlock()
	case status == http.StatusBadRequest:
		atomic.AddInt64(&m.Conflict, 1)
	default:
		atomic.AddInt64(&m.Error, 1)
	}

	m.mu.Lock()
	m.latencies = append(m.latencies, latency)
	m.mu.Unlock()
}

func (m *Metrics) Stats() (avg, p50, p95 time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := len(m.latencies)
	if n == 0 {
		return 0, 0, 0
	}

	sorted := make([]time.Duration, n)
	copy(sorted, m.latencies)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var sum time.Duration
	for _, l := range sorted {
		sum += l
	}

	avg = sum / time.Duration(n)
	p50 = sorted[n*50/100]
	p95 = sorted[min(n*95/100, n-1)]
	return avg, p50, p95
}

var departments = []string{
	"Cardiology", "Dermatology", "Neurology", "Orthopedics", "Pediatrics",
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("simulator starting")

	cfg := loadConfig()
	gofakeit.Seed(time.Now().UnixNano())

	targets := buildTargets(cfg.Targets)
	metrics := &Metrics{winners: make(map[string]int)}
	client := &http.Client{Timeout: 10 * time.Second}

	log.Printf("workers=%d targets=%d duration=%s base_url=%s",
		cfg.Workers, len(targets), cfg.Duration, cfg.APIBaseURL)

	deadline := time.Now().Add(cfg.Duration)
	var wg sync.WaitGroup
	for i := 0; i < cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for time.Now().Before(deadline) {
				target := targets[rand.Intn(len(targets))]
				bookOnce(client, cfg.APIBaseURL, target, metrics)
			}
		}()
	}
	wg.Wait()

	report(metrics, targets)
}

func loadConfig() SimConfig {
	return SimConfig{
		APIBaseURL: getEnv("API_BASE_URL", "http://localhost:8080"),
		Workers:    getInt("SIM_WORKERS", 16),
		Targets:    getInt("SIM_TARGETS", 10),
		Duration:   time.Duration(getInt("SIM_DURATION_SECONDS", 10)) * time.Second,
	}
}

func buildTargets(count int) []Target {
	slots := booking.AllSlots()
	date := time.Now().AddDate(0, 0, 1).Format("2006-01-02")

	targets := make([]Target, 0, count)
	used := make(map[string]struct{}, count)
	for len(targets) < count {
		t := Target{
			Date:       date,
			Department: departments[rand.Intn(len(departments))],
			Slot:       slots[rand.Intn(len(slots))],
		}
		if _, ok := used[t.Key()]; ok {
			continue
		}
		used[t.Key()] = struct{}{}
		targets = append(targets, t)
	}
	return targets
}

func bookOnce(client *http.Client, baseURL string, target Target, metrics *Metrics) {
	body, _ := json.Marshal(map[string]any{
		"name":       gofakeit.Name(),
		"age":        gofakeit.Number(1, 90),
		"phone":      gofakeit.Numerify("##########"),
		"address":    gofakeit.Address().Address,
		"department": target.Department,
		"date":       target.Date,
		"slot":       target.Slot,
	})

	start := time.Now()
	resp, err := client.Post(baseURL+"/api/appointments/book-appointment", "application/json", bytes.NewReader(body))
	latency := time.Since(start)

	if err != nil {
		metrics.Record(target.Key(), latency, 0)
		return
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()

	metrics.Record(target.Key(), latency, resp.StatusCode)
}

func report(metrics *Metrics, targets []Target) {
	avg, p50, p95 := metrics.Stats()

	fmt.Println("---- simulation results ----")
	fmt.Printf("requests:  %d\n", atomic.LoadInt64(&metrics.Total))
	fmt.Printf("success:   %d\n", atomic.LoadInt64(&metrics.Success))
	fmt.Printf("conflict:  %d\n", atomic.LoadInt64(&metrics.Conflict))
	fmt.Printf("error:     %d\n", atomic.LoadInt64(&metrics.Error))
	fmt.Printf("latency:   avg=%s p50=%s p95=%s\n", avg, p50, p95)

	violations := 0
	for _, t := range targets {
		if n := metrics.winners[t.Key()]; n > 1 {
			violations++
			fmt.Printf("VIOLATION: %s booked %d times\n", t.Key(), n)
		}
	}
	if violations == 0 {
		fmt.Println("invariant held: at most one success per slot key")
	} else {
		os.Exit(1)
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
