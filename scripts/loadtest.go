//go:build ignore

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

const baseURL = "http://localhost:8080"

var (
	cities       = []string{"Dakar", "Thiès", "Kaolack", "Saint-Louis", "Touba", "Ziguinchor", "Tambacounda", "Mbour"}
	vehicleTypes = []string{"car", "van", "truck", "semi", "refrigerated"}
	feeKinds     = []string{"manual_loading", "fragile", "urgent"}
)

type Stats struct {
	TotalRequests   int64
	SuccessRequests int64
	FailedRequests  int64
	TotalLatency    int64
	MinLatency      int64
	MaxLatency      int64
}

func newStats() *Stats {
	return &Stats{MinLatency: int64(^uint64(0) >> 1)}
}

func (s *Stats) record(latency int64, ok bool) {
	atomic.AddInt64(&s.TotalRequests, 1)
	atomic.AddInt64(&s.TotalLatency, latency)
	if !ok {
		atomic.AddInt64(&s.FailedRequests, 1)
		return
	}
	atomic.AddInt64(&s.SuccessRequests, 1)

	for {
		old := atomic.LoadInt64(&s.MinLatency)
		if latency >= old || atomic.CompareAndSwapInt64(&s.MinLatency, old, latency) {
			break
		}
	}
	for {
		old := atomic.LoadInt64(&s.MaxLatency)
		if latency <= old || atomic.CompareAndSwapInt64(&s.MaxLatency, old, latency) {
			break
		}
	}
}

func main() {
	fmt.Println("Freight Pricing Load Test")
	fmt.Println("=========================")

	fmt.Println("\n1. Testing Quotes (2000 quotes, 50 concurrent)...")
	stats, quoteIDs := testQuotes(2000, 50)
	printStats("Quotes", stats)

	if len(quoteIDs) == 0 {
		log.Fatal("No quotes were created, is the server running?")
	}

	fmt.Println("\n2. Testing Freight Booking (200 freights, 10 concurrent)...")
	stats = testFreightCreation(quoteIDs, 200, 10)
	printStats("Freight Booking", stats)

	fmt.Println("\n3. Testing Mixed Load (30 seconds)...")
	stats = testMixedLoad(30 * time.Second)
	printStats("Mixed Load", stats)

	fmt.Println("\nLoad test completed!")
}

func randomQuote() map[string]interface{} {
	origin := cities[rand.Intn(len(cities))]
	destination := cities[rand.Intn(len(cities))]
	for destination == origin {
		destination = cities[rand.Intn(len(cities))]
	}

	// Weights stay inside the tiers every vehicle can price most of the time;
	// the occasional 422 counts as a success.
	quote := map[string]interface{}{
		"origin":       origin,
		"destination":  destination,
		"vehicle_type": vehicleTypes[rand.Intn(len(vehicleTypes))],
		"weight_kg":    float64(rand.Intn(15000)),
		"empty_return": rand.Intn(4) == 0,
	}
	if rand.Intn(2) == 0 {
		quote["additional_fees"] = []string{feeKinds[rand.Intn(len(feeKinds))]}
	}
	return quote
}

func postJSON(path string, payload interface{}, idempotencyKey string) (*http.Response, int64, error) {
	body, _ := json.Marshal(payload)
	req, _ := http.NewRequest(http.MethodPost, baseURL+path, bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	start := time.Now()
	resp, err := http.DefaultClient.Do(req)
	return resp, time.Since(start).Milliseconds(), err
}

func testQuotes(numRequests, concurrency int) (*Stats, []string) {
	stats := newStats()
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		quoteIDs []string
	)
	semaphore := make(chan struct{}, concurrency)

	for i := 0; i < numRequests; i++ {
		wg.Add(1)
		semaphore <- struct{}{}

		go func() {
			defer wg.Done()
			defer func() { <-semaphore }()

			resp, latency, err := postJSON("/v1/quotes", randomQuote(), "")
			if err != nil {
				stats.record(latency, false)
				return
			}
			defer resp.Body.Close()

			switch resp.StatusCode {
			case http.StatusCreated:
				var result map[string]interface{}
				json.NewDecoder(resp.Body).Decode(&result)
				if id, ok := result["id"].(string); ok {
					mu.Lock()
					quoteIDs = append(quoteIDs, id)
					mu.Unlock()
				}
				stats.record(latency, true)
			case http.StatusUnprocessableEntity:
				io.Copy(io.Discard, resp.Body)
				stats.record(latency, true)
			default:
				io.Copy(io.Discard, resp.Body)
				stats.record(latency, false)
			}
		}()
	}

	wg.Wait()
	return stats, quoteIDs
}

func testFreightCreation(quoteIDs []string, numRequests, concurrency int) *Stats {
	stats := newStats()
	var wg sync.WaitGroup
	semaphore := make(chan struct{}, concurrency)
	shipperID := uuid.NewString()

	for i := 0; i < numRequests; i++ {
		wg.Add(1)
		semaphore <- struct{}{}

		go func(idx int) {
			defer wg.Done()
			defer func() { <-semaphore }()

			freight := map[string]interface{}{
				"shipper_id": shipperID,
				"quote_id":   quoteIDs[idx%len(quoteIDs)],
			}

			resp, latency, err := postJSON("/v1/freights", freight, fmt.Sprintf("load-test-freight-%d-%d", idx, time.Now().UnixNano()))
			if err != nil {
				stats.record(latency, false)
				return
			}
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()

			// 409: the quote was already booked by an earlier iteration.
			stats.record(latency, resp.StatusCode == http.StatusCreated || resp.StatusCode == http.StatusConflict)
		}(i)
	}

	wg.Wait()
	return stats
}

func testMixedLoad(duration time.Duration) *Stats {
	stats := newStats()
	var wg sync.WaitGroup
	done := make(chan struct{})

	paths := []string{"/v1/tariffs/vehicles", "/v1/tariffs/fees", "/v1/distance?origin=Dakar&destination=Touba"}

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
				}

				var (
					resp    *http.Response
					latency int64
					err     error
				)
				if worker%2 == 0 {
					resp, latency, err = postJSON("/v1/quotes", randomQuote(), "")
				} else {
					start := time.Now()
					resp, err = http.Get(baseURL + paths[rand.Intn(len(paths))])
					latency = time.Since(start).Milliseconds()
				}

				ok := err == nil && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests
				stats.record(latency, ok)
				if resp != nil {
					io.Copy(io.Discard, resp.Body)
					resp.Body.Close()
				}

				time.Sleep(10 * time.Millisecond)
			}
		}(i)
	}

	time.Sleep(duration)
	close(done)
	wg.Wait()

	return stats
}

func printStats(name string, stats *Stats) {
	avgLatency := float64(0)
	if stats.TotalRequests > 0 {
		avgLatency = float64(stats.TotalLatency) / float64(stats.TotalRequests)
	}

	fmt.Printf("\n%s Results:\n", name)
	fmt.Printf("  Total Requests:   %d\n", stats.TotalRequests)
	fmt.Printf("  Successful:       %d\n", stats.SuccessRequests)
	fmt.Printf("  Failed:           %d\n", stats.FailedRequests)
	if stats.TotalRequests > 0 {
		fmt.Printf("  Success Rate:     %.2f%%\n", float64(stats.SuccessRequests)/float64(stats.TotalRequests)*100)
	}
	fmt.Printf("  Avg Latency:      %.2f ms\n", avgLatency)
	if stats.MinLatency != int64(^uint64(0)>>1) {
		fmt.Printf("  Min Latency:      %d ms\n", stats.MinLatency)
	}
	fmt.Printf("  Max Latency:      %d ms\n", stats.MaxLatency)
}
