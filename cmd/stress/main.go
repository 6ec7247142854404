package main

import (
	"bufio"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/lixenwraith/sqllog"
)

const (
	totalBursts     = 200
	queriesPerBurst = 500
	maxQuerySize    = 2000
)

var aliases = []string{"orders", "billing", "inventory", "audit"}

var tables = []string{"users", "orders", "items", "payments", "events"}

// generateQuery returns a pseudo-random newline-terminated statement
func generateQuery(r *rand.Rand, worker, burst, seq int) string {
	const chars = "abcdefghijklmnopqrstuvwxyz0123456789"
	padLen := r.Intn(maxQuerySize)
	var sb strings.Builder
	sb.Grow(padLen + 128)
	fmt.Fprintf(&sb, "SELECT * FROM %s WHERE wkr=%d AND bst=%d AND seq=%d AND note='",
		tables[r.Intn(len(tables))], worker, burst, seq)
	for i := 0; i < padLen; i++ {
		sb.WriteByte(chars[r.Intn(len(chars))])
	}
	sb.WriteString("';\n")
	return sb.String()
}

// worker drains bursts, each goroutine holding one cached writer per alias
func worker(id int, registry *sqllog.Registry, burstChan <-chan int, wg *sync.WaitGroup,
	completedBursts *atomic.Int64, written []atomic.Int64, lines []atomic.Int64) {
	defer wg.Done()

	r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(id)))
	writers := make([]*sqllog.Writer, len(aliases))
	for i, alias := range aliases {
		l, err := registry.Logger(sqllog.Target{Alias: alias, Identity: id})
		if err != nil {
			fmt.Fprintf(os.Stderr, "\nworker %d: %v\n", id, err)
			return
		}
		writers[i] = l.NewWriter()
	}
	defer func() {
		for _, w := range writers {
			_ = w.Close()
		}
	}()

	for burstID := range burstChan {
		for seq := 0; seq < queriesPerBurst; seq++ {
			idx := r.Intn(len(aliases))
			q := generateQuery(r, id, burstID, seq)
			n, err := writers[idx].WriteString(q)
			if err != nil {
				fmt.Fprintf(os.Stderr, "\nworker %d write failed: %v\n", id, err)
				continue
			}
			written[idx].Add(int64(n))
			lines[idx].Add(1)
		}
		completed := completedBursts.Add(1)
		if completed%10 == 0 || completed == totalBursts {
			fmt.Printf("\rProgress: %d/%d bursts completed", completed, totalBursts)
		}
	}
}

// verifyAlias sums bytes and lines across every file of an alias
func verifyAlias(dir, alias string) (files int, size int64, count int64, err error) {
	entries, err := os.ReadDir(filepath.Join(dir, alias))
	if err != nil {
		return 0, 0, 0, err
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(dir, alias, e.Name())
		f, err := os.Open(path)
		if err != nil {
			return 0, 0, 0, err
		}
		sc := bufio.NewScanner(f)
		sc.Buffer(make([]byte, 0, 64*1024), maxQuerySize*4)
		for sc.Scan() {
			line := sc.Text()
			if !strings.HasPrefix(line, "SELECT * FROM ") || !strings.HasSuffix(line, "';") {
				f.Close()
				return 0, 0, 0, fmt.Errorf("interleaved or corrupt line in %s", path)
			}
			count++
		}
		if err := sc.Err(); err != nil {
			f.Close()
			return 0, 0, 0, err
		}
		info, err := f.Stat()
		f.Close()
		if err != nil {
			return 0, 0, 0, err
		}
		size += info.Size()
		files++
	}
	return files, size, count, nil
}

func main() {
	dir := flag.String("dir", "./sql_log_stress", "log directory (removed before the run)")
	workers := flag.Int("workers", 64, "concurrent writer goroutines")
	rotateKB := flag.Int64("rotate_kb", 512, "rotation threshold in KiB")
	flag.Parse()

	fmt.Println("--- SQL Logger Stress Test ---")
	_ = os.RemoveAll(*dir)

	registry, err := sqllog.NewBuilder().
		Directory(*dir).
		RotateSize(*rotateKB * 1024).
		DiagLevelString("warn").
		BuildRegistry()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create registry: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Starting stress test: %d workers, %d bursts, %d queries/burst, rotate at %d KiB.\n",
		*workers, totalBursts, queriesPerBurst, *rotateKB)
	fmt.Println("Press Ctrl+C to stop early.")

	burstChan := make(chan int, *workers)
	var wg sync.WaitGroup
	completedBursts := atomic.Int64{}
	written := make([]atomic.Int64, len(aliases))
	lines := make([]atomic.Int64, len(aliases))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	stopChan := make(chan struct{})
	go func() {
		<-sigChan
		fmt.Println("\n[Signal Received] Stopping burst generation...")
		close(stopChan)
	}()

	for i := 0; i < *workers; i++ {
		wg.Add(1)
		go worker(i, registry, burstChan, &wg, &completedBursts, written, lines)
	}

	startTime := time.Now()
submit:
	for i := 1; i <= totalBursts; i++ {
		select {
		case burstChan <- i:
		case <-stopChan:
			fmt.Println("[Signal Received] Halting burst submission.")
			break submit
		}
	}
	close(burstChan)

	fmt.Println("\nWaiting for workers to finish...")
	wg.Wait()
	duration := time.Since(startTime)

	stats := registry.Stats()
	if err := registry.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Registry close error: %v\n", err)
	}

	fmt.Printf("\n--- Test Finished in %v ---\n", duration.Round(time.Millisecond))
	for _, s := range stats {
		fmt.Printf("%-10s writes=%d bytes=%d rotations=%d races=%d refreshes=%d\n",
			s.Target, s.TotalWrites, s.TotalBytes, s.Rotations, s.RotationRace, s.Refreshes)
	}

	failed := false
	for i, alias := range aliases {
		files, size, count, err := verifyAlias(*dir, alias)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: verification failed: %v\n", alias, err)
			failed = true
			continue
		}
		want, wantLines := written[i].Load(), lines[i].Load()
		status := "OK"
		if size != want || count != wantLines {
			status = "MISMATCH"
			failed = true
		}
		fmt.Printf("%-10s files=%d bytes=%d/%d lines=%d/%d %s\n", alias, files, size, want, count, wantLines, status)
	}
	if failed {
		os.Exit(1)
	}
}
