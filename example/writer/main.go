// FILE: lixenwraith/sqllog/example/writer/main.go
package main

import (
	"fmt"
	"os"
	"sync"

	"github.com/lixenwraith/sqllog"
)

func main() {
	// Builder with a tiny threshold so rotation is visible
	registry, err := sqllog.NewBuilder().
		Directory("./sql_log_example").
		RotateSize(4 * 1024).
		DiagLevelString("info").
		BuildRegistry()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create registry: %v\n", err)
		os.Exit(1)
	}
	defer registry.Close()

	// One-off writes go through the registry's pooled writers
	if err := registry.Write(sqllog.Target{Alias: "primary", Identity: "10.0.0.5:5432"}, "SELECT version();\n"); err != nil {
		fmt.Fprintf(os.Stderr, "write failed: %v\n", err)
	}

	logger, err := registry.Logger(sqllog.Target{Alias: "replica"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to get logger: %v\n", err)
		os.Exit(1)
	}

	// Long-lived goroutines keep their own cached writer
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			w := logger.NewWriter()
			defer w.Close()
			for j := 0; j < 100; j++ {
				query := fmt.Sprintf("SELECT * FROM events WHERE worker = %d AND seq = %d;\n", id, j)
				if _, err := w.WriteString(query); err != nil {
					fmt.Fprintf(os.Stderr, "worker %d: %v\n", id, err)
					return
				}
			}
		}(i)
	}
	wg.Wait()

	for _, s := range registry.Stats() {
		fmt.Printf("%s: %d writes, %d bytes, %d files, current %s\n",
			s.Target, s.TotalWrites, s.TotalBytes, s.Rotations, s.CurrentPath)
	}
}
