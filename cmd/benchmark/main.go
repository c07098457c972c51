package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"mantis/config"
	"mantis/internal/adapter/analyzer"
	"mantis/internal/adapter/memstore"
	"mantis/internal/adapter/retriever"
	"mantis/internal/adapter/store"
)

func main() {
	dir := flag.String("dir", ".", "Directory holding mantis.yaml")
	kbPath := flag.String("kb", "", "Knowledge base file (default from config)")
	query := flag.String("q", "", "Query to test")
	topK := flag.Int("k", 3, "Number of results")
	rounds := flag.Int("n", 200, "Rankings to time")
	workers := flag.Int("workers", 4, "Concurrent rankers sharing one snapshot")
	flag.Parse()

	if *query == "" {
		fmt.Println("Usage: go run ./cmd/benchmark -dir . -q \"query\"")
		fmt.Println("\nReports:")
		fmt.Println("  1. Ranked pages with score breakdown")
		fmt.Println("  2. Ranking latency over the whole knowledge base")
		fmt.Println("  3. Throughput with concurrent readers on one snapshot")
		os.Exit(1)
	}

	cfg, err := config.LoadFromDir(*dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	path := cfg.KnowledgeBase.Path
	if *kbPath != "" {
		path = *kbPath
	}

	chunks, err := store.LoadKnowledgeBase(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading knowledge base: %v\n", err)
		os.Exit(1)
	}

	corpus := memstore.NewCorpus(chunks, path)
	q := retriever.NewQuery(analyzer.NewQueryTokenizer(), *query)

	fmt.Println("KEYWORD RANKING BENCHMARK")
	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("Knowledge base: %s\n", path)
	fmt.Printf("Chunks: %d\n", corpus.Snapshot().Len())
	fmt.Printf("Tokens: %v\n", q.Tokens)
	fmt.Println()

	kb := corpus.Snapshot()
	results := retriever.Rank(q, kb.Chunks, *topK)

	fmt.Printf("Query: \"%s\"\n", *query)
	fmt.Println(strings.Repeat("-", 70))
	fmt.Printf("Top %d matches:\n\n", len(results))
	for i, r := range results {
		preview := []rune(r.Chunk.Text)
		if len(preview) > 150 {
			preview = append(preview[:150], []rune("...")...)
		}
		fmt.Printf("%d. [%d] %s p.%d [%s]\n", i+1, r.Score, r.Chunk.Source, r.Chunk.Page, r.Chunk.Platform)
		fmt.Printf("   %s\n\n", string(preview))
	}

	latencies := make([]time.Duration, *rounds)
	start := time.Now()

	var g errgroup.Group
	g.SetLimit(*workers)
	for i := range latencies {
		g.Go(func() error {
			t := time.Now()
			retriever.Rank(q, kb.Chunks, *topK)
			latencies[i] = time.Since(t)
			return nil
		})
	}
	g.Wait()
	wall := time.Since(start)

	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })

	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("LATENCY (%d rankings, %d workers):\n", *rounds, *workers)
	if len(latencies) > 0 {
		fmt.Printf("  p50: %v\n", percentile(latencies, 0.50))
		fmt.Printf("  p95: %v\n", percentile(latencies, 0.95))
		fmt.Printf("  max: %v\n", latencies[len(latencies)-1])
		fmt.Printf("  throughput: %.1f rankings/s\n", float64(len(latencies))/wall.Seconds())
	}

	if len(results) == 0 {
		fmt.Println("  Status: NO MATCH - no page reached the minimum score")
	} else if results[0].Score >= retriever.PlatformBonus {
		fmt.Println("  Status: GOOD - top page matches the query platform")
	} else {
		fmt.Println("  Status: OK - keyword matches only")
	}
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	idx := int(float64(len(sorted)-1) * p)
	return sorted[idx]
}
