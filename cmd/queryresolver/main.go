// Command queryresolver wires the Query Resolution Pipeline's components
// together from configuration and exposes process_query as a one-shot
// CLI invocation, matching the contract in spec.md §6 ("process_query",
// "health_check"). The HTTP/CLI surface proper is out of scope (§1); this
// is a thin construction-and-invocation entry point for local use and
// smoke testing, not a service.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/argofloatchat/queryresolver/internal/config"
	"github.com/argofloatchat/queryresolver/internal/logging"
	"github.com/argofloatchat/queryresolver/internal/pipeline"
)

func main() {
	configPath := flag.String("config", "", "optional config file path")
	query := flag.String("query", "", "natural-language query to resolve")
	healthCheck := flag.Bool("health", false, "run health_check instead of a query")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config error:", err)
		os.Exit(1)
	}

	log, err := logging.New(cfg.Development)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logging error:", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.LLMTimeout+cfg.StoreTimeout)
	defer cancel()

	orchestrator, err := buildOrchestrator(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to build pipeline", zap.Error(err))
	}

	if *healthCheck {
		status := orchestrator.HealthCheck(ctx)
		fmt.Printf("relational_ok=%v vector_ok=%v llm_ok=%v overall_ok=%v\n",
			status.RelationalOK, status.VectorOK, status.LLMOK, status.OverallOK)
		if !status.OverallOK {
			os.Exit(1)
		}
		return
	}

	if *query == "" {
		fmt.Fprintln(os.Stderr, "usage: queryresolver -query \"How many profiles in 2023?\"")
		os.Exit(2)
	}

	result := orchestrator.ProcessQuery(ctx, *query, cfg.DefaultMaxResults)
	fmt.Println(result.Answer)
	if !result.Success {
		os.Exit(1)
	}
}
