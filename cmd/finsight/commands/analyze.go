package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/finsightlab/finsight/internal/contracts"
	"github.com/finsightlab/finsight/internal/pipeline"
	"github.com/finsightlab/finsight/pkg/config"
	"github.com/finsightlab/finsight/pkg/logger"
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run the recommendation pipeline once",
	Long: `Runs the full five-stage pipeline for the given symbols and
prints the result as JSON.

When --symbols is omitted, candidate symbols are discovered from
the preference filters instead.

Example:
  go run ./cmd/finsight analyze --symbols AAPL,MSFT,GOOGL
  go run ./cmd/finsight analyze --symbols AAPL --timeframe 1year --risk 2
  go run ./cmd/finsight analyze --sectors technology,energy --risk 4`,
	RunE: runAnalyze,
}

var (
	analyzeSymbols     string
	analyzeTimeframe   string
	analyzeRisk        int
	analyzeSectors     string
	analyzeGoals       string
	analyzeMarketCap   string
	analyzeDividend    bool
	analyzeMax         int
	analyzeMode        string
	analyzeModel       string
	analyzeTemperature float64
)

func init() {
	rootCmd.AddCommand(analyzeCmd)

	// Flags
	analyzeCmd.Flags().StringVar(&analyzeSymbols, "symbols", "", "comma-separated ticker symbols")
	analyzeCmd.Flags().StringVar(&analyzeTimeframe, "timeframe", "1day", "analysis timeframe (1day|1week|1month|3month|6month|1year|5year)")
	analyzeCmd.Flags().IntVar(&analyzeRisk, "risk", 0, "risk tolerance 1-5 (0 = configured defaults)")
	analyzeCmd.Flags().StringVar(&analyzeSectors, "sectors", "", "comma-separated sector filters")
	analyzeCmd.Flags().StringVar(&analyzeGoals, "goals", "", "comma-separated investment goals")
	analyzeCmd.Flags().StringVar(&analyzeMarketCap, "market-cap", "", "comma-separated market cap buckets")
	analyzeCmd.Flags().BoolVar(&analyzeDividend, "dividend", false, "prefer dividend payers")
	analyzeCmd.Flags().IntVar(&analyzeMax, "max", 0, "maximum recommendations (0 = default)")
	analyzeCmd.Flags().StringVar(&analyzeMode, "mode", "full", "analysis mode (full|narrative)")
	analyzeCmd.Flags().StringVar(&analyzeModel, "model", "", "LLM model override")
	analyzeCmd.Flags().Float64Var(&analyzeTemperature, "temperature", 0.7, "LLM sampling temperature")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Validate flags
	if analyzeRisk < 0 || analyzeRisk > 5 {
		return fmt.Errorf("risk must be between 1 and 5, or 0 for defaults")
	}
	mode := contracts.Mode(analyzeMode)
	if mode != contracts.ModeFull && mode != contracts.ModeNarrative {
		return fmt.Errorf("mode must be full or narrative")
	}

	// 4. Wire the pipeline
	orchestrator, _, _, err := buildPipeline(cfg, log)
	if err != nil {
		return fmt.Errorf("build pipeline: %w", err)
	}

	req := pipeline.Request{
		Symbols: splitList(analyzeSymbols),
		Preferences: contracts.Preferences{
			RiskTolerance:      riskTier(analyzeRisk),
			PreferredSectors:   splitList(analyzeSectors),
			InvestmentGoals:    splitList(analyzeGoals),
			MarketCap:          splitList(analyzeMarketCap),
			DividendPreference: analyzeDividend,
			MaxRecommendations: analyzeMax,
		},
		AISettings: contracts.AISettings{
			Model:       analyzeModel,
			Temperature: analyzeTemperature,
		},
		Timeframe: mapTimeframe(analyzeTimeframe),
		Mode:      mode,
	}

	// 5. Run, cancellable with Ctrl+C
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result := orchestrator.Run(ctx, req)

	// 6. Print result
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(result); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}

	if result.Status != "success" {
		return fmt.Errorf("pipeline halted: %s", strings.Join(result.Errors, "; "))
	}
	return nil
}

// riskTier maps the 1-5 risk tolerance scale onto tiers, 0 meaning none
func riskTier(tolerance int) contracts.RiskTolerance {
	switch {
	case tolerance == 0:
		return ""
	case tolerance <= 2:
		return contracts.RiskConservative
	case tolerance == 3:
		return contracts.RiskModerate
	default:
		return contracts.RiskAggressive
	}
}

// mapTimeframe converts CLI timeframe tokens to pipeline tokens
func mapTimeframe(timeframe string) string {
	switch timeframe {
	case "1day":
		return contracts.Timeframe1D
	case "1week":
		return contracts.Timeframe1W
	case "1month":
		return contracts.Timeframe1M
	case "3month":
		return contracts.Timeframe3M
	case "6month":
		return contracts.Timeframe6M
	case "1year":
		return contracts.Timeframe1Y
	case "5year":
		return contracts.Timeframe5Y
	}
	if contracts.ValidTimeframe(timeframe) {
		return timeframe
	}
	return contracts.DefaultTimeframe
}

// splitList splits a comma-separated flag value, dropping empty entries
func splitList(value string) []string {
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
