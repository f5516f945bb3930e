// Package main runs one-off projections from flags or presets.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"dividend-projection-lab/internal/calculator"
	"dividend-projection-lab/internal/config"
	"dividend-projection-lab/internal/domain"
	"dividend-projection-lab/internal/engine"
	"dividend-projection-lab/internal/logger"
	"dividend-projection-lab/internal/reporting"
	"dividend-projection-lab/internal/simulation"
)

func main() {
	// Input source
	presetName := flag.String("preset", "", "Preset name (see -list-presets)")
	configFile := flag.String("config", "", "Path to a SimulationConfig JSON file")
	compare := flag.String("compare", "", "Comma-separated preset names to compare")
	listPresets := flag.Bool("list-presets", false, "List presets and exit")

	// Config flags, used when neither -preset nor -config is given
	principal := flag.Float64("principal", 10_000, "Initial principal")
	sharePrice := flag.Float64("share-price", 0, "Initial share price (0 means 100)")
	yield := flag.Float64("yield", 0.04, "Annual dividend yield, fraction")
	divGrowth := flag.Float64("dividend-growth", 0.05, "Annual dividend growth rate, fraction")
	appreciation := flag.Float64("appreciation", 0.05, "Annual price appreciation rate, fraction")
	years := flag.Float64("years", 20, "Horizon in years")
	frequency := flag.String("frequency", "monthly", "Period frequency: monthly, quarterly, annual")
	contribution := flag.Float64("contribution", 0, "Flat contribution per period")
	escalation := flag.Float64("escalation", 0, "Annual contribution escalation rate; > 0 selects escalating mode")
	reinvest := flag.Bool("reinvest", true, "Reinvest dividends (DRIP)")
	tax := flag.Float64("tax", 0, "Tax drag on dividends, fraction")
	withdrawAt := flag.Int("withdraw-at", -1, "Period index where withdrawals start; -1 disables")
	withdrawRate := flag.Float64("withdraw-rate", 0.04, "Annual withdrawal rate, fraction of portfolio value")

	// Output
	format := flag.String("format", "text", "Output format: text, markdown, csv, trace-csv, json")
	title := flag.String("title", "", "Report title")

	flag.Parse()

	log, err := logger.New(config.LogConfig{Level: "warn", Encoding: "console", DisableStacktrace: true})
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if *listPresets {
		for _, p := range calculator.Presets() {
			fmt.Printf("%-16s %s\n", p.Name, p.Description)
		}
		return
	}

	eng := engine.New(engine.Options{})
	runner := simulation.NewRunner(simulation.RunnerOptions{Engine: eng, Logger: log})
	generator := reporting.NewGenerator(nil, nil, nil)

	if *compare != "" {
		if err := runCompare(context.Background(), eng, generator, *compare, *format); err != nil {
			log.Fatal("compare failed", zap.Error(err))
		}
		return
	}

	cfg, name, err := resolveConfig(*presetName, *configFile, func() domain.SimulationConfig {
		c := domain.SimulationConfig{
			InitialPrincipal:      *principal,
			InitialSharePrice:     *sharePrice,
			DividendYield:         *yield,
			DividendGrowthRate:    *divGrowth,
			PriceAppreciationRate: *appreciation,
			HorizonYears:          *years,
			Frequency:             domain.Frequency(strings.ToLower(*frequency)),
			ReinvestMode:          domain.ReinvestCashOut,
			TaxDrag:               *tax,
		}
		if *reinvest {
			c.ReinvestMode = domain.ReinvestDRIP
		}
		if *contribution > 0 {
			c.Contribution = domain.ContributionConfig{Mode: domain.ContributionFlat, Amount: *contribution}
			if *escalation > 0 {
				c.Contribution.Mode = domain.ContributionEscalating
				c.Contribution.EscalationRate = *escalation
			}
		}
		if *withdrawAt >= 0 {
			c.Withdrawal = &domain.WithdrawalConfig{TriggerPeriod: *withdrawAt, AnnualRate: *withdrawRate}
		}
		return c
	})
	if err != nil {
		log.Fatal("resolve config failed", zap.Error(err))
	}
	if *title != "" {
		name = *title
	}

	sim, err := runner.Simulate(simulation.SourceCLI, cfg, nil)
	if err != nil {
		var degenerate *engine.DegenerateError
		if errors.As(err, &degenerate) {
			log.Fatal("projection degenerate",
				zap.Int("period", degenerate.Period),
				zap.Float64("price", degenerate.Price),
				zap.Int("completed_periods", len(degenerate.Trace)))
		}
		log.Fatal("projection failed", zap.Error(err))
	}

	if err := write(generator, name, sim, *format); err != nil {
		log.Fatal("write output failed", zap.Error(err))
	}
}

// resolveConfig picks the config from a preset, a JSON file or flags, in that order.
func resolveConfig(preset, file string, fromFlags func() domain.SimulationConfig) (domain.SimulationConfig, string, error) {
	switch {
	case preset != "":
		p, err := calculator.Preset(preset)
		if err != nil {
			return domain.SimulationConfig{}, "", err
		}
		return p.Config, p.Name, nil
	case file != "":
		raw, err := os.ReadFile(file)
		if err != nil {
			return domain.SimulationConfig{}, "", err
		}
		var cfg domain.SimulationConfig
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return domain.SimulationConfig{}, "", fmt.Errorf("parse %s: %w", file, err)
		}
		return cfg, file, nil
	default:
		return fromFlags(), "", nil
	}
}

func runCompare(ctx context.Context, eng *engine.Engine, generator *reporting.Generator, list, format string) error {
	var (
		names   []string
		configs []domain.SimulationConfig
	)
	for _, name := range strings.Split(list, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		p, err := calculator.Preset(name)
		if err != nil {
			return err
		}
		names = append(names, p.Name)
		configs = append(configs, p.Config)
	}

	reports, err := calculator.New(eng).Compare(ctx, configs)
	if err != nil {
		return err
	}

	if format == "text" {
		printComparison(generator, names, reports)
		return nil
	}
	for i, sim := range reports {
		if err := write(generator, names[i], sim, format); err != nil {
			return err
		}
		if format == "markdown" && i < len(reports)-1 {
			fmt.Println()
		}
	}
	return nil
}

func write(generator *reporting.Generator, title string, sim *domain.SimulationReport, format string) error {
	switch format {
	case "json":
		out, err := json.MarshalIndent(sim, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
	case "markdown":
		fmt.Print(reporting.RenderMarkdown(generator.Build(title, sim)))
	case "csv":
		fmt.Print(reporting.RenderYearlyCSV(generator.Build(title, sim).Yearly))
	case "trace-csv":
		fmt.Print(reporting.RenderTraceCSV(sim.Trace))
	case "text":
		printSummary(generator.Build(title, sim))
	default:
		return fmt.Errorf("unknown format %q", format)
	}
	return nil
}

// printSummary outputs a human-readable summary.
func printSummary(r *reporting.Report) {
	s := r.Summary
	fmt.Println()
	fmt.Println("=== Projection Result ===")
	if r.Title != "" {
		fmt.Printf("Scenario:           %s\n", r.Title)
	}
	fmt.Printf("Periods:            %d (%s years)\n", s.Periods, s.Years.String())
	fmt.Printf("Final Phase:        %s\n", s.FinalPhase)
	fmt.Println()

	fmt.Println("Portfolio:")
	fmt.Printf("  Final Value:      $%s\n", s.FinalValue.StringFixed(2))
	fmt.Printf("  Final Shares:     %s\n", s.FinalShares.StringFixed(4))
	fmt.Printf("  Annual Income:    $%s\n", s.FinalAnnualIncome.StringFixed(2))
	fmt.Println()

	fmt.Println("Cash Flows:")
	fmt.Printf("  Invested:         $%s\n", s.TotalInvested.StringFixed(2))
	fmt.Printf("  Dividends:        $%s\n", s.TotalDividends.StringFixed(2))
	fmt.Printf("  Tax Withheld:     $%s\n", s.TotalTaxWithheld.StringFixed(2))
	fmt.Printf("  Withdrawals:      $%s\n", s.TotalWithdrawals.StringFixed(2))
	fmt.Println()

	fmt.Println("Returns:")
	fmt.Printf("  Total Return:     $%s (%s%%)\n", s.TotalReturn.StringFixed(2), s.TotalReturnPct.StringFixed(2))
	if s.AnnualizedPct != nil {
		fmt.Printf("  Annualized:       %s%%\n", s.AnnualizedPct.StringFixed(2))
	}
	if s.YieldOnCostPct != nil {
		fmt.Printf("  Yield on Cost:    %s%%\n", s.YieldOnCostPct.StringFixed(2))
	}

	if len(r.Milestones) > 0 {
		fmt.Println()
		fmt.Println("Milestones:")
		for _, m := range r.Milestones {
			fmt.Printf("  Year %-3d %s\n", m.Year, m.Label)
		}
	}
}

// printComparison outputs one row per compared scenario.
func printComparison(generator *reporting.Generator, names []string, reports []*domain.SimulationReport) {
	fmt.Printf("%-16s %8s %16s %14s %14s %10s\n", "Scenario", "Years", "Final Value", "Income", "Invested", "CAGR %")
	for i, sim := range reports {
		s := generator.Build(names[i], sim).Summary
		cagr := "n/a"
		if s.AnnualizedPct != nil {
			cagr = s.AnnualizedPct.StringFixed(2)
		}
		fmt.Printf("%-16s %8s %16s %14s %14s %10s\n",
			names[i],
			s.Years.String(),
			s.FinalValue.StringFixed(2),
			s.FinalAnnualIncome.StringFixed(2),
			s.TotalInvested.StringFixed(2),
			cagr,
		)
	}
}
