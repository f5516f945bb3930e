package validation

import (
	"errors"
	"math"
	"testing"

	"dividend-projection-lab/internal/domain"
)

func validConfig() domain.SimulationConfig {
	return domain.SimulationConfig{
		InitialPrincipal:      10_000,
		InitialSharePrice:     50,
		DividendYield:         0.04,
		DividendGrowthRate:    0.06,
		PriceAppreciationRate: 0.05,
		HorizonYears:          10,
		Frequency:             domain.FrequencyMonthly,
		Contribution:          domain.ContributionConfig{Mode: domain.ContributionFlat, Amount: 100},
		ReinvestMode:          domain.ReinvestDRIP,
		TaxDrag:               0.15,
	}
}

func fields(err error) map[string]bool {
	var verr *Error
	if !errors.As(err, &verr) {
		return nil
	}
	out := make(map[string]bool, len(verr.Violations))
	for _, v := range verr.Violations {
		out[v.Field] = true
	}
	return out
}

func TestNormalize_Valid(t *testing.T) {
	n, err := Normalize(validConfig(), Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if n.PeriodsPerYear != 12 || n.TotalPeriods != 120 {
		t.Errorf("expected 12 ppy / 120 periods, got %d / %d", n.PeriodsPerYear, n.TotalPeriods)
	}
	if math.Abs(n.InitialDPS-2.0) > 1e-12 {
		t.Errorf("expected initial DPS 2.0, got %f", n.InitialDPS)
	}

	// Per-period growth compounds back to the annual rate.
	annual := math.Pow(1+n.PriceGrowthPerPeriod, 12) - 1
	if math.Abs(annual-0.05) > 1e-12 {
		t.Errorf("expected price growth to compound to 0.05, got %.15f", annual)
	}
	annual = math.Pow(1+n.DividendGrowthPerPeriod, 12) - 1
	if math.Abs(annual-0.06) > 1e-12 {
		t.Errorf("expected dividend growth to compound to 0.06, got %.15f", annual)
	}
}

func TestNormalize_Defaults(t *testing.T) {
	cfg := validConfig()
	cfg.InitialSharePrice = 0
	cfg.Contribution.Mode = ""
	cfg.ReinvestMode = ""
	cfg.MilestoneThresholds = []float64{500, 50}

	n, err := Normalize(cfg, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.InitialPrice != domain.DefaultSharePrice {
		t.Errorf("expected default price, got %f", n.InitialPrice)
	}
	if n.Contribution.Mode != domain.ContributionFlat {
		t.Errorf("expected flat mode, got %q", n.Contribution.Mode)
	}
	if n.ReinvestMode != domain.ReinvestDRIP {
		t.Errorf("expected drip, got %q", n.ReinvestMode)
	}
	if n.MilestoneThresholds[0] != 50 || n.MilestoneThresholds[1] != 500 {
		t.Errorf("expected sorted thresholds, got %v", n.MilestoneThresholds)
	}
	if cfg.MilestoneThresholds[0] != 500 {
		t.Errorf("normalization must not reorder the caller's slice")
	}
}

func TestNormalize_ClampsTaxDrag(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{-0.2, 0},
		{0.3, 0.3},
		{1.7, 1},
	}
	for _, tt := range tests {
		cfg := validConfig()
		cfg.TaxDrag = tt.in
		n, err := Normalize(cfg, Options{})
		if err != nil {
			t.Fatalf("tax %f: unexpected error: %v", tt.in, err)
		}
		if n.TaxDrag != tt.want {
			t.Errorf("tax %f: expected %f, got %f", tt.in, tt.want, n.TaxDrag)
		}
	}
}

func TestNormalize_CollectsAllViolations(t *testing.T) {
	cfg := validConfig()
	cfg.InitialPrincipal = -1
	cfg.DividendYield = -0.01
	cfg.PriceAppreciationRate = -1.5
	cfg.HorizonYears = 0
	cfg.Frequency = "weekly"
	cfg.Contribution.Amount = -100
	cfg.TaxDrag = math.NaN()

	_, err := Normalize(cfg, Options{})
	if !errors.Is(err, domain.ErrInvalidConfiguration) {
		t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
	}

	got := fields(err)
	for _, want := range []string{
		"initial_principal",
		"dividend_yield",
		"price_appreciation_rate",
		"horizon_years",
		"frequency",
		"contribution.amount",
		"tax_drag",
	} {
		if !got[want] {
			t.Errorf("expected violation for %s, got %v", want, got)
		}
	}
}

func TestNormalize_Horizon(t *testing.T) {
	tests := []struct {
		name    string
		years   float64
		freq    domain.Frequency
		max     int
		wantErr bool
	}{
		{"one annual period", 1, domain.FrequencyAnnual, 0, false},
		{"one monthly period", 1.0 / 12, domain.FrequencyMonthly, 0, false},
		{"zero", 0, domain.FrequencyMonthly, 0, true},
		{"negative", -1, domain.FrequencyMonthly, 0, true},
		{"infinite", math.Inf(1), domain.FrequencyMonthly, 0, true},
		{"beyond max periods", 50, domain.FrequencyMonthly, 480, true},
		{"beyond max years", 150, domain.FrequencyAnnual, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.HorizonYears = tt.years
			cfg.Frequency = tt.freq
			_, err := Normalize(cfg, Options{MaxPeriods: tt.max})
			if tt.wantErr && !fields(err)["horizon_years"] {
				t.Errorf("expected horizon_years violation, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestNormalize_Contributions(t *testing.T) {
	cfg := validConfig()
	cfg.Contribution = domain.ContributionConfig{
		Mode:           domain.ContributionPaused,
		Amount:         100,
		EscalationRate: -1,
		Pauses:         []domain.PeriodRange{{From: 10, To: 5}},
		LumpSums:       []domain.LumpSum{{Period: 500, Amount: -5}},
	}

	_, err := Normalize(cfg, Options{})
	got := fields(err)
	for _, want := range []string{
		"contribution.escalation_rate",
		"contribution.pauses[0]",
		"contribution.lump_sums[0].amount",
		"contribution.lump_sums[0].period",
	} {
		if !got[want] {
			t.Errorf("expected violation for %s, got %v", want, got)
		}
	}

	cfg.Contribution = domain.ContributionConfig{Mode: domain.ContributionPaused, Amount: 100}
	_, err = Normalize(cfg, Options{})
	if !fields(err)["contribution.pauses"] {
		t.Errorf("expected paused mode without ranges to fail, got %v", err)
	}
}

func TestNormalize_Withdrawal(t *testing.T) {
	cfg := validConfig()
	cfg.Withdrawal = &domain.WithdrawalConfig{TriggerPeriod: 0, AnnualRate: 0.04}

	n, err := Normalize(cfg, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !n.WithdrawalEnabled || n.WithdrawalTrigger != 0 {
		t.Errorf("expected withdrawal enabled at period 0")
	}
	if math.Abs(n.WithdrawalRatePerPeriod-0.04/12) > 1e-15 {
		t.Errorf("expected per-period rate %f, got %f", 0.04/12, n.WithdrawalRatePerPeriod)
	}

	cfg.Withdrawal = &domain.WithdrawalConfig{TriggerPeriod: 120, AnnualRate: 1.5}
	_, err = Normalize(cfg, Options{})
	got := fields(err)
	if !got["withdrawal.trigger_period"] || !got["withdrawal.annual_rate"] {
		t.Errorf("expected trigger and rate violations, got %v", got)
	}
}

func TestPerPeriodGrowth(t *testing.T) {
	if got := PerPeriodGrowth(0.08, 1); got != 0.08 {
		t.Errorf("annual frequency should pass through, got %f", got)
	}
	if got := PerPeriodGrowth(-1, 12); got != -1 {
		t.Errorf("total loss should stay total, got %f", got)
	}
	if got := PerPeriodGrowth(0, 4); got != 0 {
		t.Errorf("zero growth should stay zero, got %f", got)
	}
}

func TestNormalize_UpperBounds(t *testing.T) {
	cfg := validConfig()
	cfg.InitialPrincipal = MaxAmount * 2
	cfg.InitialSharePrice = 1e300
	cfg.Contribution = domain.ContributionConfig{
		Mode:           domain.ContributionEscalating,
		Amount:         MaxAmount + 1,
		EscalationRate: MaxGrowthRate + 1,
		LumpSums:       []domain.LumpSum{{Period: 1, Amount: math.MaxFloat64}},
	}

	_, err := Normalize(cfg, Options{})
	got := fields(err)
	for _, want := range []string{
		"initial_principal",
		"initial_share_price",
		"contribution.amount",
		"contribution.escalation_rate",
		"contribution.lump_sums[0].amount",
	} {
		if !got[want] {
			t.Errorf("expected violation for %s, got %v", want, got)
		}
	}

	cfg = validConfig()
	cfg.Contribution = domain.ContributionConfig{Mode: domain.ContributionEscalating, Amount: 100, EscalationRate: MaxGrowthRate}
	if _, err := Normalize(cfg, Options{}); err != nil {
		t.Errorf("escalation at the bound should be accepted: %v", err)
	}
}

func TestNormalize_PausesRequirePausedMode(t *testing.T) {
	for _, mode := range []domain.ContributionMode{domain.ContributionFlat, domain.ContributionEscalating, ""} {
		cfg := validConfig()
		cfg.Contribution = domain.ContributionConfig{
			Mode:           mode,
			Amount:         100,
			EscalationRate: 0.03,
			Pauses:         []domain.PeriodRange{{From: 12, To: 23}},
		}
		_, err := Normalize(cfg, Options{})
		if !fields(err)["contribution.pauses"] {
			t.Errorf("mode %q: expected pauses to be rejected", mode)
		}
	}
}
