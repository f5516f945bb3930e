package engine

import (
	"math"

	"dividend-projection-lab/internal/domain"
	"dividend-projection-lab/internal/schedule"
)

// state is the mutable simulation state. Owned by a single run.
type state struct {
	shares float64
	price  float64
	dps    float64 // annual dividend per share

	cumContributions float64
	cumDividends     float64
	cumWithdrawals   float64

	phase domain.Phase
}

func newState(cfg *domain.NormalizedConfig) *state {
	return &state{
		shares: cfg.InitialPrincipal / cfg.InitialPrice,
		price:  cfg.InitialPrice,
		dps:    cfg.InitialDPS,
		phase:  domain.PhaseAccumulating,
	}
}

// step advances st by one period and returns the period's record.
// On a non-positive or non-finite price it returns errDegeneratePrice, and on
// overflowing holdings errNonFinite. Either way the state must be discarded.
// Steps:
//  0. Enter WITHDRAWING once the trigger period is reached (terminal)
//  1. Accrue dividends on start-of-period shares at start-of-period DPS
//  2. Apply tax drag
//  3. Build investable cash (net dividends only under DRIP)
//  4. Buy fractional shares at the current price
//  5. Grow price and DPS for the next period
//  6. Withdraw a fraction of the ending value while WITHDRAWING
func step(cfg *domain.NormalizedConfig, st *state, p schedule.Period, contribution float64) (domain.PeriodRecord, error) {
	// 0. Phase transition
	if cfg.WithdrawalEnabled && p.Index >= cfg.WithdrawalTrigger {
		st.phase = domain.PhaseWithdrawing
	}

	rec := domain.PeriodRecord{
		Index: p.Index,
		Year:  p.Year,
		Phase: st.phase,
	}

	// 1. Dividend accrual
	dividend := st.shares * (st.dps / float64(cfg.PeriodsPerYear))

	// 2. Tax drag
	tax := dividend * cfg.TaxDrag
	net := dividend - tax

	rec.DividendCash = dividend
	rec.TaxWithheld = tax
	rec.NetDividend = net

	// 3. Investable cash
	if st.phase == domain.PhaseWithdrawing {
		contribution = 0
	}
	investable := contribution
	if cfg.ReinvestMode == domain.ReinvestDRIP {
		investable += net
		rec.DividendReinvested = net
	} else {
		rec.DividendDistributed = net
	}
	rec.Contribution = contribution

	// 4. Share purchase
	if !validPrice(st.price) {
		return rec, errDegeneratePrice
	}
	bought := investable / st.price
	st.shares += bought
	rec.PurchasePrice = st.price
	rec.SharesPurchased = bought

	// 5. Price and dividend growth
	st.price *= 1 + cfg.PriceGrowthPerPeriod
	st.dps *= 1 + cfg.DividendGrowthPerPeriod
	if !validPrice(st.price) {
		return rec, errDegeneratePrice
	}

	// 6. Decumulation
	if st.phase == domain.PhaseWithdrawing && cfg.WithdrawalRatePerPeriod > 0 {
		withdrawal := st.shares * st.price * cfg.WithdrawalRatePerPeriod
		sold := withdrawal / st.price
		st.shares = math.Max(0, st.shares-sold)
		rec.Withdrawal = withdrawal
		rec.SharesSold = sold
	}

	st.cumContributions += contribution
	st.cumDividends += net
	st.cumWithdrawals += rec.Withdrawal

	rec.EndingShares = st.shares
	rec.EndingPrice = st.price
	rec.EndingValue = st.shares * st.price
	rec.EndingAnnualIncome = st.shares * st.dps
	rec.CumulativeContributions = st.cumContributions
	rec.CumulativeDividends = st.cumDividends
	rec.CumulativeWithdrawals = st.cumWithdrawals

	if !finite(rec.EndingShares, rec.EndingValue, rec.EndingAnnualIncome, rec.CumulativeContributions, rec.CumulativeDividends, rec.CumulativeWithdrawals) {
		return rec, errNonFinite
	}

	return rec, nil
}

func validPrice(p float64) bool {
	return p > 0 && !math.IsInf(p, 0) && !math.IsNaN(p)
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return false
		}
	}
	return true
}
