package reporting

import (
	"fmt"
	"strings"

	"dividend-projection-lab/internal/domain"
)

// RenderYearlyCSV renders year-by-year rows as CSV.
func RenderYearlyCSV(rows []YearRow) string {
	var sb strings.Builder

	sb.WriteString("year,value,annual_income,contributions_this_year,dividends_this_year,")
	sb.WriteString("cumulative_contributions,cumulative_dividends,invested_capital,price_gain,yield_on_cost_pct\n")

	for _, y := range rows {
		yoc := ""
		if y.YieldOnCostPct != nil {
			yoc = y.YieldOnCostPct.StringFixed(2)
		}
		sb.WriteString(fmt.Sprintf("%d,%s,%s,%s,%s,%s,%s,%s,%s,%s\n",
			y.Year,
			y.Value.StringFixed(2),
			y.AnnualIncome.StringFixed(2),
			y.ContributionsThisYear.StringFixed(2),
			y.DividendsThisYear.StringFixed(2),
			y.CumulativeContributions.StringFixed(2),
			y.CumulativeDividends.StringFixed(2),
			y.InvestedCapital.StringFixed(2),
			y.PriceGain.StringFixed(2),
			yoc,
		))
	}

	return sb.String()
}

// RenderTraceCSV renders the per-period trace as CSV.
// Amounts keep full precision so the export can be re-verified.
func RenderTraceCSV(trace []domain.PeriodRecord) string {
	var sb strings.Builder

	sb.WriteString("period,year,phase,dividend_cash,tax_withheld,net_dividend,dividend_reinvested,dividend_distributed,")
	sb.WriteString("contribution,purchase_price,shares_purchased,withdrawal,shares_sold,")
	sb.WriteString("ending_shares,ending_price,ending_value,ending_annual_income\n")

	for _, r := range trace {
		sb.WriteString(fmt.Sprintf("%d,%d,%s,%g,%g,%g,%g,%g,%g,%g,%g,%g,%g,%g,%g,%g,%g\n",
			r.Index,
			r.Year,
			r.Phase,
			r.DividendCash,
			r.TaxWithheld,
			r.NetDividend,
			r.DividendReinvested,
			r.DividendDistributed,
			r.Contribution,
			r.PurchasePrice,
			r.SharesPurchased,
			r.Withdrawal,
			r.SharesSold,
			r.EndingShares,
			r.EndingPrice,
			r.EndingValue,
			r.EndingAnnualIncome,
		))
	}

	return sb.String()
}
