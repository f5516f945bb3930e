package clickhouse

import (
	"context"
	"fmt"
	"time"

	"dividend-projection-lab/internal/domain"
	"dividend-projection-lab/internal/storage"
)

// PeriodRecordStore implements storage.PeriodRecordStore using ClickHouse.
type PeriodRecordStore struct {
	conn *Conn
}

// NewPeriodRecordStore creates a new PeriodRecordStore.
func NewPeriodRecordStore(conn *Conn) *PeriodRecordStore {
	return &PeriodRecordStore{conn: conn}
}

// Compile-time interface check.
var _ storage.PeriodRecordStore = (*PeriodRecordStore)(nil)

const periodRecordColumns = `
	run_id, period_index, year, phase,
	dividend_cash, tax_withheld, net_dividend, dividend_reinvested, dividend_distributed,
	contribution, purchase_price, shares_purchased, withdrawal, shares_sold,
	ending_shares, ending_price, ending_value, ending_annual_income,
	cumulative_contributions, cumulative_dividends, cumulative_withdrawals
`

// InsertBulk adds the trace of a run in one batch.
// Fails on intra-batch duplicates, out-of-order indices or an already stored run.
func (s *PeriodRecordStore) InsertBulk(ctx context.Context, runID string, records []domain.PeriodRecord) (err error) {
	if runID == "" {
		return storage.ErrInvalidInput
	}
	if len(records) == 0 {
		return nil
	}

	// Indices must be strictly increasing; this also rules out duplicates.
	for i := 1; i < len(records); i++ {
		if records[i].Index <= records[i-1].Index {
			if records[i].Index == records[i-1].Index {
				return storage.ErrDuplicateKey
			}
			return storage.ErrInvalidInput
		}
	}

	defer func(start time.Time) { observe("insert_period_records", start, err) }(time.Now())

	// MergeTree does not enforce uniqueness; a run's trace is written once.
	exists, err := s.exists(ctx, runID)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	if exists {
		return storage.ErrDuplicateKey
	}

	batch, err := s.conn.PrepareBatch(ctx, `INSERT INTO period_records (`+periodRecordColumns+`)`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, r := range records {
		err = batch.Append(
			runID, uint32(r.Index), uint16(r.Year), string(r.Phase),
			r.DividendCash, r.TaxWithheld, r.NetDividend, r.DividendReinvested, r.DividendDistributed,
			r.Contribution, r.PurchasePrice, r.SharesPurchased, r.Withdrawal, r.SharesSold,
			r.EndingShares, r.EndingPrice, r.EndingValue, r.EndingAnnualIncome,
			r.CumulativeContributions, r.CumulativeDividends, r.CumulativeWithdrawals,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByRunID retrieves the trace of a run, ordered by period_index ASC.
func (s *PeriodRecordStore) GetByRunID(ctx context.Context, runID string) (records []domain.PeriodRecord, err error) {
	defer func(start time.Time) { observe("get_period_records", start, err) }(time.Now())

	query := `
		SELECT ` + periodRecordColumns + `
		FROM period_records FINAL
		WHERE run_id = ?
		ORDER BY period_index ASC
	`

	rows, err := s.conn.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("query by run id: %w", err)
	}
	defer rows.Close()

	return scanPeriodRecords(rows)
}

// DeleteByRunIDs removes the traces of the given runs.
func (s *PeriodRecordStore) DeleteByRunIDs(ctx context.Context, runIDs []string) (err error) {
	if len(runIDs) == 0 {
		return nil
	}
	defer func(start time.Time) { observe("delete_period_records", start, err) }(time.Now())

	// Lightweight delete; rows disappear from reads immediately.
	if err := s.conn.Exec(ctx, `DELETE FROM period_records WHERE run_id IN (?)`, runIDs); err != nil {
		return fmt.Errorf("delete period records: %w", err)
	}
	return nil
}

// exists checks if any record of the run is stored.
func (s *PeriodRecordStore) exists(ctx context.Context, runID string) (bool, error) {
	query := `
		SELECT count(*) FROM period_records
		WHERE run_id = ?
	`

	var count uint64
	if err := s.conn.QueryRow(ctx, query, runID).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

// scanPeriodRecords scans multiple rows.
func scanPeriodRecords(rows chRows) ([]domain.PeriodRecord, error) {
	var records []domain.PeriodRecord

	for rows.Next() {
		var (
			r     domain.PeriodRecord
			runID string
			index uint32
			year  uint16
			phase string
		)
		err := rows.Scan(
			&runID, &index, &year, &phase,
			&r.DividendCash, &r.TaxWithheld, &r.NetDividend, &r.DividendReinvested, &r.DividendDistributed,
			&r.Contribution, &r.PurchasePrice, &r.SharesPurchased, &r.Withdrawal, &r.SharesSold,
			&r.EndingShares, &r.EndingPrice, &r.EndingValue, &r.EndingAnnualIncome,
			&r.CumulativeContributions, &r.CumulativeDividends, &r.CumulativeWithdrawals,
		)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		r.Index = int(index)
		r.Year = int(year)
		r.Phase = domain.Phase(phase)
		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return records, nil
}
