package service

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/sabamas/arrears-engine/internal/domain"
	customError "github.com/sabamas/arrears-engine/pkg/errors"
	"github.com/sabamas/arrears-engine/pkg/utils"
)

// EligibilityFunc reports whether a month is billable for a customer. The
// engine never inspects status values itself; callers encode leave and
// inactive periods here.
type EligibilityFunc func(m domain.Month) bool

// ArrearsEngine computes which monthly billing periods are outstanding for a
// customer. It is a pure computation over inputs passed explicitly: no clock
// reads, no I/O, no mutation of its inputs, safe for concurrent use.
// Cancellation of a payment is handled by simply re-running the engine
// without that payment in the input.
type ArrearsEngine struct {
	minorUnits int32
}

func NewArrearsEngine(currencyMinorUnits int) *ArrearsEngine {
	return &ArrearsEngine{minorUnits: int32(currencyMinorUnits)}
}

// Compute evaluates every billing month from the later of the customer's
// join month and the earliest tariff effective month through asOf inclusive.
//
// tariffHistory must be ordered by tanggal_efektif then created_at, the
// order GetHistory returns. Payments must already exclude cancelled rows and
// carry parsed months (Payment.Normalize at the storage boundary); the
// engine reads them as given and never writes to them.
func (e *ArrearsEngine) Compute(
	customer *domain.Customer,
	tariffHistory []*domain.TariffAssignment,
	payments []*domain.Payment,
	asOf domain.Month,
	eligible EligibilityFunc,
) (*domain.ArrearsResult, error) {
	if len(tariffHistory) == 0 {
		return nil, customError.WrapMissingTariffHistory(customer.CustomerNumber)
	}

	joinMonth := customer.JoinMonth()
	if asOf.Before(joinMonth) {
		return nil, customError.WrapInvalidPeriod(asOf.String(), joinMonth.String())
	}

	start := joinMonth
	if earliest := tariffHistory[0].EffectiveMonth(); start.Before(earliest) {
		start = earliest
	}

	credited := e.buildAllocations(payments)

	result := &domain.ArrearsResult{
		TotalArrears: decimal.Zero,
		ArrearMonths: make([]domain.ArrearMonth, 0),
	}

	for m := start; !m.After(asOf); m = m.Next() {
		if eligible != nil && !eligible(m) {
			continue
		}

		tariff := resolveTariff(tariffHistory, m)
		if tariff == nil {
			// No assignment effective yet on the first of this month.
			continue
		}

		paid := credited[m]
		owed := tariff.Rate.Sub(paid)
		if owed.Sign() <= 0 {
			// Fully paid or overpaid. Excess is not carried forward.
			continue
		}

		amount := owed.Round(e.minorUnits)
		if amount.Sign() <= 0 {
			continue
		}

		details := "unpaid"
		if paid.Sign() > 0 {
			details = fmt.Sprintf("partial: %s of %s paid",
				utils.FormatRupiah(paid), utils.FormatRupiah(tariff.Rate))
		}

		result.ArrearMonths = append(result.ArrearMonths, domain.ArrearMonth{
			Month:   m,
			Amount:  amount,
			Details: details,
			Source:  tariff.CategoryName,
		})
		result.TotalArrears = result.TotalArrears.Add(amount)
	}

	result.TotalMonths = len(result.ArrearMonths)
	return result, nil
}

// buildAllocations sums, per month, the amounts credited by every payment.
// An explicit month_breakdown entry overrides the equal split for that month
// and is trusted verbatim even if the breakdown total differs from
// jumlah_bayar. The equal split itself is not rounded, so the shares of one
// payment always sum back to exactly jumlah_bayar.
func (e *ArrearsEngine) buildAllocations(payments []*domain.Payment) map[domain.Month]decimal.Decimal {
	credited := make(map[domain.Month]decimal.Decimal)

	for _, p := range payments {
		share := utils.EqualSplit(p.Amount, len(p.Months))
		for _, m := range p.Months {
			amount := share
			if entry, ok := p.Breakdown[m]; ok {
				amount = entry.Amount
			}
			credited[m] = credited[m].Add(amount)
		}
	}

	return credited
}

// resolveTariff picks the assignment with the latest tanggal_efektif on or
// before the first day of the month. The history is ordered ascending by
// tanggal_efektif then created_at, so on same-day ties the most recently
// created assignment wins. Returns nil when no assignment is effective yet.
func resolveTariff(history []*domain.TariffAssignment, m domain.Month) *domain.TariffAssignment {
	firstDay := m.FirstDay()

	var match *domain.TariffAssignment
	for _, a := range history {
		if a.EffectiveFrom.After(firstDay) {
			break
		}
		match = a
	}
	return match
}
