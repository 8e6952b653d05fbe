package statistics

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/quanttoolbox/optionsbacktester/common"
	"github.com/quanttoolbox/optionsbacktester/log"
	"github.com/quanttoolbox/optionsbacktester/trade"
)

// Reset returns the struct to defaults
func (s *Statistic) Reset() {
	*s = Statistic{}
}

// AddTrades appends closed trades to be summarised
func (s *Statistic) AddTrades(trades ...trade.Trade) {
	s.trades = append(s.trades, trades...)
	s.calculated = false
}

// Results returns the computed report
func (s *Statistic) Results() (Report, error) {
	if !s.calculated {
		return Report{}, ErrNotCalculated
	}
	return s.report, nil
}

// CalculateAllResults summarises the closed-trade list in entry order
func (s *Statistic) CalculateAllResults() error {
	r := Report{
		TotalTrades:  len(s.trades),
		ByExitReason: make(map[string]int),
		DailyNetPnL:  make(map[time.Time]decimal.Decimal),
	}
	cumulative := decimal.Zero
	peak := decimal.Zero
	for i := range s.trades {
		t := &s.trades[i]
		r.GrossPnL = r.GrossPnL.Add(t.GrossPnL)
		r.TransactionCost = r.TransactionCost.Add(t.TransactionCost)
		r.NetPnL = r.NetPnL.Add(t.NetPnL)
		r.ByExitReason[t.ExitReason]++

		day := common.Midnight(t.EntryTick)
		r.DailyNetPnL[day] = r.DailyNetPnL[day].Add(t.NetPnL)

		if t.NetPnL.IsPositive() {
			r.Wins++
			r.AverageWin = r.AverageWin.Add(t.NetPnL)
			if t.NetPnL.GreaterThan(r.LargestWin) {
				r.LargestWin = t.NetPnL
			}
		} else if t.NetPnL.IsNegative() {
			r.Losses++
			r.AverageLoss = r.AverageLoss.Add(t.NetPnL)
			if t.NetPnL.LessThan(r.LargestLoss) {
				r.LargestLoss = t.NetPnL
			}
		}

		cumulative = cumulative.Add(t.NetPnL)
		if cumulative.GreaterThan(peak) {
			peak = cumulative
		}
		if dd := peak.Sub(cumulative); dd.GreaterThan(r.MaxDrawdown) {
			r.MaxDrawdown = dd
		}
	}
	if r.Wins > 0 {
		r.AverageWin = r.AverageWin.Div(decimal.NewFromInt(int64(r.Wins)))
	}
	if r.Losses > 0 {
		r.AverageLoss = r.AverageLoss.Div(decimal.NewFromInt(int64(r.Losses)))
	}
	if r.TotalTrades > 0 {
		r.WinRate = decimal.NewFromInt(int64(r.Wins)).
			Div(decimal.NewFromInt(int64(r.TotalTrades))).
			Mul(decimal.NewFromInt(100))
	}
	s.report = r
	s.calculated = true
	return nil
}

// PrintResults logs the summary
func (s *Statistic) PrintResults() {
	if !s.calculated {
		log.Warn(log.Statistics, "results requested before calculation")
		return
	}
	r := s.report
	log.Infof(log.Statistics, "trades: %d | wins: %d | losses: %d | win rate: %v%%",
		r.TotalTrades, r.Wins, r.Losses, r.WinRate.Round(2))
	log.Infof(log.Statistics, "gross pnl: %v | costs: %v | net pnl: %v",
		r.GrossPnL, r.TransactionCost, r.NetPnL)
	log.Infof(log.Statistics, "avg win: %v | avg loss: %v | largest win: %v | largest loss: %v",
		r.AverageWin.Round(2), r.AverageLoss.Round(2), r.LargestWin, r.LargestLoss)
	log.Infof(log.Statistics, "max drawdown: %v", r.MaxDrawdown)
	for reason, count := range r.ByExitReason {
		log.Infof(log.Statistics, "exits via %s: %d", reason, count)
	}
}
