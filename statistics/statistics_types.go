package statistics

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/quanttoolbox/optionsbacktester/trade"
)

// ErrNotCalculated is returned when results are requested before CalculateAllResults
var ErrNotCalculated = errors.New("results have not been calculated")

// Statistic consumes the run's closed trades and summarises them
type Statistic struct {
	trades     []trade.Trade
	report     Report
	calculated bool
}

// Report is the run summary computed from the closed-trade list
type Report struct {
	TotalTrades     int
	Wins            int
	Losses          int
	WinRate         decimal.Decimal
	GrossPnL        decimal.Decimal
	TransactionCost decimal.Decimal
	NetPnL          decimal.Decimal
	AverageWin      decimal.Decimal
	AverageLoss     decimal.Decimal
	LargestWin      decimal.Decimal
	LargestLoss     decimal.Decimal
	MaxDrawdown     decimal.Decimal
	ByExitReason    map[string]int
	DailyNetPnL     map[time.Time]decimal.Decimal
}
