package trade

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/quanttoolbox/optionsbacktester/instrument"
)

var tick0 = time.Date(2024, 1, 2, 9, 15, 0, 0, time.UTC)

func newTestTrade(side instrument.Side, qty int64, entry float64) *Trade {
	leg := instrument.NewLeg(instrument.New(23400, instrument.Call), side, qty)
	return New(leg.Instrument.Key(), leg, 0, tick0, 0, decimal.NewFromFloat(entry))
}

func TestNew(t *testing.T) {
	t.Parallel()
	tr := newTestTrade(instrument.Sell, 1, 102)
	if !tr.IsOpen() {
		t.Error("expected new trade to be open")
	}
	if tr.ID.IsNil() {
		t.Error("expected trade id to be set")
	}
	if tr.Label != "23400CE" {
		t.Errorf("received '%v' expected '%v'", tr.Label, "23400CE")
	}
}

func TestCloseGrossPnLSignSymmetry(t *testing.T) {
	t.Parallel()
	exitTick := tick0.Add(time.Minute)
	buy := newTestTrade(instrument.Buy, 1, 100)
	sell := newTestTrade(instrument.Sell, 1, 100)
	exit := decimal.NewFromFloat(110)
	if err := buy.Close(exitTick, 1, exit, ReasonTarget, decimal.Zero); err != nil {
		t.Fatal(err)
	}
	if err := sell.Close(exitTick, 1, exit, ReasonStopLoss, decimal.Zero); err != nil {
		t.Fatal(err)
	}
	if !buy.GrossPnL.Equal(decimal.NewFromInt(10)) {
		t.Errorf("received '%v' expected '%v'", buy.GrossPnL, 10)
	}
	if !sell.GrossPnL.Equal(buy.GrossPnL.Neg()) {
		t.Errorf("received '%v' expected '%v'", sell.GrossPnL, buy.GrossPnL.Neg())
	}
}

func TestClosePnLScalesWithQty(t *testing.T) {
	t.Parallel()
	exitTick := tick0.Add(time.Minute)
	exit := decimal.NewFromFloat(105)
	one := newTestTrade(instrument.Buy, 1, 100)
	five := newTestTrade(instrument.Buy, 5, 100)
	if err := one.Close(exitTick, 1, exit, ReasonTarget, decimal.Zero); err != nil {
		t.Fatal(err)
	}
	if err := five.Close(exitTick, 1, exit, ReasonTarget, decimal.Zero); err != nil {
		t.Fatal(err)
	}
	if !five.GrossPnL.Equal(one.GrossPnL.Mul(decimal.NewFromInt(5))) {
		t.Errorf("received '%v' expected '%v'", five.GrossPnL, one.GrossPnL.Mul(decimal.NewFromInt(5)))
	}
}

func TestCloseTransactionCost(t *testing.T) {
	t.Parallel()
	exitTick := tick0.Add(time.Minute)
	tr := newTestTrade(instrument.Sell, 2, 100)
	if err := tr.Close(exitTick, 1, decimal.NewFromFloat(50), ReasonTarget, decimal.NewFromFloat(0.5)); err != nil {
		t.Fatal(err)
	}
	// 0.5% of 100*2 plus 0.5% of 50*2
	expectedCost := decimal.NewFromFloat(1.5)
	if !tr.TransactionCost.Equal(expectedCost) {
		t.Errorf("received '%v' expected '%v'", tr.TransactionCost, expectedCost)
	}
	if !tr.NetPnL.Equal(tr.GrossPnL.Sub(expectedCost)) {
		t.Errorf("received '%v' expected '%v'", tr.NetPnL, tr.GrossPnL.Sub(expectedCost))
	}

	free := newTestTrade(instrument.Sell, 2, 100)
	if err := free.Close(exitTick, 1, decimal.NewFromFloat(50), ReasonTarget, decimal.Zero); err != nil {
		t.Fatal(err)
	}
	if !free.TransactionCost.IsZero() {
		t.Errorf("received '%v' expected zero cost", free.TransactionCost)
	}
}

func TestCostMonotonicity(t *testing.T) {
	t.Parallel()
	exitTick := tick0.Add(time.Minute)
	exit := decimal.NewFromFloat(90)
	var prev decimal.Decimal
	for qty := int64(1); qty <= 4; qty++ {
		tr := newTestTrade(instrument.Buy, qty, 100)
		if err := tr.Close(exitTick, 1, exit, ReasonTarget, decimal.NewFromFloat(0.25)); err != nil {
			t.Fatal(err)
		}
		if tr.TransactionCost.LessThan(prev) {
			t.Errorf("cost decreased from %v to %v at qty %v", prev, tr.TransactionCost, qty)
		}
		prev = tr.TransactionCost
	}
}

func TestCloseTwice(t *testing.T) {
	t.Parallel()
	tr := newTestTrade(instrument.Buy, 1, 100)
	exitTick := tick0.Add(time.Minute)
	if err := tr.Close(exitTick, 1, decimal.NewFromFloat(101), ReasonTarget, decimal.Zero); err != nil {
		t.Fatal(err)
	}
	err := tr.Close(exitTick.Add(time.Minute), 2, decimal.NewFromFloat(102), ReasonTarget, decimal.Zero)
	if !errors.Is(err, ErrAlreadyClosed) {
		t.Errorf("received '%v' expected '%v'", err, ErrAlreadyClosed)
	}
	if tr.IsOpen() {
		t.Error("expected trade to remain closed")
	}
}
