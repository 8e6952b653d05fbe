package instrument

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestKey(t *testing.T) {
	t.Parallel()
	i := New(23400, Call)
	if i.Key() != "23400CE" {
		t.Errorf("received '%v' expected '%v'", i.Key(), "23400CE")
	}
	i = New(23400, Put)
	if i.Key() != "23400PE" {
		t.Errorf("received '%v' expected '%v'", i.Key(), "23400PE")
	}
}

func TestInstrumentAsMapKey(t *testing.T) {
	t.Parallel()
	m := map[Instrument]int{
		New(23400, Call): 1,
		New(23400, Put):  2,
	}
	if m[New(23400, Call)] != 1 {
		t.Error("expected call lookup to resolve")
	}
	if m[New(23400, Put)] != 2 {
		t.Error("expected put lookup to resolve")
	}
}

func TestOptionTypeValidate(t *testing.T) {
	t.Parallel()
	if err := Call.Validate(); err != nil {
		t.Error(err)
	}
	if err := Put.Validate(); err != nil {
		t.Error(err)
	}
	err := OptionType("XX").Validate()
	if !errors.Is(err, ErrInvalidOptionType) {
		t.Errorf("received '%v' expected '%v'", err, ErrInvalidOptionType)
	}
}

func TestSideValidate(t *testing.T) {
	t.Parallel()
	if err := Buy.Validate(); err != nil {
		t.Error(err)
	}
	if err := Sell.Validate(); err != nil {
		t.Error(err)
	}
	err := Side("HOLD").Validate()
	if !errors.Is(err, ErrInvalidSide) {
		t.Errorf("received '%v' expected '%v'", err, ErrInvalidSide)
	}
}

func TestSideDirection(t *testing.T) {
	t.Parallel()
	if !Buy.Direction().Equal(decimal.NewFromInt(1)) {
		t.Error("expected +1 for buy")
	}
	if !Sell.Direction().Equal(decimal.NewFromInt(-1)) {
		t.Error("expected -1 for sell")
	}
}

func TestNewLeg(t *testing.T) {
	t.Parallel()
	l := NewLeg(New(23400, Call), Sell, 0)
	if l.Qty != 1 {
		t.Errorf("received '%v' expected '%v'", l.Qty, 1)
	}
	if err := l.Validate(); err != nil {
		t.Error(err)
	}
	l = Leg{Instrument: New(23400, Call), Side: Buy, Qty: -5}
	if err := l.Validate(); !errors.Is(err, ErrInvalidQty) {
		t.Errorf("received '%v' expected '%v'", err, ErrInvalidQty)
	}
}
