package strategies

import (
	"fmt"
	"strings"

	"github.com/quanttoolbox/optionsbacktester/strategies/base"
	"github.com/quanttoolbox/optionsbacktester/strategies/rsimeanreversion"
	"github.com/quanttoolbox/optionsbacktester/strategies/shortstraddle"
)

// LoadStrategyByName returns a fresh instance of the requested strategy with
// its defaults applied
func LoadStrategyByName(name string) (base.Handler, error) {
	strats := GetStrategies()
	for i := range strats {
		if !strings.EqualFold(name, strats[i].Name()) {
			continue
		}
		strats[i].SetDefaults()
		return strats[i], nil
	}
	return nil, fmt.Errorf("%w: %q", ErrStrategyNotFound, name)
}

// GetStrategies returns a new instance of every registered strategy
func GetStrategies() []base.Handler {
	return []base.Handler{
		new(shortstraddle.Strategy),
		new(rsimeanreversion.Strategy),
	}
}
