package strategies

import "errors"

// ErrStrategyNotFound is returned when the strategy named in the config
// does not exist in the registry
var ErrStrategyNotFound = errors.New("strategy not found")
