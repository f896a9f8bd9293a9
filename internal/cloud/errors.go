package cloud

import (
	"errors"
	"fmt"

	"github.com/guimove/fairprice/internal/fairshare"
)

var (
	// ErrContractViolation covers caller mistakes such as negative loads. It
	// matches allocator contract errors as well.
	ErrContractViolation = fmt.Errorf("cloud: %w", fairshare.ErrContractViolation)

	// ErrUnsupportedStrategy is returned for routing modes or weight strategies
	// outside the supported set.
	ErrUnsupportedStrategy = errors.New("unsupported strategy")

	// ErrDegeneratePriceSum is returned when the sum of host prices is too close
	// to zero for the price regularizer 1/sum(prices) to be defined.
	ErrDegeneratePriceSum = errors.New("sum of host prices is degenerate")
)
