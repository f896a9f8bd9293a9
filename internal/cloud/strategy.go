package cloud

import "fmt"

// RoutingMode selects how a tenant spreads its per-tick load over its workers.
type RoutingMode int

const (
	// RoutePriceBased sends all load to the worker whose host is cheapest.
	RoutePriceBased RoutingMode = iota
	// RouteWeightedSplit splits load across all workers by static weight.
	RouteWeightedSplit
)

func (m RoutingMode) String() string {
	switch m {
	case RoutePriceBased:
		return "price-based"
	case RouteWeightedSplit:
		return "weighted-split"
	default:
		return fmt.Sprintf("RoutingMode(%d)", int(m))
	}
}

// ParseRoutingMode maps a configuration string to a RoutingMode.
func ParseRoutingMode(s string) (RoutingMode, error) {
	switch s {
	case "price-based":
		return RoutePriceBased, nil
	case "weighted-split":
		return RouteWeightedSplit, nil
	default:
		return 0, fmt.Errorf("%w: routing mode %q (want price-based or weighted-split)", ErrUnsupportedStrategy, s)
	}
}

// WeightStrategy selects how a tenant revises its worker weights.
type WeightStrategy int

const (
	// NoAdaptation keeps the weights fixed.
	NoAdaptation WeightStrategy = iota
)

func (s WeightStrategy) String() string {
	switch s {
	case NoAdaptation:
		return "no-adaptation"
	default:
		return fmt.Sprintf("WeightStrategy(%d)", int(s))
	}
}

// ParseWeightStrategy maps a configuration string to a WeightStrategy.
func ParseWeightStrategy(s string) (WeightStrategy, error) {
	switch s {
	case "no-adaptation":
		return NoAdaptation, nil
	default:
		return 0, fmt.Errorf("%w: weight strategy %q (want no-adaptation)", ErrUnsupportedStrategy, s)
	}
}
