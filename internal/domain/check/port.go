package check

import "time"

type Resolver interface {
	Resolve(periods map[time.Duration][]Definition) ([]PeriodGroup, error)
}
