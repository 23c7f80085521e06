package reservoir

import "github.com/pkg/errors"

type Instrument interface {
	NewInstance(id string) InstrumentInstance
}

// InstrumentInstance observes a single pool.
//
type InstrumentInstance interface {
	// allocation
	Allocated()

	// leasing
	Acquired()
	Released()
	ReleaseIgnored(reason string)
	Rejected()
	Recycled()

	// size
	SizeChanged(available, inUse int)

	// instrument lifecycle
	Shutdown()
}

func NewInstrument(name string, config map[string]interface{}) (i Instrument, err error) {
	switch name {
	case "metrics":
		return NewMetricsInstrument(config)
	case "nil":
		return NewNilInstrument(), nil
	case "trace":
		return NewTraceInstrument(config)
	default:
		return nil, errors.Errorf("unknown instrument '%s'", name)
	}
}
