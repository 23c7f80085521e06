package reservoir

import (
	"fmt"
	"github.com/openziti/reservoir/cf"
	"github.com/pkg/errors"
	"reflect"
)

type Policy string

const (
	// PolicyGrow ignores MaxSize; the pool grows without bound.
	PolicyGrow Policy = "grow"
	// PolicyReject fails acquires with ErrExhausted once MaxSize objects exist and none is available.
	PolicyReject Policy = "reject"
	// PolicyRecycle takes the oldest leased object away from its holder once MaxSize objects exist.
	PolicyRecycle Policy = "recycle"
)

// Config holds the optional growth limits of a Pool and its instrument. The zero MaxSize means unbounded.
//
type Config struct {
	MaxSize int    `cf:"max_size"`
	Policy  Policy `cf:"policy"`
	i       Instrument
}

func NewConfig() *Config {
	return &Config{Policy: PolicyGrow}
}

func (self *Config) SetInstrument(i Instrument) {
	self.i = i
}

func (self *Config) Instrument() Instrument {
	return self.i
}

// Load applies the "max_size", "policy" and "instrument" keys found in data.
//
func (self *Config) Load(data map[string]interface{}) error {
	if v, found := data["max_size"]; found {
		if i, ok := v.(int); ok {
			self.MaxSize = i
		} else {
			return errors.Errorf("invalid 'max_size' value [%v]", reflect.TypeOf(v))
		}
	}
	if v, found := data["policy"]; found {
		if s, ok := v.(string); ok {
			self.Policy = Policy(s)
		} else {
			return errors.Errorf("invalid 'policy' value [%v]", reflect.TypeOf(v))
		}
	}
	instrument, err := cf.Section(data, "instrument")
	if err != nil {
		return errors.Wrap(err, "invalid 'instrument' value")
	}
	if instrument != nil {
		name, ok := instrument["name"].(string)
		if !ok {
			return errors.New("missing 'instrument/name'")
		}
		config, err := cf.Section(instrument, "config")
		if err != nil {
			return errors.Wrap(err, "invalid 'instrument/config' value")
		}
		i, err := NewInstrument(name, config)
		if err != nil {
			return errors.Wrap(err, "error creating instrument")
		}
		self.i = i
	}
	return self.Validate()
}

func (self *Config) Validate() error {
	if self.MaxSize < 0 {
		return errors.Errorf("max_size must not be negative [%d]", self.MaxSize)
	}
	switch self.Policy {
	case PolicyGrow, PolicyReject, PolicyRecycle:
		return nil
	case "":
		self.Policy = PolicyGrow
		return nil
	default:
		return errors.Errorf("unknown policy [%s]", self.Policy)
	}
}

func (self *Config) Dump() string {
	out := "reservoir.Config{\n"
	out += fmt.Sprintf("\t%-12s %d\n", "max_size", self.MaxSize)
	out += fmt.Sprintf("\t%-12s %s\n", "policy", self.Policy)
	out += fmt.Sprintf("\t%-12s %v\n", "instrument", reflect.TypeOf(self.i))
	out += "}"
	return out
}

func (self *Config) bounded() bool {
	return self.MaxSize > 0 && self.Policy != PolicyGrow
}

func (self *Config) instrument() Instrument {
	if self.i == nil {
		return NewNilInstrument()
	}
	return self.i
}
