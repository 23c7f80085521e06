package particle

import (
	"github.com/openziti/reservoir/cf"
	"github.com/pkg/errors"
	"time"
)

type Config struct {
	Capacity   int     `cf:"capacity"`
	Radius     float64 `cf:"radius"`
	Color      int     `cf:"color"`
	DurationMs int     `cf:"duration_ms"`
	Count      int     `cf:"count"`
	SpeedMin   float64 `cf:"speed_min"`
	SpeedMax   float64 `cf:"speed_max"`
	Spread     float64 `cf:"spread"`
	EndScale   float64 `cf:"end_scale"`
}

func NewConfig() *Config {
	return &Config{
		Capacity:   50,
		Radius:     3,
		Color:      0xffffff,
		DurationMs: 300,
		Count:      10,
		SpeedMin:   100,
		SpeedMax:   200,
		Spread:     0.3,
		EndScale:   0.1,
	}
}

func (self *Config) Load(data map[string]interface{}) error {
	if err := cf.Load(data, self); err != nil {
		return errors.Wrap(err, "unable to load particle config")
	}
	return self.Validate()
}

func (self *Config) Validate() error {
	if self.Capacity < 0 {
		return errors.Errorf("capacity must not be negative [%d]", self.Capacity)
	}
	if self.Count < 0 {
		return errors.Errorf("count must not be negative [%d]", self.Count)
	}
	if self.DurationMs < 0 {
		return errors.Errorf("duration_ms must not be negative [%d]", self.DurationMs)
	}
	if self.SpeedMax < self.SpeedMin {
		return errors.Errorf("speed_max [%0.2f] below speed_min [%0.2f]", self.SpeedMax, self.SpeedMin)
	}
	if self.Color < 0 || self.Color > 0xffffff {
		return errors.Errorf("color out of range [%#x]", self.Color)
	}
	return nil
}

func (self *Config) Duration() time.Duration {
	return time.Duration(self.DurationMs) * time.Millisecond
}
