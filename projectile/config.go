package projectile

import (
	"github.com/openziti/reservoir/cf"
	"github.com/pkg/errors"
)

type Config struct {
	Capacity int    `cf:"capacity"`
	Texture  string `cf:"texture"`
	Damage   int    `cf:"damage"`
}

func NewConfig() *Config {
	return &Config{
		Capacity: 20,
		Texture:  "bullet",
		Damage:   10,
	}
}

func (self *Config) Load(data map[string]interface{}) error {
	if err := cf.Load(data, self); err != nil {
		return errors.Wrap(err, "unable to load bullet config")
	}
	return self.Validate()
}

func (self *Config) Validate() error {
	if self.Capacity < 0 {
		return errors.Errorf("capacity must not be negative [%d]", self.Capacity)
	}
	if self.Texture == "" {
		return errors.New("texture required")
	}
	if self.Damage < 1 {
		return errors.Errorf("damage must be positive [%d]", self.Damage)
	}
	return nil
}
