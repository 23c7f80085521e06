package reservoir

import (
	pool "github.com/openziti/reservoir"
	"github.com/openziti/reservoir/cf"
	"github.com/openziti/reservoir/particle"
	"github.com/openziti/reservoir/projectile"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
	"io/ioutil"
)

// Config is the processed contents of the --config file.
//
type Config struct {
	Pool      *pool.Config
	Particles *particle.Config
	Bullets   *projectile.Config
}

// LoadConfig reads ConfigPath, falling back to defaults for every missing section.
//
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Pool:      pool.NewConfig(),
		Particles: particle.NewConfig(),
		Bullets:   projectile.NewConfig(),
	}
	if ConfigPath != "" {
		data, err := ioutil.ReadFile(ConfigPath)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to read config file [%s]", ConfigPath)
		}
		dataMap := make(map[string]interface{})
		if err = yaml.Unmarshal(data, &dataMap); err != nil {
			return nil, errors.Wrapf(err, "unable to unmarshal config data [%s]", ConfigPath)
		}
		if err := cfg.load(dataMap); err != nil {
			return nil, errors.Wrapf(err, "unable to load config [%s]", ConfigPath)
		}
	}
	if ConfigDump {
		logrus.Info(cfg.Pool.Dump())
		logrus.Info(cf.Dump("particle.Config", cfg.Particles))
		logrus.Info(cf.Dump("projectile.Config", cfg.Bullets))
	}
	return cfg, nil
}

func (self *Config) load(data map[string]interface{}) error {
	poolData, err := cf.Section(data, "pool")
	if err != nil {
		return err
	}
	if poolData != nil {
		if err := self.Pool.Load(poolData); err != nil {
			return err
		}
	}
	particles, err := cf.Section(data, "particles")
	if err != nil {
		return err
	}
	if particles != nil {
		if err := self.Particles.Load(particles); err != nil {
			return err
		}
	}
	bullets, err := cf.Section(data, "bullets")
	if err != nil {
		return err
	}
	if bullets != nil {
		if err := self.Bullets.Load(bullets); err != nil {
			return err
		}
	}
	return nil
}
