package projectile

import (
	"github.com/openziti/reservoir"
	"github.com/openziti/reservoir/util"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Pool recycles bullet sprites. Bullets stay leased until they leave the play bounds or are released on impact.
//
type Pool struct {
	scene  Scene
	config *Config
	pool   *reservoir.Pool[*Bullet]
	ids    *util.Sequence
}

func NewPool(scene Scene, config *Config, poolConfig *reservoir.Config) (*Pool, error) {
	if scene == nil {
		return nil, errors.New("bullet pool requires a scene")
	}
	if config == nil {
		config = NewConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid bullet config")
	}
	p := &Pool{scene: scene, config: config, ids: util.NewSequence(1)}
	pool, err := reservoir.NewPool[*Bullet]("bullets", config.Capacity, p.createNewObject, poolConfig)
	if err != nil {
		return nil, errors.Wrap(err, "unable to create bullet pool")
	}
	p.pool = pool
	return p, nil
}

func (self *Pool) createNewObject() (*Bullet, error) {
	body, err := self.scene.AddSprite(self.config.Texture, 0, 0)
	if err != nil {
		return nil, errors.Wrap(err, "unable to add bullet sprite")
	}
	return &Bullet{Id: self.ids.Next(), Damage: self.config.Damage, body: body}, nil
}

// Fire leases a bullet at x, y moving at vx, vy. A damage of 0 or less uses the configured damage.
//
func (self *Pool) Fire(x, y, vx, vy float64, damage int) (*Bullet, error) {
	b, err := self.pool.Acquire()
	if err != nil {
		return nil, errors.Wrap(err, "unable to acquire bullet")
	}
	if damage < 1 {
		damage = self.config.Damage
	}
	b.Damage = damage
	b.body.SetPosition(x, y)
	b.body.SetVelocity(vx, vy)
	return b, nil
}

// Update releases every bullet that has left bounds and returns how many were released.
//
func (self *Pool) Update(bounds Bounds) int {
	var spent []*Bullet
	self.pool.InUse(func(b *Bullet) {
		if !bounds.Contains(b.Position()) {
			spent = append(spent, b)
		}
	})
	released := 0
	for _, b := range spent {
		if self.pool.Release(b) {
			released++
		}
	}
	if released > 0 {
		logrus.Debugf("released [%d] spent bullets", released)
	}
	return released
}

func (self *Pool) Release(b *Bullet) bool {
	return self.pool.Release(b)
}

func (self *Pool) Count() reservoir.Counts {
	return self.pool.Count()
}

func (self *Pool) Destroy() {
	self.pool.Destroy()
}
