package particle

import (
	"github.com/openziti/reservoir"
	"github.com/openziti/reservoir/tween"
	"github.com/openziti/reservoir/util"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"math"
	"math/rand"
	"time"
)

const (
	HitColor       = 0xffff00
	ExplosionColor = 0xff0000
	ExplosionCount = 20
)

// Pool recycles particles for short-lived burst effects.
//
type Pool struct {
	scene  Scene
	tweens Tweener
	config *Config
	pool   *reservoir.Pool[*Particle]
	ids    *util.Sequence
	rand   *rand.Rand
}

func NewPool(scene Scene, tweens Tweener, config *Config, poolConfig *reservoir.Config) (*Pool, error) {
	if scene == nil {
		return nil, errors.New("particle pool requires a scene")
	}
	if tweens == nil {
		return nil, errors.New("particle pool requires a tweener")
	}
	if config == nil {
		config = NewConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid particle config")
	}
	p := &Pool{
		scene:  scene,
		tweens: tweens,
		config: config,
		ids:    util.NewSequence(1),
		rand:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	pool, err := reservoir.NewPool[*Particle]("particles", config.Capacity, p.createNewObject, poolConfig)
	if err != nil {
		return nil, errors.Wrap(err, "unable to create particle pool")
	}
	p.pool = pool
	return p, nil
}

// Seed makes burst trajectories reproducible.
//
func (self *Pool) Seed(seed int64) {
	self.rand = rand.New(rand.NewSource(seed))
}

func (self *Pool) createNewObject() (*Particle, error) {
	shape, err := self.scene.AddCircle(0, 0, self.config.Radius, uint32(self.config.Color))
	if err != nil {
		return nil, errors.Wrap(err, "unable to add particle circle")
	}
	return &Particle{Id: self.ids.Next(), Color: uint32(self.config.Color), shape: shape}, nil
}

// Spawn leases a particle and resets it at x, y in color.
//
func (self *Pool) Spawn(x, y float64, color uint32) (*Particle, error) {
	lease, err := self.spawn(x, y, color)
	if err != nil {
		return nil, err
	}
	return lease.Object, nil
}

// Burst spawns count particles at x, y and sends each outwards on a fading tween. Every particle is released exactly
// once, when its tween completes. A count of 0 spawns nothing. On a spawn failure the particles already spawned keep
// their tweens and are returned with the error.
//
func (self *Pool) Burst(x, y float64, color uint32, count int) ([]*Particle, error) {
	if count < 0 {
		return nil, errors.Errorf("invalid burst count [%d]", count)
	}
	particles := make([]*Particle, 0, count)
	for i := 0; i < count; i++ {
		lease, err := self.spawn(x, y, color)
		if err != nil {
			return particles, errors.Wrapf(err, "burst stopped after [%d/%d] particles", i, count)
		}
		self.animate(lease)
		particles = append(particles, lease.Object)
	}
	logrus.Debugf("burst of [%d] at (%0.1f, %0.1f)", count, x, y)
	return particles, nil
}

func (self *Pool) HitEffect(x, y float64) ([]*Particle, error) {
	return self.Burst(x, y, HitColor, self.config.Count)
}

func (self *Pool) ExplosionEffect(x, y float64) ([]*Particle, error) {
	return self.Burst(x, y, ExplosionColor, ExplosionCount)
}

func (self *Pool) Release(p *Particle) bool {
	return self.pool.Release(p)
}

func (self *Pool) Count() reservoir.Counts {
	return self.pool.Count()
}

func (self *Pool) Destroy() {
	self.pool.Destroy()
}

func (self *Pool) spawn(x, y float64, color uint32) (reservoir.Lease[*Particle], error) {
	lease, err := self.pool.AcquireLease()
	if err != nil {
		return lease, errors.Wrap(err, "unable to acquire particle")
	}
	lease.Object.reset(x, y, color)
	return lease, nil
}

func (self *Pool) animate(lease reservoir.Lease[*Particle]) {
	p := lease.Object
	angle := self.rand.Float64() * math.Pi * 2
	speed := self.config.SpeedMin + self.rand.Float64()*(self.config.SpeedMax-self.config.SpeedMin)
	p.Vx = math.Cos(angle) * speed
	p.Vy = math.Sin(angle) * speed

	done := reservoir.NewCompletion(func() { self.pool.ReleaseLease(lease) })
	self.tweens.Add(tween.Spec{
		From:     tween.Props{X: p.X, Y: p.Y, Alpha: 1, Scale: 1},
		To:       tween.Props{X: p.X + p.Vx*self.config.Spread, Y: p.Y + p.Vy*self.config.Spread, Alpha: 0, Scale: self.config.EndScale},
		Duration: self.config.Duration(),
		Ease:     tween.Power2Out,
		OnUpdate: func(props tween.Props) {
			if self.pool.Current(lease) {
				p.apply(props)
			}
		},
		OnComplete: func() { done.Fire() },
	})
}
