package headless

import (
	"github.com/openziti/reservoir/particle"
	"github.com/openziti/reservoir/projectile"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"time"
)

// Scene is an owning context with no renderer. It keeps every shape it creates and records their visual state, so
// simulations and tests can observe what a real scene would draw.
//
type Scene struct {
	textures map[string]struct{}
	shapes   []*Shape
}

func NewScene() *Scene {
	return &Scene{textures: make(map[string]struct{})}
}

func (self *Scene) LoadTexture(name string) {
	self.textures[name] = struct{}{}
}

func (self *Scene) UnloadTexture(name string) {
	delete(self.textures, name)
}

func (self *Scene) AddCircle(x, y, radius float64, color uint32) (particle.Shape, error) {
	if radius <= 0 {
		return nil, errors.Errorf("invalid circle radius [%0.2f]", radius)
	}
	s := self.add(x, y)
	s.Radius = radius
	s.Color = color
	return s, nil
}

func (self *Scene) AddSprite(texture string, x, y float64) (projectile.Body, error) {
	if _, found := self.textures[texture]; !found {
		return nil, errors.Errorf("texture [%s] not loaded", texture)
	}
	s := self.add(x, y)
	s.Texture = texture
	return s, nil
}

// Step advances every active, undestroyed shape by its velocity over dt.
//
func (self *Scene) Step(dt time.Duration) {
	if dt < 0 {
		logrus.Warnf("ignoring negative step [%v]", dt)
		return
	}
	secs := dt.Seconds()
	for _, s := range self.shapes {
		if s.Active && !s.Destroyed {
			s.X += s.Vx * secs
			s.Y += s.Vy * secs
		}
	}
}

// Shapes returns every shape the scene has created, in creation order.
//
func (self *Scene) Shapes() []*Shape {
	return self.shapes
}

func (self *Scene) Objects() int {
	return len(self.shapes)
}

func (self *Scene) Visible() int {
	visible := 0
	for _, s := range self.shapes {
		if s.Visible && !s.Destroyed {
			visible++
		}
	}
	return visible
}

func (self *Scene) Destroyed() int {
	destroyed := 0
	for _, s := range self.shapes {
		if s.Destroyed {
			destroyed++
		}
	}
	return destroyed
}

func (self *Scene) add(x, y float64) *Shape {
	s := &Shape{X: x, Y: y, Alpha: 1, Scale: 1, Active: true, Visible: true}
	self.shapes = append(self.shapes, s)
	return s
}

// Shape is a recorded circle or sprite.
//
type Shape struct {
	X         float64
	Y         float64
	Vx        float64
	Vy        float64
	Radius    float64
	Color     uint32
	Texture   string
	Alpha     float64
	Scale     float64
	Active    bool
	Visible   bool
	Destroyed bool
}

func (self *Shape) SetActive(active bool) {
	self.Active = active
}

func (self *Shape) SetVisible(visible bool) {
	self.Visible = visible
}

func (self *Shape) SetPosition(x, y float64) {
	self.X = x
	self.Y = y
}

func (self *Shape) Position() (float64, float64) {
	return self.X, self.Y
}

func (self *Shape) SetVelocity(vx, vy float64) {
	self.Vx = vx
	self.Vy = vy
}

func (self *Shape) SetFillColor(color uint32) {
	self.Color = color
}

func (self *Shape) SetAlpha(alpha float64) {
	self.Alpha = alpha
}

func (self *Shape) SetScale(scale float64) {
	self.Scale = scale
}

func (self *Shape) Destroy() {
	self.Destroyed = true
	self.Active = false
	self.Visible = false
}
