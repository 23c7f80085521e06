package particle

import "github.com/openziti/reservoir/tween"

// Shape is the visual primitive a scene hands back for a particle.
//
type Shape interface {
	SetActive(active bool)
	SetVisible(visible bool)
	SetPosition(x, y float64)
	SetFillColor(color uint32)
	SetAlpha(alpha float64)
	SetScale(scale float64)
	Destroy()
}

// Scene is the owning context particles are created in.
//
type Scene interface {
	AddCircle(x, y, radius float64, color uint32) (Shape, error)
}

// Tweener schedules animated state changes with a completion callback.
//
type Tweener interface {
	Add(spec tween.Spec) *tween.Handle
}

type Particle struct {
	Id    int32
	X     float64
	Y     float64
	Vx    float64
	Vy    float64
	Color uint32
	shape Shape
}

func (self *Particle) SetActive(active bool) {
	self.shape.SetActive(active)
	self.shape.SetVisible(active)
}

func (self *Particle) Destroy() {
	self.shape.Destroy()
}

func (self *Particle) Shape() Shape {
	return self.shape
}

func (self *Particle) reset(x, y float64, color uint32) {
	self.X = x
	self.Y = y
	self.Vx = 0
	self.Vy = 0
	self.Color = color
	self.shape.SetPosition(x, y)
	self.shape.SetFillColor(color)
	self.shape.SetAlpha(1)
	self.shape.SetScale(1)
}

func (self *Particle) apply(p tween.Props) {
	self.X = p.X
	self.Y = p.Y
	self.shape.SetPosition(p.X, p.Y)
	self.shape.SetAlpha(p.Alpha)
	self.shape.SetScale(p.Scale)
}
