package projectile

// Body is the physics sprite a scene hands back for a bullet.
//
type Body interface {
	SetActive(active bool)
	SetVisible(visible bool)
	SetPosition(x, y float64)
	Position() (float64, float64)
	SetVelocity(vx, vy float64)
	Destroy()
}

// Scene is the owning context bullets are created in.
//
type Scene interface {
	AddSprite(texture string, x, y float64) (Body, error)
}

type Bullet struct {
	Id     int32
	Damage int
	body   Body
}

func (self *Bullet) SetActive(active bool) {
	self.body.SetActive(active)
	self.body.SetVisible(active)
	if !active {
		self.body.SetVelocity(0, 0)
	}
}

func (self *Bullet) Destroy() {
	self.body.Destroy()
}

func (self *Bullet) Body() Body {
	return self.body
}

func (self *Bullet) Position() (float64, float64) {
	return self.body.Position()
}

// Bounds is an axis-aligned rectangle; bullets outside it are spent.
//
type Bounds struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

func (self Bounds) Contains(x, y float64) bool {
	return x >= self.X && x <= self.X+self.Width && y >= self.Y && y <= self.Y+self.Height
}
