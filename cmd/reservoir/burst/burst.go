package burst

import (
	pool "github.com/openziti/reservoir"
	"github.com/openziti/reservoir/cmd/reservoir/reservoir"
	"github.com/openziti/reservoir/headless"
	"github.com/openziti/reservoir/particle"
	"github.com/openziti/reservoir/projectile"
	"github.com/openziti/reservoir/tween"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"math/rand"
	"time"
)

func init() {
	burstCmd.Flags().IntVar(&frames, "frames", 600, "Number of frames to simulate")
	burstCmd.Flags().IntVar(&fps, "fps", 60, "Simulated frames per second")
	burstCmd.Flags().IntVar(&every, "every", 10, "Trigger an effect every n frames")
	burstCmd.Flags().IntVar(&bullets, "bullets", 3, "Bullets fired per effect")
	burstCmd.Flags().Int64Var(&seed, "seed", 0, "Random seed (0 uses the clock)")
	reservoir.RootCmd.AddCommand(burstCmd)
}

var burstCmd = &cobra.Command{
	Use:   "burst",
	Short: "Run a headless particle and bullet simulation",
	Args:  cobra.NoArgs,
	Run:   burst,
}
var frames int
var fps int
var every int
var bullets int
var seed int64

var arena = projectile.Bounds{X: 0, Y: 0, Width: 800, Height: 600}

func burst(_ *cobra.Command, _ []string) {
	if fps < 1 || every < 1 {
		logrus.Fatalf("fps and every must be positive")
	}
	cfg, err := reservoir.LoadConfig()
	if err != nil {
		logrus.Fatalf("error loading config (%v)", err)
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	r := rand.New(rand.NewSource(seed))

	scene := headless.NewScene()
	scene.LoadTexture(cfg.Bullets.Texture)
	engine := tween.NewEngine()

	particles, err := particle.NewPool(scene, engine, cfg.Particles, cfg.Pool)
	if err != nil {
		logrus.Fatalf("error creating particle pool (%v)", err)
	}
	particles.Seed(seed)
	bulletPool, err := projectile.NewPool(scene, cfg.Bullets, cfg.Pool)
	if err != nil {
		logrus.Fatalf("error creating bullet pool (%v)", err)
	}

	dt := time.Second / time.Duration(fps)
	effects := 0
	spent := 0
	for frame := 0; frame < frames; frame++ {
		if frame%every == 0 {
			x := r.Float64() * arena.Width
			y := r.Float64() * arena.Height
			if effects%2 == 0 {
				_, err = particles.HitEffect(x, y)
			} else {
				_, err = particles.ExplosionEffect(x, y)
			}
			if err != nil {
				logrus.Errorf("effect failed at frame [%d] (%v)", frame, err)
			}
			for i := 0; i < bullets; i++ {
				if _, err := bulletPool.Fire(x, y, r.Float64()*800-400, r.Float64()*800-400, 0); err != nil {
					logrus.Errorf("fire failed at frame [%d] (%v)", frame, err)
				}
			}
			effects++
		}
		engine.Update(dt)
		scene.Step(dt)
		spent += bulletPool.Update(arena)
	}

	logrus.Infof("[%d] frames, [%d] effects, [%d] spent bullets", frames, effects, spent)
	logCounts("particles", particles.Count())
	logCounts("bullets", bulletPool.Count())
	logrus.Infof("scene: [%d] objects, [%d] visible", scene.Objects(), scene.Visible())

	cancelled := engine.Clear()
	logrus.Infof("cancelled [%d] pending tweens", cancelled)
	particles.Destroy()
	bulletPool.Destroy()

	if mi, ok := cfg.Pool.Instrument().(*pool.MetricsInstrument); ok {
		paths, err := mi.WriteAllSamples()
		if err != nil {
			logrus.Errorf("error writing samples (%v)", err)
		}
		for _, path := range paths {
			logrus.Infof("wrote metrics to [%s]", path)
		}
		if err := mi.Close(); err != nil {
			logrus.Errorf("error closing metrics instrument (%v)", err)
		}
	}
}

func logCounts(id string, counts pool.Counts) {
	logrus.Infof("%s: available [%d], in use [%d], total [%d]", id, counts.Available, counts.InUse, counts.Total)
}
