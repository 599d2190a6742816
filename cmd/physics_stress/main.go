// Stress test for the rigid-body step: drops a pile of boxes and spheres onto
// the ground plane and reports step time and contact load per object count.
package main

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	"drive3d/internal/physics"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/pkg/profile"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
)

func main() {
	steps := pflag.IntP("steps", "s", 300, "fixed steps per run")
	maxContacts := pflag.Int("max-contacts", 8, "contacts kept per shape pair")
	cpu := pflag.Bool("cpuprofile", false, "write a CPU profile")
	pflag.Parse()

	if *cpu {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.Quiet).Stop()
	}

	testCounts := []int{10, 50, 100, 250, 500}
	for _, count := range testCounts {
		if err := run(count, *steps, *maxContacts); err != nil {
			fmt.Fprintf(os.Stderr, "%5d objects: %v\n", count, err)
			os.Exit(1)
		}
	}
}

func run(count, steps, maxContacts int) error {
	settings := physics.DefaultSettings()
	settings.MaxContacts = maxContacts
	w := physics.NewPhysicsWorld(settings, zerolog.Nop())
	if err := w.Init(settings.Gravity, settings.Iterations, true); err != nil {
		return err
	}
	defer w.Destroy()

	rng := rand.New(rand.NewSource(42))

	// spawn area grows with count to keep density reasonable
	spawnSize := float32(10) + float32(count)/10
	for i := range count {
		pos := rl.Vector3{
			X: rng.Float32()*spawnSize - spawnSize/2,
			Y: 1 + rng.Float32()*spawnSize,
			Z: rng.Float32()*spawnSize - spawnSize/2,
		}
		rot := rl.QuaternionFromEuler(rng.Float32()*3, rng.Float32()*3, rng.Float32()*3)
		if i%2 == 0 {
			w.CreateBox(pos, rot, rl.Vector3{X: 1, Y: 1, Z: 1})
		} else {
			w.CreateSphere(pos, rot, 0.5+rng.Float32()*0.5)
		}
	}

	start := time.Now()
	for range steps {
		w.Step()
	}
	elapsed := time.Since(start)
	stats := w.Stats()

	resting := 0
	for _, o := range w.Objects() {
		if rl.Vector3Length(o.LinearVelocity()) < 0.1 {
			resting++
		}
	}

	fmt.Printf("%5d objects: %8v/step | %7.1f contacts/step | %5d truncated | %3d%% resting\n",
		count, (elapsed / time.Duration(steps)).Round(time.Microsecond),
		float64(stats.Contacts)/float64(stats.Steps), stats.Truncated, 100*resting/count)
	return nil
}
