// Command drive3d runs a headless driving session: it loads a level, drives
// the first vehicle with a scripted input sequence and reports the outcome.
package main

import (
	"context"
	"os"
	"os/signal"
	"strings"

	"drive3d/internal/config"
	"drive3d/internal/logging"
	"drive3d/internal/session"
	"drive3d/internal/vehicle"
	"drive3d/internal/world"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/pkg/profile"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func main() {
	flags := pflag.NewFlagSet("drive3d", pflag.ExitOnError)
	configPath := flags.StringP("config", "c", "", "JSON config file")
	flags.StringP("level", "l", "", "level file (built-in yard when empty)")
	flags.Duration("duration", 0, "simulated run length")
	flags.String("log-level", "", "DEBUG, INFO, WARN or ERROR")
	flags.Bool("telemetry", false, "record vehicle samples")
	flags.String("telemetry-path", "", "telemetry sqlite file (memory when empty)")
	profileMode := flags.String("profile", "", "cpu or mem")
	savePath := flags.String("save", "", "write the final state as a level file")
	throttle := flags.Float32("throttle", 1, "scripted accelerator for the first half of the run")
	steer := flags.Float32("steer", 0.2, "scripted steering for the first half of the run")
	flags.Parse(os.Args[1:])

	for key, name := range map[string]string{
		"level":             "level",
		"session.duration":  "duration",
		"log_level":         "log-level",
		"telemetry.enabled": "telemetry",
		"telemetry.path":    "telemetry-path",
	} {
		if f := flags.Lookup(name); f != nil && f.Changed {
			if err := viper.BindPFlag(key, f); err != nil {
				log.Fatal().Err(err).Str("flag", name).Msg("Config: flag binding failed")
			}
		}
	}

	cfg, err := config.Load(*configPath)
	logger := logging.Setup(cfg.LogLevel, os.Stderr, false)
	if err != nil {
		log.Fatal().Err(err).Msg("Config: load failed")
	}

	switch strings.ToLower(*profileMode) {
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.Quiet).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath("."), profile.Quiet).Stop()
	}

	lvl := yard()
	if cfg.Level != "" {
		if lvl, err = world.LoadLevel(cfg.Level); err != nil {
			log.Fatal().Err(err).Str("level", cfg.Level).Msg("Level: load failed")
		}
	}

	s, err := session.New(cfg, logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Session: start failed")
	}
	if err := s.Load(lvl); err != nil {
		s.Close()
		log.Fatal().Err(err).Msg("Session: level failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	half := cfg.Session.Duration.Seconds() / 2
	script := func(now float64) {
		c := vehicle.Controls{Accelerate: *throttle, Steer: *steer}
		if now >= half {
			c = vehicle.Controls{Brake: 1}
		}
		for i := range s.Vehicles() {
			if err := s.SetControls(i, c); err != nil {
				logger.Debug().Err(err).Int("vehicle", i).Msg("Vehicle: controls not applied")
			}
		}
	}
	if err := s.Run(ctx, cfg.Session.Duration, script); err != nil {
		logger.Warn().Err(err).Msg("Session: run interrupted")
	}

	for _, v := range s.Vehicles() {
		p := v.Properties()
		pos := v.Position()
		logger.Info().
			Str("vehicle", v.Config().Name).
			Floats32("position", []float32{pos.X, pos.Y, pos.Z}).
			Float32("speed", p.Speed).
			Float32("fuel", v.Fuel()).
			Msg("Vehicle: final state")
	}
	for _, p := range s.Players.All() {
		cam, err := s.Camera(p.ID())
		if err != nil {
			continue
		}
		visible, _ := s.VisibleObjects(p.ID())
		logger.Debug().
			Str("player", p.Name).
			Stringer("camera", p.Camera()).
			Floats32("eye", []float32{cam.Position.X, cam.Position.Y, cam.Position.Z}).
			Int("visible", len(visible)).
			Msg("Session: player view")
	}
	stats := s.Physics.Stats()
	logger.Info().
		Uint64("steps", stats.Steps).
		Uint64("contacts", stats.Contacts).
		Uint64("truncated", stats.Truncated).
		Int64("updates", s.Updates()).
		Float64("lastUpdateMs", s.UpdateMs()).
		Msg("Physics: run finished")

	if *savePath != "" {
		if err := world.SaveLevel(*savePath, s.Snapshot()); err != nil {
			logger.Error().Err(err).Msg("Level: save failed")
		} else {
			logger.Info().Str("path", *savePath).Msg("Level: saved")
		}
	}

	if err := s.Close(); err != nil {
		logger.Error().Err(err).Msg("Session: close failed")
	}
}

// yard is a flat lot with one car, a driver, a bystander and a bowser.
func yard() *world.Level {
	return &world.Level{
		Name: "yard",
		Objects: []world.ObjectDef{
			{Name: "crate", Shape: world.ShapeBox, Position: [3]float32{4, 0.5, 12}, Size: [3]float32{1, 1, 1}, Mass: 40},
			{Name: "barrier", Shape: world.ShapeBox, Position: [3]float32{0, 0.5, 60}, Size: [3]float32{20, 1, 1}, Static: true},
		},
		Vehicles: []world.VehicleDef{{Name: "car", Position: world.Triple(rl.Vector3{Y: 1.2})}},
		Bowsers:  []world.BowserDef{{Position: [3]float32{3, 0, 0}, Stock: 500}},
		Players: []world.PlayerDef{
			{Name: "driver", Position: [3]float32{-2, 1, 0}, Vehicle: "car"},
			{Name: "bystander", Position: [3]float32{-5, 1, -5}},
		},
	}
}
