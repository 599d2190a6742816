package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"drive3d/internal/camera"
	"drive3d/internal/config"
	"drive3d/internal/engine"
	"drive3d/internal/physics"
	"drive3d/internal/player"
	"drive3d/internal/telemetry"
	"drive3d/internal/vehicle"
	"drive3d/internal/world"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/rs/zerolog"
)

var (
	ErrUnknownPlayer  = errors.New("session: unknown player")
	ErrUnknownVehicle = errors.New("session: unknown vehicle")
	ErrUnknownBowser  = errors.New("session: unknown bowser")
	ErrOutOfRange     = errors.New("session: bowser out of range")
	ErrBowserDry      = errors.New("session: bowser cannot dispense")
	ErrClosed         = errors.New("session: closed")
	ErrLevelLoaded    = errors.New("session: level already loaded")
)

// Tags given to the scene nodes the session creates.
const (
	TagVehicle = "vehicle"
	TagWheel   = "wheel"
	TagPlayer  = "player"
)

// Session owns everything that lives for one simulation run: the physics
// world, the render scene, players, vehicles and fuel bowsers.
type Session struct {
	Physics *physics.PhysicsWorld
	Scene   *engine.Scene
	World   *world.World
	Players *player.Registry

	cfg      config.Config
	level    *world.Level
	vehicles []*vehicle.Vehicle
	bowsers  []*vehicle.Bowser
	recorder *telemetry.Recorder
	rigs     map[player.ID]*camera.Rig

	lastTime float64
	updates  int64
	updateMs float64
	closed   bool
	base     zerolog.Logger // handed to the subsystems
	log      zerolog.Logger
}

// New initialises the physics world from cfg and opens the telemetry
// recorder when enabled.
func New(cfg config.Config, log zerolog.Logger) (*Session, error) {
	settings := cfg.Physics.Settings()
	pw := physics.NewPhysicsWorld(settings, log)
	if err := pw.Init(settings.Gravity, settings.Iterations, settings.GroundPlane); err != nil {
		return nil, fmt.Errorf("init physics: %w", err)
	}

	scene := engine.NewScene("session")
	s := &Session{
		Physics: pw,
		Scene:   scene,
		World:   world.New(pw, scene, log),
		Players: player.NewRegistry(log),
		cfg:     cfg,
		base:    log,
		log:     log.With().Str("component", "session").Logger(),
	}

	if cfg.Telemetry.Enabled {
		rec, err := telemetry.Open(cfg.Telemetry.Path, cfg.Level, cfg.Telemetry.BatchSize, log)
		if err != nil {
			pw.Destroy()
			return nil, err
		}
		s.recorder = rec
	}
	return s, nil
}

func (s *Session) Config() config.Config { return s.cfg }

func (s *Session) Level() *world.Level { return s.level }

func (s *Session) Recorder() *telemetry.Recorder { return s.recorder }

func (s *Session) Vehicles() []*vehicle.Vehicle { return s.vehicles }

func (s *Session) Bowsers() []*vehicle.Bowser { return s.bowsers }

// Updates is the number of Update calls so far.
func (s *Session) Updates() int64 { return s.updates }

// UpdateMs is the wall time the last Update took.
func (s *Session) UpdateMs() float64 { return s.updateMs }

// Load builds lvl's terrain and objects, then spawns its vehicles, bowsers
// and players, boarding players that name a vehicle. A session holds one
// level. When Load fails, everything it created is torn down again and the
// session can load another level.
func (s *Session) Load(lvl *world.Level) error {
	if s.closed {
		return ErrClosed
	}
	if s.level != nil {
		return ErrLevelLoaded
	}
	if err := lvl.Validate(); err != nil {
		return err
	}
	vehicles, bowsers := len(s.vehicles), len(s.bowsers)
	known := make(map[player.ID]bool)
	for _, p := range s.Players.All() {
		known[p.ID()] = true
	}
	if err := s.load(lvl); err != nil {
		s.unload(vehicles, bowsers, known)
		return err
	}

	s.level = lvl
	s.log.Info().
		Str("level", lvl.Name).
		Int("vehicles", len(s.vehicles)).
		Int("bowsers", len(s.bowsers)).
		Int("players", s.Players.Len()).
		Msg("Session: level loaded")
	return nil
}

func (s *Session) load(lvl *world.Level) error {
	if err := s.World.Build(lvl); err != nil {
		return fmt.Errorf("build level: %w", err)
	}

	for _, def := range lvl.Vehicles {
		cfg := s.cfg.Vehicle
		cfg.Name = def.Name
		if def.Mass > 0 {
			cfg.Mass = def.Mass
		}
		if def.Fuel != nil {
			cfg.Fuel = *def.Fuel
		}
		if def.FourWheelDrive != nil {
			cfg.FourWheelDrive = *def.FourWheelDrive
		}
		if _, err := s.SpawnVehicle(cfg, world.Vec(def.Position), world.Quat(def.Rotation)); err != nil {
			return fmt.Errorf("vehicle %q: %w", def.Name, err)
		}
	}

	for _, def := range lvl.Bowsers {
		b := s.AddBowser(world.Vec(def.Position), def.Stock)
		if def.Health > 0 {
			b.Health = def.Health
		}
	}

	for _, def := range lvl.Players {
		p, err := s.SpawnPlayer(def.Name, world.Vec(def.Position))
		if err != nil {
			return fmt.Errorf("player %q: %w", def.Name, err)
		}
		if def.Vehicle == "" {
			continue
		}
		i := s.VehicleIndex(def.Vehicle)
		if err := s.EnterVehicle(p.ID(), i, def.Seat); err != nil {
			return fmt.Errorf("player %q: %w", def.Name, err)
		}
	}
	return nil
}

// unload drops the level objects and the vehicles, bowsers and players added
// after the given marks.
func (s *Session) unload(vehicles, bowsers int, known map[player.ID]bool) {
	for _, v := range s.vehicles[vehicles:] {
		s.destroyVehicle(v)
	}
	s.vehicles = s.vehicles[:vehicles]
	s.bowsers = s.bowsers[:bowsers]
	for _, p := range s.Players.All() {
		if !known[p.ID()] {
			s.RemovePlayer(p.ID())
		}
	}
	s.World.Clear()
	s.log.Warn().Msg("Session: level unloaded")
}

func (s *Session) destroyVehicle(v *vehicle.Vehicle) {
	v.EjectAll(s.Players)
	v.Destroy()
	if n, ok := v.Chassis().SceneNode().(*engine.GameObject); ok {
		s.Scene.RemoveGameObject(n)
	}
	for _, w := range v.Wheels() {
		if n, ok := w.SceneNode().(*engine.GameObject); ok {
			s.Scene.RemoveGameObject(n)
		}
	}
}

// SpawnVehicle builds a vehicle from cfg and gives its chassis and wheels scene nodes.
func (s *Session) SpawnVehicle(cfg vehicle.Config, position rl.Vector3, rotation rl.Quaternion) (*vehicle.Vehicle, error) {
	if s.closed {
		return nil, ErrClosed
	}
	v, err := vehicle.New(s.Physics, cfg, position, rotation, s.base)
	if err != nil {
		return nil, err
	}

	node := engine.NewGameObject(cfg.Name)
	node.Tags = []string{TagVehicle}
	node.SetPose(position, rotation)
	node.AddComponent(newFuelGauge(v, s.log))
	v.SetSceneNode(node)
	s.Scene.AddGameObject(node)
	for _, w := range v.Wheels() {
		wn := engine.NewGameObject(fmt.Sprintf("%s/wheel%d", cfg.Name, w.Index()))
		wn.Tags = []string{TagWheel}
		w.SetSceneNode(wn)
		s.Scene.AddGameObject(wn)
	}

	s.vehicles = append(s.vehicles, v)
	return v, nil
}

// Vehicle returns the i-th spawned vehicle.
func (s *Session) Vehicle(i int) (*vehicle.Vehicle, error) {
	if i < 0 || i >= len(s.vehicles) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownVehicle, i)
	}
	return s.vehicles[i], nil
}

// VehicleIndex returns the index of the named vehicle, -1 if none.
func (s *Session) VehicleIndex(name string) int {
	for i, v := range s.vehicles {
		if v.Config().Name == name {
			return i
		}
	}
	return -1
}

// SpawnPlayer registers a new on-foot player with a character body at position.
func (s *Session) SpawnPlayer(name string, position rl.Vector3) (*player.Player, error) {
	if s.closed {
		return nil, ErrClosed
	}
	p := player.New(name)
	p.SetPosition(position)
	body, err := player.NewBody(s.Physics, position, s.cfg.Player)
	if err != nil {
		return nil, err
	}
	s.Players.Add(p)
	p.AttachBody(body)

	node := engine.NewGameObject(name)
	node.Tags = []string{TagPlayer}
	node.SetPose(position, rl.QuaternionIdentity())
	body.Object().SetSceneNode(node)
	s.Scene.AddGameObject(node)
	return p, nil
}

// RemovePlayer kills and unregisters a player and drops its scene node.
func (s *Session) RemovePlayer(id player.ID) {
	p, ok := s.Players.Get(id)
	if !ok {
		return
	}
	var node *engine.GameObject
	if b := p.Body(); b != nil {
		node, _ = b.Object().SceneNode().(*engine.GameObject)
	}
	s.Players.Remove(id)
	delete(s.rigs, id)
	if node != nil {
		s.Scene.RemoveGameObject(node)
	}
}

func (s *Session) AddBowser(position rl.Vector3, stock float32) *vehicle.Bowser {
	b := vehicle.NewBowser(position, stock)
	s.bowsers = append(s.bowsers, b)
	return b
}

func (s *Session) player(id player.ID) (*player.Player, error) {
	p, ok := s.Players.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownPlayer, id)
	}
	return p, nil
}

// EnterVehicle seats a player in seat of the vehicle at vehicleIndex.
func (s *Session) EnterVehicle(id player.ID, vehicleIndex, seat int) error {
	p, err := s.player(id)
	if err != nil {
		return err
	}
	v, err := s.Vehicle(vehicleIndex)
	if err != nil {
		return err
	}
	st, err := v.Seat(seat)
	if err != nil {
		return err
	}
	return st.AssignPlayer(p)
}

// ExitVehicle ejects a seated player above its vehicle.
func (s *Session) ExitVehicle(id player.ID) error {
	p, err := s.player(id)
	if err != nil {
		return err
	}
	st, ok := p.Seat().(*vehicle.Seat)
	if !ok || st == nil {
		return player.ErrNotSeated
	}
	return st.EjectPlayer(p)
}

// Refuel fills a vehicle from a bowser in range and returns the fuel moved.
func (s *Session) Refuel(vehicleIndex, bowserIndex int) (float32, error) {
	v, err := s.Vehicle(vehicleIndex)
	if err != nil {
		return 0, err
	}
	if bowserIndex < 0 || bowserIndex >= len(s.bowsers) {
		return 0, fmt.Errorf("%w: %d", ErrUnknownBowser, bowserIndex)
	}
	b := s.bowsers[bowserIndex]
	if !b.InRange(v.Position()) {
		return 0, ErrOutOfRange
	}
	if !b.Working() {
		return 0, ErrBowserDry
	}
	return v.FillUp(b), nil
}

func (s *Session) SetControls(vehicleIndex int, c vehicle.Controls) error {
	v, err := s.Vehicle(vehicleIndex)
	if err != nil {
		return err
	}
	v.SetControls(c)
	return nil
}

// Update advances the simulation to now (seconds), mirrors poses into the
// scene and samples telemetry every configured interval. It returns the
// number of fixed steps taken.
func (s *Session) Update(now float64) int {
	if s.closed {
		return 0
	}
	start := time.Now()
	dt := float32(0)
	if s.updates > 0 && now > s.lastTime {
		dt = float32(now - s.lastTime)
	}
	s.lastTime = now

	steps := s.Physics.Update(now)
	for _, v := range s.vehicles {
		v.Update(now)
	}
	for _, p := range s.Players.All() {
		if b := p.Body(); b != nil && !b.Parked() {
			b.Object().Update(now)
		}
	}
	s.World.Update(now, dt)
	s.updates++

	if s.recorder != nil && s.updates%int64(max(s.cfg.Telemetry.Interval, 1)) == 0 {
		s.sample(now)
	}
	s.updateMs = float64(time.Since(start).Microseconds()) / 1000.0
	return steps
}

func (s *Session) sample(now float64) {
	step := int64(s.Physics.Stats().Steps)
	for _, v := range s.vehicles {
		if err := s.recorder.Record(Sample(v, step, now)); err != nil {
			s.log.Error().Err(err).Msg("Session: telemetry disabled")
			s.recorder = nil
			return
		}
	}
}

// Sample captures v's state for telemetry.
func Sample(v *vehicle.Vehicle, step int64, now float64) telemetry.VehicleSample {
	pos := v.Position()
	c := v.Controls()
	smp := telemetry.VehicleSample{
		Step:     step,
		SimTime:  now,
		Vehicle:  v.Config().Name,
		X:        pos.X,
		Y:        pos.Y,
		Z:        pos.Z,
		Speed:    rl.Vector3Length(v.Chassis().LinearVelocity()),
		Fuel:     v.Fuel(),
		Throttle: c.Accelerate,
		Brake:    c.Brake,
		Steer:    c.Steer,
	}
	wheels := v.Wheels()
	for _, w := range wheels {
		if w.InContact() {
			smp.WheelsInContact++
		}
		smp.MeanCompression += w.Compression()
		smp.MeanTraction += w.Traction()
	}
	if n := float32(len(wheels)); n > 0 {
		smp.MeanCompression /= n
		smp.MeanTraction /= n
	}
	if seats := v.Seats(); len(seats) > 0 {
		if id, ok := seats[0].Occupant(); ok {
			smp.Driver = uint32(id)
		}
	}
	return smp
}

// Run drives Update at the configured frame rate over simulated time until
// duration has elapsed or ctx is done. each, when not nil, runs before every
// update with the simulated time.
func (s *Session) Run(ctx context.Context, duration time.Duration, each func(now float64)) error {
	rate := s.cfg.Session.FrameRate
	if rate < 1 {
		rate = 60
	}
	frames := int(duration.Seconds() * float64(rate))
	start := s.lastTime
	for i := 0; i <= frames; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if s.closed {
			return ErrClosed
		}
		now := start + float64(i)/float64(rate)
		if each != nil {
			each(now)
		}
		s.Update(now)
	}
	return nil
}

// Snapshot returns the loaded level with current object, vehicle, bowser and
// on-foot player state.
func (s *Session) Snapshot() *world.Level {
	base := s.level
	if base == nil {
		base = &world.Level{}
	}
	out := s.World.Snapshot(base)

	out.Vehicles = make([]world.VehicleDef, 0, len(s.vehicles))
	for _, v := range s.vehicles {
		fuel := v.Fuel()
		out.Vehicles = append(out.Vehicles, world.VehicleDef{
			Name:     v.Config().Name,
			Position: world.Triple(v.Position()),
			Rotation: world.Degrees(v.Rotation()),
			Mass:     v.Config().Mass,
			Fuel:     &fuel,
		})
	}
	out.Bowsers = make([]world.BowserDef, 0, len(s.bowsers))
	for _, b := range s.bowsers {
		out.Bowsers = append(out.Bowsers, world.BowserDef{
			Position: world.Triple(b.Position),
			Stock:    b.Stock,
			Health:   b.Health,
		})
	}
	out.Players = nil
	for _, p := range s.Players.All() {
		if !p.Alive() {
			continue
		}
		def := world.PlayerDef{Name: p.Name, Position: world.Triple(p.Position())}
		if st, ok := p.Seat().(*vehicle.Seat); ok && st != nil {
			def.Vehicle = st.Vehicle().Config().Name
			def.Seat = st.Index()
		}
		out.Players = append(out.Players, def)
	}
	return out
}

// Close ejects every occupant, destroys vehicles and players, tears down the
// world and closes telemetry. Safe to call more than once.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	for _, v := range s.vehicles {
		s.destroyVehicle(v)
	}
	s.vehicles = nil
	for _, p := range s.Players.All() {
		s.Players.Remove(p.ID())
	}
	s.World.Clear()
	steps := int64(s.Physics.Stats().Steps)
	s.Physics.Destroy()
	s.closed = true

	var err error
	if s.recorder != nil {
		err = s.recorder.Close(steps)
		s.recorder = nil
	}
	s.log.Info().Int64("updates", s.updates).Int64("steps", steps).Msg("Session: closed")
	return err
}
