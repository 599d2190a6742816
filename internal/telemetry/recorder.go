package telemetry

import (
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var ErrClosed = errors.New("telemetry: recorder closed")

const defaultBatchSize = 500

// Recorder buffers vehicle samples and writes them to SQLite in batches.
// It is used from the simulation goroutine only.
type Recorder struct {
	db        *gorm.DB
	run       Run
	batch     []VehicleSample
	batchSize int
	written   int64
	closed    bool
	log       zerolog.Logger
}

// Open creates or opens the database at path (in memory when path is empty),
// migrates the schema and starts a new run for level.
func Open(path, level string, batchSize int, log zerolog.Logger) (*Recorder, error) {
	if batchSize < 1 {
		batchSize = defaultBatchSize
	}
	dsn := path
	if dsn == "" {
		dsn = ":memory:"
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		CreateBatchSize:        batchSize,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open telemetry db: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("access sql interface: %w", err)
	}
	// every connection to :memory: is a separate database
	sqlDB.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = MEMORY;",
		"PRAGMA synchronous = OFF;",
		"PRAGMA temp_store = MEMORY;",
	} {
		if err := db.Exec(pragma).Error; err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("error setting PRAGMA: %w", err)
		}
	}

	if err := db.AutoMigrate(Models...); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate telemetry schema: %w", err)
	}

	r := &Recorder{
		db:        db,
		run:       Run{StartedAt: time.Now().UTC(), Level: level},
		batchSize: batchSize,
		batch:     make([]VehicleSample, 0, batchSize),
		log:       log.With().Str("component", "telemetry").Logger(),
	}
	if err := db.Create(&r.run).Error; err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("create run: %w", err)
	}

	r.log.Info().Str("path", dsn).Uint("run", r.run.ID).Msg("Telemetry: recording")
	return r, nil
}

// RunID is the ID of the run the samples are recorded under.
func (r *Recorder) RunID() uint { return r.run.ID }

// Written is the number of samples flushed so far.
func (r *Recorder) Written() int64 { return r.written }

// Pending is the number of buffered samples.
func (r *Recorder) Pending() int { return len(r.batch) }

// Record buffers s and flushes when the batch is full.
func (r *Recorder) Record(s VehicleSample) error {
	if r.closed {
		return ErrClosed
	}
	s.RunID = r.run.ID
	r.batch = append(r.batch, s)
	if len(r.batch) >= r.batchSize {
		return r.Flush()
	}
	return nil
}

// Flush writes all buffered samples.
func (r *Recorder) Flush() error {
	if r.closed {
		return ErrClosed
	}
	if len(r.batch) == 0 {
		return nil
	}
	if err := r.db.CreateInBatches(r.batch, r.batchSize).Error; err != nil {
		return fmt.Errorf("write %d samples: %w", len(r.batch), err)
	}
	r.written += int64(len(r.batch))
	r.log.Debug().Int("samples", len(r.batch)).Int64("total", r.written).Msg("Telemetry: flushed")
	r.batch = r.batch[:0]
	return nil
}

// Samples returns the flushed samples of vehicle in this run, ordered by step.
// An empty vehicle selects all vehicles.
func (r *Recorder) Samples(vehicle string) ([]VehicleSample, error) {
	if r.closed {
		return nil, ErrClosed
	}
	q := r.db.Where("run_id = ?", r.run.ID)
	if vehicle != "" {
		q = q.Where("vehicle = ?", vehicle)
	}
	var out []VehicleSample
	if err := q.Order("step, id").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("query samples: %w", err)
	}
	return out, nil
}

// Close flushes, stores the step count on the run and closes the database.
func (r *Recorder) Close(steps int64) error {
	if r.closed {
		return nil
	}
	var errs []error
	if err := r.Flush(); err != nil {
		errs = append(errs, err)
	}
	if err := r.db.Model(&r.run).Update("steps", steps).Error; err != nil {
		errs = append(errs, fmt.Errorf("update run: %w", err))
	}
	r.closed = true
	if sqlDB, err := r.db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	r.log.Info().Int64("samples", r.written).Int64("steps", steps).Msg("Telemetry: closed")
	return errors.Join(errs...)
}
