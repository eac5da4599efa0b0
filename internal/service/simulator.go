package service

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"workshop_monitor/internal/logger"
	"workshop_monitor/internal/models"
	"workshop_monitor/internal/repository"
)

// ----------- Simulation constants -----------
const (
	MinTempC        = 10.0  // °C
	MaxTempC        = 45.0  // °C
	MinHumidity     = 5.0   // %
	MaxHumidity     = 95.0  // %
	MaxSmokePPM     = 300.0 // ppm
	FanTempOnC      = 28.0  // fan starts above this temperature
	FanSmokeOnPPM   = 50.0  // fan starts at this smoke level
	WarningSmokePPM = 100.0 // warning light at this smoke level
	MinFanSpeed     = 0.3   // fraction when the fan is on

	tempStepC        = 0.4  // std-dev of temperature drift per tick
	humidityStep     = 1.5  // std-dev of humidity drift per tick
	smokeStepPPM     = 4.0  // std-dev of smoke drift per tick
	smokeDecay       = 0.05 // fraction of excess smoke cleared per tick
	smokeSpikeChance = 0.02
	smokeSpikePPM    = 80.0
	fanCoolingC      = 0.3 // °C removed per tick at full fan speed
)

// DefaultHistoryEvery is the number of ticks between archived samples.
const DefaultHistoryEvery = 5

// SimulatorOptions configures the device simulator.
type SimulatorOptions struct {
	HistoryEvery int   // ticks between history rows, <= 0 means DefaultHistoryEvery
	Seed         int64 // 0 seeds from the clock
	Log          *logger.Logger
}

// SimulatorService evolves the device readings over time.
type SimulatorService struct {
	stateRepo    repository.StateRepo
	historyRepo  repository.HistoryRepo
	historyEvery int
	log          *logger.Logger

	mu    sync.Mutex
	rng   *rand.Rand
	ticks int
}

// NewSimulatorService returns a simulator with defaults.
func NewSimulatorService(stateRepo repository.StateRepo, historyRepo repository.HistoryRepo, opts SimulatorOptions) *SimulatorService {
	if opts.HistoryEvery <= 0 {
		opts.HistoryEvery = DefaultHistoryEvery
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &SimulatorService{
		stateRepo:    stateRepo,
		historyRepo:  historyRepo,
		historyEvery: opts.HistoryEvery,
		log:          logger.OrNop(opts.Log).Named("simulator"),
		rng:          rand.New(rand.NewSource(seed)),
	}
}

// Run ticks at the given interval until ctx is canceled.
func (s *SimulatorService) Run(ctx context.Context, tick time.Duration) {
	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			if err := s.Step(ctx, now); err != nil && ctx.Err() == nil {
				s.log.Warnw("simulator_step_failed", "err", err)
			}
		}
	}
}

// Step advances the simulation by one tick at now. The first call on an empty
// store only persists the baseline.
func (s *SimulatorService) Step(ctx context.Context, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.stateRepo.Load(ctx)
	if err != nil {
		return err
	}
	if st.ID == 0 {
		st = models.DeviceState{ID: 1, Snapshot: baselineSnapshot(), UpdatedAt: now.UTC()}
		applyControls(&st.Snapshot)
		return s.stateRepo.Save(ctx, st)
	}

	s.drift(&st.Snapshot)
	applyControls(&st.Snapshot)
	st.UpdatedAt = now.UTC()
	if err := s.stateRepo.Save(ctx, st); err != nil {
		return err
	}

	s.ticks++
	if s.ticks%s.historyEvery != 0 {
		return nil
	}
	id, err := s.historyRepo.Append(ctx, models.HistoryRecord{
		Timestamp: models.Timestamp{Time: st.UpdatedAt},
		Snapshot:  st.Snapshot,
	})
	if err != nil {
		return err
	}
	s.log.Debugw("history_sample_archived", "id", id, "temperature", st.Temperature, "smoke_level", st.SmokeLevel)
	return nil
}

// drift applies one tick of bounded random change.
func (s *SimulatorService) drift(snap *models.Snapshot) {
	temp := snap.Temperature + s.rng.NormFloat64()*tempStepC
	if snap.FanOn {
		temp -= fanCoolingC * snap.FanSpeed
	}
	snap.Temperature = round1(clamp(temp, MinTempC, MaxTempC))

	hum := snap.Humidity + s.rng.NormFloat64()*humidityStep
	snap.Humidity = round1(clamp(hum, MinHumidity, MaxHumidity))

	smoke := snap.SmokeLevel
	if s.rng.Float64() < smokeSpikeChance {
		smoke += smokeSpikePPM
	}
	smoke += s.rng.NormFloat64() * smokeStepPPM
	smoke -= (smoke - BaselineSmokePPM) * smokeDecay
	snap.SmokeLevel = round1(clamp(smoke, 0, MaxSmokePPM))
}

// applyControls derives fan and warning outputs from the readings.
func applyControls(snap *models.Snapshot) {
	snap.FanSpeed = fanSpeedFor(snap.Temperature, snap.SmokeLevel)
	snap.FanOn = snap.FanSpeed > 0
	snap.WarningOn = snap.SmokeLevel >= WarningSmokePPM
}

// fanSpeedFor returns 0 when neither trigger fires, otherwise MinFanSpeed
// plus the larger relative excess, capped at 1.
func fanSpeedFor(tempC, smokePPM float64) float64 {
	hot := tempC > FanTempOnC
	smoky := smokePPM >= FanSmokeOnPPM
	if !hot && !smoky {
		return 0
	}
	excess := 0.0
	if hot {
		excess = (tempC - FanTempOnC) / 10
	}
	if smoky {
		excess = math.Max(excess, (smokePPM-FanSmokeOnPPM)/100)
	}
	return math.Round(clamp(MinFanSpeed+excess, MinFanSpeed, 1)*100) / 100
}

// helpers
func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
