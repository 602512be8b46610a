package hardware

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/lazypower/sensorgraph/internal/presence"
)

// SimulatedSensor returns a slowly drifting value in [0, 1], like the
// normalised levels of the ambient module.
type SimulatedSensor struct {
	mu    sync.Mutex
	level float64
	drift float64
	fail  error
}

// NewSimulatedSensor starts at level and moves by at most drift per read.
func NewSimulatedSensor(level, drift float64) *SimulatedSensor {
	return &SimulatedSensor{level: level, drift: drift}
}

// Fail makes subsequent reads return err. A nil err restores normal reads.
func (s *SimulatedSensor) Fail(err error) {
	s.mu.Lock()
	s.fail = err
	s.mu.Unlock()
}

func (s *SimulatedSensor) Read(ctx context.Context) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return 0, s.fail
	}
	s.level = math.Min(1, math.Max(0, s.level+(rand.Float64()*2-1)*s.drift))
	return math.Round(s.level*1e4) / 1e4, nil
}

// SimulatedLED is an in-memory actuator that counts the commands it receives.
type SimulatedLED struct {
	mu       sync.Mutex
	on       bool
	commands int
	fail     error
}

func NewSimulatedLED() *SimulatedLED {
	return &SimulatedLED{}
}

func (l *SimulatedLED) On() error  { return l.set(true) }
func (l *SimulatedLED) Off() error { return l.set(false) }

func (l *SimulatedLED) set(on bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fail != nil {
		return l.fail
	}
	l.on = on
	l.commands++
	return nil
}

func (l *SimulatedLED) IsOn() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.on
}

// Commands returns how many On/Off commands were applied.
func (l *SimulatedLED) Commands() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.commands
}

// Fail makes subsequent commands return err. A nil err clears it.
func (l *SimulatedLED) Fail(err error) {
	l.mu.Lock()
	l.fail = err
	l.mu.Unlock()
}

// SimulatedTags plays a tag being held to the reader: a burst of reads of
// one UID every Interval, each burst lasting Burst with a read every Gap.
type SimulatedTags struct {
	IDs      []string
	Interval time.Duration
	Burst    time.Duration
	Gap      time.Duration

	arrivals chan presence.Arrival
	errs     chan error
	done     chan struct{}
	once     sync.Once
}

// NewSimulatedTags starts emitting bursts for ids in turn.
func NewSimulatedTags(ids []string, interval time.Duration) *SimulatedTags {
	s := &SimulatedTags{
		IDs:      ids,
		Interval: interval,
		Burst:    300 * time.Millisecond,
		Gap:      20 * time.Millisecond,
		arrivals: make(chan presence.Arrival, 16),
		errs:     make(chan error),
		done:     make(chan struct{}),
	}
	go s.loop()
	return s
}

func (s *SimulatedTags) Arrivals() <-chan presence.Arrival { return s.arrivals }
func (s *SimulatedTags) Errors() <-chan error              { return s.errs }

func (s *SimulatedTags) Close() error {
	s.once.Do(func() { close(s.done) })
	return nil
}

func (s *SimulatedTags) loop() {
	defer close(s.arrivals)
	defer close(s.errs)

	if len(s.IDs) == 0 || s.Interval <= 0 {
		<-s.done
		return
	}

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for n := 0; ; n++ {
		select {
		case <-ticker.C:
		case <-s.done:
			return
		}

		id := s.IDs[n%len(s.IDs)]
		end := time.Now().Add(s.Burst)
		for time.Now().Before(end) {
			select {
			case s.arrivals <- presence.Arrival{ID: id, At: time.Now()}:
			case <-s.done:
				return
			}
			select {
			case <-time.After(s.Gap):
			case <-s.done:
				return
			}
		}
	}
}
