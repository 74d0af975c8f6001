package solver

import (
	"math/rand"
	"time"
)

// Pacer produces the deliberate human-mimicry delays of a chain. It is built
// on a seedable random source so tests can pin the sequence, and sleeping is
// injectable so tests never actually wait.
type Pacer struct {
	rnd     *rand.Rand
	sleep   func(time.Duration)
	enabled bool
}

// NewPacer creates a pacer. seed == 0 uses wall-clock seeding; a fixed seed
// makes the delay sequence reproducible.
func NewPacer(seed int64, enabled bool, sleep func(time.Duration)) *Pacer {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if sleep == nil {
		sleep = time.Sleep
	}
	return &Pacer{
		rnd:     rand.New(rand.NewSource(seed)),
		sleep:   sleep,
		enabled: enabled,
	}
}

// Pause sleeps a uniformly random duration in [minSeconds, maxSeconds].
func (p *Pacer) Pause(minSeconds, maxSeconds float64) {
	if !p.enabled {
		return
	}
	p.sleep(p.Duration(minSeconds, maxSeconds))
}

// PauseFixed sleeps base seconds plus a random jitter in [jitterMin, jitterMax].
func (p *Pacer) PauseFixed(baseSeconds, jitterMin, jitterMax float64) {
	if !p.enabled {
		return
	}
	p.sleep(time.Duration((baseSeconds + p.randFloat(jitterMin, jitterMax)) * float64(time.Second)))
}

// Duration draws a random duration in [minSeconds, maxSeconds].
func (p *Pacer) Duration(minSeconds, maxSeconds float64) time.Duration {
	return time.Duration(p.randFloat(minSeconds, maxSeconds) * float64(time.Second))
}

// IntBetween draws a random integer in [min, max].
func (p *Pacer) IntBetween(min, max int) int {
	return p.rnd.Intn(max-min+1) + min
}

// Pick returns a random element of choices.
func (p *Pacer) Pick(choices []string) string {
	return choices[p.rnd.Intn(len(choices))]
}

func (p *Pacer) randFloat(min, max float64) float64 {
	return min + p.rnd.Float64()*(max-min)
}
