package geoloc

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/Marlon200530/real-time-map-client/internal/models"
)

// WalkProvider simulates the platform capability with a seeded random walk
// around a starting point. Used by the tracker's -simulate mode and in
// development when no real position source is attached.
type WalkProvider struct {
	step     float64 // max displacement per tick, in degrees
	interval time.Duration

	mu  sync.Mutex
	pos models.LocationSample
	rng *rand.Rand
}

func NewWalkProvider(lat, lng float64, seed int64) *WalkProvider {
	return &WalkProvider{
		step:     0.0004,
		interval: time.Second,
		pos:      models.LocationSample{Lat: lat, Lng: lng},
		rng:      rand.New(rand.NewSource(seed)),
	}
}

type walkWatch struct {
	stop func()
	once sync.Once
}

func (w *walkWatch) Stop() { w.once.Do(w.stop) }

func (p *WalkProvider) Watch(opts Options, onSample func(models.LocationSample), onError func(error)) (Watch, error) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				onSample(p.advance())
			}
		}
	}()
	return &walkWatch{stop: cancel}, nil
}

func (p *WalkProvider) Current(ctx context.Context, opts Options) (models.LocationSample, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pos, nil
}

// advance takes one random step: a uniform angle and magnitude, like a
// wandering user rather than a straight-line drift.
func (p *WalkProvider) advance() models.LocationSample {
	p.mu.Lock()
	defer p.mu.Unlock()

	angle := p.rng.Float64() * 2 * math.Pi
	magnitude := p.rng.Float64() * p.step
	p.pos.Lat += magnitude * math.Sin(angle)
	p.pos.Lng += magnitude * math.Cos(angle)
	return p.pos
}
