// Package normalizer flattens raw users, products and carts into 3NF tables.
package normalizer

import (
	"errors"
	"math/rand/v2"
	"time"

	"reshape/internal/keys"
	"reshape/internal/logger"
	"reshape/internal/models"
)

// ErrNilDataset is returned when Process is called without input.
var ErrNilDataset = errors.New("raw dataset is nil")

// Option configures a Processor.
type Option func(*settings)

type settings struct {
	now  func() time.Time
	rng  *rand.Rand
	log  *logger.Logger
	keys *keys.Allocator
}

// WithClock sets the clock used to place synthetic order dates.
func WithClock(now func() time.Time) Option {
	return func(s *settings) { s.now = now }
}

// WithSeed makes synthetic order dates and statuses reproducible.
func WithSeed(seed uint64) Option {
	return func(s *settings) { s.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)) }
}

// WithLogger sets the logger.
func WithLogger(log *logger.Logger) Option {
	return func(s *settings) { s.log = log }
}

// WithAllocator injects the key allocator. By default every Process call gets a fresh one.
func WithAllocator(a *keys.Allocator) Option {
	return func(s *settings) { s.keys = a }
}

// Processor validates raw input and transforms it into a TableSet.
type Processor struct {
	validator   *Validator
	transformer *Transformer
	settings    settings
}

// NewProcessor creates a new processor instance.
func NewProcessor(opts ...Option) *Processor {
	s := settings{
		now: time.Now,
		rng: rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0)),
		log: logger.Discard(),
	}

	for _, opt := range opts {
		opt(&s)
	}

	return &Processor{
		validator:   NewValidator(),
		transformer: NewTransformer(s.now, s.rng),
		settings:    s,
	}
}

// Process normalizes raw. Input problems never abort the run: they are recorded in
// TableSet.Issues and the affected records are skipped.
func (p *Processor) Process(raw *models.RawDataset) (*models.TableSet, error) {
	if raw == nil {
		return nil, ErrNilDataset
	}

	issues := p.validator.Validate(raw)
	for _, issue := range issues {
		p.settings.log.Warn("raw input issue", "issue", issue.Error())
	}

	alloc := p.settings.keys
	if alloc == nil {
		alloc = keys.New()
	}

	ts := p.transformer.Transform(raw, alloc)
	ts.Issues = append(issues, ts.Issues...)

	p.settings.log.Info("normalized raw data",
		"users", len(ts.Users),
		"products", len(ts.Products),
		"orders", len(ts.Orders),
		"order_items", len(ts.OrderItems),
		"unresolved", len(ts.Unresolved),
	)

	return ts, nil
}
