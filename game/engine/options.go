package engine

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Frontier selects the exploration order of the search
type Frontier int

const (
	// FrontierStack explores depth-first from a LIFO worklist
	FrontierStack Frontier = iota
	// FrontierCheapest always expands the cheapest pending state first
	FrontierCheapest
)

func (f Frontier) String() string {
	switch f {
	case FrontierStack:
		return "stack"
	case FrontierCheapest:
		return "cheapest"
	default:
		return fmt.Sprintf("frontier(%d)", int(f))
	}
}

// ParseFrontier maps a frontier name to its value. An empty name selects the stack.
func ParseFrontier(name string) (Frontier, error) {
	switch strings.ToLower(name) {
	case "", "stack", "lifo":
		return FrontierStack, nil
	case "cheapest", "cost", "heap":
		return FrontierCheapest, nil
	default:
		return 0, fmt.Errorf("%w: unknown frontier %q", ErrBadOption, name)
	}
}

// Progress is a periodic snapshot of a running search
type Progress struct {
	Expanded int           `json:"expanded"`
	Pending  int           `json:"pending"`
	Distinct int           `json:"distinct"`
	Found    bool          `json:"found"`
	Best     int           `json:"best"`
	Elapsed  time.Duration `json:"elapsed"`
}

// Options configures a search. Zero limits mean unlimited.
type Options struct {
	Rules            Rules
	Frontier         Frontier
	MaxExpansions    int
	MaxStates        int
	MaxFrontier      int
	TimeLimit        time.Duration
	LowerBound       bool
	ProgressInterval time.Duration
	OnProgress       func(Progress)
	Logger           logrus.FieldLogger
	OnExpand         func(cfg Configuration, cost int)
	OnSolution       func(cost int)
}

// Option mutates Options
type Option func(*Options)

// DefaultOptions returns an unlimited LIFO search under the standard rules
// with a logger that discards output.
func DefaultOptions() Options {
	quiet := logrus.New()
	quiet.SetOutput(io.Discard)
	return Options{
		Rules:    StandardRules(),
		Frontier: FrontierStack,
		Logger:   quiet,
	}
}

// WithRules replaces the legality predicates
func WithRules(r Rules) Option {
	return func(o *Options) { o.Rules = r }
}

// WithFrontier selects the exploration order
func WithFrontier(f Frontier) Option {
	return func(o *Options) { o.Frontier = f }
}

// WithMaxExpansions aborts the search after n expansions
func WithMaxExpansions(n int) Option {
	return func(o *Options) { o.MaxExpansions = n }
}

// WithMaxStates aborts the search once the dominance table would exceed n entries
func WithMaxStates(n int) Option {
	return func(o *Options) { o.MaxStates = n }
}

// WithMaxFrontier aborts the search once more than n states are pending
func WithMaxFrontier(n int) Option {
	return func(o *Options) { o.MaxFrontier = n }
}

// WithTimeLimit aborts the search after d of wall time
func WithTimeLimit(d time.Duration) Option {
	return func(o *Options) { o.TimeLimit = d }
}

// WithLowerBound prunes children whose cost plus LowerBound cannot beat the best
// solution. It requires the standard stop rule.
func WithLowerBound() Option {
	return func(o *Options) { o.LowerBound = true }
}

// WithProgress calls fn every interval while the search runs
func WithProgress(interval time.Duration, fn func(Progress)) Option {
	return func(o *Options) {
		o.ProgressInterval = interval
		o.OnProgress = fn
	}
}

// WithLogger sets the logger used for progress and summary lines
func WithLogger(l logrus.FieldLogger) Option {
	return func(o *Options) { o.Logger = l }
}

// WithExpandHook calls fn each time a configuration is expanded
func WithExpandHook(fn func(cfg Configuration, cost int)) Option {
	return func(o *Options) { o.OnExpand = fn }
}

// WithSolutionHook calls fn each time a cheaper solution is recorded
func WithSolutionHook(fn func(cost int)) Option {
	return func(o *Options) { o.OnSolution = fn }
}

func (o *Options) validate() error {
	switch {
	case o.Frontier != FrontierStack && o.Frontier != FrontierCheapest:
		return fmt.Errorf("%w: unknown frontier %d", ErrBadOption, int(o.Frontier))
	case o.MaxExpansions < 0:
		return fmt.Errorf("%w: MaxExpansions must be non-negative", ErrBadOption)
	case o.MaxStates < 0:
		return fmt.Errorf("%w: MaxStates must be non-negative", ErrBadOption)
	case o.MaxFrontier < 0:
		return fmt.Errorf("%w: MaxFrontier must be non-negative", ErrBadOption)
	case o.TimeLimit < 0:
		return fmt.Errorf("%w: TimeLimit must be non-negative", ErrBadOption)
	case o.ProgressInterval < 0:
		return fmt.Errorf("%w: progress interval must be non-negative", ErrBadOption)
	}
	if o.Logger == nil {
		quiet := logrus.New()
		quiet.SetOutput(io.Discard)
		o.Logger = quiet
	}
	o.Rules = o.Rules.withDefaults()
	if o.LowerBound && !o.Rules.standardStop() {
		return fmt.Errorf("%w: the lower bound assumes the standard stop rule", ErrBadOption)
	}
	return nil
}
