// Package world sequences the category initializers into one ordered call
// buffer.
//
// A full init walks every category in Order. A scoped run targets explicit
// indices of one category: init recreates them, delete removes them, and
// revise does both into the same buffer so the deploy applies them as one
// batch.
//
// The orchestrator never touches the chain. Whether an index exists is asked
// of a Deployed source (normally the deployment ledger), and rows are paced
// by an optional rate limiter.
package world

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"golang.org/x/time/rate"

	"github.com/roach88/worldsmith/internal/admin"
	"github.com/roach88/worldsmith/internal/content"
	"github.com/roach88/worldsmith/internal/encoder"
	"github.com/roach88/worldsmith/internal/ir"
	"github.com/roach88/worldsmith/internal/settings"
)

var (
	// ErrNotSupported is returned for an action a category has no path for,
	// such as deleting config or a scoped auth run.
	ErrNotSupported = errors.New("not supported")

	// ErrTooManyRowErrors aborts a run once more rows were skipped than the
	// profile allows.
	ErrTooManyRowErrors = errors.New("too many row errors")
)

// Deployed reports whether an index of a category currently exists on the
// target world.
type Deployed interface {
	IsDeployed(ctx context.Context, category string, index uint32) (bool, error)
}

type assumeDeployed struct{}

func (assumeDeployed) IsDeployed(context.Context, string, uint32) (bool, error) {
	return true, nil
}

// AssumeDeployed treats every index as deployed, so every delete emits its
// remove call.
var AssumeDeployed Deployed = assumeDeployed{}

// Recorder receives per-category run counters.
type Recorder interface {
	RowsLoaded(category string, n int)
	RowsSkipped(category string, n int)
	CallsEmitted(category string, n int)
	DeleteMissed(category string)
}

type nopRecorder struct{}

func (nopRecorder) RowsLoaded(string, int)   {}
func (nopRecorder) RowsSkipped(string, int)  {}
func (nopRecorder) CallsEmitted(string, int) {}
func (nopRecorder) DeleteMissed(string)      {}

// Plan is one orchestration request.
type Plan struct {
	Action   Action
	Full     bool
	Category Category
	Indices  []uint32
}

// FullInit plans an init of every category from the profile's statuses.
func FullInit() Plan {
	return Plan{Action: ActionInit, Full: true}
}

// Scoped plans an action over explicit indices of one category.
func Scoped(action Action, c Category, indices ...uint32) Plan {
	return Plan{Action: action, Category: c, Indices: indices}
}

func (p Plan) String() string {
	if p.Full {
		return "full init"
	}
	return fmt.Sprintf("%s %s %v", p.Action, p.Category, p.Indices)
}

// Result is the outcome of one plan.
type Result struct {
	Plan   Plan
	Buffer *ir.CallBuffer

	// Created and Deleted are the indexed rows whose calls were emitted.
	Created []Ref
	Deleted []Ref

	// Missed are the deletes that were skipped and logged.
	Missed []Ref

	// RowErrors counts content rows and sub-rows skipped during the run.
	RowErrors int
}

// Orchestrator builds call buffers from content.
type Orchestrator struct {
	loader   *content.Loader
	profile  settings.Profile
	full     content.Selection
	deployed Deployed
	limiter  *rate.Limiter
	recorder Recorder
	logger   *slog.Logger
	apiOpts  []admin.Option
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithDeployed sets the source used to decide whether a delete has anything
// to remove. The default is AssumeDeployed.
func WithDeployed(d Deployed) Option {
	return func(o *Orchestrator) { o.deployed = d }
}

// WithLimiter paces rows with l instead of the profile's rate.
func WithLimiter(l *rate.Limiter) Option {
	return func(o *Orchestrator) { o.limiter = l }
}

func WithRecorder(r Recorder) Option {
	return func(o *Orchestrator) { o.recorder = r }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// WithAdminOptions passes options to the builder facade of every run, e.g.
// admin.WithLiteral().
func WithAdminOptions(opts ...admin.Option) Option {
	return func(o *Orchestrator) { o.apiOpts = append(o.apiOpts, opts...) }
}

// New creates an orchestrator reading from loader under profile.
func New(loader *content.Loader, profile settings.Profile, opts ...Option) (*Orchestrator, error) {
	full, err := profile.Selection()
	if err != nil {
		return nil, fmt.Errorf("profile: %w", err)
	}
	o := &Orchestrator{
		loader:   loader,
		profile:  profile,
		full:     full,
		deployed: AssumeDeployed,
		recorder: nopRecorder{},
		logger:   slog.Default(),
	}
	if profile.RatePerSecond > 0 {
		o.limiter = rate.NewLimiter(rate.Limit(profile.RatePerSecond), 1)
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// InitAll runs a full init.
func (o *Orchestrator) InitAll(ctx context.Context) (*Result, error) {
	return o.Execute(ctx, FullInit())
}

// Revise deletes and recreates indices of c in one buffer.
func (o *Orchestrator) Revise(ctx context.Context, c Category, indices ...uint32) (*Result, error) {
	return o.Execute(ctx, Scoped(ActionRevise, c, indices...))
}

// Execute builds the call buffer for plan.
func (o *Orchestrator) Execute(ctx context.Context, plan Plan) (*Result, error) {
	buf := ir.NewCallBuffer()
	r := &run{
		ctx:         ctx,
		o:           o,
		api:         admin.New(buf, o.apiOpts...),
		res:         &Result{Plan: plan, Buffer: buf},
		baseSkipped: o.loader.Skipped(),
	}
	o.logger.Info("building call buffer", "plan", plan.String())

	if plan.Full {
		if plan.Action != ActionInit {
			return nil, fmt.Errorf("full %s: %w", plan.Action, ErrNotSupported)
		}
		for _, c := range Order {
			if err := r.init(c, o.full); err != nil {
				return nil, err
			}
		}
		return r.finish(), nil
	}

	c := plan.Category
	if !c.Indexed() {
		return nil, fmt.Errorf("scoped %s of %s: %w", plan.Action, c, ErrNotSupported)
	}
	if len(plan.Indices) == 0 {
		return nil, fmt.Errorf("scoped %s of %s: no indices", plan.Action, c)
	}
	switch plan.Action {
	case ActionInit:
		if err := r.scopedInit(c, plan.Indices); err != nil {
			return nil, err
		}
	case ActionDelete:
		if err := r.remove(c, plan.Indices); err != nil {
			return nil, err
		}
	case ActionRevise:
		if !c.Removable() {
			return nil, fmt.Errorf("revise %s: %w", c, ErrNotSupported)
		}
		if err := r.remove(c, plan.Indices); err != nil {
			return nil, err
		}
		if err := r.scopedInit(c, plan.Indices); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown action %q", plan.Action)
	}
	return r.finish(), nil
}

// run is the state of one Execute call.
type run struct {
	ctx context.Context
	o   *Orchestrator
	api *admin.API
	res *Result
	cat Category

	baseSkipped int
	subSkipped  int
}

func (r *run) finish() *Result {
	r.res.RowErrors = r.rowErrors()
	r.o.logger.Info("call buffer built",
		"plan", r.res.Plan.String(),
		"calls", r.res.Buffer.Len(),
		"created", len(r.res.Created),
		"deleted", len(r.res.Deleted),
		"missed", len(r.res.Missed),
		"row_errors", r.res.RowErrors)
	return r.res
}

func (r *run) rowErrors() int {
	return r.o.loader.Skipped() - r.baseSkipped + r.subSkipped
}

func (r *run) init(c Category, sel content.Selection) error {
	r.cat = c
	calls, skipped := r.res.Buffer.Len(), r.rowErrors()
	n, err := lifecycles[c].init(r, sel)
	if err != nil {
		return fmt.Errorf("init %s: %w", c, err)
	}
	skipped = r.rowErrors() - skipped
	r.o.recorder.RowsLoaded(c.String(), n)
	r.o.recorder.RowsSkipped(c.String(), skipped)
	r.o.recorder.CallsEmitted(c.String(), r.res.Buffer.Len()-calls)
	if n == 0 && skipped > 0 {
		r.o.logger.Warn("category has no valid rows", "category", c.String(), "skipped", skipped)
	}
	return r.checkRowErrors()
}

func (r *run) scopedInit(c Category, indices []uint32) error {
	before := len(r.res.Created)
	if err := r.init(c, content.ByIndex(indices...)); err != nil {
		return err
	}
	created := r.res.Created[before:]
	for _, idx := range indices {
		if !slices.Contains(created, Ref{Category: c, Index: idx}) {
			r.o.logger.Warn("no content row for index", "category", c.String(), "index", idx)
		}
	}
	return nil
}

func (r *run) remove(c Category, indices []uint32) error {
	r.cat = c
	lc := lifecycles[c]
	if lc.remove == nil {
		return fmt.Errorf("delete %s: %w", c, ErrNotSupported)
	}
	calls := r.res.Buffer.Len()
	if err := lc.remove(r, indices); err != nil {
		return fmt.Errorf("delete %s: %w", c, err)
	}
	r.o.recorder.CallsEmitted(c.String(), r.res.Buffer.Len()-calls)
	return nil
}

func (r *run) checkRowErrors() error {
	limit := r.o.profile.MaxRowErrors
	if n := r.rowErrors(); limit > 0 && n > limit {
		return fmt.Errorf("%w: %d rows skipped, limit is %d", ErrTooManyRowErrors, n, limit)
	}
	return nil
}

func (r *run) wait() error {
	if r.o.limiter == nil {
		return nil
	}
	return r.o.limiter.Wait(r.ctx)
}

// fatal reports whether a builder error must abort the run rather than skip
// a row. Encoder failures mean the signature table and the builders disagree,
// except for out-of-range values, which come from the content cells.
func fatal(err error) bool {
	var argErr *encoder.ArgError
	if errors.Is(err, encoder.ErrOutOfRange) {
		return false
	}
	return errors.Is(err, encoder.ErrNoSignature) ||
		errors.As(err, &argErr) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

// row emits the calls of one content row. A non-fatal error from build skips
// the row.
func (r *run) row(index uint32, build func() error) error {
	if err := r.wait(); err != nil {
		return err
	}
	if err := build(); err != nil {
		if fatal(err) {
			return fmt.Errorf("%s %d: %w", r.cat.Singular(), index, err)
		}
		r.subSkipped++
		r.o.logger.Warn("skipping content row", "category", r.cat.String(), "index", index, "reason", err.Error())
		return r.checkRowErrors()
	}
	if r.cat.Indexed() {
		r.res.Created = append(r.res.Created, Ref{Category: r.cat, Index: index})
	}
	return nil
}

// sub filters the error of a sub-entity call inside a row: non-fatal errors
// skip only that sub-entity.
func (r *run) sub(index uint32, what string, err error) error {
	if err == nil || fatal(err) {
		return err
	}
	r.subSkipped++
	r.o.logger.Warn("skipping sub-entity",
		"category", r.cat.String(),
		"index", index,
		"entity", what,
		"reason", err.Error())
	return nil
}

// delete emits the remove calls of one index, or logs a miss when the index
// is not deployed or del fails.
func (r *run) delete(index uint32, del func() error) error {
	ok, err := r.o.deployed.IsDeployed(r.ctx, r.cat.String(), index)
	if err != nil {
		return fmt.Errorf("%s %d: %w", r.cat.Singular(), index, err)
	}
	if !ok {
		r.miss(index, "not deployed")
		return nil
	}
	if err := r.wait(); err != nil {
		return err
	}
	if err := del(); err != nil {
		if fatal(err) {
			return fmt.Errorf("%s %d: %w", r.cat.Singular(), index, err)
		}
		r.miss(index, err.Error())
		return nil
	}
	r.res.Deleted = append(r.res.Deleted, Ref{Category: r.cat, Index: index})
	return nil
}

func (r *run) miss(index uint32, reason string) {
	ref := Ref{Category: r.cat, Index: index}
	r.res.Missed = append(r.res.Missed, ref)
	r.o.recorder.DeleteMissed(r.cat.String())
	r.o.logger.Warn("could not delete "+ref.String(), "category", r.cat.String(), "index", index, "reason", reason)
}
