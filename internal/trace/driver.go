package trace

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mabhi256/jalias/internal/heap"
	"github.com/mabhi256/jalias/internal/monitor"
)

var ErrInvalidRate = errors.New("minimum rate is 1")

type Options struct {
	QueryRate   int // apply monitors after every QueryRate-th event
	CollectRate int // sample collectors before every CollectRate-th event
	UpdateRate  int // report progress every UpdateRate-th event

	Collectors []Collector
	Progress   func(done, total int)
	Logger     *slog.Logger
}

func DefaultOptions() Options {
	return Options{QueryRate: 1, CollectRate: 1, UpdateRate: 1000}
}

func (o Options) validate() error {
	for name, rate := range map[string]int{
		"query rate":   o.QueryRate,
		"collect rate": o.CollectRate,
		"update rate":  o.UpdateRate,
	} {
		if rate < 1 {
			return fmt.Errorf("%s %d: %w", name, rate, ErrInvalidRate)
		}
	}
	return nil
}

// Outcome is everything a run produced. Deallocated and Remaining are kept
// apart: remaining objects were never deallocated by the trace.
type Outcome struct {
	RunID       string
	Events      int
	Templates   []string
	Deallocated map[string]heap.Result
	Remaining   map[string]heap.Result
	Samples     map[string][]Sample
	Anomalies   Anomalies
	Elapsed     time.Duration
}

// Driver replays one trace through a fresh model. A Driver is not safe for
// concurrent use; independent traces get independent drivers.
type Driver struct {
	model  *heap.Model
	interp *Interpreter
	opts   Options
	log    *slog.Logger
}

func NewDriver(templates []monitor.Template, opts Options) (*Driver, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	model, err := heap.NewModel(templates)
	if err != nil {
		return nil, err
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Driver{
		model:  model,
		interp: NewInterpreter(model, log),
		opts:   opts,
		log:    log,
	}, nil
}

func (d *Driver) Model() *heap.Model { return d.model }

// Run processes every event in order. The first error aborts the run and is
// returned as a ParseError naming the offending line.
func (d *Driver) Run(events []Event) (*Outcome, error) {
	runID := uuid.Must(uuid.NewV7()).String()
	start := time.Now()
	samples := make(map[string][]Sample, len(d.opts.Collectors))
	total := len(events)

	d.log.Debug("run started", "run", runID, "events", total,
		"query_rate", d.opts.QueryRate, "collect_rate", d.opts.CollectRate)

	for i, ev := range events {
		if d.opts.Progress != nil && i%d.opts.UpdateRate == 0 {
			d.opts.Progress(i, total)
		}
		if i%d.opts.CollectRate == 0 {
			if err := d.collect(samples, float64(i)/float64(total)); err != nil {
				return nil, lineError(ev, err)
			}
		}

		if err := d.interp.Process(ev); err != nil {
			return nil, lineError(ev, fmt.Errorf("%s: %w", ev.Op, err))
		}

		if i%d.opts.QueryRate == 0 {
			if err := d.applyMonitors(); err != nil {
				return nil, lineError(ev, err)
			}
		}
	}
	if err := d.collect(samples, 1.0); err != nil {
		return nil, fmt.Errorf("final sample: %w", err)
	}
	if d.opts.Progress != nil {
		d.opts.Progress(total, total)
	}

	names := make([]string, 0, len(d.model.Templates()))
	for _, t := range d.model.Templates() {
		names = append(names, t.Name)
	}

	out := &Outcome{
		RunID:       runID,
		Events:      total,
		Templates:   names,
		Deallocated: d.model.Results(),
		Remaining:   d.model.Remaining(),
		Samples:     samples,
		Anomalies:   d.interp.Anomalies(),
		Elapsed:     time.Since(start),
	}
	d.log.Debug("run finished", "run", runID, "deallocated", len(out.Deallocated),
		"remaining", len(out.Remaining), "anomalies", out.Anomalies.Total())
	return out, nil
}

func lineError(ev Event, err error) error {
	return ParseError{Line: ev.Line, LineNum: ev.LineNum, Err: err}
}

// applyMonitors advances every monitor of every live object by one step.
func (d *Driver) applyMonitors() error {
	for _, id := range d.model.ObjIDs() {
		mons, err := d.model.Monitors(id)
		if err != nil {
			return err
		}
		for _, m := range mons {
			if err := m.Apply(); err != nil {
				return err
			}
		}
	}
	return nil
}

func (d *Driver) collect(samples map[string][]Sample, progress float64) error {
	for _, c := range d.opts.Collectors {
		values, err := c.Collect(d.model)
		if err != nil {
			return fmt.Errorf("collector %s: %w", c.Name(), err)
		}
		samples[c.Name()] = append(samples[c.Name()], Sample{Progress: progress, Values: values})
	}
	return nil
}
