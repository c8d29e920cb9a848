package app

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"peajes/adapters/render"
	"peajes/internal"
	"peajes/internal/config"
	"peajes/internal/errors"
	"peajes/internal/sequence"
	"peajes/ports"
)

// View identifies one dashboard section.
type View string

const (
	ViewEDA     View = "eda"
	ViewModels  View = "models"
	ViewTraffic View = "trafico"
	ViewStation View = "peaje"
)

// Views lists the sections in initialization order.
var Views = []View{ViewEDA, ViewModels, ViewTraffic, ViewStation}

// ParseView validates a view name.
func ParseView(s string) (View, error) {
	for _, v := range Views {
		if string(v) == s {
			return v, nil
		}
	}
	return "", errors.NotFound("view " + s)
}

// Filter is the state of the dashboard selectors. Client identifies the
// caller whose selector changes are sequenced; an empty Client makes the
// request one-shot.
type Filter struct {
	Year   string `json:"year,omitempty"`
	Peaje  string `json:"peaje,omitempty"`
	Client string `json:"-"`
}

// key is the part of the filter view depends on.
func (f Filter) key(view View) string {
	switch view {
	case ViewEDA:
		return f.Year
	case ViewStation:
		return f.Peaje
	}
	return ""
}

// Outcome is the result of computing one view. A failed view carries Err
// and the user-facing Message; Data is nil.
type Outcome struct {
	View     View        `json:"view"`
	Resource string      `json:"resource"`
	Token    int64       `json:"token"`
	Data     interface{} `json:"data,omitempty"`
	Message  string      `json:"error,omitempty"`
	Err      error       `json:"-"`
}

// Failed reports whether the view could not be computed.
func (o *Outcome) Failed() bool {
	return o.Err != nil
}

// Dispatcher maps a (view, filter) pair to the loader and compute function
// of that view.
type Dispatcher struct {
	loader  ports.ResourceLoader
	catalog config.Catalog
	board   *render.Board
	guard   *sequence.Guard
	logger  *internal.Logger
}

// NewDispatcher creates a dispatcher. A nil board gets one backed by the PNG
// renderer; a nil logger uses internal.DefaultLogger.
func NewDispatcher(loader ports.ResourceLoader, catalog config.Catalog, board *render.Board, logger *internal.Logger) *Dispatcher {
	if board == nil {
		board = render.NewBoard(render.NewPNGRenderer())
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Dispatcher{
		loader:  loader,
		catalog: catalog,
		board:   board,
		guard:   sequence.NewGuard(),
		logger:  logger,
	}
}

// Catalog returns the catalog the dispatcher resolves names against.
func (d *Dispatcher) Catalog() config.Catalog {
	return d.catalog
}

// Board returns the chart slots.
func (d *Dispatcher) Board() *render.Board {
	return d.board
}

// Dispatch computes one view for the given filter. Load and compute failures
// are reported in the outcome and are not returned as errors. The returned
// error is set for requests that cannot be served at all: an unknown
// station, a year outside the matrix, or a response superseded by the same
// client's newer request with a different filter.
//
// Only successful outcomes become the client's current state. A response
// overtaken by a newer request with the same filter is returned but not
// committed.
func (d *Dispatcher) Dispatch(ctx context.Context, view View, filter Filter) (*Outcome, error) {
	if filter.Client == "" {
		return d.compute(ctx, view, filter)
	}

	slot := slotName(filter.Client, view)
	key := filter.key(view)
	token := d.guard.Begin(slot, key)
	out, err := d.compute(ctx, view, filter)
	if err != nil {
		return nil, err
	}
	out.Token = token

	if !out.Failed() && d.guard.Commit(slot, token, out) {
		return out, nil
	}
	if d.guard.Superseded(slot, token, key) {
		d.logger.Debug("[Dispatcher] %s result %d discarded, filter changed", slot, token)
		return nil, errors.Stale(slot, token)
	}
	return out, nil
}

// Current returns the last successful outcome of a view for client.
func (d *Dispatcher) Current(client string, view View) (*Outcome, bool) {
	v, ok := d.guard.Current(slotName(client, view))
	if !ok {
		return nil, false
	}
	return v.(*Outcome), true
}

func slotName(client string, view View) string {
	return client + "/" + string(view)
}

// LoadAll computes every view concurrently. Each view fails on its own,
// request errors included; the slice is always in Views order. The only
// error returned is for an unknown station.
func (d *Dispatcher) LoadAll(ctx context.Context, filter Filter) ([]*Outcome, error) {
	if filter.Peaje == "" {
		if names := d.catalog.StationNames(); len(names) > 0 {
			filter.Peaje = names[0]
		}
	}
	if _, ok := d.catalog.StationFile(filter.Peaje); !ok {
		return nil, errors.NotFound("peaje " + filter.Peaje)
	}

	start := time.Now()
	results := make([]*Outcome, len(Views))

	eg, egCtx := errgroup.WithContext(ctx)
	for i, view := range Views {
		eg.Go(func() error {
			out, err := d.Dispatch(egCtx, view, filter)
			if err != nil {
				out = d.rejected(view, err)
			}
			results[i] = out
			return nil
		})
	}
	_ = eg.Wait()

	d.logger.Info("[Dispatcher] loaded %d views in %.2fms", len(results), float64(time.Since(start).Nanoseconds())/1e6)
	return results, nil
}

// RenderChart draws one EDA chart into its slot.
func (d *Dispatcher) RenderChart(ctx context.Context, slot string, filter Filter) (*render.Image, error) {
	s, err := d.board.Slot(slot)
	if err != nil {
		return nil, err
	}
	out, err := d.Dispatch(ctx, ViewEDA, filter)
	if err != nil {
		return nil, err
	}
	if out.Failed() {
		return nil, out.Err
	}
	spec, ok := out.Data.(*EDAView).Charts[slot]
	if !ok {
		return nil, errors.NotFound("chart " + slot)
	}
	return s.Render(*spec)
}

func (d *Dispatcher) compute(ctx context.Context, view View, filter Filter) (*Outcome, error) {
	switch view {
	case ViewEDA:
		name := d.catalog.Resources.Presets
		set, err := d.loader.LoadPresets(ctx, name)
		if err != nil {
			return d.failed(view, name, err), nil
		}
		data, err := ComputeEDA(set, d.catalog.Months, d.catalog.Years, filter.Year)
		if err != nil {
			return nil, err
		}
		return d.succeeded(view, name, data), nil

	case ViewModels:
		name := d.catalog.Resources.ModelsSummary
		t, err := d.loader.LoadTable(ctx, name)
		if err != nil {
			return d.failed(view, name, err), nil
		}
		data, err := ComputeModelsSummary(t, name)
		if err != nil {
			return d.failed(view, name, err), nil
		}
		return d.succeeded(view, name, data), nil

	case ViewTraffic:
		name := d.catalog.Resources.Traffic
		t, err := d.loader.LoadTable(ctx, name)
		if err != nil {
			return d.failed(view, name, err), nil
		}
		data, err := ComputeTrafficSummary(t, name)
		if err != nil {
			return d.failed(view, name, err), nil
		}
		return d.succeeded(view, name, data), nil

	case ViewStation:
		name, ok := d.catalog.StationFile(filter.Peaje)
		if !ok {
			return nil, errors.NotFound("peaje " + filter.Peaje)
		}
		t, err := d.loader.LoadTable(ctx, name)
		if err != nil {
			return d.failed(view, name, err), nil
		}
		data, err := ComputeStationModel(t, filter.Peaje, name)
		if err != nil {
			return d.failed(view, name, err), nil
		}
		return d.succeeded(view, name, data), nil
	}
	return nil, errors.NotFound("view " + string(view))
}

func (d *Dispatcher) failed(view View, resource string, err error) *Outcome {
	d.logger.Warn("[Dispatcher] %s view failed on %s: %v", view, resource, err)
	return &Outcome{View: view, Resource: resource, Err: err, Message: UserMessage(view, resource, err)}
}

// rejected records a request error as the view's outcome.
func (d *Dispatcher) rejected(view View, err error) *Outcome {
	d.logger.Debug("[Dispatcher] %s view rejected: %v", view, err)
	return &Outcome{View: view, Err: err, Message: RequestMessage(err)}
}

func (d *Dispatcher) succeeded(view View, resource string, data interface{}) *Outcome {
	d.logger.Debug("[Dispatcher] %s view computed from %s", view, resource)
	return &Outcome{View: view, Resource: resource, Data: data}
}
