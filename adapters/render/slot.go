package render

import (
	"sync"

	domainchart "peajes/domain/chart"
	"peajes/internal/errors"
	"peajes/ports"
)

// Slot names used by the dashboard.
const (
	Chart1 = "chart1"
	Chart2 = "chart2"
	Chart3 = "chart3"
)

// Image is a rendered chart together with the spec it was drawn from.
type Image struct {
	Spec        domainchart.Spec
	Data        []byte
	ContentType string
}

// Slot owns the last chart drawn for one position on the dashboard.
// Rendering replaces the previous image. Images handed to callers are
// never mutated after they are returned.
type Slot struct {
	name     string
	renderer ports.ChartRenderer

	mu      sync.Mutex
	current *Image
}

// NewSlot creates an empty slot.
func NewSlot(name string, renderer ports.ChartRenderer) *Slot {
	return &Slot{name: name, renderer: renderer}
}

func (s *Slot) Name() string { return s.name }

// Render draws spec, disposes the previous image and keeps the new one.
// On failure the previous image is left in place.
func (s *Slot) Render(spec domainchart.Spec) (*Image, error) {
	data, err := s.renderer.Render(spec)
	if err != nil {
		return nil, errors.Wrapf(err, "rendering %s", s.name)
	}
	img := &Image{Spec: spec, Data: data, ContentType: s.renderer.ContentType()}

	s.mu.Lock()
	s.disposeLocked()
	s.current = img
	s.mu.Unlock()
	return img, nil
}

// Current returns the image the slot holds, if any.
func (s *Slot) Current() (*Image, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, s.current != nil
}

// Dispose releases the held image.
func (s *Slot) Dispose() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disposeLocked()
}

func (s *Slot) disposeLocked() {
	s.current = nil
}

// Board is the fixed set of named slots of one dashboard.
type Board struct {
	slots map[string]*Slot
	order []string
}

// NewBoard creates one slot per name. With no names the three dashboard
// slots are created.
func NewBoard(renderer ports.ChartRenderer, names ...string) *Board {
	if len(names) == 0 {
		names = []string{Chart1, Chart2, Chart3}
	}
	b := &Board{slots: make(map[string]*Slot, len(names))}
	for _, name := range names {
		if _, dup := b.slots[name]; dup {
			continue
		}
		b.slots[name] = NewSlot(name, renderer)
		b.order = append(b.order, name)
	}
	return b
}

// Slot returns the named slot.
func (b *Board) Slot(name string) (*Slot, error) {
	s, ok := b.slots[name]
	if !ok {
		return nil, errors.NotFound("chart slot " + name)
	}
	return s, nil
}

// Names lists the slots in creation order.
func (b *Board) Names() []string {
	return append([]string(nil), b.order...)
}

// Dispose releases every slot's image.
func (b *Board) Dispose() {
	for _, s := range b.slots {
		s.Dispose()
	}
}
