package scroll

import (
	"github.com/beevik/etree"
	"go.uber.org/zap"
)

// Recorder remembers every requested offset.
type Recorder struct {
	Offsets []float64
}

func (r *Recorder) ScrollTo(y float64) {
	r.Offsets = append(r.Offsets, y)
}

// Last returns most recent offset.
func (r *Recorder) Last() (float64, bool) {
	if len(r.Offsets) == 0 {
		return 0, false
	}
	return r.Offsets[len(r.Offsets)-1], true
}

// LogHandler reports scroll requests to the log, used when simulating
// activations outside of browser.
type LogHandler struct {
	Log *zap.Logger
}

func (h LogHandler) ScrollTo(y float64) {
	h.Log.Info("Scrolling viewport", zap.Float64("y", y))
}

// Registry keeps targets attached to a document and dispatches clicks the
// way browser event bubbling would.
type Registry struct {
	bound   map[*etree.Element]*Target
	targets []*Target
}

func NewRegistry() *Registry {
	return &Registry{bound: make(map[*etree.Element]*Target)}
}

// Bind makes target reachable from its trigger element.
func (r *Registry) Bind(t *Target) {
	r.bound[t.Trigger()] = t
	r.targets = append(r.targets, t)
}

// Targets returns bound targets in binding order.
func (r *Registry) Targets() []*Target {
	return r.targets
}

// Lookup finds target whose trigger is el or its closest ancestor.
func (r *Registry) Lookup(el *etree.Element) *Target {
	for p := el; p != nil; p = p.Parent() {
		if t, ok := r.bound[p]; ok {
			return t
		}
	}
	return nil
}

// Click activates target el belongs to. ok is false when el does not belong
// to any target or target is stale.
func (r *Registry) Click(el *etree.Element) (float64, bool) {
	t := r.Lookup(el)
	if t == nil {
		return 0, false
	}
	return t.Activate()
}
