package introspection

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/devicelink/devicelink-go/pkg/ifaceparse"
	"github.com/devicelink/devicelink-go/pkg/log"
	"github.com/devicelink/devicelink-go/pkg/model"
)

// ErrOwnershipMismatch is returned when a payload travels against the
// ownership of its interface.
var ErrOwnershipMismatch = errors.New("interface ownership mismatch")

// Config configures a Registry.
type Config struct {
	// DeviceID is stamped on emitted events.
	DeviceID string

	// Logger receives operational logs. Nil selects slog.Default().
	Logger *slog.Logger

	// EventLogger receives VALIDATION and STATE events. Nil disables capture.
	EventLogger log.Logger
}

// Registry is a thread-safe set of interfaces keyed by name.
type Registry struct {
	mu         sync.RWMutex
	interfaces map[string]*model.Interface

	deviceID string
	logger   *slog.Logger
	events   log.Logger
}

// New creates an empty registry.
func New(cfg Config) *Registry {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Registry{
		interfaces: make(map[string]*model.Interface),
		deviceID:   cfg.DeviceID,
		logger:     cfg.Logger.With(slog.String("component", "introspection")),
		events:     log.OrNoop(cfg.EventLogger),
	}
}

// Add registers iface, replacing any interface with the same name.
func (r *Registry) Add(iface *model.Interface) {
	r.mu.Lock()
	prev, replaced := r.interfaces[iface.Name()]
	r.interfaces[iface.Name()] = iface
	r.mu.Unlock()

	oldState := ""
	if replaced {
		oldState = prev.String()
	}
	r.logger.Info("interface added", slog.String("interface", iface.String()), slog.Bool("replaced", replaced))
	r.emitState(iface.Name(), oldState, iface.String(), "added")
}

// AddFromDir loads every definition file in dir and registers the
// interfaces. Nothing is registered if any file fails to load.
func (r *Registry) AddFromDir(dir string) error {
	ifaces, err := ifaceparse.LoadDir(dir)
	if err != nil {
		r.logger.Error("loading interfaces failed", slog.String("dir", dir), slog.Any("error", err))
		r.emit(log.Event{
			Category: log.CategoryError,
			Error:    &log.ErrorEventData{Layer: log.LayerSchema, Message: err.Error(), Context: "load " + dir},
		})
		return err
	}
	for _, iface := range ifaces {
		r.Add(iface)
	}
	return nil
}

// Remove unregisters the named interface. It reports whether it was present.
func (r *Registry) Remove(name string) bool {
	r.mu.Lock()
	prev, ok := r.interfaces[name]
	delete(r.interfaces, name)
	r.mu.Unlock()

	if ok {
		r.logger.Info("interface removed", slog.String("interface", prev.String()))
		r.emitState(name, prev.String(), "", "removed")
	}
	return ok
}

// Get returns the named interface, or nil.
func (r *Registry) Get(name string) *model.Interface {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.interfaces[name]
}

// All returns every interface sorted by name.
func (r *Registry) All() []*model.Interface {
	r.mu.RLock()
	out := make([]*model.Interface, 0, len(r.interfaces))
	for _, iface := range r.interfaces {
		out = append(out, iface)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// ServerOwned returns the server-owned interfaces sorted by name.
func (r *Registry) ServerOwned() []*model.Interface {
	var out []*model.Interface
	for _, iface := range r.All() {
		if iface.IsServerOwned() {
			out = append(out, iface)
		}
	}
	return out
}

// Len returns the number of registered interfaces.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.interfaces)
}

// String returns the introspection string.
func (r *Registry) String() string {
	all := r.All()
	tokens := make([]string, 0, len(all))
	for _, iface := range all {
		tokens = append(tokens, iface.String())
	}
	return strings.Join(tokens, ";")
}

// lookup returns the named interface or an error wrapping
// model.ErrInterfaceNotFound.
func (r *Registry) lookup(name string) (*model.Interface, error) {
	iface := r.Get(name)
	if iface == nil {
		return nil, fmt.Errorf("%w: %s", model.ErrInterfaceNotFound, name)
	}
	return iface, nil
}

// Reliability returns the delivery class for path in the named interface.
func (r *Registry) Reliability(name, path string) (model.Reliability, error) {
	iface, err := r.lookup(name)
	if err != nil {
		return 0, err
	}
	return iface.Reliability(path)
}

// ValidateOutgoing checks a payload the device is about to publish.
// A zero timestamp means no timestamp.
func (r *Registry) ValidateOutgoing(name, path string, payload any, timestamp time.Time) error {
	return r.validate(log.DirectionOut, name, path, func(iface *model.Interface) error {
		return iface.Validate(path, payload, timestamp)
	})
}

// ValidateIncoming checks a payload received from the server.
func (r *Registry) ValidateIncoming(name, path string, payload any, timestamp time.Time) error {
	return r.validate(log.DirectionIn, name, path, func(iface *model.Interface) error {
		return iface.Validate(path, payload, timestamp)
	})
}

// ValidateUnset checks that the device may unset the property at path.
func (r *Registry) ValidateUnset(name, path string) error {
	return r.validateUnset(log.DirectionOut, name, path)
}

// ValidateIncomingUnset checks an unset received from the server.
func (r *Registry) ValidateIncomingUnset(name, path string) error {
	return r.validateUnset(log.DirectionIn, name, path)
}

func (r *Registry) validateUnset(dir log.Direction, name, path string) error {
	err := r.check(dir, name, func(iface *model.Interface) error {
		return iface.ValidateUnset(path)
	})
	r.emitValidation(dir, name, path, err, true)
	return err
}

func (r *Registry) validate(dir log.Direction, name, path string, fn func(*model.Interface) error) error {
	err := r.check(dir, name, fn)
	r.emitValidation(dir, name, path, err, false)
	return err
}

// check resolves the interface, enforces ownership for the direction and
// runs fn.
func (r *Registry) check(dir log.Direction, name string, fn func(*model.Interface) error) error {
	iface, err := r.lookup(name)
	if err != nil {
		return err
	}
	if dir == log.DirectionOut && iface.IsServerOwned() {
		return fmt.Errorf("%w: cannot publish on server-owned interface %s", ErrOwnershipMismatch, name)
	}
	if dir == log.DirectionIn && !iface.IsServerOwned() {
		return fmt.Errorf("%w: cannot receive on device-owned interface %s", ErrOwnershipMismatch, name)
	}
	return fn(iface)
}

func (r *Registry) emitValidation(dir log.Direction, name, path string, err error, unset bool) {
	ev := &log.ValidationEvent{Valid: err == nil, Unset: unset}
	if err != nil {
		ev.Cause = err.Error()
		if ve, ok := model.AsValidationError(err); ok {
			ev.Kind = ve.Kind.Error()
		} else {
			ev.Kind = rootCause(err)
		}
		r.logger.Debug("payload rejected",
			slog.String("interface", name),
			slog.String("path", path),
			slog.String("direction", dir.String()),
			slog.Any("error", err))
	}
	r.emit(log.Event{
		Direction:  dir,
		Category:   log.CategoryValidation,
		Interface:  name,
		Path:       path,
		Validation: ev,
	})
}

func (r *Registry) emitState(name, oldState, newState, reason string) {
	r.emit(log.Event{
		Category:  log.CategoryState,
		Interface: name,
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntityIntrospection,
			OldState: oldState,
			NewState: newState,
			Reason:   reason,
		},
	})
}

func (r *Registry) emit(ev log.Event) {
	ev.Timestamp = time.Now()
	ev.DeviceID = r.deviceID
	ev.Layer = log.LayerSchema
	r.events.Log(ev)
}

// rootCause names the sentinel at the bottom of a wrapped lookup or
// ownership error.
func rootCause(err error) string {
	switch {
	case errors.Is(err, model.ErrInterfaceNotFound):
		return model.ErrInterfaceNotFound.Error()
	case errors.Is(err, ErrOwnershipMismatch):
		return ErrOwnershipMismatch.Error()
	default:
		return err.Error()
	}
}
