package connection

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/devicelink/devicelink-go/pkg/log"
)

// Connection errors.
var (
	ErrConnectionClosed = errors.New("connection closed")
	ErrAlreadyConnected = errors.New("already connected")
)

// DefaultAttemptTimeout bounds a single reconnection attempt.
const DefaultAttemptTimeout = 30 * time.Second

// State represents the connection state.
type State uint8

const (
	// StateDisconnected indicates no active connection.
	StateDisconnected State = iota

	// StateConnecting indicates a connection attempt is in progress.
	StateConnecting

	// StateConnected indicates an active connection.
	StateConnected

	// StateReconnecting indicates automatic reconnection is in progress.
	StateReconnecting

	// StateClosed indicates the connection manager has been closed.
	StateClosed
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "DISCONNECTED"
	case StateConnecting:
		return "CONNECTING"
	case StateConnected:
		return "CONNECTED"
	case StateReconnecting:
		return "RECONNECTING"
	case StateClosed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

// ConnectFunc is called to establish a connection.
// It should return nil on success or an error on failure.
type ConnectFunc func(ctx context.Context) error

// ManagerConfig configures a Manager. Zero values select defaults.
type ManagerConfig struct {
	// Backoff configures retry delays. Base and Max are in seconds.
	Backoff BackoffConfig `yaml:"backoff"`

	// AttemptTimeout bounds each reconnection attempt.
	AttemptTimeout time.Duration `yaml:"attempt_timeout"`

	// DeviceID is stamped on emitted events.
	DeviceID string `yaml:"-"`

	// Logger receives operational logs. Nil selects slog.Default().
	Logger *slog.Logger `yaml:"-"`

	// EventLogger receives STATE events. Nil disables capture.
	EventLogger log.Logger `yaml:"-"`
}

// Manager manages connection lifecycle with automatic reconnection.
//
// Each failed reconnection attempt takes exactly one delay from the Backoff,
// interprets it as seconds, arms a Timer with it and retries once the timer
// has elapsed. A successful connection resets the Backoff.
type Manager struct {
	mu sync.RWMutex

	state State

	// backoff is guarded by mu; the reconnect loop is its only writer
	// besides Connect's reset.
	backoff *Backoff

	// timer is owned by the reconnect loop.
	timer *Timer

	connectFn      ConnectFunc
	autoReconnect  bool
	attemptTimeout time.Duration
	sessionID      string
	deviceID       string

	logger *slog.Logger
	events log.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// reconnectCh signals that reconnection should start.
	reconnectCh chan struct{}

	onStateChange  func(oldState, newState State)
	onConnected    func()
	onDisconnected func()
	onReconnecting func(attempt int, delay time.Duration)
}

// NewManager creates a connection manager with default settings.
func NewManager(connectFn ConnectFunc) *Manager {
	return NewManagerWithConfig(connectFn, ManagerConfig{Backoff: BackoffConfig{Jitter: true}})
}

// NewManagerWithConfig creates a connection manager with custom settings.
func NewManagerWithConfig(connectFn ConnectFunc, cfg ManagerConfig) *Manager {
	if cfg.AttemptTimeout <= 0 {
		cfg.AttemptTimeout = DefaultAttemptTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Manager{
		state:          StateDisconnected,
		backoff:        NewBackoffWithConfig(cfg.Backoff),
		timer:          NewTimer(),
		connectFn:      connectFn,
		autoReconnect:  true,
		attemptTimeout: cfg.AttemptTimeout,
		deviceID:       cfg.DeviceID,
		logger:         cfg.Logger.With(slog.String("component", "connection")),
		events:         log.OrNoop(cfg.EventLogger),
		ctx:            ctx,
		cancel:         cancel,
		reconnectCh:    make(chan struct{}, 1),
	}
}

// State returns the current connection state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// IsConnected returns true if currently connected.
func (m *Manager) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state == StateConnected
}

// SessionID returns the identifier of the current or last session, or an
// empty string before the first successful connection.
func (m *Manager) SessionID() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessionID
}

// SetAutoReconnect enables or disables automatic reconnection.
func (m *Manager) SetAutoReconnect(enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.autoReconnect = enabled
}

// Connect performs a single connection attempt.
func (m *Manager) Connect(ctx context.Context) error {
	m.mu.Lock()
	if m.state == StateConnected {
		m.mu.Unlock()
		return ErrAlreadyConnected
	}
	if m.state == StateClosed {
		m.mu.Unlock()
		return ErrConnectionClosed
	}
	oldState := m.state
	m.state = StateConnecting
	m.mu.Unlock()

	m.notifyState(oldState, StateConnecting, "")

	err := m.connectFn(ctx)

	m.mu.Lock()
	if err != nil {
		m.state = StateDisconnected
		m.mu.Unlock()
		m.notifyState(StateConnecting, StateDisconnected, err.Error())
		return err
	}
	m.markConnectedLocked()
	m.mu.Unlock()

	m.notifyState(StateConnecting, StateConnected, "")
	if cb := m.connectedCallback(); cb != nil {
		cb()
	}
	return nil
}

// Disconnect closes the connection.
// If autoReconnect is enabled, reconnection will be attempted.
func (m *Manager) Disconnect() {
	m.lose("disconnect requested")
}

// NotifyConnectionLost should be called when a connection loss is detected.
// This triggers automatic reconnection if enabled.
func (m *Manager) NotifyConnectionLost() {
	m.lose("connection lost")
}

func (m *Manager) lose(reason string) {
	m.mu.Lock()
	if m.state != StateConnected {
		m.mu.Unlock()
		return
	}
	oldState := m.state
	autoReconnect := m.autoReconnect
	if autoReconnect {
		m.state = StateReconnecting
	} else {
		m.state = StateDisconnected
	}
	newState := m.state
	onDisconnected := m.onDisconnected
	m.mu.Unlock()

	m.notifyState(oldState, newState, reason)
	if onDisconnected != nil {
		onDisconnected()
	}

	if autoReconnect {
		m.triggerReconnect()
	}
}

// Reconnect schedules background reconnection from the disconnected state,
// for example after a failed initial Connect. It works regardless of the
// auto-reconnect setting.
func (m *Manager) Reconnect() error {
	m.mu.Lock()
	switch m.state {
	case StateClosed:
		m.mu.Unlock()
		return ErrConnectionClosed
	case StateConnected:
		m.mu.Unlock()
		return ErrAlreadyConnected
	case StateConnecting:
		m.mu.Unlock()
		return nil
	case StateReconnecting:
		m.mu.Unlock()
		m.triggerReconnect()
		return nil
	}
	oldState := m.state
	m.state = StateReconnecting
	m.mu.Unlock()

	m.notifyState(oldState, StateReconnecting, "reconnect requested")
	m.triggerReconnect()
	return nil
}

// StartReconnectLoop starts the background reconnection loop.
// Must be called once before reconnection will work.
func (m *Manager) StartReconnectLoop() {
	m.wg.Add(1)
	go m.reconnectLoop()
}

// Close shuts down the connection manager and waits for the loop to exit.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.state == StateClosed {
		m.mu.Unlock()
		return
	}
	oldState := m.state
	m.state = StateClosed
	m.mu.Unlock()

	m.notifyState(oldState, StateClosed, "")

	m.cancel()
	m.wg.Wait()
}

func (m *Manager) triggerReconnect() {
	select {
	case m.reconnectCh <- struct{}{}:
	default:
		// Already pending
	}
}

func (m *Manager) reconnectLoop() {
	defer m.wg.Done()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-m.reconnectCh:
			m.attemptReconnect()
		}
	}
}

// attemptReconnect retries until connected, closed or cancelled.
func (m *Manager) attemptReconnect() {
	for {
		m.mu.Lock()
		if m.state == StateClosed || m.state == StateConnected {
			m.mu.Unlock()
			return
		}
		delay := Seconds(m.backoff.Next())
		attempt := m.backoff.Attempts()
		onReconnecting := m.onReconnecting
		m.mu.Unlock()

		m.logger.Debug("reconnect scheduled", slog.Int("attempt", attempt), slog.Duration("delay", delay))
		m.emit(log.StateChangeEvent{
			Entity:   log.StateEntityConnection,
			OldState: StateReconnecting.String(),
			NewState: StateReconnecting.String(),
			Attempt:  attempt,
			Delay:    delay,
		})
		if onReconnecting != nil {
			onReconnecting(attempt, delay)
		}

		if !m.wait(delay) {
			return
		}

		m.mu.RLock()
		state := m.state
		m.mu.RUnlock()
		if state == StateClosed || state == StateConnected {
			return
		}

		ctx, cancel := context.WithTimeout(m.ctx, m.attemptTimeout)
		err := m.connectFn(ctx)
		cancel()

		if err != nil {
			m.logger.Info("reconnect attempt failed", slog.Int("attempt", attempt), slog.Any("error", err))
			continue
		}

		m.mu.Lock()
		if m.state == StateClosed {
			m.mu.Unlock()
			return
		}
		oldState := m.state
		m.markConnectedLocked()
		onConnected := m.onConnected
		m.mu.Unlock()

		m.notifyState(oldState, StateConnected, "")
		if onConnected != nil {
			onConnected()
		}
		return
	}
}

// wait arms the timer with d and blocks until it elapses. It returns false
// if the manager was closed first.
func (m *Manager) wait(d time.Duration) bool {
	if d <= 0 {
		return m.ctx.Err() == nil
	}

	m.timer.Start(d)
	for {
		elapsed, err := m.timer.IsElapsed()
		if err != nil || elapsed {
			return m.ctx.Err() == nil
		}
		left, _ := m.timer.Remaining()
		if left < time.Millisecond {
			left = time.Millisecond
		}

		select {
		case <-m.ctx.Done():
			return false
		case <-time.After(left):
		}
	}
}

// markConnectedLocked must be called with mu held.
func (m *Manager) markConnectedLocked() {
	m.state = StateConnected
	m.backoff.Reset()
	m.sessionID = uuid.NewString()
}

func (m *Manager) connectedCallback() func() {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.onConnected
}

func (m *Manager) notifyState(oldState, newState State, reason string) {
	m.mu.RLock()
	onStateChange := m.onStateChange
	m.mu.RUnlock()

	attrs := []any{slog.String("from", oldState.String()), slog.String("to", newState.String())}
	if reason != "" {
		attrs = append(attrs, slog.String("reason", reason))
	}
	m.logger.Info("connection state changed", attrs...)

	m.emit(log.StateChangeEvent{
		Entity:   log.StateEntityConnection,
		OldState: oldState.String(),
		NewState: newState.String(),
		Reason:   reason,
	})

	if onStateChange != nil {
		onStateChange(oldState, newState)
	}
}

func (m *Manager) emit(sc log.StateChangeEvent) {
	m.events.Log(log.Event{
		Timestamp:   time.Now(),
		SessionID:   m.SessionID(),
		DeviceID:    m.deviceID,
		Layer:       log.LayerConnection,
		Category:    log.CategoryState,
		StateChange: &sc,
	})
}

// OnStateChange sets a callback for state changes.
func (m *Manager) OnStateChange(fn func(oldState, newState State)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onStateChange = fn
}

// OnConnected sets a callback for successful connection.
func (m *Manager) OnConnected(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onConnected = fn
}

// OnDisconnected sets a callback for disconnection.
func (m *Manager) OnDisconnected(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onDisconnected = fn
}

// OnReconnecting sets a callback invoked before each reconnection wait.
func (m *Manager) OnReconnecting(fn func(attempt int, delay time.Duration)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onReconnecting = fn
}

// BackoffAttempts returns the number of reconnection attempts since the
// last successful connection.
func (m *Manager) BackoffAttempts() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.backoff.Attempts()
}
