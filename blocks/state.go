package blocks

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/arloliu/go-i3c/logger"
)

// ErrInvalidTransition indicates a session state change the state machine does not allow.
var ErrInvalidTransition = errors.New("invalid session state transition")

// State represents the stage of a block session.
type State uint32

// Block session states.
const (
	// IdleState indicates that no START record has been sent yet.
	IdleState State = iota
	// StartedState indicates that the session is open and blocks may run.
	StartedState
	// LastBlockMarkedState indicates that the LAST_BLOCK record was sent and the final block may run.
	LastBlockMarkedState
	// StoppedState indicates that the STOP record was sent. It is terminal.
	StoppedState
	// AbortedState indicates that the session failed. It is terminal.
	AbortedState
)

// String returns string representation of the state.
func (s State) String() string {
	switch s {
	case IdleState:
		return "idle"
	case StartedState:
		return "started"
	case LastBlockMarkedState:
		return "last-block-marked"
	case StoppedState:
		return "stopped"
	case AbortedState:
		return "aborted"
	default:
		return "unknown"
	}
}

// IsTerminal reports whether no further transition is possible.
func (s State) IsTerminal() bool { return s == StoppedState || s == AbortedState }

// StateChangeHandler is invoked after every state change.
//
// Note: the handler is invoked synchronously on the goroutine driving the session.
type StateChangeHandler func(prevState State, newState State)

// StateMgr manages the state of one block session.
type StateMgr struct {
	mu       sync.Mutex
	state    atomic.Uint32
	logger   logger.Logger
	handlers []StateChangeHandler
}

// NewStateMgr creates a StateMgr in IdleState.
func NewStateMgr(l logger.Logger, handlers ...StateChangeHandler) *StateMgr {
	if l == nil {
		l = logger.GetLogger()
	}

	sm := &StateMgr{logger: l, handlers: make([]StateChangeHandler, 0, len(handlers))}
	sm.AddHandler(handlers...)
	sm.state.Store(uint32(IdleState))

	return sm
}

// State returns the current state.
func (sm *StateMgr) State() State {
	return State(sm.state.Load())
}

// AddHandler adds handlers to be invoked on state changes.
func (sm *StateMgr) AddHandler(handlers ...StateChangeHandler) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.handlers = append(sm.handlers, handlers...)
}

// ToStarted transitions from IdleState to StartedState.
func (sm *StateMgr) ToStarted() error {
	return sm.transition(StartedState, IdleState)
}

// ToLastBlockMarked transitions from StartedState to LastBlockMarkedState.
func (sm *StateMgr) ToLastBlockMarked() error {
	return sm.transition(LastBlockMarkedState, StartedState)
}

// ToStopped transitions from LastBlockMarkedState to StoppedState.
func (sm *StateMgr) ToStopped() error {
	return sm.transition(StoppedState, LastBlockMarkedState)
}

// ToAborted transitions any non-terminal state to AbortedState.
func (sm *StateMgr) ToAborted() error {
	return sm.transition(AbortedState, IdleState, StartedState, LastBlockMarkedState)
}

func (sm *StateMgr) transition(to State, from ...State) error {
	sm.mu.Lock()

	prev := sm.State()
	allowed := false
	for _, s := range from {
		if prev == s {
			allowed = true
			break
		}
	}
	if !allowed {
		sm.mu.Unlock()
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, prev, to)
	}

	sm.state.Store(uint32(to))
	handlers := sm.handlers
	sm.mu.Unlock()

	sm.logger.Debug("block session state changed", "prev_state", prev, "state", to)
	for _, h := range handlers {
		h(prev, to)
	}

	return nil
}
