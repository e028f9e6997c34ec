package dashboard

import (
	"errors"
	"sync"

	"expertcof/internal/analysis"
	"expertcof/internal/analyzer"
)

// ErrBusy is returned while an upload is already in flight for the widget.
var ErrBusy = errors.New("upload already in progress")

// State is a snapshot of the upload widget.
type State struct {
	Busy    bool             `json:"busy"`
	Error   string           `json:"error,omitempty"`
	Current *analysis.Result `json:"current,omitempty"`
}

// Widget serializes uploads and keeps the last result and error message.
type Widget struct {
	mu      sync.Mutex
	busy    bool
	errMsg  string
	current *analysis.Result
}

// Begin claims the widget and clears the previous error.
func (w *Widget) Begin() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.busy {
		return ErrBusy
	}
	w.busy = true
	w.errMsg = ""
	return nil
}

// Finish releases the widget with the attempt's outcome.
func (w *Widget) Finish(res analysis.Result, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.busy = false
	if err != nil {
		w.errMsg = analyzer.UserMessage(err)
		return
	}
	w.current = &res
}

// Reject records a validation failure without claiming the widget.
func (w *Widget) Reject(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.errMsg = analyzer.UserMessage(err)
}

// Clear drops the current result, returning to the upload view.
func (w *Widget) Clear() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.current = nil
	w.errMsg = ""
}

// Snapshot returns a copy of the widget state.
func (w *Widget) Snapshot() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	st := State{Busy: w.busy, Error: w.errMsg}
	if w.current != nil {
		cur := *w.current
		st.Current = &cur
	}
	return st
}

// Widgets keeps one widget per user.
type Widgets struct {
	mu sync.Mutex
	m  map[string]*Widget
}

// NewWidgets constructs an empty registry.
func NewWidgets() *Widgets {
	return &Widgets{m: make(map[string]*Widget)}
}

// For returns userID's widget, creating it on first use.
func (ws *Widgets) For(userID string) *Widget {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	w, ok := ws.m[userID]
	if !ok {
		w = &Widget{}
		ws.m[userID] = w
	}
	return w
}
