package health

import (
	"context"
	"time"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Sockets reports open history sockets.
type Sockets interface {
	Connected() int
}

// Status is the /health payload.
type Status struct {
	OK          bool   `json:"ok"`
	RecordStore string `json:"recordStore"`
	Database    string `json:"database,omitempty"`
	Sockets     int    `json:"sockets"`
}

// Service encapsulates health-related checks.
type Service struct {
	RecordStore string
	DB          Pinger
	Hub         Sockets
	Timeout     time.Duration
}

// NewService constructs a new health service. db and hub may be nil.
func NewService(recordStore string, db Pinger, hub Sockets) *Service {
	return &Service{RecordStore: recordStore, DB: db, Hub: hub, Timeout: 2 * time.Second}
}

// Status pings the database when there is one. The hosted REST store is not
// checked; its outages surface per request.
func (s *Service) Status(ctx context.Context) Status {
	st := Status{OK: true, RecordStore: s.RecordStore}
	if s.Hub != nil {
		st.Sockets = s.Hub.Connected()
	}
	if s.DB == nil {
		return st
	}
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()
	if err := s.DB.PingContext(ctx); err != nil {
		st.OK = false
		st.Database = "unreachable"
		return st
	}
	st.Database = "ok"
	return st
}
