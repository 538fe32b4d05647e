package server

import (
	"bytes"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/iwvelando/rebalance-simulator/internal/chart"
	"github.com/iwvelando/rebalance-simulator/pkg/probe"
	"go.uber.org/zap"
)

// chartSession is one rendered chart and the probe following the pointer over it.
type chartSession struct {
	mu       sync.Mutex
	id       string
	opts     chart.Options
	series   *probe.ChartSeries
	geometry *chart.Geometry
	probe    *probe.Probe
	created  time.Time
}

// move feeds a pointer position in image pixels to the probe.
func (s *chartSession) move(px, py float64) probe.OverlayState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.probe.Move(s.geometry.Pointer(px, py))
}

func (s *chartSession) leave() probe.OverlayState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.probe.Leave()
}

// render draws the chart with the current overlay.
func (s *chartSession) render() ([]byte, error) {
	s.mu.Lock()
	state := s.probe.State()
	s.mu.Unlock()

	var buf bytes.Buffer
	if _, err := chart.RenderWithOverlay(&buf, s.series, s.opts, state); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// sessionStore keeps the most recent chart sessions up to a fixed count.
type sessionStore struct {
	mu       sync.Mutex
	logger   *zap.Logger
	max      int
	sessions map[string]*chartSession
	order    []string
}

func newSessionStore(logger *zap.Logger, max int) *sessionStore {
	if max <= 0 {
		max = 1
	}
	return &sessionStore{logger: logger, max: max, sessions: make(map[string]*chartSession)}
}

// create registers a session for a rendered chart and evicts the oldest sessions
// beyond the cap.
func (st *sessionStore) create(series *probe.ChartSeries, geometry *chart.Geometry, opts chart.Options) *chartSession {
	session := &chartSession{
		id:       uuid.NewString(),
		opts:     opts,
		series:   series,
		geometry: geometry,
		probe:    probe.NewProbe(series, geometry, st.logger),
		created:  time.Now(),
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	st.sessions[session.id] = session
	st.order = append(st.order, session.id)
	for len(st.order) > st.max {
		evicted := st.order[0]
		st.order = st.order[1:]
		delete(st.sessions, evicted)
		st.logger.Debug("evicted chart session",
			zap.String("op", "server.sessionStore.create"),
			zap.String("id", evicted),
		)
	}
	return session
}

func (st *sessionStore) get(id string) (*chartSession, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	session, ok := st.sessions[id]
	return session, ok
}

func (st *sessionStore) len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}
