package httpd

import (
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

type Diagnostic interface {
	NewHTTPServerErrorLogger() *log.Logger

	StartingService()
	StoppedService()
	ShutdownTimeout()

	ListeningOn(addr string)

	HTTP(
		method string,
		uri string,
		status int,
		reqID string,
		duration time.Duration,
	)

	Error(msg string, err error)
}

type Service struct {
	ln   net.Listener
	addr string
	err  chan error

	server *http.Server
	mu     sync.Mutex
	wg     sync.WaitGroup

	new             chan net.Conn
	active          chan net.Conn
	idle            chan net.Conn
	closed          chan net.Conn
	stop            chan chan struct{}
	shutdownTimeout time.Duration

	// Clock times the shutdown. Replace it before Open.
	Clock clock.Clock

	Handler *Handler

	diag                  Diagnostic
	httpServerErrorLogger *log.Logger
}

// NewService serves the counter handler together with the daemon's
// own routes. Runtime metrics are added to the handler's registry.
func NewService(c Config, counter EventHandler, d Diagnostic) *Service {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return &Service{
		addr:                  c.BindAddress,
		err:                   make(chan error, 1),
		shutdownTimeout:       time.Duration(c.ShutdownTimeout),
		Clock:                 clock.New(),
		Handler:               NewHandler(c.LogEnabled, counter, registry, d),
		diag:                  d,
		httpServerErrorLogger: d.NewHTTPServerErrorLogger(),
	}
}

// Open starts the service
func (s *Service) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.diag.StartingService()

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return errors.Wrapf(err, "failed to listen on %s", s.addr)
	}
	s.diag.ListeningOn(listener.Addr().String())
	s.ln = listener

	s.server = &http.Server{
		Handler:           s.Handler,
		ConnState:         s.connStateHandler,
		ErrorLog:          s.httpServerErrorLogger,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.new = make(chan net.Conn)
	s.active = make(chan net.Conn)
	s.idle = make(chan net.Conn)
	s.closed = make(chan net.Conn)
	s.stop = make(chan chan struct{})

	go s.manage()

	s.wg.Add(1)
	go s.serve()
	return nil
}

// Close stops accepting connections and waits for the active ones to
// finish, up to the shutdown timeout.
func (s *Service) Close() error {
	defer s.diag.StoppedService()
	s.mu.Lock()
	defer s.mu.Unlock()
	// If server is not set we were never started
	if s.server == nil {
		return nil
	}
	// First turn off KeepAlives so that new connections will not become idle
	s.server.SetKeepAlivesEnabled(false)
	stopping := make(chan struct{})
	s.stop <- stopping

	if err := s.ln.Close(); err != nil {
		return err
	}

	<-stopping
	s.wg.Wait()
	s.server = nil
	return nil
}

// Err reports the listener's exit. A nil error means it was closed.
func (s *Service) Err() <-chan error {
	return s.err
}

func (s *Service) connStateHandler(c net.Conn, state http.ConnState) {
	switch state {
	case http.StateNew:
		s.new <- c
	case http.StateActive:
		s.active <- c
	case http.StateIdle:
		s.idle <- c
	case http.StateHijacked, http.StateClosed:
		s.closed <- c
	}
}

// Watch connection state and handle stop request.
func (s *Service) manage() {
	defer func() {
		close(s.new)
		close(s.active)
		close(s.idle)
		close(s.closed)
	}()

	var stopDone chan struct{}
	conns := map[net.Conn]http.ConnState{}
	var timeout <-chan time.Time

	for {
		select {
		case c := <-s.new:
			conns[c] = http.StateNew
		case c := <-s.active:
			conns[c] = http.StateActive
		case c := <-s.idle:
			conns[c] = http.StateIdle

			// if we're already stopping, close it
			if stopDone != nil {
				c.Close()
			}
		case c := <-s.closed:
			delete(conns, c)

			// the last connection is gone while stopping
			if stopDone != nil && len(conns) == 0 {
				close(stopDone)
				return
			}
		case stopDone = <-s.stop:
			if len(conns) == 0 {
				close(stopDone)
				return
			}

			for c, cs := range conns {
				if cs == http.StateIdle {
					c.Close()
				}
			}

			timeout = s.Clock.After(s.shutdownTimeout)
		case <-timeout:
			s.diag.ShutdownTimeout()
			for c := range conns {
				c.Close()
			}
		}
	}
}

func (s *Service) serve() {
	defer s.wg.Done()
	err := s.server.Serve(s.ln)
	if errors.Is(err, net.ErrClosed) {
		s.err <- nil
		return
	}
	s.err <- fmt.Errorf("listener failed: addr=%s, err=%s", s.Addr(), err)
}

func (s *Service) Addr() net.Addr {
	if s.ln != nil {
		return s.ln.Addr()
	}
	return nil
}

// URL returns the base URL of the listener, empty until opened.
func (s *Service) URL() string {
	if s.ln != nil {
		return "http://" + s.Addr().String()
	}
	return ""
}
