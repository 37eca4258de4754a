package run

import (
	"github.com/nesq/resumecount/services/awsclient"
	"github.com/nesq/resumecount/services/counter"
	"github.com/nesq/resumecount/services/diagnostic"
	"github.com/nesq/resumecount/services/httpd"
	"github.com/nesq/resumecount/services/logging"
	"github.com/nesq/resumecount/services/storage"
	"github.com/pkg/errors"
)

// BuildInfo represents the build details for the server code.
type BuildInfo struct {
	Version string
	Commit  string
	Branch  string
}

// Server represents a container for the counter and its storage.
// It is built using a Config and it manages the startup and shutdown of all
// services in the proper order.
type Server struct {
	config    *Config
	BuildInfo BuildInfo

	err chan error

	DiagService *diagnostic.Service

	AWSClient      *awsclient.Client
	StorageService *storage.Service
	CounterService *counter.Service
	HTTPDService   *httpd.Service

	// Services in open order. They are closed in reverse.
	Services []Service
}

// Service represents a service attached to the server.
type Service interface {
	Open() error
	Close() error
}

// NewServer returns a new instance of Server built from a config.
func NewServer(c *Config, buildInfo *BuildInfo, logService logging.Interface) (*Server, error) {
	if err := c.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	s := &Server{
		config:      c,
		BuildInfo:   *buildInfo,
		err:         make(chan error, 1),
		DiagService: diagnostic.NewService(logService.Root()),
		AWSClient:   awsclient.New(c.AWS),
	}

	s.appendStorageService()
	s.appendCounterService()
	s.appendHTTPDService()

	return s, nil
}

func (s *Server) appendStorageService() {
	srv := storage.NewService(s.config.Storage, s.AWSClient, s.DiagService.NewStorageHandler())
	s.StorageService = srv
	s.Services = append(s.Services, srv)
}

func (s *Server) appendCounterService() {
	s.CounterService = counter.NewService(s.config.Counter, s.StorageService, s.DiagService.NewCounterHandler())
}

func (s *Server) appendHTTPDService() {
	srv := httpd.NewService(s.config.HTTP, s.CounterService, s.DiagService.NewHTTPDHandler())
	s.HTTPDService = srv
	s.Services = append(s.Services, srv)
}

// Err returns an error channel that receives the listener's failure.
func (s *Server) Err() <-chan error { return s.err }

// Open opens all the services.
func (s *Server) Open() error {
	for i, service := range s.Services {
		if err := service.Open(); err != nil {
			s.closeServices(i)
			return errors.Wrap(err, "open service")
		}
	}

	go func() {
		s.err <- <-s.HTTPDService.Err()
	}()
	return nil
}

// Close shuts down all services.
func (s *Server) Close() error {
	return s.closeServices(len(s.Services))
}

// closeServices closes the first n services, last opened first.
func (s *Server) closeServices(n int) error {
	var firstErr error
	for i := n - 1; i >= 0; i-- {
		if err := s.Services[i].Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
