// Package reference holds slow-changing lookup data, currently the
// department list, fetched once per session.
package reference

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"sync"

	"github.com/fentz26/n3dash/internal/api"
	"github.com/fentz26/n3dash/internal/models"
	"golang.org/x/sync/singleflight"
)

// MsgDepartmentsFailed is the fallback error when the server gives no detail.
const MsgDepartmentsFailed = "Failed to load departments."

// API lists departments.
type API interface {
	ListDepartments(ctx context.Context) ([]models.Department, error)
}

// Cache persists the department list for one owner.
type Cache interface {
	LoadDepartments(ctx context.Context, ownerID string) ([]models.Department, error)
	SaveDepartments(ctx context.Context, ownerID string, departments []models.Department) error
	ClearDepartments(ctx context.Context, ownerID string) error
}

// State is a snapshot of the store.
type State struct {
	Departments []models.Department
	Loading     bool
	Error       string
}

// Store is the reference-data store. It is safe for concurrent use.
type Store struct {
	api    API
	cache  Cache
	owner  func() string
	log    *slog.Logger
	flight singleflight.Group

	mu          sync.RWMutex
	departments []models.Department
	loading     bool
	err         string
	gen         uint64
}

// Option configures a Store.
type Option func(*Store)

// WithCache reads and writes departments through c, keyed by the id that
// owner returns. An empty owner disables the cache for that call.
func WithCache(c Cache, owner func() string) Option {
	return func(s *Store) {
		s.cache = c
		s.owner = owner
	}
}

// WithLogger sets the store's logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Store) {
		if log != nil {
			s.log = log
		}
	}
}

// New creates an empty reference-data store.
func New(client API, opts ...Option) *Store {
	s := &Store{
		api: client,
		log: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FetchDepartments loads the department list unless it is already present.
// A persisted cache is consulted before the network.
func (s *Store) FetchDepartments(ctx context.Context) error {
	s.mu.RLock()
	have := len(s.departments) > 0
	gen := s.gen
	s.mu.RUnlock()
	if have {
		return nil
	}
	return s.fetch(ctx, gen, true)
}

// Reload fetches the department list from the network, skipping the
// persisted cache, and writes the result back to it. The current list stays
// visible until the new one arrives.
func (s *Store) Reload(ctx context.Context) error {
	s.mu.RLock()
	gen := s.gen
	s.mu.RUnlock()
	return s.fetch(ctx, gen, false)
}

func (s *Store) fetch(ctx context.Context, gen uint64, useCache bool) error {
	key := "reload"
	if useCache {
		key = "departments"
	}
	key = strconv.FormatUint(gen, 10) + "/" + key

	_, err, _ := s.flight.Do(key, func() (any, error) {
		s.mu.Lock()
		if s.gen != gen || (useCache && len(s.departments) > 0) {
			s.mu.Unlock()
			return nil, nil
		}
		s.loading = true
		s.err = ""
		s.mu.Unlock()

		departments, err := s.load(ctx, useCache)

		s.mu.Lock()
		defer s.mu.Unlock()
		if s.gen != gen {
			s.log.Debug("discarding departments fetched before reset")
			return nil, nil
		}
		s.loading = false
		if err != nil {
			msg := api.Detail(err)
			if msg == "" {
				msg = MsgDepartmentsFailed
			}
			s.err = msg
			s.log.Warn("fetch departments failed", "error", err)
			return nil, err
		}
		s.departments = departments
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("fetch departments: %w", err)
	}
	return nil
}

func (s *Store) load(ctx context.Context, useCache bool) ([]models.Department, error) {
	owner := ""
	if s.cache != nil && s.owner != nil {
		owner = s.owner()
	}

	if owner != "" && useCache {
		cached, err := s.cache.LoadDepartments(ctx, owner)
		if err != nil {
			s.log.Warn("read department cache failed", "owner", owner, "error", err)
		} else if len(cached) > 0 {
			s.log.Debug("departments served from cache", "owner", owner, "count", len(cached))
			return cached, nil
		}
	}

	departments, err := s.api.ListDepartments(ctx)
	if err != nil {
		return nil, err
	}
	if departments == nil {
		departments = []models.Department{}
	}
	switch {
	case owner == "":
	case len(departments) > 0:
		if err := s.cache.SaveDepartments(ctx, owner, departments); err != nil {
			s.log.Warn("write department cache failed", "owner", owner, "error", err)
		}
	default:
		// An empty server list must not leave a stale cache behind.
		if err := s.cache.ClearDepartments(ctx, owner); err != nil {
			s.log.Warn("clear department cache failed", "owner", owner, "error", err)
		}
	}
	return departments, nil
}

// Departments returns the loaded department list.
func (s *Store) Departments() []models.Department {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Department(nil), s.departments...)
}

// Lookup returns the department with id.
func (s *Store) Lookup(id string) (models.Department, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, d := range s.departments {
		if d.ID == id {
			return d, true
		}
	}
	return models.Department{}, false
}

// State returns a snapshot of the store.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return State{
		Departments: append([]models.Department(nil), s.departments...),
		Loading:     s.loading,
		Error:       s.err,
	}
}

// Reset clears the in-memory list so the next fetch reloads it. A fetch
// still in flight finishes without writing its result.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.departments = nil
	s.loading = false
	s.err = ""
}
