package backend

import (
	"sort"

	"github.com/Kopoklesz/EmployeeManager/internal/logger"
)

// Selector maps the configured backend identifier to an implementation.
type Selector struct {
	backends map[Kind]Backend
	log      *logger.Logger
}

// NewSelector indexes the given backends by kind.
func NewSelector(log *logger.Logger, backends ...Backend) *Selector {
	if log == nil {
		log = logger.NewNop()
	}
	s := &Selector{backends: make(map[Kind]Backend), log: log}
	for _, b := range backends {
		s.backends[b.Kind()] = b
	}
	return s
}

// Select returns the backend for the configured identifier. Missing or
// unrecognized configuration falls back to the local XML exporter: an
// invoice is a legally required document and a typo in a config file must
// never block issuing one.
func (s *Selector) Select(configured string) Backend {
	kind := Kind(configured)
	if err := kind.Validate(); err != nil {
		if configured != "" {
			s.log.Warnw("unknown billing backend configured, falling back to local export",
				"configured", configured)
		}
		kind = KindLocalXML
	}

	if b, ok := s.backends[kind]; ok {
		return b
	}
	return s.backends[KindLocalXML]
}

// All returns the registered backends ordered by kind.
func (s *Selector) All() []Backend {
	out := make([]Backend, 0, len(s.backends))
	for _, b := range s.backends {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Kind() < out[j].Kind() })
	return out
}
