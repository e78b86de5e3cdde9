package template

import (
	"github.com/ravi-ivar-7/hilabs/internal/infrastructure/monitoring/logging"
	"github.com/ravi-ivar-7/hilabs/pkg/errors"
)

// Store provides read-only access to the jurisdiction standard clauses.  The
// catalog is fixed at construction; lookups are safe for concurrent use.
//
// A missing template is a loud failure: Get never silently degrades to an
// empty comparison, because a clause classified against nothing would come
// out Non-Standard for the wrong reason.
type Store struct {
	clauses []Clause
	byKey   map[Jurisdiction]map[Attribute]Clause
	log     logging.Logger
}

// NewStore builds a Store over the built-in TN/WA catalog.
func NewStore(log logging.Logger) *Store {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return newStoreWith(builtinCatalog(), log)
}

func newStoreWith(clauses []Clause, log logging.Logger) *Store {
	byKey := make(map[Jurisdiction]map[Attribute]Clause, len(Jurisdictions()))
	for _, c := range clauses {
		if byKey[c.Jurisdiction] == nil {
			byKey[c.Jurisdiction] = make(map[Attribute]Clause, len(TargetAttributes()))
		}
		byKey[c.Jurisdiction][c.Attribute] = c
	}
	log.Info("template store initialised",
		logging.Int("clauses", len(clauses)),
		logging.Int("jurisdictions", len(byKey)),
	)
	return &Store{clauses: clauses, byKey: byKey, log: log}
}

// All returns every clause in the catalog in stable order.  The returned
// slice is shared; callers must not modify it.
func (s *Store) All() []Clause { return s.clauses }

// Get returns the standard clause for one jurisdiction/attribute pair.
func (s *Store) Get(j Jurisdiction, a Attribute) (Clause, error) {
	byAttr, ok := s.byKey[j]
	if !ok {
		return Clause{}, errors.Newf(errors.ErrCodeJurisdictionUnsupported,
			"no template catalog for jurisdiction %q", j)
	}
	c, ok := byAttr[a]
	if !ok {
		return Clause{}, errors.Newf(errors.ErrCodeTemplateNotFound,
			"no template clause for %s/%s", j, a)
	}
	return c, nil
}

// ForAttribute returns every clause for the attribute within one
// jurisdiction.  The slice is freshly allocated per call.
func (s *Store) ForAttribute(j Jurisdiction, a Attribute) ([]Clause, error) {
	if _, ok := s.byKey[j]; !ok {
		return nil, errors.Newf(errors.ErrCodeJurisdictionUnsupported,
			"no template catalog for jurisdiction %q", j)
	}
	var out []Clause
	for _, c := range s.clauses {
		if c.Jurisdiction == j && c.Attribute == a {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		return nil, errors.Newf(errors.ErrCodeTemplateNotFound,
			"no template clause for %s/%s", j, a)
	}
	return out, nil
}
