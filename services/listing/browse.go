package listing

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"mindease/utils"
)

// BrowseState remembers the therapist list query and page of a session.
type BrowseState struct {
	Query     TherapistQuery `json:"query"`
	Page      int            `json:"page"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// Apply moves to the requested query and page. Any change to search,
// specialties or sort resets the page to 1.
func (s BrowseState) Apply(q TherapistQuery, page int) BrowseState {
	q = canonical(q)
	next := BrowseState{Query: q, Page: page, UpdatedAt: time.Now()}
	if !sameQuery(s.Query, q) {
		next.Page = 1
	}
	if next.Page < 1 {
		next.Page = 1
	}
	return next
}

func canonical(q TherapistQuery) TherapistQuery {
	q.Search = strings.TrimSpace(q.Search)
	specs := make([]string, 0, len(q.Specialties))
	for _, s := range q.Specialties {
		if s = strings.TrimSpace(s); s != "" {
			specs = append(specs, s)
		}
	}
	sort.Strings(specs)
	q.Specialties = specs
	if !q.Sort.Valid() {
		q.Sort = DefaultSort
	}
	return q
}

func sameQuery(a, b TherapistQuery) bool {
	a, b = canonical(a), canonical(b)
	if a.Search != b.Search || a.Sort != b.Sort || len(a.Specialties) != len(b.Specialties) {
		return false
	}
	for i := range a.Specialties {
		if a.Specialties[i] != b.Specialties[i] {
			return false
		}
	}
	return true
}

// BrowseStore persists browse state per session.
type BrowseStore interface {
	Load(ctx context.Context, sessionID string) (BrowseState, error)
	Save(ctx context.Context, sessionID string, st BrowseState) error
}

type RedisBrowseStore struct {
	docs *utils.JSONStore[BrowseState]
}

func NewRedisBrowseStore(docs *utils.JSONStore[BrowseState]) *RedisBrowseStore {
	return &RedisBrowseStore{docs: docs}
}

// Load returns the stored state, or a fresh one on page 1.
func (s *RedisBrowseStore) Load(ctx context.Context, sessionID string) (BrowseState, error) {
	st, err := s.docs.Get(ctx, sessionID)
	if errors.Is(err, utils.ErrNotFound) {
		return BrowseState{Query: canonical(TherapistQuery{}), Page: 1}, nil
	}
	if err != nil {
		return BrowseState{}, err
	}
	return *st, nil
}

func (s *RedisBrowseStore) Save(ctx context.Context, sessionID string, st BrowseState) error {
	return s.docs.Put(ctx, sessionID, &st)
}
