package notifications

import (
	"context"
	"sort"
	"sync"
	"time"
)

// fakeStore is an in-memory Store with per-method failure injection.
type fakeStore struct {
	mu sync.Mutex

	profiles map[string]Profile
	water    map[string]HydrationLog // userID|date
	meals    map[string][]string
	workouts map[string]bool
	calories map[string]float64
	records  []Record

	// fail maps "Method" or "Method:userID" to the error to return.
	fail map[string]error
	// failRef makes Claim fail for a specific ref.
	failRef map[string]error
}

func newFakeStore(profiles ...Profile) *fakeStore {
	s := &fakeStore{
		profiles: make(map[string]Profile),
		water:    make(map[string]HydrationLog),
		meals:    make(map[string][]string),
		workouts: make(map[string]bool),
		calories: make(map[string]float64),
		fail:     make(map[string]error),
		failRef:  make(map[string]error),
	}
	for _, p := range profiles {
		s.profiles[p.UserID] = p
	}
	return s
}

func dayKey(userID, date string) string { return userID + "|" + date }

func (s *fakeStore) failure(method, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.fail[method+":"+userID]; ok {
		return err
	}
	return s.fail[method]
}

func (s *fakeStore) ListProfiles(ctx context.Context) ([]Profile, error) {
	if err := s.failure("ListProfiles", ""); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Profile, 0, len(s.profiles))
	for _, p := range s.profiles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (s *fakeStore) GetProfile(ctx context.Context, userID string) (Profile, error) {
	if err := s.failure("GetProfile", userID); err != nil {
		return Profile{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[userID]
	if !ok {
		return Profile{}, ErrProfileNotFound
	}
	return p, nil
}

func (s *fakeStore) HydrationLog(ctx context.Context, userID, date string) (HydrationLog, error) {
	if err := s.failure("HydrationLog", userID); err != nil {
		return HydrationLog{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.water[dayKey(userID, date)], nil
}

func (s *fakeStore) CompletedMeals(ctx context.Context, userID, date string) ([]string, error) {
	if err := s.failure("CompletedMeals", userID); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.meals[dayKey(userID, date)]...), nil
}

func (s *fakeStore) WorkoutLogged(ctx context.Context, userID, date string) (bool, error) {
	if err := s.failure("WorkoutLogged", userID); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.workouts[dayKey(userID, date)], nil
}

func (s *fakeStore) CaloriesConsumed(ctx context.Context, userID, date string) (float64, error) {
	if err := s.failure("CaloriesConsumed", userID); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calories[dayKey(userID, date)], nil
}

func (s *fakeStore) Claim(ctx context.Context, rec Record, since time.Time) (bool, error) {
	if err := s.failure("Claim", rec.UserID); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.failRef[rec.Ref]; ok {
		return false, err
	}
	for _, r := range s.records {
		if r.UserID == rec.UserID && r.Category == rec.Category && r.Ref == rec.Ref && !r.CreatedAt.Before(since) {
			return false, nil
		}
	}
	s.records = append(s.records, rec)
	return true, nil
}

func (s *fakeStore) recordsFor(userID string) []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Record
	for _, r := range s.records {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out
}

func (s *fakeStore) refsFor(userID string) []string {
	var refs []string
	for _, r := range s.recordsFor(userID) {
		refs = append(refs, r.Ref)
	}
	sort.Strings(refs)
	return refs
}
