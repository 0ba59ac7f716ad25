package notifications

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/albapepper/nudge/internal/routine"
)

// Engine evaluates and records notifications for one user at a time. It is
// shared by the batch runner and the on-demand check so both paths make the
// same decisions.
type Engine struct {
	store  Store
	guard  *Guard
	loc    *time.Location
	logger *slog.Logger
}

// NewEngine creates an engine. defaultLoc is used for profiles without a
// valid timezone; nil means UTC.
func NewEngine(store Store, defaultLoc *time.Location, logger *slog.Logger) *Engine {
	if defaultLoc == nil {
		defaultLoc = time.UTC
	}
	return &Engine{
		store:  store,
		guard:  NewGuard(store),
		loc:    defaultLoc,
		logger: logger,
	}
}

// Result summarises one user's evaluation.
type Result struct {
	UserID   string
	Drafts   int     // drafts produced by triggers
	Sent     int     // drafts recorded
	Skipped  int     // drafts already recorded inside the cooldown window
	Failures []error // *TriggerError values
}

// CheckUser loads userID's profile and processes it. This is the on-demand
// path.
func (e *Engine) CheckUser(ctx context.Context, userID string, now time.Time) (Result, error) {
	p, err := e.store.GetProfile(ctx, userID)
	if err != nil {
		return Result{UserID: userID}, &UserError{UserID: userID, Err: fmt.Errorf("get profile: %w", err)}
	}
	return e.ProcessUser(ctx, p, now)
}

// ProcessUser runs every trigger for p at now and claims each draft through
// the guard. A failing trigger does not stop the others; when any failed the
// returned error is a *UserError joining them and Result still carries the
// emissions that succeeded.
func (e *Engine) ProcessUser(ctx context.Context, p Profile, now time.Time) (Result, error) {
	res := Result{UserID: p.UserID}
	clock := ClockAt(now, p.Location(e.loc))

	snap, loadErrs := e.loadSnapshot(ctx, p, clock.Date)

	for _, t := range Triggers() {
		if err := missingSource(t.needs, loadErrs); err != nil {
			res.Failures = append(res.Failures, &TriggerError{Trigger: t.Name, Err: err})
			continue
		}

		for _, d := range t.Eval(snap, clock) {
			res.Drafts++
			ok, err := e.guard.ShouldEmit(ctx, p.UserID, d, now)
			if err != nil {
				res.Failures = append(res.Failures, &TriggerError{Trigger: t.Name, Ref: d.Ref, Err: err})
				continue
			}
			if !ok {
				res.Skipped++
				continue
			}
			res.Sent++
			e.logger.Debug("Notification recorded",
				"user_id", p.UserID, "category", d.Category, "ref", d.Ref)
		}
	}

	if len(res.Failures) > 0 {
		return res, &UserError{UserID: p.UserID, Err: errors.Join(res.Failures...)}
	}
	return res, nil
}

// loadSnapshot reads the day's logs concurrently. Sources that fail are
// reported in the returned map and left at their zero value in the snapshot.
func (e *Engine) loadSnapshot(ctx context.Context, p Profile, date string) (Snapshot, map[source]error) {
	snap := Snapshot{Profile: p, CompletedMeals: map[string]bool{}}
	errs := make(map[source]error)

	var mu sync.Mutex
	var wg sync.WaitGroup

	load := func(src source, fn func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(); err != nil {
				mu.Lock()
				errs[src] = err
				mu.Unlock()
			}
		}()
	}

	load(sourceWater, func() error {
		w, err := e.store.HydrationLog(ctx, p.UserID, date)
		snap.Water = w
		return err
	})
	load(sourceMeals, func() error {
		meals, err := e.store.CompletedMeals(ctx, p.UserID, date)
		for _, m := range meals {
			snap.CompletedMeals[routine.FormatMinutes(routine.ParseTimeToMinutes(m))] = true
		}
		return err
	})
	load(sourceWorkout, func() error {
		done, err := e.store.WorkoutLogged(ctx, p.UserID, date)
		snap.WorkoutLogged = done
		return err
	})
	load(sourceDiet, func() error {
		kcal, err := e.store.CaloriesConsumed(ctx, p.UserID, date)
		snap.CaloriesConsumed = kcal
		return err
	})

	wg.Wait()
	return snap, errs
}

func missingSource(needs source, errs map[source]error) error {
	var joined []error
	for src, err := range errs {
		if needs&src != 0 {
			joined = append(joined, fmt.Errorf("load %s: %w", sourceNames[src], err))
		}
	}
	return errors.Join(joined...)
}
