package ledger

// persist.go commits an import batch exactly once.
//
// Movements targeting an administratively locked period are rejected
// fail-closed per period: if a period is locked, none of its movements are
// written, so no partial-period state can exist. Remaining movements are
// partitioned by content fingerprint into new and duplicate, both against
// the store and within the batch; duplicates are counted, not errors. New movements are committed in a single
// transaction per invocation (the store guarantees all-or-nothing). In
// dry-run mode only the lookup/partition happens, producing the same
// counts an apply run would.

import (
	"context"
	"fmt"
	"sort"
)

// persistOutcome summarizes one persister invocation.
type persistOutcome struct {
	Inserted      int
	Duplicates    int
	PeriodErrors  []string // one per locked period, in period order
	LockedPeriods []Period
}

// persistBatch validates period locks, deduplicates by fingerprint and
// commits the remainder. A returned error is a storage failure: the whole
// batch rolled back and the import must surface it.
func persistBatch(ctx context.Context, store MovementStore, locks PeriodLocks, movements []Movement, dryRun bool) (persistOutcome, error) {
	var out persistOutcome
	if len(movements) == 0 {
		return out, nil
	}

	locked, err := lockedPeriods(ctx, locks, movements)
	if err != nil {
		return out, err
	}

	writable := movements
	if len(locked) > 0 {
		out.LockedPeriods = locked
		lockedSet := make(map[Period]struct{}, len(locked))
		for _, p := range locked {
			out.PeriodErrors = append(out.PeriodErrors,
				fmt.Sprintf("period %s is closed: %d movement(s) rejected", p, countInPeriod(movements, p)))
			lockedSet[p] = struct{}{}
		}

		writable = writable[:0:0]
		for _, m := range movements {
			if _, isLocked := lockedSet[m.Period()]; !isLocked {
				writable = append(writable, m)
			}
		}
	}

	if len(writable) == 0 {
		return out, nil
	}

	fingerprints := make([]string, len(writable))
	for i, m := range writable {
		fingerprints[i] = m.Fingerprint
	}
	existing, err := store.ExistingFingerprints(ctx, fingerprints)
	if err != nil {
		return out, fmt.Errorf("fingerprint lookup: %w", err)
	}

	// Dedupe against the store and within the batch itself: a workbook can
	// legitimately repeat an identical row (two equal donations on one day),
	// and the unique fingerprint index admits only the first.
	fresh := make([]Movement, 0, len(writable))
	accepted := make(map[string]struct{}, len(writable))
	for _, m := range writable {
		if _, dup := existing[m.Fingerprint]; dup {
			out.Duplicates++
			continue
		}
		if _, dup := accepted[m.Fingerprint]; dup {
			out.Duplicates++
			continue
		}
		accepted[m.Fingerprint] = struct{}{}
		fresh = append(fresh, m)
	}

	if dryRun {
		out.Inserted = len(fresh)
		return out, nil
	}

	if len(fresh) > 0 {
		inserted, err := store.InsertMovements(ctx, fresh)
		if err != nil {
			return out, fmt.Errorf("insert movements: %w", err)
		}
		out.Inserted = inserted
	}

	return out, nil
}

// lockedPeriods returns the distinct locked periods touched by the batch,
// sorted ascending so rejection messages are deterministic.
func lockedPeriods(ctx context.Context, locks PeriodLocks, movements []Movement) ([]Period, error) {
	seen := make(map[Period]bool)
	var locked []Period
	for _, m := range movements {
		p := m.Period()
		if _, checked := seen[p]; checked {
			continue
		}
		isLocked, err := locks.IsPeriodLocked(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("period lock check for %s: %w", p, err)
		}
		seen[p] = isLocked
		if isLocked {
			locked = append(locked, p)
		}
	}
	sort.Slice(locked, func(i, j int) bool { return locked[i].Before(locked[j]) })
	return locked, nil
}

func countInPeriod(movements []Movement, p Period) int {
	n := 0
	for _, m := range movements {
		if m.Period() == p {
			n++
		}
	}
	return n
}
