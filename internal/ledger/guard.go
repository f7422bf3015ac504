package ledger

// guard.go serializes imports per account.
//
// The pipeline assumes single-writer access to an account for the duration
// of a run: the running balance and the fingerprint partition are both
// computed against a snapshot of the store. The guard is that single-writer
// lock, keyed by account code; imports against distinct accounts proceed
// independently. A bounded global semaphore additionally caps how many
// imports run at once so a burst of large workbooks cannot exhaust the
// process.

import (
	"errors"
	"sync"
)

// ErrImportInProgress is returned when an import is already running for the
// same account. Clients should retry after the active import finishes.
var ErrImportInProgress = errors.New("an import is already running for this account")

// ErrTooManyImports is returned when the global concurrency cap is reached.
var ErrTooManyImports = errors.New("too many concurrent imports, please try again later")

// DefaultMaxConcurrentImports caps parallel imports across all accounts.
const DefaultMaxConcurrentImports = 4

// ImportGuard enforces one active import per account plus a global cap.
type ImportGuard struct {
	semaphore chan struct{}

	mu     sync.Mutex
	active map[string]struct{}
}

// NewImportGuard creates a guard allowing at most maxConcurrent
// simultaneous imports overall and one per account.
func NewImportGuard(maxConcurrent int) *ImportGuard {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentImports
	}
	return &ImportGuard{
		semaphore: make(chan struct{}, maxConcurrent),
		active:    make(map[string]struct{}),
	}
}

// Acquire claims the import slot for accountCode without blocking.
// The caller MUST call Release with the same code when the import
// completes (use defer).
func (g *ImportGuard) Acquire(accountCode string) error {
	select {
	case g.semaphore <- struct{}{}:
	default:
		return ErrTooManyImports
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.active[accountCode]; busy {
		<-g.semaphore
		return ErrImportInProgress
	}
	g.active[accountCode] = struct{}{}
	return nil
}

// Release frees the slot claimed by Acquire. Must be called exactly once
// per successful Acquire.
func (g *ImportGuard) Release(accountCode string) {
	g.mu.Lock()
	delete(g.active, accountCode)
	g.mu.Unlock()
	<-g.semaphore
}

// ActiveCount returns the number of imports currently running.
func (g *ImportGuard) ActiveCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.active)
}
