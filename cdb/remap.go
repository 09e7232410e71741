package cdb

import (
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sys/unix"
)

// generation is one mapped version of a database file, chained to the
// next (newer) generation once one is opened by Refresh. The chain is
// append-only; nodes are only unlinked once their refcount (and every
// predecessor's) reaches zero, under the coordinator lock.
type generation struct {
	snapshot *Snapshot
	mtime    time.Time
	refcount int
	next     *generation

	mmapped []byte // non-nil if snapshot.data is an active mmap that must be unmapped on free
}

// Coordinator owns the snapshot chain for one database path and
// serializes all refcount and chain edits behind a single lock. Queries
// on the fast path never take the lock; they read the snapshot of the
// generation their Handle references.
type Coordinator struct {
	path string

	mu      sync.Mutex // guards everything below
	current atomic.Pointer[generation]
}

// Handle is a reader's reference to a specific generation within a
// Coordinator's chain. A Handle must be released with Release when the
// reader is done, and should periodically call RefreshCheck/Refresh to
// adopt newer generations.
type Handle struct {
	coord *Coordinator
	gen   *generation
}

// Open opens the file at path, maps it, and returns a Coordinator whose
// initial generation is that mapping.
func Open(path string) (*Coordinator, error) {
	co := &Coordinator{path: path}
	gen, err := openGeneration(path)
	if err != nil {
		return nil, err
	}
	co.current.Store(gen)
	return co, nil
}

func openGeneration(path string) (*generation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("%w: stat: %v", ErrUnavailable, err)
	}
	size := fi.Size()
	if size == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrCorrupt)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("%w: mmap: %v", ErrUnavailable, err)
	}
	if err := unix.Madvise(data, unix.MADV_RANDOM); err != nil {
		slog.Warn("cdb: madvise(RANDOM) failed", "error", err)
	}

	snap, err := openSnapshot(data)
	if err != nil {
		unix.Munmap(data)
		return nil, err
	}

	return &generation{
		snapshot: snap,
		mtime:    fi.ModTime(),
		mmapped:  data,
	}, nil
}

// Register acquires a Handle pointing at the coordinator's current
// (tail) generation, incrementing its refcount. Equivalent to §4.D's
// register(handle, INCR) where handle starts empty.
func (co *Coordinator) Register() *Handle {
	co.mu.Lock()
	defer co.mu.Unlock()

	g := co.tailLocked()
	g.refcount++
	return &Handle{coord: co, gen: g}
}

// tailLocked walks the next-chain from the coordinator's published
// current pointer to the tail. Must be called with co.mu held.
func (co *Coordinator) tailLocked() *generation {
	g := co.current.Load()
	for g.next != nil {
		g = g.next
	}
	return g
}

// Release decrements the handle's generation refcount, then frees the
// chain's leading run of zero-refcount generations. A generation is
// freed only once every older one is freed too, and the newest
// generation is never freed here. The handle must not be used
// afterward.
func (h *Handle) Release() {
	co := h.coord
	co.mu.Lock()
	defer co.mu.Unlock()

	h.gen.refcount--
	co.collectLocked()
	h.gen = nil
}

// collectLocked frees a prefix of fully-unreferenced generations
// starting from the coordinator's published head, stopping at the
// first still-referenced (or still-current) node. Must be called with
// co.mu held.
func (co *Coordinator) collectLocked() {
	head := co.current.Load()
	for head != nil && head.next != nil && head.refcount == 0 {
		doomed := head
		head = head.next
		co.current.Store(head)
		doomed.free()
	}
}

func (g *generation) free() {
	if g.mmapped != nil {
		if err := unix.Munmap(g.mmapped); err != nil {
			slog.Warn("cdb: munmap failed", "error", err)
		}
	}
}

// RefreshCheck is a lock-free liveness probe: it stats the file and
// reports whether its mtime is newer than the handle's generation. It
// also reports true when the file cannot be stat'ed.
func (h *Handle) RefreshCheck() bool {
	fi, err := os.Stat(h.coord.path)
	if err != nil {
		return true
	}
	return fi.ModTime().After(h.gen.mtime)
}

// Refresh opens a newer generation if one is not already chained, and
// advances the handle to the tail. A reopen failure is non-fatal: the
// handle keeps its current (possibly stale) generation and the error is
// returned for logging.
func (h *Handle) Refresh() error {
	co := h.coord
	co.mu.Lock()
	defer co.mu.Unlock()

	if h.gen.next == nil {
		// h.gen is the tail: nothing newer is chained yet.
		newGen, err := openGeneration(co.path)
		if err != nil {
			return err
		}
		h.gen.next = newGen // append-only publish; readers on old tail remain valid
	}

	next := co.tailLocked()
	next.refcount++
	h.gen.refcount--
	co.collectLocked()
	h.gen = next
	return nil
}

// Snapshot returns the snapshot the handle currently references.
func (h *Handle) Snapshot() *Snapshot {
	return h.gen.snapshot
}

// Close releases the coordinator's own reference chain; callers must
// have released all outstanding handles first.
func (co *Coordinator) Close() error {
	co.mu.Lock()
	defer co.mu.Unlock()
	g := co.current.Load()
	for g != nil {
		next := g.next
		g.free()
		g = next
	}
	return nil
}
