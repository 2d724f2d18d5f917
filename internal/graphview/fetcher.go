package graphview

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// Holder owns the most recently applied snapshot and its layout. Results are
// applied last-writer-by-initiation-order: each fetch is stamped with a
// sequence number when it starts, and a result only applies if its sequence
// is newer than the last applied one. A slow fetch that started before an
// already-applied one is discarded on arrival.
type Holder struct {
	mu          sync.Mutex
	snapshot    Snapshot
	layout      Layout
	lastApplied uint64
}

// NewHolder creates an empty holder.
func NewHolder() *Holder {
	return &Holder{}
}

// Apply installs the snapshot if seq is newer than the last applied
// initiation sequence. Returns whether it was applied.
func (h *Holder) Apply(seq uint64, snap Snapshot) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if seq <= h.lastApplied {
		return false
	}
	h.lastApplied = seq
	h.snapshot = snap
	h.layout = ComputeLayout(snap)
	return true
}

// Layout returns the layout of the current snapshot.
func (h *Holder) Layout() Layout {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.layout
}

// Snapshot returns the current snapshot.
func (h *Holder) Snapshot() Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.snapshot
}

// Fetcher polls the upstream graph query endpoint on a fixed interval. A
// fetch in flight when the next tick fires is not cancelled; staleness is
// handled by the Holder's sequence check. A failed fetch skips the refresh
// cycle and leaves the displayed state untouched.
type Fetcher struct {
	url      string
	interval time.Duration
	holder   *Holder
	http     *http.Client
	logger   *slog.Logger
	onApply  func()
	seq      uint64
	seqMu    sync.Mutex
}

// NewFetcher creates a fetcher polling url every interval. onApply, if
// non-nil, runs after each applied refresh.
func NewFetcher(url string, interval time.Duration, holder *Holder, logger *slog.Logger, onApply func()) *Fetcher {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Fetcher{
		url:      url,
		interval: interval,
		holder:   holder,
		http:     &http.Client{Timeout: 15 * time.Second},
		logger:   logger,
		onApply:  onApply,
	}
}

// Run polls until ctx is cancelled. The first fetch fires immediately.
func (f *Fetcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	f.launch(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			f.launch(ctx)
		}
	}
}

func (f *Fetcher) launch(ctx context.Context) {
	f.seqMu.Lock()
	f.seq++
	seq := f.seq
	f.seqMu.Unlock()

	go func() {
		snap, err := f.fetch(ctx)
		if err != nil {
			if ctx.Err() == nil {
				f.logger.Warn("graphview: fetch failed", slog.String("error", err.Error()))
			}
			return
		}
		if f.holder.Apply(seq, snap) && f.onApply != nil {
			f.onApply()
		}
	}()
}

func (f *Fetcher) fetch(ctx context.Context) (Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return Snapshot{}, err
	}
	resp, err := f.http.Do(req)
	if err != nil {
		return Snapshot{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Snapshot{}, fmt.Errorf("graphview: upstream status %d", resp.StatusCode)
	}
	var snap Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return Snapshot{}, fmt.Errorf("graphview: decode snapshot: %w", err)
	}
	return snap, nil
}
