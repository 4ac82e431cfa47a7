// Package sources defines where raw peer-review records come from and the
// {meta, entries} payload every source produces.
//
// A Source fetches one payload. The manual dataset, the remote JSON feed and
// the ORCID registry each implement Source; FetchAll pulls the manual and
// remote payloads concurrently and never fails the caller: a source that
// cannot be read contributes an empty payload and its error is reported
// alongside.
//
// Example usage:
//
//	manual, remote, err := sources.FetchAll(ctx, localSource, feedSource)
//	if err != nil {
//	    logging.FromContext(ctx).Warn().Err(err).Msg("Showing partial data")
//	}
//	merged := reconciler.Aggregate(manual.Raw(), remote.Raw())
package sources

import (
	"context"
	"slices"
	"sync"
)

// ID identifies a source.
type ID string

// String returns the string representation of a source ID.
func (id ID) String() string {
	return string(id)
}

// Well-known source IDs.
const (
	ManualID ID = "manual"
	RemoteID ID = "remote"
	ORCIDID  ID = "orcid"
)

// Source produces one payload of raw records.
type Source interface {
	// ID returns the source identifier.
	ID() ID
	// Fetch reads the current payload.
	Fetch(ctx context.Context) (*Payload, error)
}

// Sources is a thread-safe registry of sources by ID.
type Sources struct {
	mu      sync.RWMutex
	sources map[ID]Source
}

// NewSources creates a registry holding the given sources.
func NewSources(srcs ...Source) *Sources {
	s := &Sources{sources: make(map[ID]Source, len(srcs))}
	for _, src := range srcs {
		if src != nil {
			s.sources[src.ID()] = src
		}
	}
	return s
}

// Get returns a source by ID.
func (s *Sources) Get(id ID) (Source, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	src, ok := s.sources[id]
	return src, ok
}

// Set registers src under its own ID.
func (s *Sources) Set(src Source) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sources[src.ID()] = src
}

// Delete removes a source by ID.
func (s *Sources) Delete(id ID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sources, id)
}

// Len returns the number of sources.
func (s *Sources) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sources)
}

// IDs returns the registered IDs in sorted order.
func (s *Sources) IDs() []ID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]ID, 0, len(s.sources))
	for id := range s.sources {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Static is a Source that always returns the same payload.
type Static struct {
	id      ID
	payload *Payload
}

// NewStatic returns a source serving payload under id.
func NewStatic(id ID, payload *Payload) *Static {
	return &Static{id: id, payload: payload}
}

// ID returns the source identifier.
func (s *Static) ID() ID { return s.id }

// Fetch returns a copy of the payload.
func (s *Static) Fetch(ctx context.Context) (*Payload, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.payload.Clone(), nil
}

// Renamed reports src under a different ID, so a file can stand in for the
// remote feed or a URL for the manual dataset.
type Renamed struct {
	id  ID
	src Source
}

// Rename returns src reporting id.
func Rename(id ID, src Source) *Renamed {
	return &Renamed{id: id, src: src}
}

// ID returns the substituted identifier.
func (r *Renamed) ID() ID { return r.id }

// Fetch delegates to the wrapped source.
func (r *Renamed) Fetch(ctx context.Context) (*Payload, error) {
	return r.src.Fetch(ctx)
}

// Unwrap returns the wrapped source.
func (r *Renamed) Unwrap() Source { return r.src }
