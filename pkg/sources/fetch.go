package sources

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/agentstation/peerreviews/pkg/logging"
)

// FetchError records which source failed.
type FetchError struct {
	Source ID
	Err    error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	return e.Source.String() + ": " + e.Err.Error()
}

// Unwrap implements errors.Unwrap.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// Failed reports whether err, possibly a joined error, records a failure of
// the source id.
func Failed(err error, id ID) bool {
	if err == nil {
		return false
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			if Failed(e, id) {
				return true
			}
		}
		return false
	}
	var fe *FetchError
	return errors.As(err, &fe) && fe.Source == id
}

// FetchAll fetches the manual and remote payloads concurrently. A nil source
// or a failed fetch yields an empty payload; the failures are logged and
// returned joined, so the caller can always continue with what it has.
func FetchAll(ctx context.Context, manual, remote Source) (*Payload, *Payload, error) {
	payloads := [2]*Payload{Empty(), Empty()}
	errs := [2]error{}

	var g errgroup.Group
	for i, src := range []Source{manual, remote} {
		if src == nil {
			continue
		}
		g.Go(func() error {
			logger := logging.FromContext(ctx).With().Str("source", src.ID().String()).Logger()
			p, err := src.Fetch(ctx)
			if err != nil {
				logger.Warn().Err(err).Msg("Fetch failed, continuing without this source")
				errs[i] = &FetchError{Source: src.ID(), Err: err}
				return nil
			}
			if p == nil {
				p = Empty()
			}
			logger.Debug().Int("entries", p.Len()).Msg("Fetched payload")
			payloads[i] = p
			return nil
		})
	}
	_ = g.Wait()

	return payloads[0], payloads[1], errors.Join(errs[0], errs[1])
}
