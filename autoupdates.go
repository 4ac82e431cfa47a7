package peerreviews

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/agentstation/peerreviews/pkg/constants"
	"github.com/agentstation/peerreviews/pkg/errors"
	"github.com/agentstation/peerreviews/pkg/logging"
)

// Compile-time interface check to ensure proper implementation.
var _ AutoUpdater = (*client)(nil)

// AutoUpdater provides controls for automatic refresh.
type AutoUpdater interface {
	// AutoUpdatesOn begins refreshing on the configured interval
	AutoUpdatesOn() error

	// AutoUpdatesOff stops automatic refresh
	AutoUpdatesOff() error
}

// AutoUpdatesOn begins automatic updates. Calling it again restarts the loop.
func (c *client) AutoUpdatesOn() error {
	interval := c.options.autoUpdateInterval
	if interval <= 0 {
		return &errors.ValidationError{
			Field:   "autoUpdateInterval",
			Value:   interval,
			Message: "update interval must be positive",
		}
	}

	c.autoMu.Lock()
	defer c.autoMu.Unlock()

	c.stopLocked()

	c.stopCh = make(chan struct{})
	c.updateTicker = time.NewTicker(interval)
	ctx, cancel := context.WithCancel(context.Background())
	c.updateCancel = cancel

	go func(parentCtx context.Context, ticker *time.Ticker, stop <-chan struct{}) {
		for {
			select {
			case <-ticker.C:
				updateCtx, updateCancel := context.WithTimeout(parentCtx, constants.UpdateContextTimeout)
				_, err := c.Update(updateCtx)
				updateCancel()

				if err != nil {
					if stderrors.Is(err, context.Canceled) {
						return
					}
					// Partial failures keep the last good data; log and continue
					logging.Warn().Err(err).Msg("Auto-update incomplete")
				}
			case <-parentCtx.Done():
				return
			case <-stop:
				return
			}
		}
	}(ctx, c.updateTicker, c.stopCh)

	return nil
}

// AutoUpdatesOff stops automatic updates. It is safe to call repeatedly.
func (c *client) AutoUpdatesOff() error {
	c.autoMu.Lock()
	defer c.autoMu.Unlock()
	c.stopLocked()
	return nil
}

func (c *client) stopLocked() {
	if c.updateTicker != nil {
		c.updateTicker.Stop()
		c.updateTicker = nil
	}
	if c.updateCancel != nil {
		c.updateCancel()
		c.updateCancel = nil
	}
	select {
	case <-c.stopCh:
	default:
		close(c.stopCh)
	}
}
