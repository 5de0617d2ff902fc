package notification

import (
	"context"
	"time"

	"github.com/trezcool/kelasi/core"
)

// Poller periodically refreshes the notification set in the background.
type Poller struct {
	svc      Service
	logger   core.Logger
	interval time.Duration
	stop     chan struct{}
	done     chan struct{}
}

func NewPoller(svc Service, logger core.Logger, interval time.Duration) *Poller {
	return &Poller{
		svc:      svc,
		logger:   logger,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start runs an immediate refresh then keeps refreshing every interval
// until Stop is called.
func (p *Poller) Start() {
	go func() {
		defer close(p.done)

		p.refresh()

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				p.refresh()
			case <-p.stop:
				return
			}
		}
	}()
}

// Stop halts the poller and waits for the loop to exit.
func (p *Poller) Stop() {
	close(p.stop)
	<-p.done
}

func (p *Poller) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), p.interval)
	defer cancel()
	if err := p.svc.Refresh(ctx); err != nil {
		p.logger.Error("notification refresh failed", err)
	}
}
