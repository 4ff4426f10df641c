package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

func (n *NoopRecorder) IncUserRegistered()                          {}
func (n *NoopRecorder) IncUserUpdated()                             {}
func (n *NoopRecorder) IncUserDeleted()                             {}
func (n *NoopRecorder) IncUserLookup(source string)                 {}
func (n *NoopRecorder) IncAccountOpened()                           {}
func (n *NoopRecorder) IncAccountUpdated()                          {}
func (n *NoopRecorder) IncAccountClosed()                           {}
func (n *NoopRecorder) IncEventPublished(status string)             {}
func (n *NoopRecorder) IncStoreError(op string)                     {}
func (n *NoopRecorder) ObserveStoreDuration(duration time.Duration) {}
