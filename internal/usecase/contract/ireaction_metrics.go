package usecasecontract

import "time"

// IReactionMetrics records toggle outcomes and live subscription counts.
type IReactionMetrics interface {
	ObserveToggle(kind, result string, elapsed time.Duration)
	SubscriberOpened()
	SubscriberClosed()
}
