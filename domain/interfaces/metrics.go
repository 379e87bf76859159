package interfaces

import "time"

// Metrics records platform counters. Implementations are safe for concurrent use.
type Metrics interface {
	RecordHTTPRequest(method, route string, status int, duration time.Duration)
	RecordPayment(txType, provider, outcome string)
	RecordWagerSettled(amount int64)
}
