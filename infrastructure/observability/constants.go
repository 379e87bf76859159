package observability

const MetricPrefix = "wagerhub"

// Metric names
const (
	// HTTP metrics
	HTTPRequestsTotal   = MetricPrefix + ".http.requests_total"
	HTTPRequestDuration = MetricPrefix + ".http.request_duration"

	// Payment metrics
	PaymentsTotal = MetricPrefix + ".payments.total"

	// Wager metrics
	WagersSettledTotal      = MetricPrefix + ".wagers.settled_total"
	WagerTokensSettledTotal = MetricPrefix + ".wagers.tokens_settled_total"
)

// Label keys
const (
	LabelMethod   = "method"
	LabelRoute    = "route"
	LabelStatus   = "status"
	LabelType     = "type"
	LabelProvider = "provider"
	LabelOutcome  = "outcome"
)

// Exporter types
const (
	ExporterConsole = "console"
	ExporterOTLP    = "otlp"
	ExporterNone    = "none"
)
