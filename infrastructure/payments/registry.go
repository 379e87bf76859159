package payments

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"wagerhub/domain/entities"
	"wagerhub/domain/interfaces"
)

// Processor names accepted by the API
const (
	ProviderStripe  = "stripe"
	ProviderCashApp = "cashapp"
	ProviderPayPal  = "paypal"
	ProviderStrike  = "strike"
)

// Registry resolves processors by case-insensitive name
type Registry struct {
	providers map[string]interfaces.PaymentProvider
}

// NewRegistry registers the given providers under their lower-cased names
func NewRegistry(providers ...interfaces.PaymentProvider) *Registry {
	r := &Registry{providers: make(map[string]interfaces.PaymentProvider, len(providers))}
	for _, p := range providers {
		r.providers[strings.ToLower(p.Name())] = p
	}
	return r
}

// NewDefaultRegistry wires every supported processor stub
func NewDefaultRegistry(latency time.Duration) *Registry {
	return NewRegistry(
		NewStripeProvider(latency),
		NewCashAppProvider(latency),
		NewPayPalProvider(latency),
		NewStrikeProvider(latency),
	)
}

// Get looks up a processor; "cashApp" and "cashapp" resolve to the same one
func (r *Registry) Get(name string) (interfaces.PaymentProvider, error) {
	p, ok := r.providers[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", entities.ErrUnknownProvider, name)
	}
	return p, nil
}

// Names lists registered processors alphabetically
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
