package terminology

import (
	"sort"

	"github.com/clintables/codefinder/internal/domain/entities"
	"github.com/clintables/codefinder/internal/domain/providers"
	"github.com/clintables/codefinder/internal/infrastructure/clients/clinicaltables"
)

// Coding-system names.
const (
	SystemICD10   = "ICD-10-CM"
	SystemLOINC   = "LOINC"
	SystemRxTerms = "RxTerms"
	SystemHCPCS   = "HCPCS"
	SystemUCUM    = "UCUM"
	SystemHPO     = "HPO"
)

// intentToSystems maps each intent category to the coding systems worth
// searching for it.
var intentToSystems = map[string][]string{
	entities.IntentDiagnosis:     {SystemICD10, SystemHPO},
	entities.IntentLaboratory:    {SystemLOINC, SystemUCUM},
	entities.IntentMedication:    {SystemRxTerms},
	entities.IntentSupplyService: {SystemHCPCS},
	entities.IntentUnit:          {SystemUCUM},
	entities.IntentPhenotype:     {SystemHPO},
}

// SystemsForIntent returns the coding systems mapped to an intent category.
func SystemsForIntent(category string) []string {
	return intentToSystems[category]
}

// Registry holds the full adapter set keyed by system name.
type Registry struct {
	adapters map[string]providers.CodeSearcher
}

// NewRegistry builds the standard six-system registry over a shared client.
func NewRegistry(client *clinicaltables.Client) *Registry {
	r := &Registry{adapters: make(map[string]providers.CodeSearcher)}
	for _, a := range []*Adapter{
		NewICD10(client),
		NewLOINC(client),
		NewRxTerms(client),
		NewHCPCS(client),
		NewUCUM(client),
		NewHPO(client),
	} {
		r.adapters[a.System()] = a
	}
	return r
}

// NewRegistryFrom builds a registry from explicit searchers, used by tests
// to substitute fakes.
func NewRegistryFrom(searchers ...providers.CodeSearcher) *Registry {
	r := &Registry{adapters: make(map[string]providers.CodeSearcher)}
	for _, s := range searchers {
		r.adapters[s.System()] = s
	}
	return r
}

// Get returns the adapter for a system, or nil if unknown.
func (r *Registry) Get(system string) providers.CodeSearcher {
	return r.adapters[system]
}

// Searchers returns the adapter map keyed by system name.
func (r *Registry) Searchers() map[string]providers.CodeSearcher {
	return r.adapters
}

// Systems returns all registered system names, sorted.
func (r *Registry) Systems() []string {
	systems := make([]string, 0, len(r.adapters))
	for s := range r.adapters {
		systems = append(systems, s)
	}
	sort.Strings(systems)
	return systems
}
