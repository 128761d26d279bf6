package llm

import "fmt"

// ProviderFactory builds a configured provider from the environment.
type ProviderFactory func() (Provider, error)

// providers maps provider names to their factories. Backends register
// themselves in init so importing a backend package is enough to enable it.
var providers = make(map[string]ProviderFactory)

// RegisterProvider makes a backend selectable by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providers[name] = factory
}

// NewProvider instantiates the named backend.
func NewProvider(name string) (Provider, error) {
	factory, exists := providers[name]
	if !exists {
		return nil, fmt.Errorf("unsupported provider: %s", name)
	}
	return factory()
}
