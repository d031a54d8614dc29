package ai

// ProviderName represents an AI provider identifier
type ProviderName string

// Provider name constants
const (
	ProviderNamePerplexity ProviderName = "perplexity"
	ProviderNameGemini     ProviderName = "gemini"
)

// String returns the string representation of the provider name
func (p ProviderName) String() string {
	return string(p)
}

// IsValid checks if the provider name is supported
func (p ProviderName) IsValid() bool {
	switch p {
	case ProviderNamePerplexity, ProviderNameGemini:
		return true
	default:
		return false
	}
}

// AllProviderNames returns all supported provider names
func AllProviderNames() []ProviderName {
	return []ProviderName{
		ProviderNamePerplexity,
		ProviderNameGemini,
	}
}

// Default request parameters
const (
	DefaultTemperature = 0.1
	DefaultMaxTokens   = 4096
)
