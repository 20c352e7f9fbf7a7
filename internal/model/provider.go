package model

// ProviderKind identifies the wire-protocol family a provider speaks.
type ProviderKind string

const (
	ProviderOpenAI  ProviderKind = "openai"
	ProviderClaude  ProviderKind = "claude"
	ProviderOllama  ProviderKind = "ollama"
	ProviderKimi    ProviderKind = "kimi"
	ProviderMinimax ProviderKind = "minimax"
)

// Provider is a configured remote text-generation backend.
type Provider struct {
	ID       string       `db:"id"`
	Name     string       `db:"name"`
	Kind     ProviderKind `db:"kind"`
	Endpoint string       `db:"endpoint"`
	Model    string       `db:"model"`

	// APIKey may be empty for local providers (ollama) or when the key
	// is kept in the system keyring instead of the database.
	APIKey string `db:"api_key"`

	// IsDefault marks the provider used when no explicit choice is
	// made. The store guarantees at most one default at a time.
	IsDefault bool `db:"is_default"`
}
