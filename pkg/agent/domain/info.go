package domain

// ProviderKind identifies which backend family an agent answers with.
type ProviderKind string

const (
	ProviderPaid       ProviderKind = "paid"
	ProviderLocalModel ProviderKind = "local-model"
	ProviderHostedFree ProviderKind = "hosted-free"
	ProviderBasic      ProviderKind = "basic"
)

// AgentInfo is a read-only snapshot describing the active provider.
type AgentInfo struct {
	Type         ProviderKind `json:"type"`
	Capabilities []string     `json:"capabilities"`
	Status       string       `json:"status"`
}
