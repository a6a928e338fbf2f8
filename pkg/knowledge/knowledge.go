// Package knowledge is the last line of the fallback chain: a keyword-matched
// astronomy fact table and a handful of canned image descriptions. It performs
// no I/O and never fails once constructed.
package knowledge

import (
	_ "embed"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed knowledge.yaml
var embeddedTable []byte

// KeywordFact maps a lower-case keyword to a fact about it
type KeywordFact struct {
	Keyword string `yaml:"keyword"`
	Fact    string `yaml:"fact"`
}

// BasicAnalysis is a canned description used when no provider is reachable
type BasicAnalysis struct {
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Facts       []string `yaml:"facts"`
}

// Table is the parsed content of knowledge.yaml
type Table struct {
	Keywords        []KeywordFact   `yaml:"keywords"`
	ContextFacts    []string        `yaml:"context_facts"`
	Analyses        []BasicAnalysis `yaml:"analyses"`
	AnswerTemplates []string        `yaml:"answer_templates"`
}

var loadTable = sync.OnceValues(func() (*Table, error) {
	var table Table
	if err := yaml.Unmarshal(embeddedTable, &table); err != nil {
		return nil, fmt.Errorf("failed to parse embedded knowledge table: %w", err)
	}
	if len(table.ContextFacts) == 0 || len(table.Analyses) == 0 || len(table.AnswerTemplates) == 0 {
		return nil, fmt.Errorf("embedded knowledge table is incomplete")
	}
	return &table, nil
})

// LoadTable returns the embedded knowledge table
func LoadTable() (*Table, error) {
	return loadTable()
}

// Base answers questions from the fixed table. Outputs are randomized, so callers
// should only rely on content, not exact bytes. Safe for concurrent use.
type Base struct {
	table *Table
	mode  string

	mu  sync.Mutex
	rng *rand.Rand
}

// NewRand returns a seeded random source; tests pin the seed to get stable output.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// New creates a knowledge base. mode names the free-tier mode shown in answer
// footers ("basic", "ollama", ...). A nil rng is replaced by a time-seeded one.
func New(mode string, rng *rand.Rand) (*Base, error) {
	table, err := LoadTable()
	if err != nil {
		return nil, err
	}
	if rng == nil {
		rng = NewRand(uint64(time.Now().UnixNano()))
	}
	return &Base{table: table, mode: mode, rng: rng}, nil
}

func (b *Base) intN(n int) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.rng.IntN(n)
}

// MatchingFacts returns the facts whose keyword occurs in question, in table order.
func (b *Base) MatchingFacts(question string) []string {
	lower := strings.ToLower(question)
	var facts []string
	for _, kf := range b.table.Keywords {
		if strings.Contains(lower, kf.Keyword) {
			facts = append(facts, kf.Fact)
		}
	}
	return facts
}

// GenerateAnswer builds an answer from the matching keyword facts and the optional
// context text (typically a previous image analysis).
func (b *Base) GenerateAnswer(question, context string) string {
	var knowledge strings.Builder
	for _, fact := range b.MatchingFacts(question) {
		knowledge.WriteString(fact)
		knowledge.WriteString("\n\n")
	}

	tmpl := b.table.AnswerTemplates[b.intN(len(b.table.AnswerTemplates))]
	answer := strings.NewReplacer(
		"{question}", question,
		"{context}", context,
		"{knowledge}", knowledge.String(),
	).Replace(tmpl)

	return fmt.Sprintf("%s\n\n💡 **Free Agent Status:** Using %s mode - no API costs!", answer, b.mode)
}

// BasicDescribe returns one canned analysis. imageURL is accepted for symmetry
// with the provider adapters; the text does not depend on it.
func (b *Base) BasicDescribe(imageURL string) string {
	analysis := b.table.Analyses[b.intN(len(b.table.Analyses))]

	var sb strings.Builder
	sb.WriteString("🔭 Basic Astronomical Analysis\n\n")
	fmt.Fprintf(&sb, "**Title:** %s\n", analysis.Title)
	fmt.Fprintf(&sb, "**Description:** %s\n\n", analysis.Description)
	sb.WriteString("**Key Facts:**\n")
	for i, fact := range analysis.Facts {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("• " + fact)
	}
	sb.WriteString("\n\n**Note:** This is a basic analysis without AI. For detailed analysis, consider using Ollama (local) or Hugging Face (free API) services.")
	return sb.String()
}

// RandomFact returns one general astronomy fact for enriching short captions.
func (b *Base) RandomFact() string {
	return b.table.ContextFacts[b.intN(len(b.table.ContextFacts))]
}

// Titles lists the canned analysis titles
func (b *Base) Titles() []string {
	titles := make([]string, 0, len(b.table.Analyses))
	for _, a := range b.table.Analyses {
		titles = append(titles, a.Title)
	}
	return titles
}
