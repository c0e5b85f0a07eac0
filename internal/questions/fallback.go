package questions

import (
	"fmt"
	"math/rand/v2"
	"os"
	"strings"

	_ "embed"

	"gopkg.in/yaml.v3"
)

const (
	minPerTechnology = 3
	maxPerTechnology = 5
)

//go:embed bank.yaml
var defaultBank []byte

// Bank maps a lower-cased technology name to its curated question pool.
type Bank map[string][]string

// DefaultBank returns the built-in question pools.
func DefaultBank() (Bank, error) {
	return ParseBank(defaultBank)
}

// ParseBank decodes a YAML document of technology -> questions.
// Keys are lower-cased and blank questions are dropped.
func ParseBank(data []byte) (Bank, error) {
	var decoded map[string][]string
	if err := yaml.Unmarshal(data, &decoded); err != nil {
		return nil, fmt.Errorf("decode question bank: %w", err)
	}

	bank := make(Bank, len(decoded))
	for tech, pool := range decoded {
		key := strings.ToLower(strings.TrimSpace(tech))
		if key == "" {
			continue
		}
		for _, q := range pool {
			if q = strings.TrimSpace(q); q != "" {
				bank[key] = append(bank[key], q)
			}
		}
	}
	return bank, nil
}

// LoadBank reads the built-in bank and merges the pools from path over it.
// An empty path returns the built-in bank.
func LoadBank(path string) (Bank, error) {
	bank, err := DefaultBank()
	if err != nil {
		return nil, err
	}

	path = strings.TrimSpace(path)
	if path == "" {
		return bank, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading question bank %q: %w", path, err)
	}

	custom, err := ParseBank(data)
	if err != nil {
		return nil, err
	}

	for tech, pool := range custom {
		bank[tech] = pool
	}
	return bank, nil
}

// Pool returns the curated pool for tech or a generic one built around its name.
func (b Bank) Pool(tech string) []string {
	if pool, ok := b[strings.ToLower(tech)]; ok && len(pool) > 0 {
		return pool
	}
	return []string{
		fmt.Sprintf("What is %s?", tech),
		fmt.Sprintf("Explain a real-world use case of %s.", tech),
		fmt.Sprintf("How would you apply %s in a project?", tech),
	}
}

// Fallback produces screening questions without calling any external service.
type Fallback struct {
	bank Bank
	rng  *rand.Rand
}

// NewFallback creates a generator over bank. A nil bank means the built-in
// pools and a nil rng gets a randomly seeded source.
func NewFallback(bank Bank, rng *rand.Rand) *Fallback {
	if bank == nil {
		// The embedded bank is validated by tests, a parse error leaves only generic pools.
		bank, _ = DefaultBank()
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Fallback{bank: bank, rng: rng}
}

// Generate picks 3 to 5 questions per technology of stack, numbered across the whole call.
func (f *Fallback) Generate(stack string) []Question {
	list := make([]Question, 0)

	for _, tech := range SplitTechStack(stack) {
		pool := f.bank.Pool(tech)

		count := minPerTechnology + f.rng.IntN(maxPerTechnology-minPerTechnology+1)
		if count > len(pool) {
			count = len(pool)
		}

		for _, idx := range f.rng.Perm(len(pool))[:count] {
			list = append(list, Question{
				Technology: tech,
				Text:       pool[idx],
				Number:     len(list) + 1,
			})
		}
	}

	return list
}
