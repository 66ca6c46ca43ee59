package main

import "fmt"

// ContextWindow is one model's context size in tokens.
type ContextWindow struct {
	Model  string
	Tokens int
}

// contextWindows lists the models shown in the comparison table, in
// display order.
var contextWindows = []ContextWindow{
	// OpenAI
	{"GPT-3.5 (4K)", 4096},
	{"GPT-4 (8K)", 8192},
	{"GPT-4 (32K)", 32768},
	{"GPT-4 Turbo (128K)", 128000},

	// Anthropic
	{"Claude 2 (100K)", 100000},
	{"Claude 3 Opus (200K)", 200000},
	{"Claude 3 Sonnet (200K)", 200000},
	{"Claude 3 Haiku (200K)", 200000},

	// Google
	{"Gemini Pro (32K)", 32768},
	{"PaLM 2 (8K)", 8192},

	// Meta
	{"Llama 2 (4K)", 4096},
	{"Code Llama (100K)", 100000},

	// Other
	{"Mistral Large (32K)", 32768},
	{"Mixtral 8x7B (32K)", 32768},
	{"Yi-34B (200K)", 200000},
	{"Cohere Command (128K)", 128000},
}

// windowUsage returns the share of a context window the total would
// occupy, as a percentage. Values above 100 mean the codebase does not
// fit.
func windowUsage(total, window int) float64 {
	return float64(total) / float64(window) * 100
}

// validateWindows rejects duplicate model names and non-positive sizes,
// the same class of configuration bug the extension table check catches.
func validateWindows(windows []ContextWindow) error {
	seen := make(map[string]struct{}, len(windows))
	for _, w := range windows {
		if w.Tokens <= 0 {
			return fmt.Errorf("model %q has a non-positive context window", w.Model)
		}
		if _, ok := seen[w.Model]; ok {
			return fmt.Errorf("duplicate model %q in context window table", w.Model)
		}
		seen[w.Model] = struct{}{}
	}
	return nil
}
