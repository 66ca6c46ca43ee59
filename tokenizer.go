package main

import (
	"fmt"
	"math"
	"os"
	"strings"
	"unicode/utf8"

	tiktoken "github.com/pkoukk/tiktoken-go"
	hf "github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"
)

// Tokenizer counts tokens in file content. Implementations must be safe
// for concurrent use; one instance is shared by all workers. An error
// from CountTokens is recoverable: it skips that one file, not the run.
type Tokenizer interface {
	CountTokens(text string) (int, error)
	Close()
}

// TokenizerConfig selects and parameterizes a tokenizer backend.
type TokenizerConfig struct {
	Type  string // tiktoken, huggingface or estimate
	Model string // model identifier, backend-specific
	File  string // local tokenizer.json for the huggingface backend
	Quiet bool   // suppress loading chatter
}

const (
	defaultTiktokenModel = "gpt-4o"
	defaultHFModel       = "gpt2"
)

// newTokenizer returns the tokenizer selected by cfg. Failure here is
// fatal for the caller: a run never starts without a working tokenizer.
func newTokenizer(cfg TokenizerConfig) (Tokenizer, error) {
	switch strings.ToLower(cfg.Type) {
	case "tiktoken":
		return loadTiktoken(cfg)
	case "huggingface":
		return loadHuggingFace(cfg)
	case "estimate":
		return EstimatingTokenizer{}, nil
	default:
		return nil, fmt.Errorf("unsupported tokenizer type: %s. Use 'tiktoken', 'huggingface' or 'estimate'", cfg.Type)
	}
}

// --- Tiktoken Wrapper ---

type TiktokenWrapper struct {
	ttk *tiktoken.Tiktoken
}

func (w *TiktokenWrapper) CountTokens(text string) (int, error) {
	return len(w.ttk.EncodeOrdinary(text)), nil
}

func (w *TiktokenWrapper) Close() {
	// No explicit close needed for tiktoken-go
}

func loadTiktoken(cfg TokenizerConfig) (Tokenizer, error) {
	model := cfg.Model
	if model == "" {
		model = defaultTiktokenModel
	}

	tke, err := tiktoken.EncodingForModel(model)
	if err != nil {
		if model == defaultTiktokenModel {
			return nil, fmt.Errorf("failed to get tiktoken encoding for model '%s': %w", model, err)
		}
		if !cfg.Quiet {
			fmt.Fprintf(os.Stderr, "Warning: tiktoken model '%s' not found, falling back to '%s'. Error: %v\n", model, defaultTiktokenModel, err)
		}
		tke, err = tiktoken.EncodingForModel(defaultTiktokenModel)
		if err != nil {
			return nil, fmt.Errorf("failed to get tiktoken encoding for default model '%s': %w", defaultTiktokenModel, err)
		}
	}
	return &TiktokenWrapper{ttk: tke}, nil
}

// --- HuggingFace (sugarme) Wrapper ---

type HFTokenizerWrapper struct {
	htk *hf.Tokenizer
}

func (w *HFTokenizerWrapper) CountTokens(text string) (int, error) {
	en, err := w.htk.EncodeSingle(text)
	if err != nil {
		return 0, fmt.Errorf("huggingface encode: %w", err)
	}
	return len(en.Tokens), nil
}

func (w *HFTokenizerWrapper) Close() {
	// sugarme/tokenizer has no explicit Close/Free
}

func loadHuggingFace(cfg TokenizerConfig) (Tokenizer, error) {
	if cfg.File != "" {
		ttk, err := pretrained.FromFile(cfg.File)
		if err != nil {
			return nil, fmt.Errorf("failed to load tokenizer from file %s: %w", cfg.File, err)
		}
		return &HFTokenizerWrapper{htk: ttk}, nil
	}

	model := cfg.Model
	if model == "" {
		model = defaultHFModel
	}
	if !cfg.Quiet {
		fmt.Printf("Loading HuggingFace tokenizer for model: %s (this may download files)\n", model)
	}

	// CachedPath downloads tokenizer.json on first use and reuses the
	// local copy afterwards.
	configFilePath, err := hf.CachedPath(model, "tokenizer.json")
	if err != nil {
		return nil, fmt.Errorf("failed to get cache path for model %s: %w", model, err)
	}
	ttk, err := pretrained.FromFile(configFilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load pretrained tokenizer for model %s (from %s): %w", model, configFilePath, err)
	}
	return &HFTokenizerWrapper{htk: ttk}, nil
}

// --- Estimating Tokenizer ---

// charsPerToken is the character-to-token ratio used by the estimate
// backend. Four characters per token is a reasonable average for code and
// English prose.
const charsPerToken = 4.0

// EstimatingTokenizer approximates token counts from character counts. It
// loads no model, never fails and needs no network.
type EstimatingTokenizer struct{}

func (EstimatingTokenizer) CountTokens(text string) (int, error) {
	if text == "" {
		return 0, nil
	}
	chars := utf8.RuneCountInString(text)
	return int(math.Round(float64(chars) / charsPerToken)), nil
}

func (EstimatingTokenizer) Close() {}
