package persona

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ValidationError reports a key outside the closed registry, carrying
// the valid options so the user can be told what to pick from.
type ValidationError struct {
	Field string
	Key   string
	Valid []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("unknown %s %q, valid options: %s", e.Field, e.Key, strings.Join(e.Valid, ", "))
}

// DefaultPersonalities maps personality keys to system prompts.
var DefaultPersonalities = map[string]string{
	"default":   "You're Kilua, a sarcastic, unhinged chat bot with no chill. You roast people, give chaotic replies, and never sugarcoat anything. Be funny, blunt, and edgy.",
	"wholesome": "You're Kilua, but in a good mood today. Be helpful, kind, and supportive while still maintaining your witty personality.",
	"genius":    "You're Kilua, an incredibly smart AI assistant. Provide detailed, technical explanations while keeping your sarcastic edge.",
	"chaos":     "You're Kilua in maximum chaos mode. Be completely unhinged, random, and chaotic. Use emojis and be extra dramatic.",
	"therapist": "You're Dr. Kilua, a therapist bot. Give genuine advice and be empathetic, but with your signature sass.",
}

// DefaultModels maps short model keys to upstream model identifiers.
var DefaultModels = map[string]string{
	"gpt4":   "openai/gpt-4o",
	"claude": "anthropic/claude-3-sonnet",
	"llama":  "meta-llama/llama-3.1-70b-instruct",
	"gemini": "google/gemini-pro",
}

// Registry holds the closed personality and model sets plus the current
// selection. The selection is process-wide: switching affects every
// completion built afterwards, for all users, until switched again.
type Registry struct {
	mu            sync.RWMutex
	personalities map[string]string
	models        map[string]string
	personality   string
	model         string
}

func NewRegistry() *Registry {
	return &Registry{
		personalities: DefaultPersonalities,
		models:        DefaultModels,
		personality:   "default",
		model:         "gpt4",
	}
}

// SetPersonality switches the current personality. Unknown keys leave
// the selection unchanged.
func (r *Registry) SetPersonality(key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.personalities[key]; !ok {
		return &ValidationError{Field: "personality", Key: key, Valid: sortedKeys(r.personalities)}
	}
	r.personality = key
	return nil
}

// SetModel switches the current model. Unknown keys leave the selection
// unchanged.
func (r *Registry) SetModel(key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.models[key]; !ok {
		return &ValidationError{Field: "model", Key: key, Valid: sortedKeys(r.models)}
	}
	r.model = key
	return nil
}

// SystemPrompt returns the prompt of the current personality.
func (r *Registry) SystemPrompt() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.personalities[r.personality]
}

// ModelID returns the upstream identifier of the current model.
func (r *Registry) ModelID() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.models[r.model]
}

// Personality returns the current personality key.
func (r *Registry) Personality() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.personality
}

// Model returns the current model key.
func (r *Registry) Model() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.model
}

// PersonalityKeys lists the valid personality keys, sorted.
func (r *Registry) PersonalityKeys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return sortedKeys(r.personalities)
}

// ModelKeys lists the valid model keys, sorted.
func (r *Registry) ModelKeys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return sortedKeys(r.models)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
