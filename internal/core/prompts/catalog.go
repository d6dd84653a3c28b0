// Package prompts holds the fixed tutoring instructions for every known level.
package prompts

import (
	"fmt"

	"github.com/turtlecode/tutor-api/internal/core/domain"
)

const (
	// GenericSystemPrompt is used for guidance on unknown levels.
	GenericSystemPrompt = "You are a helpful coding tutor."
	// GenericFallbackTip is the opening message for unknown levels when the provider fails.
	GenericFallbackTip = "Welcome! Send your code and I'll provide guidance."
	// TipsSystemPrompt frames every tip-generation request.
	TipsSystemPrompt = "You are an encouraging coding tutor. Provide practical tips for learning to code."

	// HintClause is appended to the system prompt on hint requests.
	HintClause = "\n\nIMPORTANT: The student asked for a hint. Provide ONE specific, focused hint that helps them move forward without giving away the solution."

	// QuotaFallback replaces the guidance reply when the provider is out of quota.
	QuotaFallback = "The AI guidance service is currently unavailable due to usage limits. However, remember the key concepts: think about the geometry of what you're drawing, test your code step by step, and don't be afraid to experiment. You're on the right track!"
)

var (
	// GuidanceParams are used for every guidance turn.
	GuidanceParams = domain.ModelParams{Temperature: 0.7, MaxTokens: 500}
	// TipsParams are used for tip generation.
	TipsParams = domain.ModelParams{Temperature: 0.8, MaxTokens: 400}
)

// Level describes one exercise and the instructions used to tutor it.
type Level struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Difficulty  string `json:"difficulty"`

	SystemPrompt string `json:"-"`
	TipPrompt    string `json:"-"`
	FallbackTip  string `json:"-"`
}

// Catalog is a read-only lookup of levels.
type Catalog struct {
	levels []Level
	index  map[string]int
}

// New builds a catalog from the given levels. Later duplicates replace earlier ones.
func New(levels ...Level) *Catalog {
	c := &Catalog{index: make(map[string]int, len(levels))}
	for _, l := range levels {
		if i, ok := c.index[l.ID]; ok {
			c.levels[i] = l
			continue
		}
		c.index[l.ID] = len(c.levels)
		c.levels = append(c.levels, l)
	}
	return c
}

// Default returns the catalog of built-in levels.
func Default() *Catalog {
	return New(builtinLevels...)
}

// Lookup returns the level and whether it is known.
func (c *Catalog) Lookup(id string) (Level, bool) {
	i, ok := c.index[id]
	if !ok {
		return Level{}, false
	}
	return c.levels[i], true
}

// Levels returns the known levels in catalog order.
func (c *Catalog) Levels() []Level {
	out := make([]Level, len(c.levels))
	copy(out, c.levels)
	return out
}

// SystemPrompt returns the tutoring instruction for a level, or the generic
// prompt for unknown levels. It never fails.
func (c *Catalog) SystemPrompt(id string) string {
	if l, ok := c.Lookup(id); ok {
		return l.SystemPrompt
	}
	return GenericSystemPrompt
}

// GuidancePrompt is SystemPrompt plus the hint clause when isHint is set.
func (c *Catalog) GuidancePrompt(id string, isHint bool) string {
	p := c.SystemPrompt(id)
	if isHint {
		return p + HintClause
	}
	return p
}

// TipPrompt returns the tip-generation instruction for a level.
func (c *Catalog) TipPrompt(id string) string {
	if l, ok := c.Lookup(id); ok {
		return l.TipPrompt
	}
	return fmt.Sprintf("Give tips for Code.org level %s without solving it.", id)
}

// FallbackTip returns the static opening message used when tip generation fails.
func (c *Catalog) FallbackTip(id string) string {
	if l, ok := c.Lookup(id); ok {
		return l.FallbackTip
	}
	return GenericFallbackTip
}
