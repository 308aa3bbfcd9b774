package assistant

// Config shapes the study partner persona and its request budgets.
type Config struct {
	Name         string   `yaml:"name"`
	Role         string   `yaml:"role"`
	Description  string   `yaml:"description"`
	Instructions []string `yaml:"instructions"`

	// HistoryTurns is how many prior user/assistant exchanges are replayed
	// with each chat message.
	HistoryTurns int `yaml:"history_turns"`

	// TopK is the number of document chunks retrieved per request.
	TopK int `yaml:"top_k"`

	ChatMaxTokens int     `yaml:"chat_max_tokens"`
	QuizMaxTokens int     `yaml:"quiz_max_tokens"`
	Temperature   float64 `yaml:"temperature"`
}

func DefaultConfig() Config {
	return Config{
		Name:          "StudyScout",
		Role:          defaultRole,
		Description:   defaultDescription,
		Instructions:  append([]string(nil), defaultInstructions...),
		HistoryTurns:  3,
		TopK:          5,
		ChatMaxTokens: 1024,
		QuizMaxTokens: 2048,
		Temperature:   0.4,
	}
}

// withDefaults fills zero fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Name == "" {
		c.Name = d.Name
	}
	if c.Role == "" {
		c.Role = d.Role
	}
	if c.Description == "" {
		c.Description = d.Description
	}
	if len(c.Instructions) == 0 {
		c.Instructions = d.Instructions
	}
	if c.HistoryTurns < 0 {
		c.HistoryTurns = 0
	}
	if c.TopK <= 0 {
		c.TopK = d.TopK
	}
	if c.ChatMaxTokens <= 0 {
		c.ChatMaxTokens = d.ChatMaxTokens
	}
	if c.QuizMaxTokens <= 0 {
		c.QuizMaxTokens = d.QuizMaxTokens
	}
	return c
}
