package config

const (
	defaultEndpoint    = "https://api.groq.com/openai/v1"
	defaultModel       = "meta-llama/llama-4-scout-17b-16e-instruct"
	defaultMaxTokens   = 512
	defaultTaskDelayMs = 100

	defaultEventstreamTopic = "ragbench.tasks"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Generation: GenerationConfig{
			Endpoint:    defaultEndpoint,
			Model:       defaultModel,
			MaxTokens:   defaultMaxTokens,
			TaskDelayMs: defaultTaskDelayMs,
		},
		Eventstream: EventstreamConfig{
			Topic: defaultEventstreamTopic,
		},
	}
}
