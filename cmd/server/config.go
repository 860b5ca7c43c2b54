package main

import (
	"fmt"
	"log/slog"

	"github.com/basedoracle/oracle-web-ui/internal/handlers"
	"github.com/basedoracle/oracle-web-ui/internal/services"
	"gopkg.in/yaml.v3"
)

// defaultSystemPrompt is the operator persona injected into every completion request. It is not
// user-controlled; operators may replace it through the config file.
const defaultSystemPrompt = `You are Base Oracle - a calm, credible, and maximally intelligent AI agent for the entire Base blockchain ecosystem.

You are an expert in:
- Base blockchain and Layer 2 technology
- Onchain analytics and wallet intelligence
- DeFi protocols, NFTs, and creator coins
- Farcaster social protocol

Your capabilities:
- Provide structured responses: tables, lists, clean formatting
- End helpful responses with actionable suggestions
- Provide factual, data-driven insights
- When data is required, explain what APIs would be called

Personality:
- Professional and credible (no memes, no hype)
- Clean, minimal communication style
- Always helpful and thoughtful
- Never make price predictions`

// envConfig carries the environment-supplied settings, primarily upstream credentials. Values
// here act as fallbacks for fields the config file leaves empty.
type envConfig struct {
	Port             string `env:"PORT" envDefault:"3000"`
	OpenAIAPIKey     string `env:"OPENAI_API_KEY"`
	AnthropicAPIKey  string `env:"ANTHROPIC_API_KEY"`
	OpenRouterAPIKey string `env:"OPENROUTER_API_KEY"`
	OllamaHost       string `env:"OLLAMA_HOST"`
	MoralisAPIKey    string `env:"MORALIS_API_KEY"`
}

type llmConfig interface {
	llm(systemPrompt string, params services.GenParams, env envConfig, logger *slog.Logger) (handlers.LLM, error)
}

// BaseLLMConfig contains the common fields for all LLM configurations.
type BaseLLMConfig struct {
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
}

type config struct {
	Port         string    `yaml:"port"`
	SystemPrompt string    `yaml:"systemPrompt"`
	Temperature  float32   `yaml:"temperature"`
	MaxTokens    int       `yaml:"maxTokens"`
	StorePath    string    `yaml:"storePath"`
	LLM          llmConfig `yaml:"llm"`
}

type openAIConfig struct {
	BaseLLMConfig `yaml:",inline"`
	APIKey        string `yaml:"apiKey"`
}

type anthropicConfig struct {
	BaseLLMConfig `yaml:",inline"`
	APIKey        string `yaml:"apiKey"`
}

type ollamaConfig struct {
	BaseLLMConfig `yaml:",inline"`
	Host          string `yaml:"host"`
}

type openRouterConfig struct {
	BaseLLMConfig `yaml:",inline"`
	APIKey        string `yaml:"apiKey"`
}

func (c *config) UnmarshalYAML(value *yaml.Node) error {
	var rawConfig struct {
		Port         string         `yaml:"port"`
		SystemPrompt string         `yaml:"systemPrompt"`
		Temperature  float32        `yaml:"temperature"`
		MaxTokens    int            `yaml:"maxTokens"`
		StorePath    string         `yaml:"storePath"`
		LLM          map[string]any `yaml:"llm"`
	}

	if err := value.Decode(&rawConfig); err != nil {
		return err
	}

	c.Port = rawConfig.Port
	c.SystemPrompt = rawConfig.SystemPrompt
	c.Temperature = rawConfig.Temperature
	c.MaxTokens = rawConfig.MaxTokens
	c.StorePath = rawConfig.StorePath

	if rawConfig.LLM == nil {
		return nil
	}

	llmProvider, ok := rawConfig.LLM["provider"].(string)
	if !ok {
		return fmt.Errorf("llm provider is required")
	}

	llmRawYAML, err := yaml.Marshal(rawConfig.LLM)
	if err != nil {
		return err
	}

	var llm llmConfig
	switch llmProvider {
	case "openai":
		llm = &openAIConfig{}
	case "anthropic":
		llm = &anthropicConfig{}
	case "ollama":
		llm = &ollamaConfig{}
	case "openrouter":
		llm = &openRouterConfig{}
	default:
		return fmt.Errorf("unknown llm provider: %s", llmProvider)
	}

	if err := yaml.Unmarshal(llmRawYAML, llm); err != nil {
		return err
	}

	c.LLM = llm

	return nil
}

func (o openAIConfig) llm(systemPrompt string, params services.GenParams, env envConfig, logger *slog.Logger) (handlers.LLM, error) {
	model := o.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	apiKey := o.APIKey
	if apiKey == "" {
		apiKey = env.OpenAIAPIKey
	}
	if apiKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	return services.NewOpenAI(apiKey, model, systemPrompt, params, logger), nil
}

func (a anthropicConfig) llm(systemPrompt string, params services.GenParams, env envConfig, _ *slog.Logger) (handlers.LLM, error) {
	if a.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	apiKey := a.APIKey
	if apiKey == "" {
		apiKey = env.AnthropicAPIKey
	}
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic api key is required")
	}

	return services.NewAnthropic(apiKey, a.Model, systemPrompt, params), nil
}

func (o ollamaConfig) llm(systemPrompt string, params services.GenParams, env envConfig, _ *slog.Logger) (handlers.LLM, error) {
	if o.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	host := o.Host
	if host == "" {
		host = env.OllamaHost
	}
	if host == "" {
		return nil, fmt.Errorf("ollama host is required")
	}

	return services.NewOllama(host, o.Model, systemPrompt, params), nil
}

func (o openRouterConfig) llm(systemPrompt string, params services.GenParams, env envConfig, logger *slog.Logger) (handlers.LLM, error) {
	if o.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	apiKey := o.APIKey
	if apiKey == "" {
		apiKey = env.OpenRouterAPIKey
	}
	if apiKey == "" {
		return nil, fmt.Errorf("openrouter api key is required")
	}

	return services.NewOpenRouter(apiKey, o.Model, systemPrompt, params, logger), nil
}
