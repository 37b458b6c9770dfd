package catalog

// builtinProviders is the static provider table used by Default.
// Costs are USD per 1k tokens (or per-minute equivalents for audio).
func builtinProviders() []ProviderConfig {
	return []ProviderConfig{
		{
			Family:        "openai",
			DisplayName:   "OpenAI",
			EndpointURL:   "https://api.openai.com/v1",
			CredentialEnv: "OPENAI_API_KEY",
			Models: []ModelDescriptor{
				{
					ID:           "gpt-4o",
					DisplayName:  "GPT-4o",
					Capabilities: []Capability{CapabilityText, CapabilityImage},
					MaxContext:   128000,
					CostPerUnit:  0.005,
					Description:  "Flagship multimodal model for text and images",
				},
				{
					ID:           "gpt-4o-mini",
					DisplayName:  "GPT-4o mini",
					Capabilities: []Capability{CapabilityText, CapabilityImage},
					MaxContext:   128000,
					CostPerUnit:  0.00015,
					Description:  "Small, fast multimodal model",
				},
				{
					ID:           "gpt-3.5-turbo",
					DisplayName:  "GPT-3.5 Turbo",
					Capabilities: []Capability{CapabilityText},
					MaxContext:   16385,
					CostPerUnit:  0.0005,
					Description:  "Legacy text-only chat model",
				},
				{
					ID:           "whisper-1",
					DisplayName:  "Whisper",
					Capabilities: []Capability{CapabilityAudio},
					CostPerUnit:  0.006,
					Description:  "Speech-to-text transcription",
				},
			},
		},
		{
			Family:        "anthropic",
			DisplayName:   "Anthropic",
			EndpointURL:   "https://api.anthropic.com",
			CredentialEnv: "ANTHROPIC_API_KEY",
			Models: []ModelDescriptor{
				{
					ID:           "claude-3-5-sonnet",
					DisplayName:  "Claude 3.5 Sonnet",
					Capabilities: []Capability{CapabilityText, CapabilityImage},
					MaxContext:   200000,
					CostPerUnit:  0.003,
					Description:  "Balanced model with strong vision support",
				},
				{
					ID:           "claude-3-haiku",
					DisplayName:  "Claude 3 Haiku",
					Capabilities: []Capability{CapabilityText, CapabilityImage},
					MaxContext:   200000,
					CostPerUnit:  0.00025,
					Description:  "Fastest and cheapest Claude model",
				},
				{
					ID:           "claude-3-opus",
					DisplayName:  "Claude 3 Opus",
					Capabilities: []Capability{CapabilityText, CapabilityImage},
					MaxContext:   200000,
					CostPerUnit:  0.015,
					Description:  "Highest quality Claude 3 model",
				},
			},
		},
		{
			Family:        "google",
			DisplayName:   "Google Gemini",
			EndpointURL:   "https://generativelanguage.googleapis.com/v1beta",
			CredentialEnv: "GEMINI_API_KEY",
			Models: []ModelDescriptor{
				{
					ID:           "gemini-1.5-pro",
					DisplayName:  "Gemini 1.5 Pro",
					Capabilities: []Capability{CapabilityText, CapabilityImage, CapabilityVideo, CapabilityAudio},
					MaxContext:   2000000,
					CostPerUnit:  0.00125,
					Description:  "Long-context model with native video and audio understanding",
				},
				{
					ID:           "gemini-1.5-flash",
					DisplayName:  "Gemini 1.5 Flash",
					Capabilities: []Capability{CapabilityText, CapabilityImage, CapabilityVideo, CapabilityAudio},
					MaxContext:   1000000,
					CostPerUnit:  0.000075,
					Description:  "Fast multimodal model for high-volume workloads",
				},
			},
		},
		{
			Family:        "mistral",
			DisplayName:   "Mistral AI",
			EndpointURL:   "https://api.mistral.ai/v1",
			CredentialEnv: "MISTRAL_API_KEY",
			Models: []ModelDescriptor{
				{
					ID:           "mistral-large",
					DisplayName:  "Mistral Large",
					Capabilities: []Capability{CapabilityText},
					MaxContext:   128000,
					CostPerUnit:  0.002,
					Description:  "Top-tier reasoning model",
				},
				{
					ID:           "mistral-small",
					DisplayName:  "Mistral Small",
					Capabilities: []Capability{CapabilityText},
					MaxContext:   32000,
					CostPerUnit:  0.0002,
					Description:  "Cost-efficient text model",
				},
				{
					ID:           "pixtral-large",
					DisplayName:  "Pixtral Large",
					Capabilities: []Capability{CapabilityText, CapabilityImage},
					MaxContext:   128000,
					CostPerUnit:  0.002,
					Description:  "Vision-capable Mistral model",
				},
			},
		},
		{
			Family:        "ollama",
			DisplayName:   "Ollama (local)",
			EndpointURL:   "http://localhost:11434",
			CredentialEnv: "",
			Models: []ModelDescriptor{
				{
					ID:           "llama3.1",
					DisplayName:  "Llama 3.1",
					Capabilities: []Capability{CapabilityText},
					MaxContext:   128000,
					CostPerUnit:  0,
					Description:  "Local text model",
				},
				{
					ID:           "llava",
					DisplayName:  "LLaVA",
					Capabilities: []Capability{CapabilityText, CapabilityImage},
					MaxContext:   4096,
					CostPerUnit:  0,
					Description:  "Local vision-language model",
				},
			},
		},
		customProvider(),
	}
}
