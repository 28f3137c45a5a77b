package ai

import (
	"github.com/google/uuid"
)

// Recipe is the structured recipe the model is instructed to return
type Recipe struct {
	ID          uuid.UUID `json:"id,omitempty"`
	Name        string    `json:"name"`
	Time        string    `json:"time"`
	Difficulty  string    `json:"difficulty"`
	Servings    int       `json:"servings"`
	Calories    int       `json:"calories"`
	Ingredients []string  `json:"ingredients"`
	Steps       []string  `json:"steps"`
}

// ChatResult is the chat assistant's answer; Recipe is present only when
// the user asked for one
type ChatResult struct {
	Message string  `json:"message"`
	Recipe  *Recipe `json:"recipe,omitempty"`
}

// GenerateResult wraps a recipe generated from a fridge-scan ingredient list
type GenerateResult struct {
	Recipe *Recipe `json:"recipe"`
}

// Filters constrains recipe generation
type Filters struct {
	Diet string `json:"diet,omitempty"`
	Time string `json:"time,omitempty"`
	Goal string `json:"goal,omitempty"`
}

// AnalyzeResult is the shopping-list comparison for a fridge photo
type AnalyzeResult struct {
	DetectedItems []string `json:"detectedItems"`
	MissingItems  []string `json:"missingItems"`
}

// OpenAI-compatible chat completion wire types

type chatCompletionRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

// chatMessage content is either a plain string or a list of content parts
// (for vision requests)
type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}
