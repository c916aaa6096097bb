package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"portfolio-api/internal/domain"
	"portfolio-api/pkg/errors"
	"portfolio-api/pkg/logger"
)

const (
	geminiAPIBase = "https://generativelanguage.googleapis.com"

	geminiChatModel  = "gemini-3-flash-preview"
	geminiImageModel = "gemini-2.5-flash-image"

	// GenerationTimeout bounds a single model call.
	GenerationTimeout = 30 * time.Second
)

// GeminiClient calls the Gemini REST API for text and image generation.
type GeminiClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	log        *logger.Logger
}

// NewGeminiClient creates a Gemini API client.
func NewGeminiClient(apiKey string, log *logger.Logger) *GeminiClient {
	return &GeminiClient{
		apiKey:  apiKey,
		baseURL: geminiAPIBase,
		httpClient: &http.Client{
			Timeout: GenerationTimeout,
		},
		log: log,
	}
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
	Role  string       `json:"role,omitempty"`
}

type geminiRequest struct {
	Contents          []geminiContent   `json:"contents"`
	SystemInstruction *geminiContent    `json:"systemInstruction,omitempty"`
	Tools             []geminiTool      `json:"tools,omitempty"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type geminiTool struct {
	GoogleSearch *struct{} `json:"google_search,omitempty"`
}

type generationConfig struct {
	ResponseModalities []string `json:"responseModalities,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content           geminiContent `json:"content"`
		GroundingMetadata *struct {
			GroundingChunks []struct {
				Web *struct {
					Title string `json:"title"`
					URI   string `json:"uri"`
				} `json:"web"`
			} `json:"groundingChunks"`
		} `json:"groundingMetadata"`
	} `json:"candidates"`
}

// GenerateText asks the chat model for a grounded answer and returns the
// reply text with any web sources the model cited.
func (g *GeminiClient) GenerateText(ctx context.Context, systemPrompt, message string) (string, []domain.ChatSource, error) {
	req := geminiRequest{
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: message}}},
		},
		Tools: []geminiTool{{GoogleSearch: &struct{}{}}},
	}
	if systemPrompt != "" {
		req.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: systemPrompt}}}
	}

	resp, err := g.generate(ctx, geminiChatModel, req)
	if err != nil {
		return "", nil, err
	}

	if len(resp.Candidates) == 0 {
		return "", nil, errors.NewExternalError("Assistant service unavailable", fmt.Errorf("empty candidate list"))
	}

	candidate := resp.Candidates[0]
	var text string
	for _, part := range candidate.Content.Parts {
		text += part.Text
	}

	var sources []domain.ChatSource
	if candidate.GroundingMetadata != nil {
		for _, chunk := range candidate.GroundingMetadata.GroundingChunks {
			if chunk.Web != nil {
				sources = append(sources, domain.ChatSource{
					Title: chunk.Web.Title,
					URI:   chunk.Web.URI,
				})
			}
		}
	}

	return text, sources, nil
}

// GenerateImage asks the image model for a picture and returns it as base64
// payload data.
func (g *GeminiClient) GenerateImage(ctx context.Context, prompt string) (string, error) {
	req := geminiRequest{
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: prompt}}},
		},
		GenerationConfig: &generationConfig{
			ResponseModalities: []string{"IMAGE"},
		},
	}

	resp, err := g.generate(ctx, geminiImageModel, req)
	if err != nil {
		return "", err
	}

	for _, candidate := range resp.Candidates {
		for _, part := range candidate.Content.Parts {
			if part.InlineData != nil && part.InlineData.Data != "" {
				return part.InlineData.Data, nil
			}
		}
	}

	return "", errors.NewExternalError("Assistant service unavailable", fmt.Errorf("no image data in response"))
}

func (g *GeminiClient) generate(ctx context.Context, model string, payload geminiRequest) (*geminiResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.NewInternalError("Failed to encode generation request", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", g.baseURL, model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, errors.NewInternalError("Failed to build generation request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.apiKey)

	start := time.Now()
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, errors.NewExternalError("Assistant service unavailable", err)
	}
	defer resp.Body.Close()

	g.log.WithFields(map[string]interface{}{
		"model":       model,
		"status":      resp.StatusCode,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Debug("Gemini API call completed")

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, errors.NewExternalError("Assistant service unavailable",
			fmt.Errorf("status %d: %s", resp.StatusCode, string(detail)))
	}

	var decoded geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, errors.NewExternalError("Assistant service unavailable", fmt.Errorf("decoding response: %w", err))
	}

	return &decoded, nil
}
