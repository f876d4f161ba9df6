/*
Package geminiservice implements the client for the Gemini generateContent
API. It owns the request/response wire structs, the prompt templates, and
the HTTP plumbing. Callers hand it an ordered list of parts (text and/or
inline image data) and get back the model's free-form text reply.
*/
package geminiservice

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// --- Gemini API Configuration ---
const (
	geminiAPIURL   = "https://generativelanguage.googleapis.com/v1beta/models/gemini-2.5-flash:generateContent?key="
	requestTimeout = 30 * time.Second
)

// --- Structs for Gemini API Request/Response ---

// Part is one element of a multimodal request. Exactly one of Text or
// InlineData is set.
type Part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *InlineData `json:"inline_data,omitempty"`
}

// InlineData carries base64-encoded binary content plus its media type.
type InlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type geminiPayload struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []Part `json:"parts"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// TextPart wraps a plain string as a request part.
func TextPart(text string) Part {
	return Part{Text: text}
}

// ImagePart wraps raw image bytes and their media type as an inline-data part.
// The API expects the bytes base64-encoded.
func ImagePart(mimeType string, data []byte) Part {
	return Part{InlineData: &InlineData{
		MimeType: mimeType,
		Data:     base64.StdEncoding.EncodeToString(data),
	}}
}

// Client talks to the Gemini API. Construct it once at startup and pass it to
// the handlers that need it; there is no package-level client state.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient returns a Client bound to the given API key.
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:     apiKey,
		baseURL:    geminiAPIURL,
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

// GenerateContent sends one generateContent request and returns the text of
// the first candidate. One attempt only: the classifier verdict and the chat
// answer both gate user-facing responses, so a failed call surfaces
// immediately instead of stalling the request behind a backoff loop.
func (c *Client) GenerateContent(ctx context.Context, parts []Part) (string, error) {
	if c.apiKey == "" {
		log.Error().Msg("GEMINI_API_KEY environment variable is not set")
		return "", fmt.Errorf("server is not configured for AI generation")
	}

	payload := geminiPayload{
		Contents: []geminiContent{{Parts: parts}},
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal payload: %w", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.baseURL+c.apiKey, bytes.NewBuffer(payloadBytes))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		log.Warn().Int("status", resp.StatusCode).Msg("Gemini API returned non-200 status")
		return "", fmt.Errorf("API returned non-200 status: %s, Body: %s", resp.Status, string(body))
	}

	var geminiResp geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&geminiResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if len(geminiResp.Candidates) > 0 && len(geminiResp.Candidates[0].Content.Parts) > 0 {
		return geminiResp.Candidates[0].Content.Parts[0].Text, nil
	}

	return "", fmt.Errorf("no content found in Gemini response")
}
