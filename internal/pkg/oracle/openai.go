package oracle

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const requestTimeout = 30 * time.Second

// Service is the production Oracle backed by an OpenAI-compatible chat API
// for extraction/verdicts and the ML service for image classification.
type Service struct {
	client *openai.Client
	model  string
	cv     *CVClient
}

func NewService(apiKey, model string, cv *CVClient) *Service {
	var client *openai.Client
	if apiKey != "" {
		client = openai.NewClient(apiKey)
	}
	if model == "" {
		model = openai.GPT4oMini
	}
	return &Service{
		client: client,
		model:  model,
		cv:     cv,
	}
}

const extractPrompt = `Analyze this document (which might be a government tender, invoice, or project report).
Extract the following fields in strict JSON format:
- projectName: (string)
- department: (string)
- budget: (string, formatted amount)
- contractor: (string)
- status: (string, e.g. "Planned", "In Progress", "Completed")
- startDate: (string, YYYY-MM-DD or null)
- endDate: (string, YYYY-MM-DD or null)
- location: (string, address or coordinates if available)
- confidence: (number, 0-100)
If a field is missing, use null. Do NOT use markdown formatting.`

// ExtractDocument sends the document bytes to the vision model and parses
// the structured fields out of its reply.
func (s *Service) ExtractDocument(ctx context.Context, data []byte, mimeType string) (*DocumentFields, error) {
	if s.client == nil {
		return nil, errors.New("oracle client not initialized")
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	dataURL := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data))

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: extractPrompt},
					{
						Type:     openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{URL: dataURL},
					},
				},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("document extraction failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("document extraction returned no choices")
	}

	var fields DocumentFields
	if err := json.Unmarshal([]byte(stripCodeFences(resp.Choices[0].Message.Content)), &fields); err != nil {
		return nil, fmt.Errorf("document extraction returned malformed JSON: %w", err)
	}

	return &fields, nil
}

const verdictSystemPrompt = `You are an infrastructure integrity auditor. You compare an official government project record against citizen-submitted evidence and return a discrepancy verdict.
Respond with strict JSON only, no markdown:
{"riskLevel": "Low" | "Medium" | "High" | "Critical", "confidence": number 0-100, "reasoning": string}`

// GenerateVerdict asks the model for a risk verdict over the record snapshot
// and the citizen evidence.
func (s *Service) GenerateVerdict(ctx context.Context, req VerdictRequest) (*Verdict, error) {
	if s.client == nil {
		return nil, errors.New("oracle client not initialized")
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	var b strings.Builder
	if req.Record != nil {
		fmt.Fprintf(&b, "Official record: project %q, department %q, status %q, budget %q, contractor %q.\n",
			req.Record.ProjectName, req.Record.Department, req.Record.Status, req.Record.Budget, req.Record.Contractor)
	} else {
		b.WriteString("No official record was found for this location.\n")
	}
	fmt.Fprintf(&b, "Citizen report: category %q, description %q.\n", req.Evidence.Category, req.Evidence.Description)
	if req.Evidence.ImageURL != "" {
		fmt.Fprintf(&b, "Evidence photo: %s\n", req.Evidence.ImageURL)
	}
	if req.Evidence.CVPrediction != nil {
		fmt.Fprintf(&b, "Computer vision classified the photo as %q with probability %.2f.\n",
			req.Evidence.CVPrediction.Prediction, req.Evidence.CVPrediction.Probability)
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: verdictSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: b.String()},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("verdict generation failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("verdict generation returned no choices")
	}

	var verdict Verdict
	if err := json.Unmarshal([]byte(stripCodeFences(resp.Choices[0].Message.Content)), &verdict); err != nil {
		return nil, fmt.Errorf("verdict generation returned malformed JSON: %w", err)
	}

	return &verdict, nil
}

// ClassifyImage delegates to the ML service.
func (s *Service) ClassifyImage(ctx context.Context, imageURL string) (*Classification, error) {
	if s.cv == nil {
		return nil, errors.New("cv service not configured")
	}
	return s.cv.Predict(ctx, imageURL)
}

// stripCodeFences removes markdown fences that models sometimes wrap JSON in.
func stripCodeFences(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	return strings.TrimSpace(text)
}
