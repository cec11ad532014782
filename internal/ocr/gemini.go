package ocr

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"centsible/internal/config"
	"centsible/internal/dto"

	"google.golang.org/genai"
)

// ReceiptExtractor turns a receipt image into the structured payload the
// receipt service ingests. Implementations must return every numeric field
// as a string; parsing happens downstream.
type ReceiptExtractor interface {
	Extract(ctx context.Context, image []byte, mimeType string, subcategories []string) (*dto.ReceiptPayload, error)
}

// GeminiExtractor extracts receipts with the Gemini vision model.
type GeminiExtractor struct {
	client *genai.Client
	model  string
}

// NewGeminiExtractor creates a receipt extractor backed by the configured
// Gemini model.
func NewGeminiExtractor(ctx context.Context, cfg *config.OCRConfig) (*GeminiExtractor, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &GeminiExtractor{
		client: client,
		model:  cfg.Model,
	}, nil
}

// Extract sends the receipt image to the model and decodes its JSON answer.
// subcategories is the list of valid item category names the model must
// choose from.
func (e *GeminiExtractor) Extract(ctx context.Context, image []byte, mimeType string, subcategories []string) (*dto.ReceiptPayload, error) {
	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: buildPrompt(subcategories)},
				{
					InlineData: &genai.Blob{
						MIMEType: mimeType,
						Data:     image,
					},
				},
			},
		},
	}

	resp, err := e.client.Models.GenerateContent(ctx, e.model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	rawText := resp.Text()
	if rawText == "" {
		return nil, fmt.Errorf("empty response from model")
	}

	payload, err := ParsePayload(rawText)
	if err != nil {
		return nil, fmt.Errorf("failed to parse model output: %w", err)
	}

	return payload, nil
}

// ParsePayload decodes the model's raw text into a receipt payload,
// tolerating Markdown code fences the model sometimes adds despite
// instructions.
func ParsePayload(raw string) (*dto.ReceiptPayload, error) {
	clean := cleanModelJSON(raw)

	var payload dto.ReceiptPayload
	if err := json.Unmarshal([]byte(clean), &payload); err != nil {
		return nil, fmt.Errorf("unmarshal JSON: %w", err)
	}

	return &payload, nil
}

func buildPrompt(subcategories []string) string {
	var b strings.Builder

	b.WriteString("You are a receipt parser for a personal finance application.\n\n")
	b.WriteString("Task:\n")
	b.WriteString("- Read the attached receipt image and extract its contents.\n")
	b.WriteString("- Output STRICT JSON only (no comments, no trailing commas, no extra text).\n\n")
	b.WriteString("Output a single JSON object with these fields:\n")
	b.WriteString("- \"store_name\": string, the merchant name printed on the receipt\n")
	b.WriteString("- \"date_time\": string, ISO format \"YYYY-MM-DD HH:MM\" (use \"00:00\" when the time is missing)\n")
	b.WriteString("- \"total_amount\": string, the receipt total as printed\n")
	b.WriteString("- \"items\": array of objects, one per purchased line item\n\n")
	b.WriteString("Each item object must have these fields, all strings:\n")
	b.WriteString("- \"name\": the item description\n")
	b.WriteString("- \"quantity\": the purchased quantity, \"1\" when not printed\n")
	b.WriteString("- \"unit_price\": price per unit\n")
	b.WriteString("- \"total_price\": quantity times unit price\n")
	b.WriteString("- \"category\": EXACTLY one of the category names listed below\n\n")

	b.WriteString("Valid item categories:\n")
	for _, name := range subcategories {
		b.WriteString("- ")
		b.WriteString(name)
		b.WriteString("\n")
	}

	b.WriteString("\nRules:\n")
	b.WriteString("- Skip non-purchase lines such as subtotals, tax, change and loyalty points.\n")
	b.WriteString("- Copy numbers exactly as printed, including decimal separators.\n")
	b.WriteString("- Pick the single closest category for every item from the list above.\n\n")
	b.WriteString("Return ONLY valid raw JSON.\n")
	b.WriteString("Do NOT wrap the response in code fences.\n")
	b.WriteString("Do NOT use ```json or any Markdown.\n")
	b.WriteString("Output must begin with \"{\" and end with \"}\".\n")

	return b.String()
}

func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	// Handle ```json ... ``` or ``` ... ``` wrappers.
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}

	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}

	return strings.TrimSpace(s)
}
