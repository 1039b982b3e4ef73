package statement

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// DefaultModelName is the Gemini model used when none is configured.
const DefaultModelName = "gemini-2.5-flash"

// ContentGenerator is the part of the GenAI models API the parser uses.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// PDFParser extracts statement rows from a PDF document.
type PDFParser interface {
	ParsePDF(ctx context.Context, data []byte) ([]RawRow, error)
}

// GeminiParser reads PDF statements by asking Gemini for the transaction
// table as JSON.
type GeminiParser struct {
	gen   ContentGenerator
	model string
}

// NewGeminiParser creates a parser backed by a new GenAI client. Credentials
// and backend come from the usual GOOGLE_* environment variables.
func NewGeminiParser(ctx context.Context, model string) (*GeminiParser, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("NewGeminiParser: create genai client: %w", err)
	}
	return NewGeminiParserWithGenerator(client.Models, model), nil
}

// NewGeminiParserWithGenerator creates a parser over an existing generator.
func NewGeminiParserWithGenerator(gen ContentGenerator, model string) *GeminiParser {
	if model == "" {
		model = DefaultModelName
	}
	return &GeminiParser{gen: gen, model: model}
}

const statementPrompt = "You are a parser for Indian bank and UPI account statements.\n\n" +
	"Task:\n" +
	"- Extract EVERY transaction row from the attached PDF statement.\n" +
	"- Output STRICT JSON only: an array of objects, no comments, no extra text.\n\n" +
	"Each object must have these fields:\n" +
	"- \"date\": string, exactly as printed on the statement\n" +
	"- \"description\": string, the narration or transaction note without dates or amounts\n" +
	"- \"amount\": number, the transaction amount without currency symbols or separators\n" +
	"- \"type\": \"Debit\" for money going out, \"Credit\" for money coming in\n\n" +
	"Rules:\n" +
	"- If the statement has separate withdrawal and deposit columns, use the column the amount is in to set \"type\".\n" +
	"- Never include opening balance, closing balance or running balance rows.\n" +
	"- Keep the statement's row order.\n\n" +
	"Return ONLY valid raw JSON.\n" +
	"Do NOT wrap the response in code fences.\n" +
	"Output must begin with \"[\" and end with \"]\".\n"

// ParsePDF sends the PDF to the model and decodes the returned rows.
func (p *GeminiParser) ParsePDF(ctx context.Context, data []byte) ([]RawRow, error) {
	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: statementPrompt},
				{
					InlineData: &genai.Blob{
						MIMEType: "application/pdf",
						Data:     data,
					},
				},
			},
		},
	}

	resp, err := p.gen.GenerateContent(ctx, p.model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("ParsePDF: generate content: %w", err)
	}

	rawText := resp.Text()
	if rawText == "" {
		return nil, fmt.Errorf("ParsePDF: empty response from model")
	}

	rows, err := decodeModelRows(cleanModelJSON(rawText))
	if err != nil {
		return nil, fmt.Errorf("ParsePDF: %w", err)
	}
	return rows, nil
}

// modelRow accepts amounts written either as JSON numbers or strings.
type modelRow struct {
	Date        string          `json:"date"`
	Description string          `json:"description"`
	Amount      json.RawMessage `json:"amount"`
	Type        string          `json:"type"`
}

func decodeModelRows(s string) ([]RawRow, error) {
	var parsed []modelRow
	if err := json.Unmarshal([]byte(s), &parsed); err != nil {
		return nil, fmt.Errorf("unmarshal model JSON: %w", err)
	}

	rows := make([]RawRow, len(parsed))
	for i, m := range parsed {
		rows[i] = RawRow{
			Date:        m.Date,
			Description: m.Description,
			Amount:      rawAmount(m.Amount),
			Type:        m.Type,
		}
	}
	return rows, nil
}

func rawAmount(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// cleanModelJSON strips Markdown fences and any text around the JSON array.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		idx := strings.Index(s, "\n")
		if idx == -1 {
			return s
		}
		s = strings.TrimSpace(s[idx+1:])
	}

	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)

	if start := strings.Index(s, "["); start != -1 {
		if end := strings.LastIndex(s, "]"); end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}
	return s
}
