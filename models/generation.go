package models

import "time"

// GenerateRequest is the body of POST /generate
type GenerateRequest struct {
	Prompt   string `json:"prompt" validate:"required"`
	Provider string `json:"provider,omitempty"`
}

// Part is one piece of generated content
type Part struct {
	Text string `json:"text"`
}

// Content groups the parts of one candidate
type Content struct {
	Parts []Part `json:"parts"`
}

// Candidate is one generated answer
type Candidate struct {
	Content Content `json:"content"`
}

// GenerateResponse keeps the Gemini-style envelope existing callers parse,
// whichever vendor produced the text.
type GenerateResponse struct {
	Candidates []Candidate `json:"candidates"`
	Provider   string      `json:"provider"`
	Model      string      `json:"model"`
}

// NewGenerateResponse wraps text in a single-candidate envelope
func NewGenerateResponse(text, provider, model string) *GenerateResponse {
	return &GenerateResponse{
		Candidates: []Candidate{
			{Content: Content{Parts: []Part{{Text: text}}}},
		},
		Provider: provider,
		Model:    model,
	}
}

// Text returns the concatenated text of the first candidate
func (r *GenerateResponse) Text() string {
	if r == nil || len(r.Candidates) == 0 {
		return ""
	}
	var text string
	for _, p := range r.Candidates[0].Content.Parts {
		text += p.Text
	}
	return text
}

// PingResponse is the body of GET /ping
type PingResponse struct {
	OK bool  `json:"ok"`
	TS int64 `json:"ts"`
}

// NewPingResponse stamps the response with t in epoch milliseconds
func NewPingResponse(t time.Time) PingResponse {
	return PingResponse{OK: true, TS: t.UnixMilli()}
}

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error string `json:"error"`
}
