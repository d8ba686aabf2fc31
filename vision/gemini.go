// Package vision implements holdings.VisionService and grid.TextExtractor
// with Google Gemini.
package vision

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/etnz/holdings/grid"
	"github.com/etnz/holdings/logging"
	"google.golang.org/genai"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-2.5-pro"

// DefaultMaxSide is the size, in pixels, pages are shrunk to before being sent.
const DefaultMaxSide = 2048

// Gemini asks a Gemini model to read rendered pages.
type Gemini struct {
	client  *genai.Client
	Model   string
	MaxSide int
}

var _ grid.TextExtractor = (*Gemini)(nil)

// NewGemini returns a Gemini service. The client is configured from the
// environment (GEMINI_API_KEY or GOOGLE_API_KEY).
func NewGemini(ctx context.Context, model string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("cannot create gemini client: %w", err)
	}
	if model == "" {
		model = DefaultModel
	}
	return &Gemini{client: client, Model: model, MaxSide: DefaultMaxSide}, nil
}

// Describe sends the prompt and the pages, and returns the text of the answer.
func (g *Gemini) Describe(ctx context.Context, prompt string, pages []image.Image) (string, error) {
	resp, err := g.generate(ctx, prompt, pages)
	if err != nil {
		return "", err
	}
	return answerText(g.Model, resp)
}

// CellPrompt asks for the text of one table cell.
const CellPrompt = `This image is a single cell of a table. Transcribe its text exactly, on one line, without any comment or formatting. Answer with nothing if the cell is blank.`

// ExtractText transcribes the text of a table cell image, so that a Gemini
// model can serve as the text extractor of grid.Analyzer.
func (g *Gemini) ExtractText(ctx context.Context, img image.Image) (string, error) {
	resp, err := g.generate(ctx, CellPrompt, []image.Image{img})
	if err != nil {
		return "", err
	}
	return cellText(resp), nil
}

func (g *Gemini) generate(ctx context.Context, prompt string, pages []image.Image) (*genai.GenerateContentResponse, error) {
	if len(pages) == 0 {
		return nil, errors.New("no page to describe")
	}
	parts := []*genai.Part{genai.NewPartFromText(prompt)}
	for i, page := range pages {
		data, err := encodePage(page, g.MaxSide)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i+1, err)
		}
		parts = append(parts, genai.NewPartFromBytes(data, "image/png"))
	}
	config := &genai.GenerateContentConfig{Temperature: genai.Ptr[float32](0)}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	logging.Logger().WithField("model", g.Model).WithField("images", len(pages)).Debug("vision-request")
	resp, err := g.client.Models.GenerateContent(ctx, g.Model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("gemini %s: %w", g.Model, err)
	}
	return resp, nil
}

// cellText returns the transcription of a cell, blank answers included.
func cellText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if !p.Thought {
			b.WriteString(p.Text)
		}
	}
	text := strings.TrimSpace(b.String())
	text = strings.TrimSpace(strings.Trim(text, "`\""))
	return strings.Join(strings.Fields(text), " ")
}

// answerText joins the text parts of the first candidate.
func answerText(model string, resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no response from %s", model)
	}
	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if p.Thought {
			continue
		}
		b.WriteString(p.Text)
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("no text in response from %s", model)
	}
	return b.String(), nil
}

// encodePage encodes img as PNG, shrunk to fit maxSide when it is larger.
func encodePage(img image.Image, maxSide int) ([]byte, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, errors.New("empty image")
	}
	if b := img.Bounds(); maxSide > 0 && (b.Dx() > maxSide || b.Dy() > maxSide) {
		img = imaging.Fit(img, maxSide, maxSide, imaging.Lanczos)
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
