/*
Package ai condenses extracted technical blocks with the Gemini API. It is
entirely optional: without an API key the pipeline runs without summaries.
*/
package ai

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/genai"

	"github.com/jcondori/convoscraper/internal/types"
)

var systemInstruction = `Eres un asistente que analiza convocatorias de adquisiciones públicas peruanas (solicitudes de cotización).

Recibirás el texto de la sección "características técnicas" o "términos de referencia" de una convocatoria. Devuelve:
1. "puntos": 3 a 5 viñetas concisas que resuman qué se está contratando y sus condiciones más relevantes (cantidades, plazos, lugar de entrega).
2. "requisitos_clave": los requisitos técnicos concretos que un postor debe cumplir, cada uno con sus valores exactos (dimensiones, normas, certificaciones, capacidades).

No inventes datos: todo debe provenir del texto recibido.`

// Summarizer produces structured summaries of technical blocks.
type Summarizer struct {
	apiKey string
	model  string
}

func NewSummarizer(apiKey, model string) *Summarizer {
	return &Summarizer{apiKey: apiKey, model: model}
}

func (s *Summarizer) Summarize(ctx context.Context, ann types.Announcement, block string) (*types.TechSummary, error) {
	if s.apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  s.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	prompt := fmt.Sprintf("Convocatoria %s: %s\n\nTexto de la sección técnica:\n\n---\n%s",
		ann.ReferenceID, ann.Description, block)

	contents := []*genai.Content{
		{Role: "system", Parts: []*genai.Part{{Text: systemInstruction}}},
		{Role: "user", Parts: []*genai.Part{{Text: prompt}}},
	}

	resp, err := client.Models.GenerateContent(ctx, s.model, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   responseSchema(),
	})
	if err != nil {
		return nil, fmt.Errorf("gemini API call failed: %w", err)
	}

	respText := resp.Text()
	var summary types.TechSummary
	if err := json.Unmarshal([]byte(respText), &summary); err != nil {
		return nil, fmt.Errorf("failed to unmarshal gemini JSON response: %w. Raw text: %s", err, respText)
	}
	return &summary, nil
}

func responseSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"puntos": {
				Type:        genai.TypeArray,
				Items:       &genai.Schema{Type: genai.TypeString},
				Description: "3-5 viñetas que resumen la sección técnica.",
			},
			"requisitos_clave": {
				Type:        genai.TypeArray,
				Items:       &genai.Schema{Type: genai.TypeString},
				Description: "Requisitos técnicos concretos con sus valores exactos.",
			},
		},
		Required: []string{"puntos", "requisitos_clave"},
	}
}
