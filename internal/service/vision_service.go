package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"expensero/pkg/config"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"go.uber.org/zap"
)

// systemInstruction directs the model to return Spanish-labeled financial
// fields strictly as JSON matching the expense schema.
const systemInstruction = `Eres un sistema experto financiero. Extrae campos de un ticket de gasto empresarial.
Devuelve estrictamente JSON con el esquema solicitado; no añadas texto fuera del JSON.
Usa formato decimal con punto (no comas).
Categoriza en: Viajes, Dietas, Material, Software, Transporte, Alojamiento u Otros.
Prioriza fecha del ticket; si hay varias, usa la de compra.
Si no puedes encontrar un campo, usa valores por defecto razonables.
Para el método de pago, intenta determinar si fue tarjeta, efectivo, transferencia u otro basándote en el contexto del ticket.`

// VisionService calls the Gemini generateContent endpoint with a receipt
// document and the expense response schema, and returns the model's raw
// JSON object. One outbound call per invocation, no retries: extraction
// is user-initiated and the user can simply re-upload.
type VisionService struct {
	cfg        *config.GeminiConfig
	httpClient *http.Client
	schema     map[string]any
	validator  *jsonschema.Schema
	logger     *zap.Logger
}

func NewVisionService(cfg *config.GeminiConfig, logger *zap.Logger) (*VisionService, error) {
	validator, err := CompileExpenseSchema()
	if err != nil {
		return nil, fmt.Errorf("failed to compile expense schema: %w", err)
	}

	if cfg.APIKey == "" {
		logger.Warn("GEMINI_API_KEY is not set, extraction requests will fail")
	}

	return &VisionService{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		schema:     BuildExpenseSchema(),
		validator:  validator,
		logger:     logger,
	}, nil
}

// generateContent request/response wire shapes (Gemini v1beta).

type visionPart struct {
	Text       string          `json:"text,omitempty"`
	InlineData *visionDocument `json:"inlineData,omitempty"`
}

type visionDocument struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type visionRequest struct {
	Contents []struct {
		Parts []visionPart `json:"parts"`
	} `json:"contents"`
	GenerationConfig struct {
		ResponseMimeType string         `json:"responseMimeType"`
		ResponseSchema   map[string]any `json:"responseSchema"`
	} `json:"generationConfig"`
}

type visionResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// GenerateExpense sends the document bytes inline to the model and parses
// its answer into a generic JSON object. Fields may still be absent or
// wrong-typed: semantic cleanup belongs to NormalizeExpense. Failures are
// classified (ErrNotConfigured, *UpstreamError, ErrNoCandidates,
// ErrEmptyContent, ErrMalformedOutput) and never surface as raw panics.
func (s *VisionService) GenerateExpense(ctx context.Context, data []byte, mimeType string) (map[string]any, error) {
	if s.cfg.APIKey == "" {
		return nil, ErrNotConfigured
	}

	var req visionRequest
	req.Contents = make([]struct {
		Parts []visionPart `json:"parts"`
	}, 1)
	req.Contents[0].Parts = []visionPart{
		{Text: systemInstruction},
		{InlineData: &visionDocument{
			MimeType: mimeType,
			Data:     base64.StdEncoding.EncodeToString(data),
		}},
	}
	req.GenerationConfig.ResponseMimeType = "application/json"
	req.GenerationConfig.ResponseSchema = s.schema

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", s.cfg.BaseURL, s.cfg.Model, s.cfg.APIKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	s.logger.Info("Calling vision model",
		zap.String("model", s.cfg.Model),
		zap.String("mime_type", mimeType),
		zap.Int("document_bytes", len(data)),
	)

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("vision API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		s.logger.Error("Vision API returned non-success status",
			zap.Int("status", resp.StatusCode),
			zap.String("response", string(body)),
		)
		return nil, &UpstreamError{StatusCode: resp.StatusCode}
	}

	var visionResp visionResponse
	if err := json.NewDecoder(resp.Body).Decode(&visionResp); err != nil {
		return nil, fmt.Errorf("%w: decode response envelope: %v", ErrMalformedOutput, err)
	}

	if len(visionResp.Candidates) == 0 {
		return nil, ErrNoCandidates
	}
	parts := visionResp.Candidates[0].Content.Parts
	if len(parts) == 0 || strings.TrimSpace(parts[0].Text) == "" {
		return nil, ErrEmptyContent
	}

	raw, err := decodeModelJSON(parts[0].Text)
	if err != nil {
		s.logger.Error("Failed to parse model output as JSON",
			zap.Error(err),
			zap.String("content", parts[0].Text),
		)
		return nil, err
	}

	// Diagnostic only: schema constraints reduce malformed output, they do
	// not eliminate it, and normalization repairs whatever comes through.
	if err := s.validator.Validate(map[string]interface{}(raw)); err != nil {
		s.logger.Warn("Model output does not match expense schema", zap.Error(err))
	}

	return raw, nil
}

// decodeModelJSON unmarshals model text into a JSON object, tolerating
// markdown code fences around the payload.
func decodeModelJSON(text string) (map[string]any, error) {
	content := strings.TrimSpace(text)

	var raw map[string]any
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
		content = strings.TrimSpace(content)

		if err := json.Unmarshal([]byte(content), &raw); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
		}
	}
	return raw, nil
}
