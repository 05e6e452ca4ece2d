// Package recommend generates personalized salary-optimization
// recommendations for a processed payslip using an LLM.
//
// The model is treated as a black box that returns structured recommendation
// objects; everything it says is advisory and attached alongside — never
// instead of — the deterministic warnings the pipeline produced.
package recommend

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"

	"pim/internal/logger"
	"pim/pkg/models"
)

// Service defines the interface for recommendation generators.
type Service interface {
	Recommend(ctx context.Context, record *models.PayslipRecord) ([]models.Recommendation, error)
}

// ChatGPTService implements Service using the OpenAI chat completion API.
type ChatGPTService struct {
	client *openai.Client
	log    zerolog.Logger
}

// NewChatGPTService creates a ChatGPT-based recommendation service.
func NewChatGPTService(client *openai.Client) *ChatGPTService {
	return &ChatGPTService{
		client: client,
		log:    logger.WithComponent("recommend-chatgpt"),
	}
}

// Recommend asks the model for optimization recommendations for the record.
// A response that cannot be parsed degrades to an empty list rather than
// failing the caller — recommendations are best-effort.
func (s *ChatGPTService) Recommend(ctx context.Context, record *models.PayslipRecord) ([]models.Recommendation, error) {
	const op = "Recommend"

	payload, err := json.MarshalIndent(map[string]interface{}{
		"regime":          record.EmploymentStatus,
		"pais":            record.Country,
		"salario_bruto":   record.Amounts.GrossSalary,
		"salario_liquido": record.Amounts.NetSalary,
		"descontos":       record.Amounts.TotalDeductions,
		"inss":            record.Amounts.INSS,
		"irrf":            record.Amounts.IRRF,
		"beneficios":      record.Benefits,
		"alertas":         record.Warnings,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("%s: failed to marshal payslip payload: %w", op, err)
	}

	prompt := fmt.Sprintf(`Você é um consultor financeiro especializado em folha de pagamento brasileira.
Analise os dados extraídos deste holerite e sugira até 4 oportunidades de otimização salarial e tributária.

DADOS DO HOLERITE:
%s

Considere o regime de contratação (CLT, PJ, estágio ou autônomo) ao sugerir.
Não repita alertas já listados em "alertas".

Responda apenas com JSON no seguinte formato:
[
  {
    "category": "tax|benefits|investment|negotiation",
    "title": "título curto",
    "description": "explicação em 1-2 frases",
    "impact": "high|medium|low"
  }
]`, string(payload))

	s.log.Debug().
		Str("status", string(record.EmploymentStatus)).
		Float64("gross", record.Amounts.GrossSalary).
		Msg("Sending recommendation request to ChatGPT")

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: openai.GPT4oMini,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		Temperature: 0.1,
		MaxTokens:   1000,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: ChatGPT request failed: %w", op, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%s: no response choices from ChatGPT", op)
	}

	var recommendations []models.Recommendation
	cleaned := stripMarkdownFences(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(cleaned), &recommendations); err != nil {
		s.log.Warn().
			Err(err).
			Str("response", cleaned).
			Msg("Failed to parse ChatGPT response as JSON, returning no recommendations")
		return nil, nil
	}

	s.log.Info().
		Int("recommendations", len(recommendations)).
		Msg("Received recommendations from ChatGPT")

	return recommendations, nil
}

// stripMarkdownFences removes the ```json fences the model sometimes wraps
// around its output.
func stripMarkdownFences(response string) string {
	cleaned := strings.TrimSpace(response)
	if strings.HasPrefix(cleaned, "```json") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimSuffix(cleaned, "```")
	} else if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSuffix(cleaned, "```")
	}
	return strings.TrimSpace(cleaned)
}
