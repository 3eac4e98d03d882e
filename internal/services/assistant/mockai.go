package assistant

import (
	"context"
	"strings"
)

// MockAI — офлайн-клиент ассистента. Используется в development и как
// запасной вариант, когда внешний ИИ недоступен: отвечает по ключевым
// словам справкой о налоговых режимах.
type MockAI struct{}

// NewMockAI создает офлайн-клиент ассистента.
func NewMockAI() *MockAI {
	return &MockAI{}
}

// SendMessage подбирает ответ по ключевым словам вопроса.
func (m *MockAI) SendMessage(ctx context.Context, message string) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "rus"):
		return "El Nuevo RUS es ideal para pequeños negocios: pagos fijos de S/ 20 o S/ 50 " +
			"según tus ingresos mensuales (hasta S/ 8,000), sin libros contables complicados. " +
			"¿Calculamos qué régimen te conviene?", nil
	case strings.Contains(lower, "rer") || strings.Contains(lower, "especial"):
		return "El RER sirve para negocios en crecimiento con ingresos anuales hasta S/ 525,000: " +
			"pagas el 1.5% de tus ingresos netos mensuales y puedes emitir facturas.", nil
	case strings.Contains(lower, "mype") || strings.Contains(lower, "tributario"):
		return "El Régimen MYPE Tributario admite ingresos hasta 1,700 UIT anuales con tasa " +
			"progresiva: 10% hasta 15 UIT de utilidad y 29.5% por el exceso.", nil
	case strings.Contains(lower, "calcular") || strings.Contains(lower, "cuanto") || strings.Contains(lower, "cuánto"):
		return "Para recomendarte un régimen necesito tus ingresos mensuales aproximados. " +
			"Compártelos y te digo cuánto pagarías en cada régimen.", nil
	case strings.Contains(lower, "hola") || strings.Contains(lower, "ayuda"):
		return "¡Hola! Soy tu asistente para la formalización de negocios en Perú. " +
			"Puedo explicarte el Nuevo RUS, el RER y el MYPE Tributario, y calcular tus pagos. " +
			"¿En qué te ayudo?", nil
	default:
		return "Soy especialista en regímenes tributarios peruanos (Nuevo RUS, RER, MYPE). " +
			"Pregúntame, por ejemplo: \"¿Cuánto pagaría con S/ 4,000 de ingresos?\"", nil
	}
}
