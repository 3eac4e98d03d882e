package models

// Теги налоговых режимов, выбираемых калькулятором.
const (
	RegimeNuevoRUS = "Nuevo RUS"
	RegimeRER      = "Régimen Especial de Renta (RER)"
	RegimeRMT      = "Régimen MYPE Tributario"
	RegimeGeneral  = "Régimen General"
)

// TaxRegimeResult — результат классификации по месячному доходу.
// Значение не персистится, живет только в ответе.
type TaxRegimeResult struct {
	Regime   string           `json:"regime"`
	Payment  *float64         `json:"payment,omitempty"` // nil для режимов без упрощенного месячного платежа
	Message  string           `json:"message"`
	Benefits []string         `json:"benefits"`
	Details  TaxRegimeDetails `json:"details"`
}

// TaxRegimeDetails — примененные ставки и пороги, детализация расчета.
type TaxRegimeDetails struct {
	MonthlyIncome  float64               `json:"monthly_income"`
	AnnualIncome   float64               `json:"annual_income"`
	TaxType        string                `json:"tax_type,omitempty"`
	IGVIncluded    *bool                 `json:"igv_included,omitempty"`
	TaxRate        *float64              `json:"tax_rate,omitempty"`
	MonthlyRate    *float64              `json:"monthly_rate,omitempty"`
	Regularization *AnnualRegularization `json:"annual_regularization,omitempty"`
	Recommendation string                `json:"recommendation,omitempty"`
}

// AnnualRegularization — информационная справка о годовой регуляризации
// по двухступенчатой шкале, выраженной в UIT. Не является возвращаемым платежом.
type AnnualRegularization struct {
	ThresholdUIT float64 `json:"threshold_uit"` // Порог шкалы в UIT
	LowRate      float64 `json:"low_rate"`      // Ставка до порога
	HighRate     float64 `json:"high_rate"`     // Ставка сверх порога
}

// DummyIncome используется для приёма дохода из JSON-запроса калькулятора.
type DummyIncome struct {
	MonthlyIncome float64 `json:"monthly_income" validate:"required"`
}
