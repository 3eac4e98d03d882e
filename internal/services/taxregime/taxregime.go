// Package taxregime классифицирует месячный доход МСП по налоговым режимам
// Перу. Расчет чистый: все пороги, ставки и значение UIT приходят из конфига,
// результат не персистится.
package taxregime

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/mype-assistant/internal/config"
	"github.com/magabrotheeeer/mype-assistant/internal/models"
)

// Service выбирает режим по доходу. Ветви исключают друг друга и
// проверяются сверху вниз: Nuevo RUS, RER, RMT, Régimen General.
type Service struct {
	cfg config.TaxRegimes
}

// New создает новый экземпляр Service с налоговой таблицей из конфига.
func New(cfg config.TaxRegimes) *Service {
	return &Service{cfg: cfg}
}

// Classify определяет режим по месячному доходу в солях. Возвращает
// models.ErrInvalidIncome, если доход не конечное положительное число.
func (s *Service) Classify(monthlyIncome float64) (*models.TaxRegimeResult, error) {
	if math.IsNaN(monthlyIncome) || math.IsInf(monthlyIncome, 0) || monthlyIncome <= 0 {
		return nil, models.ErrInvalidIncome
	}

	annualIncome := monthlyIncome * 12

	if monthlyIncome <= s.cfg.NuevoRUS.MaxIncome {
		return s.classifyNuevoRUS(monthlyIncome, annualIncome), nil
	}
	if annualIncome <= s.cfg.RER.MaxAnnualIncome {
		return s.classifyRER(monthlyIncome, annualIncome), nil
	}
	if annualIncome <= s.cfg.RMT.MaxAnnualIncomeUIT*s.cfg.UITValue {
		return s.classifyRMT(monthlyIncome, annualIncome), nil
	}
	return s.classifyGeneral(monthlyIncome, annualIncome), nil
}

// classifyNuevoRUS — фиксированный месячный платеж по двум корзинам дохода.
func (s *Service) classifyNuevoRUS(monthlyIncome, annualIncome float64) *models.TaxRegimeResult {
	payment := s.cfg.NuevoRUS.HighAmount
	if monthlyIncome <= s.cfg.NuevoRUS.LowThreshold {
		payment = s.cfg.NuevoRUS.LowAmount
	}
	payment = round2(payment)
	igvIncluded := true

	return &models.TaxRegimeResult{
		Regime:  models.RegimeNuevoRUS,
		Payment: &payment,
		Message: fmt.Sprintf("Con S/ %.2f de ingresos, tu pago único mensual sería de S/ %.2f. ¡Es perfecto para empezar!",
			monthlyIncome, payment),
		Benefits: []string{
			"Puedes emitir boletas de venta.",
			"Acceso a créditos para emprendedores.",
			"Te permite tener un negocio formal de manera muy sencilla.",
		},
		Details: models.TaxRegimeDetails{
			MonthlyIncome: round2(monthlyIncome),
			AnnualIncome:  round2(annualIncome),
			TaxType:       "Pago único mensual",
			IGVIncluded:   &igvIncluded,
		},
	}
}

// classifyRER — процент от месячного дохода, IGV считается отдельно.
func (s *Service) classifyRER(monthlyIncome, annualIncome float64) *models.TaxRegimeResult {
	rate := s.cfg.RER.TaxRate
	payment := round2(monthlyIncome * rate)
	igvIncluded := false

	return &models.TaxRegimeResult{
		Regime:  models.RegimeRER,
		Payment: &payment,
		Message: fmt.Sprintf("Con el RER, tu pago a cuenta de Renta sería del %s%% mensual (S/ %.2f) más el IGV correspondiente.",
			percentLabel(rate), payment),
		Benefits: []string{
			"Puedes emitir facturas.",
			"Contabilidad simplificada (solo Compras y Ventas).",
			"Sin límite de compras.",
		},
		Details: models.TaxRegimeDetails{
			MonthlyIncome: round2(monthlyIncome),
			AnnualIncome:  round2(annualIncome),
			TaxType:       fmt.Sprintf("Pago a cuenta de Renta (%s%%) + IGV", percentLabel(rate)),
			IGVIncluded:   &igvIncluded,
			TaxRate:       &rate,
		},
	}
}

// classifyRMT — прогрессивная месячная ставка по годовому порогу в UIT.
// Годовая регуляризация указывается справочно и платежом не является.
func (s *Service) classifyRMT(monthlyIncome, annualIncome float64) *models.TaxRegimeResult {
	rate := s.cfg.RMT.MonthlyHighRate
	if annualIncome <= s.cfg.RMT.LowAnnualThresholdUIT*s.cfg.UITValue {
		rate = s.cfg.RMT.MonthlyLowRate
	}
	payment := round2(monthlyIncome * rate)

	return &models.TaxRegimeResult{
		Regime:  models.RegimeRMT,
		Payment: &payment,
		Message: fmt.Sprintf("En el Régimen MYPE Tributario, tu pago a cuenta mensual sería del %s%% (S/ %.2f), con regularización anual por escala.",
			percentLabel(rate), payment),
		Benefits: []string{
			"Puedes emitir facturas.",
			"Tasas progresivas según utilidad anual.",
			"Acceso a mercados más grandes.",
		},
		Details: models.TaxRegimeDetails{
			MonthlyIncome: round2(monthlyIncome),
			AnnualIncome:  round2(annualIncome),
			TaxType:       fmt.Sprintf("Pago a cuenta de Renta (%s%%) + IGV", percentLabel(rate)),
			MonthlyRate:   &rate,
			Regularization: &models.AnnualRegularization{
				ThresholdUIT: s.cfg.RMT.AnnualThresholdUIT,
				LowRate:      s.cfg.RMT.AnnualLowRate,
				HighRate:     s.cfg.RMT.AnnualHighRate,
			},
		},
	}
}

// classifyGeneral — остаточный режим без упрощенного месячного платежа.
func (s *Service) classifyGeneral(monthlyIncome, annualIncome float64) *models.TaxRegimeResult {
	return &models.TaxRegimeResult{
		Regime:  models.RegimeGeneral,
		Message: "Tus ingresos proyectan un gran crecimiento. El Régimen General es tu siguiente paso. ¿Quieres que te explique más sobre él en el chat?",
		Benefits: []string{
			"Acceso a mercados más grandes.",
			"Sin límite de ingresos.",
			"Mayor flexibilidad operativa.",
		},
		Details: models.TaxRegimeDetails{
			MonthlyIncome:  round2(monthlyIncome),
			AnnualIncome:   round2(annualIncome),
			Recommendation: "Consultar con un contador para determinar el régimen más conveniente",
		},
	}
}

// RegimeInfo — справочная карточка режима для информационного эндпоинта.
type RegimeInfo struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Requirements []string `json:"requirements"`
}

// AllRegimesInfo возвращает справку по всем режимам с порогами из конфига.
func (s *Service) AllRegimesInfo() map[string]RegimeInfo {
	return map[string]RegimeInfo{
		"nuevo_rus": {
			Name:        models.RegimeNuevoRUS,
			Description: "Ideal para pequeños negocios que recién empiezan",
			Requirements: []string{
				fmt.Sprintf("Ingresos hasta S/ %.0f mensuales", s.cfg.NuevoRUS.MaxIncome),
				"Solo boletas de venta",
			},
		},
		"rer": {
			Name:        models.RegimeRER,
			Description: "Para negocios en crecimiento con mayor facturación",
			Requirements: []string{
				fmt.Sprintf("Ingresos hasta S/ %.0f anuales", s.cfg.RER.MaxAnnualIncome),
				fmt.Sprintf("Pago a cuenta del %s%% mensual", percentLabel(s.cfg.RER.TaxRate)),
				"Puede emitir facturas",
			},
		},
		"rmt": {
			Name:        models.RegimeRMT,
			Description: "Para empresas en expansión con contabilidad por escala",
			Requirements: []string{
				fmt.Sprintf("Ingresos hasta %.0f UIT anuales", s.cfg.RMT.MaxAnnualIncomeUIT),
				"Contabilidad completa",
			},
		},
		"general": {
			Name:        models.RegimeGeneral,
			Description: "Para empresas sin límite de ingresos",
			Requirements: []string{
				"Sin límite de ingresos",
				"Contabilidad completa",
			},
		},
	}
}

// round2 округляет денежное значение до двух знаков без двоичного дрейфа float64.
func round2(v float64) float64 {
	r, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return r
}

// percentLabel выводит ставку как процент без хвостовых нулей: 0.015 -> "1.5".
func percentLabel(rate float64) string {
	return decimal.NewFromFloat(rate).Mul(decimal.NewFromInt(100)).String()
}
