// Package info реализует HTTP-обработчик справки по налоговым режимам.
package info

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/mype-assistant/internal/http/response"
	"github.com/magabrotheeeer/mype-assistant/internal/services/taxregime"
)

// Handler обрабатывает HTTP-запросы справки о режимах.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс справки о режимах.
type Service interface {
	AllRegimesInfo() map[string]taxregime.RegimeInfo
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Справка по налоговым режимам
// @Description Возвращает описание всех режимов с порогами из конфигурации.
// @Tags TaxRegime
// @Produce  json
// @Success 200 {object} map[string]any "Справка по режимам"
// @Router /tax-regime/info [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, response.OKWithData(h.service.AllRegimesInfo()))
}
