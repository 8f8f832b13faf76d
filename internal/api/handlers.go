package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"OrandaBot/internal/export"
	"OrandaBot/internal/models"
	"OrandaBot/internal/utils"
)

// jsonResponse - вспомогательная структура для стандартного ответа API
type jsonResponse struct {
	Status  string      `json:"status"` // "success" или "error"
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func writeJSONError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(jsonResponse{Status: "error", Message: message})
}

func writeJSONSuccess(w http.ResponseWriter, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(jsonResponse{Status: "success", Message: message, Data: data})
}

// Healthz - проверка живости (без авторизации): отвечает 200, если БД доступна.
func (s *Server) Healthz(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Store.Ping(r.Context()); err != nil {
		log.Printf("Healthz: БД недоступна: %v", err)
		writeJSONError(w, http.StatusServiceUnavailable, "Database unavailable")
		return
	}
	writeJSONSuccess(w, "ok", nil)
}

// offerFromRequest читает пропозицию по {id}; при ошибке сам пишет ответ.
func (s *Server) offerFromRequest(w http.ResponseWriter, r *http.Request) (models.Offer, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeJSONError(w, http.StatusBadRequest, "Invalid offer ID")
		return models.Offer{}, false
	}
	offer, err := s.deps.Store.GetOffer(r.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrOfferNotFound) {
			writeJSONError(w, http.StatusNotFound, "Offer not found")
		} else {
			log.Printf("offerFromRequest: Ошибка чтения пропозиции %d: %v", id, err)
			writeJSONError(w, http.StatusInternalServerError, "Failed to load offer")
		}
		return models.Offer{}, false
	}
	return offer, true
}

// GetOffers - список всех пропозиций.
func (s *Server) GetOffers(w http.ResponseWriter, r *http.Request) {
	offers, err := s.deps.Store.ListOffers(r.Context())
	if err != nil {
		log.Printf("GetOffers: Ошибка получения пропозиций: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to list offers")
		return
	}
	if offers == nil {
		offers = []models.Offer{}
	}
	writeJSONSuccess(w, "Offers retrieved successfully", offers)
}

// GetOfferDetails - одна пропозиция.
func (s *Server) GetOfferDetails(w http.ResponseWriter, r *http.Request) {
	offer, ok := s.offerFromRequest(w, r)
	if !ok {
		return
	}
	writeJSONSuccess(w, "Offer retrieved successfully", offer)
}

// GetOfferEvents - журнал смен статуса пропозиции.
func (s *Server) GetOfferEvents(w http.ResponseWriter, r *http.Request) {
	offer, ok := s.offerFromRequest(w, r)
	if !ok {
		return
	}
	events, err := s.deps.Store.ListStatusEvents(r.Context(), offer.ID)
	if err != nil {
		log.Printf("GetOfferEvents: Ошибка чтения журнала #%s: %v", offer.Number(), err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to load events")
		return
	}
	if events == nil {
		events = []models.StatusEvent{}
	}
	writeJSONSuccess(w, "Events retrieved successfully", events)
}

// GetOfferQR - PNG QR-код ссылки на пропозицию.
func (s *Server) GetOfferQR(w http.ResponseWriter, r *http.Request) {
	offer, ok := s.offerFromRequest(w, r)
	if !ok {
		return
	}
	link, err := utils.OfferLink(s.deps.Config.BotUsername, offer)
	if err != nil {
		writeJSONError(w, http.StatusConflict, "No link available for this offer")
		return
	}
	png, err := utils.GenerateQRCode(link)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "Failed to generate QR code")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// ExportXLSX - выгрузка всех пропозиций в Excel.
func (s *Server) ExportXLSX(w http.ResponseWriter, r *http.Request) {
	s.exportAs(w, r, export.FormatXLSX, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
}

// ExportCSV - выгрузка всех пропозиций в CSV.
func (s *Server) ExportCSV(w http.ResponseWriter, r *http.Request) {
	s.exportAs(w, r, export.FormatCSV, "text/csv; charset=utf-8")
}

func (s *Server) exportAs(w http.ResponseWriter, r *http.Request, format export.Format, contentType string) {
	offers, err := s.deps.Store.ListOffers(r.Context())
	if err != nil {
		log.Printf("exportAs: Ошибка получения пропозиций: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to list offers")
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="offers.%s"`, format))
	if err := export.Write(w, format, offers, s.deps.Config.Location); err != nil {
		// Заголовки уже отправлены, остаётся только лог.
		log.Printf("exportAs: Ошибка записи выгрузки %s: %v", format, err)
	}
}
