package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/andresuchdata/stockcast/internal/domain"
	"github.com/andresuchdata/stockcast/internal/payload"
	"github.com/andresuchdata/stockcast/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// maxPayloadBytes caps a /run request body.
var maxPayloadBytes int64 = 32 << 20

type PredictionHandler struct {
	service *service.PredictionService
	now     func() time.Time
}

func NewPredictionHandler(service *service.PredictionService) *PredictionHandler {
	return &PredictionHandler{service: service, now: time.Now}
}

// WithClock overrides the reference clock used when a request has no reference_date.
func (h *PredictionHandler) WithClock(now func() time.Time) *PredictionHandler {
	h.now = now
	return h
}

// RunPrediction predicts the posted {products, sales} payload.
func (h *PredictionHandler) RunPrediction(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxPayloadBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "request body too large", "limit_bytes": tooLarge.Limit})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}

	batch, err := payload.DecodeBytes(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ref := h.now()
	if raw := strings.TrimSpace(c.Query("reference_date")); raw != "" {
		ref, err = payload.ParseDate(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid reference_date", "details": err.Error()})
			return
		}
	}

	result, err := h.service.Run(c.Request.Context(), batch, ref)
	if err != nil {
		log.Error().Err(err).Int("products", len(batch.Products)).Msg("prediction run failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "prediction failed", "details": err.Error()})
		return
	}

	response := gin.H{
		"success":     true,
		"count":       len(result.Records),
		"predictions": result.Records,
	}
	if result.ArchiveKey != "" {
		response["archive_key"] = result.ArchiveKey
	}
	c.JSON(http.StatusOK, response)
}

// GetPredictions lists stored predictions. ?sku=A&sku=B or ?sku=A,B filters by product.
func (h *PredictionHandler) GetPredictions(c *gin.Context) {
	var skus []string
	for _, param := range c.QueryArray("sku") {
		for _, sku := range strings.Split(param, ",") {
			if sku = strings.TrimSpace(sku); sku != "" {
				skus = append(skus, sku)
			}
		}
	}

	records, err := h.service.List(c.Request.Context(), skus...)
	if err != nil {
		h.fail(c, "failed to fetch predictions", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"predictions": records})
}

func (h *PredictionHandler) GetSummary(c *gin.Context) {
	dashboard, err := h.service.Dashboard(c.Request.Context())
	if err != nil {
		h.fail(c, "failed to fetch summary", err)
		return
	}

	c.JSON(http.StatusOK, dashboard)
}

func (h *PredictionHandler) GetArchives(c *gin.Context) {
	objects, err := h.service.Archives(c.Request.Context())
	if err != nil {
		h.fail(c, "failed to list archives", err)
		return
	}

	archives := make([]gin.H, 0, len(objects))
	for _, o := range objects {
		archives = append(archives, gin.H{"key": o.Key, "size": o.Size})
	}
	c.JSON(http.StatusOK, gin.H{"archives": archives})
}

func (h *PredictionHandler) fail(c *gin.Context, message string, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, domain.ErrNotFound) {
		status = http.StatusNotFound
	}
	c.JSON(status, gin.H{"error": message, "details": err.Error()})
}
