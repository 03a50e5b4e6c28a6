package handlers

import (
	"net/http"
	"strings"

	"transferportal/internal/domain/models"
	"transferportal/internal/http/middleware"
	"transferportal/internal/utils"

	"github.com/gin-gonic/gin"
)

const (
	maxImportBytes = 10 << 20
	xlsxMIME       = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type cityRateRequest struct {
	State   string         `json:"state" binding:"required"`
	City    string         `json:"city" binding:"required"`
	Airport string         `json:"airport"`
	Rate    models.CabRate `json:"rate"`
}

type deleteRateQuery struct {
	State    string `form:"state" binding:"required"`
	City     string `form:"city" binding:"required"`
	CabModel string `form:"cab_model" binding:"required"`
}

// GET /api/public/countries
func (h *Handler) Countries(c *gin.Context) {
	list, err := h.pricing(c).Countries(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list})
}

// GET /api/public/locations/:country
func (h *Handler) Locations(c *gin.Context) {
	states, err := h.pricing(c).Locations(c.Request.Context(), c.Param("country"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"country": c.Param("country"), "states": states})
}

// GET /api/public/catalog
func (h *Handler) PublicCatalog(c *gin.Context) {
	c.JSON(http.StatusOK, h.pricing(c).ActiveCatalog())
}

// POST /api/public/quote
func (h *Handler) Quote(c *gin.Context) {
	var req models.QuoteRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	q, err := h.pricing(c).Quote(c.Request.Context(), req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, q)
}

// GET /api/admin/pricing/countries/:country
func (h *Handler) GetPricing(c *gin.Context) {
	doc, err := h.pricing(c).Get(c.Request.Context(), c.Param("country"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// PUT /api/admin/pricing/countries/:country
func (h *Handler) PutPricing(c *gin.Context) {
	var doc models.PricingDocument
	if !BindJSONOrError(c, &doc) {
		return
	}
	if country := utils.NormalizeSpace(c.Param("country")); doc.Country == "" {
		doc.Country = country
	} else if utils.NameKey(doc.Country) != utils.NameKey(country) {
		respondError(c, http.StatusBadRequest, "validation_error", "country in body does not match path", nil)
		return
	}
	saved, err := h.pricing(c).Put(c.Request.Context(), doc)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

// DELETE /api/admin/pricing/countries/:country
func (h *Handler) DeletePricing(c *gin.Context) {
	if err := h.pricing(c).Delete(c.Request.Context(), c.Param("country")); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// PUT /api/admin/pricing/countries/:country/rates
func (h *Handler) UpsertRate(c *gin.Context) {
	var req cityRateRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	doc, err := h.pricing(c).UpsertCityRate(c.Request.Context(), c.Param("country"), req.State, req.City, req.Airport, req.Rate)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// DELETE /api/admin/pricing/countries/:country/rates?state=&city=&cab_model=
func (h *Handler) DeleteRate(c *gin.Context) {
	var req deleteRateQuery
	if err := c.ShouldBindQuery(&req); err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", "state, city and cab_model are required", err.Error())
		return
	}
	doc, err := h.pricing(c).DeleteCityRate(c.Request.Context(), c.Param("country"), req.State, req.City, req.CabModel)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// PUT /api/admin/pricing/bulk?mode=merge|replace
func (h *Handler) BulkPricing(c *gin.Context) {
	var docs []models.PricingDocument
	if !BindJSONOrError(c, &docs) {
		return
	}
	summary, _, err := h.pricing(c).BulkImport(c.Request.Context(), docs, c.Query("mode"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// POST /api/admin/pricing/import (multipart: file, mode)
func (h *Handler) ImportPricing(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImportBytes)
	fh, err := c.FormFile("file")
	if err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", "multipart field \"file\" is required", err.Error())
		return
	}
	if !strings.HasSuffix(strings.ToLower(fh.Filename), ".xlsx") {
		respondError(c, http.StatusBadRequest, "validation_error", "only .xlsx files are accepted", nil)
		return
	}
	f, err := fh.Open()
	if err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", "cannot read upload", err.Error())
		return
	}
	defer f.Close()

	summary, err := h.pricing(c).ImportSheet(c.Request.Context(), f, c.PostForm("mode"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	utils.LogEvent(middleware.GetRequestID(c), "pricing", "import", "sheet applied", "file", fh.Filename, "bytes", fh.Size)
	c.JSON(http.StatusOK, summary)
}

// GET /api/admin/pricing/export?country=
func (h *Handler) ExportPricing(c *gin.Context) {
	data, name, err := h.pricing(c).ExportSheet(c.Request.Context(), c.Query("country"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	attachment(c, xlsxMIME, name, data, false)
}
