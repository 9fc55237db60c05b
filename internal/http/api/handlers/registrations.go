package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	dbutil "github.com/expodesk/expodesk/internal/db"
	"github.com/expodesk/expodesk/internal/models"
	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ExhibitorHandler serves exhibitor registration endpoints.
type ExhibitorHandler struct {
	db *gorm.DB
}

// NewExhibitorHandler constructs an ExhibitorHandler.
func NewExhibitorHandler(db *gorm.DB) *ExhibitorHandler {
	return &ExhibitorHandler{db: db}
}

// exhibitorRequest defines the public registration payload.
type exhibitorRequest struct {
	CompanyName   string         `json:"company_name"`
	ContactPerson string         `json:"contact_person"`
	Email         string         `json:"email"`
	Phone         string         `json:"phone"`
	Country       string         `json:"country"`
	BoothSize     string         `json:"booth_size"`
	Products      datatypes.JSON `json:"products"`
	Message       string         `json:"message"`
}

// Create accepts a public exhibitor registration.
func (h *ExhibitorHandler) Create(c *gin.Context) {
	var body exhibitorRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid request body"})
		return
	}
	if strings.TrimSpace(body.CompanyName) == "" || strings.TrimSpace(body.Email) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Company name & email required"})
		return
	}

	row := models.ExhibitorRegistration{
		CompanyName:   strings.TrimSpace(body.CompanyName),
		ContactPerson: strings.TrimSpace(body.ContactPerson),
		Email:         strings.TrimSpace(body.Email),
		Phone:         strings.TrimSpace(body.Phone),
		Country:       strings.TrimSpace(body.Country),
		BoothSize:     strings.TrimSpace(body.BoothSize),
		Products:      body.Products,
		Message:       body.Message,
	}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&row).Error; errCreate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Registration failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Registration submitted", "id": row.ID})
}

// List returns exhibitor registrations, newest first, optionally filtered by
// a case-insensitive company or email search.
func (h *ExhibitorHandler) List(c *gin.Context) {
	query := h.db.WithContext(c.Request.Context())
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		pattern := dbutil.NormalizeLikePattern(h.db, "%"+search+"%")
		query = query.Where(
			"("+dbutil.CaseInsensitiveLikeExpr(h.db, "company_name")+" OR "+dbutil.CaseInsensitiveLikeExpr(h.db, "email")+")",
			pattern, pattern,
		)
	}

	var rows []models.ExhibitorRegistration
	errFind := query.Order("created_at DESC").Find(&rows).Error
	if errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "List registrations failed"})
		return
	}

	out := make([]gin.H, 0, len(rows))
	for idx := range rows {
		out = append(out, exhibitorPayload(&rows[idx]))
	}
	c.JSON(http.StatusOK, out)
}

// exhibitorPayload is the registration shape returned to clients.
func exhibitorPayload(row *models.ExhibitorRegistration) gin.H {
	return gin.H{
		"id":             row.ID,
		"company_name":   row.CompanyName,
		"contact_person": row.ContactPerson,
		"email":          row.Email,
		"phone":          row.Phone,
		"country":        row.Country,
		"booth_size":     row.BoothSize,
		"products":       row.Products,
		"message":        row.Message,
		"created_at":     row.CreatedAt,
	}
}

// Get returns one exhibitor registration by id.
func (h *ExhibitorHandler) Get(c *gin.Context) {
	id, errParse := parseID(c)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid id"})
		return
	}
	var row models.ExhibitorRegistration
	errFind := h.db.WithContext(c.Request.Context()).First(&row, id).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"detail": "Registration not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Query failed"})
		return
	}
	c.JSON(http.StatusOK, exhibitorPayload(&row))
}

// Delete removes one exhibitor registration by id.
func (h *ExhibitorHandler) Delete(c *gin.Context) {
	id, errParse := parseID(c)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid id"})
		return
	}
	res := h.db.WithContext(c.Request.Context()).Delete(&models.ExhibitorRegistration{}, id)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Delete failed"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Registration not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Registration deleted"})
}

// VisitorHandler serves visitor registration endpoints.
type VisitorHandler struct {
	db *gorm.DB
}

// NewVisitorHandler constructs a VisitorHandler.
func NewVisitorHandler(db *gorm.DB) *VisitorHandler {
	return &VisitorHandler{db: db}
}

// visitorRequest defines the public registration payload.
type visitorRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Company string `json:"company"`
	Purpose string `json:"purpose"`
}

// Create accepts a public visitor registration.
func (h *VisitorHandler) Create(c *gin.Context) {
	var body visitorRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid request body"})
		return
	}
	if strings.TrimSpace(body.Name) == "" || strings.TrimSpace(body.Email) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Name & email required"})
		return
	}

	row := models.VisitorRegistration{
		Name:    strings.TrimSpace(body.Name),
		Email:   strings.TrimSpace(body.Email),
		Phone:   strings.TrimSpace(body.Phone),
		Company: strings.TrimSpace(body.Company),
		Purpose: body.Purpose,
	}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&row).Error; errCreate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Registration failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Registration submitted", "id": row.ID})
}

// List returns visitor registrations, newest first, optionally filtered by a
// case-insensitive name or email search.
func (h *VisitorHandler) List(c *gin.Context) {
	query := h.db.WithContext(c.Request.Context())
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		pattern := dbutil.NormalizeLikePattern(h.db, "%"+search+"%")
		query = query.Where(
			"("+dbutil.CaseInsensitiveLikeExpr(h.db, "name")+" OR "+dbutil.CaseInsensitiveLikeExpr(h.db, "email")+")",
			pattern, pattern,
		)
	}

	var rows []models.VisitorRegistration
	errFind := query.Order("created_at DESC").Find(&rows).Error
	if errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "List registrations failed"})
		return
	}

	out := make([]gin.H, 0, len(rows))
	for idx := range rows {
		out = append(out, visitorPayload(&rows[idx]))
	}
	c.JSON(http.StatusOK, out)
}

// visitorPayload is the registration shape returned to clients.
func visitorPayload(row *models.VisitorRegistration) gin.H {
	return gin.H{
		"id":         row.ID,
		"name":       row.Name,
		"email":      row.Email,
		"phone":      row.Phone,
		"company":    row.Company,
		"purpose":    row.Purpose,
		"created_at": row.CreatedAt,
	}
}

// Get returns one visitor registration by id.
func (h *VisitorHandler) Get(c *gin.Context) {
	id, errParse := parseID(c)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid id"})
		return
	}
	var row models.VisitorRegistration
	errFind := h.db.WithContext(c.Request.Context()).First(&row, id).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"detail": "Registration not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Query failed"})
		return
	}
	c.JSON(http.StatusOK, visitorPayload(&row))
}

// Delete removes one visitor registration by id.
func (h *VisitorHandler) Delete(c *gin.Context) {
	id, errParse := parseID(c)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid id"})
		return
	}
	res := h.db.WithContext(c.Request.Context()).Delete(&models.VisitorRegistration{}, id)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Delete failed"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Registration not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Registration deleted"})
}

// parseID reads the numeric :id path parameter.
func parseID(c *gin.Context) (uint64, error) {
	return strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
}
