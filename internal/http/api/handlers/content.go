package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/expodesk/expodesk/internal/models"
	"github.com/expodesk/expodesk/internal/settings"
	"github.com/expodesk/expodesk/internal/storage"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// CategoryHandler serves product category endpoints.
type CategoryHandler struct {
	db    *gorm.DB
	files storage.Store
}

// NewCategoryHandler constructs a CategoryHandler.
func NewCategoryHandler(db *gorm.DB, files storage.Store) *CategoryHandler {
	return &CategoryHandler{db: db, files: files}
}

// List returns all categories, newest first.
func (h *CategoryHandler) List(c *gin.Context) {
	var rows []models.Category
	errFind := h.db.WithContext(c.Request.Context()).
		Order("created_at DESC").
		Find(&rows).Error
	if errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "List categories failed"})
		return
	}

	out := make([]gin.H, 0, len(rows))
	for idx := range rows {
		out = append(out, categoryPayload(&rows[idx]))
	}
	c.JSON(http.StatusOK, out)
}

// categoryPayload is the category shape returned to clients.
func categoryPayload(row *models.Category) gin.H {
	return gin.H{
		"id":          row.ID,
		"name":        row.Name,
		"description": row.Description,
		"image":       row.Image,
		"created_at":  row.CreatedAt,
	}
}

// Create accepts a multipart category with an optional image.
func (h *CategoryHandler) Create(c *gin.Context) {
	name := strings.TrimSpace(c.PostForm("name"))
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Name required"})
		return
	}

	row := models.Category{
		Name:        name,
		Description: c.PostForm("description"),
	}

	if file, errFile := c.FormFile("image"); errFile == nil {
		src, errOpen := file.Open()
		if errOpen != nil {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid image upload"})
			return
		}
		url, errSave := h.files.Save("categories", file.Filename, src)
		src.Close()
		if errSave != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "Store image failed"})
			return
		}
		row.Image = url
	}

	if errCreate := h.db.WithContext(c.Request.Context()).Create(&row).Error; errCreate != nil {
		if row.Image != "" {
			if errCleanup := h.files.Delete(row.Image); errCleanup != nil {
				log.WithError(errCleanup).Warn("remove orphaned category image failed")
			}
		}
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Create category failed"})
		return
	}
	c.JSON(http.StatusCreated, categoryPayload(&row))
}

// Delete removes a category and its stored image.
func (h *CategoryHandler) Delete(c *gin.Context) {
	id, errParse := parseID(c)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid id"})
		return
	}

	ctx := c.Request.Context()
	var row models.Category
	errFind := h.db.WithContext(ctx).First(&row, id).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"detail": "Category not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Query failed"})
		return
	}

	if errDelete := h.db.WithContext(ctx).Delete(&row).Error; errDelete != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Delete failed"})
		return
	}
	if row.Image != "" {
		if errRemove := h.files.Delete(row.Image); errRemove != nil {
			log.WithError(errRemove).Warn("remove category image failed")
		}
	}
	c.JSON(http.StatusOK, gin.H{"message": "Category deleted"})
}

// EventHandler serves event CRUD endpoints.
type EventHandler struct {
	db *gorm.DB
}

// NewEventHandler constructs an EventHandler.
func NewEventHandler(db *gorm.DB) *EventHandler {
	return &EventHandler{db: db}
}

// eventRequest defines the event create/update payload.
type eventRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Venue       string     `json:"venue"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
}

// List returns all events, upcoming first.
func (h *EventHandler) List(c *gin.Context) {
	var rows []models.Event
	errFind := h.db.WithContext(c.Request.Context()).
		Order("start_date DESC").
		Find(&rows).Error
	if errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "List events failed"})
		return
	}

	out := make([]gin.H, 0, len(rows))
	for idx := range rows {
		out = append(out, eventPayload(&rows[idx]))
	}
	c.JSON(http.StatusOK, out)
}

// eventPayload is the event shape returned to clients.
func eventPayload(row *models.Event) gin.H {
	return gin.H{
		"id":          row.ID,
		"title":       row.Title,
		"description": row.Description,
		"venue":       row.Venue,
		"start_date":  row.StartDate,
		"end_date":    row.EndDate,
		"created_at":  row.CreatedAt,
		"updated_at":  row.UpdatedAt,
	}
}

// Create adds an event.
func (h *EventHandler) Create(c *gin.Context) {
	var body eventRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid request body"})
		return
	}
	if strings.TrimSpace(body.Title) == "" || body.StartDate == nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Title & start date required"})
		return
	}

	row := models.Event{
		Title:       strings.TrimSpace(body.Title),
		Description: body.Description,
		Venue:       strings.TrimSpace(body.Venue),
		StartDate:   *body.StartDate,
		EndDate:     body.EndDate,
	}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&row).Error; errCreate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Create event failed"})
		return
	}
	c.JSON(http.StatusCreated, eventPayload(&row))
}

// Update partially updates an event.
func (h *EventHandler) Update(c *gin.Context) {
	id, errParse := parseID(c)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid id"})
		return
	}
	var body eventRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid request body"})
		return
	}

	ctx := c.Request.Context()
	var row models.Event
	errFind := h.db.WithContext(ctx).First(&row, id).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"detail": "Event not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Query failed"})
		return
	}

	updates := map[string]any{"updated_at": time.Now().UTC()}
	if title := strings.TrimSpace(body.Title); title != "" {
		updates["title"] = title
	}
	if body.Description != "" {
		updates["description"] = body.Description
	}
	if venue := strings.TrimSpace(body.Venue); venue != "" {
		updates["venue"] = venue
	}
	if body.StartDate != nil {
		updates["start_date"] = *body.StartDate
	}
	if body.EndDate != nil {
		updates["end_date"] = *body.EndDate
	}
	if errUpdate := h.db.WithContext(ctx).Model(&row).Updates(updates).Error; errUpdate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Update event failed"})
		return
	}
	c.JSON(http.StatusOK, eventPayload(&row))
}

// Delete removes an event.
func (h *EventHandler) Delete(c *gin.Context) {
	id, errParse := parseID(c)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid id"})
		return
	}
	res := h.db.WithContext(c.Request.Context()).Delete(&models.Event{}, id)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Delete failed"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Event not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Event deleted"})
}

// GalleryHandler serves site gallery image endpoints.
type GalleryHandler struct {
	db    *gorm.DB
	files storage.Store
}

// NewGalleryHandler constructs a GalleryHandler.
func NewGalleryHandler(db *gorm.DB, files storage.Store) *GalleryHandler {
	return &GalleryHandler{db: db, files: files}
}

// sectionCap returns the image limit for a page/section pair, 0 for unlimited.
func sectionCap(page, section string) int {
	switch {
	case page == "about" && section == "banner":
		return settings.AboutBannerMaxImages
	case page == "about" && (section == "why_exhibit" || section == "why_choose_igtf"):
		return settings.AboutSectionMaxImages
	case page == "gallery" && section == "main":
		return settings.GalleryMainMaxImages
	}
	return 0
}

// List returns gallery images, optionally filtered by page and section,
// ordered for display.
func (h *GalleryHandler) List(c *gin.Context) {
	query := h.db.WithContext(c.Request.Context()).Model(&models.GalleryImage{})
	if page := strings.TrimSpace(c.Query("page")); page != "" {
		query = query.Where("page = ?", page)
	}
	if section := strings.TrimSpace(c.Query("section")); section != "" {
		query = query.Where("section = ?", section)
	}

	var rows []models.GalleryImage
	if errFind := query.Order("display_order ASC, id ASC").Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "List gallery failed"})
		return
	}

	out := make([]gin.H, 0, len(rows))
	for idx := range rows {
		out = append(out, galleryPayload(&rows[idx]))
	}
	c.JSON(http.StatusOK, out)
}

// galleryPayload is the gallery image shape returned to clients.
func galleryPayload(row *models.GalleryImage) gin.H {
	return gin.H{
		"id":            row.ID,
		"page":          row.Page,
		"section":       row.Section,
		"image":         row.Image,
		"display_order": row.DisplayOrder,
		"created_at":    row.CreatedAt,
	}
}

// Create uploads an image into a page section, enforcing section caps and
// appending at the end of the display order.
func (h *GalleryHandler) Create(c *gin.Context) {
	page := strings.TrimSpace(c.PostForm("page"))
	section := strings.TrimSpace(c.PostForm("section"))
	if page == "" || section == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Page & section required"})
		return
	}
	file, errFile := c.FormFile("image")
	if errFile != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Image file required"})
		return
	}

	ctx := c.Request.Context()

	if limit := sectionCap(page, section); limit > 0 {
		var count int64
		errCount := h.db.WithContext(ctx).Model(&models.GalleryImage{}).
			Where("page = ? AND section = ?", page, section).
			Count(&count).Error
		if errCount != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "Query failed"})
			return
		}
		if count >= int64(limit) {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "Image limit reached for this section"})
			return
		}
	}

	var maxOrder int64
	errMax := h.db.WithContext(ctx).Model(&models.GalleryImage{}).
		Where("page = ? AND section = ?", page, section).
		Select("COALESCE(MAX(display_order), 0)").
		Scan(&maxOrder).Error
	if errMax != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Query failed"})
		return
	}

	src, errOpen := file.Open()
	if errOpen != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid image upload"})
		return
	}
	url, errSave := h.files.Save("gallery", file.Filename, src)
	src.Close()
	if errSave != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Store image failed"})
		return
	}

	row := models.GalleryImage{
		Page:         page,
		Section:      section,
		Image:        url,
		DisplayOrder: int(maxOrder) + 1,
	}
	if errCreate := h.db.WithContext(ctx).Create(&row).Error; errCreate != nil {
		if errCleanup := h.files.Delete(url); errCleanup != nil {
			log.WithError(errCleanup).Warn("remove orphaned gallery image failed")
		}
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Create gallery image failed"})
		return
	}
	c.JSON(http.StatusCreated, galleryPayload(&row))
}

// Delete removes a gallery image record and its stored file.
func (h *GalleryHandler) Delete(c *gin.Context) {
	id, errParse := parseID(c)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid id"})
		return
	}

	ctx := c.Request.Context()
	var row models.GalleryImage
	errFind := h.db.WithContext(ctx).First(&row, id).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"detail": "Image not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Query failed"})
		return
	}

	if errDelete := h.db.WithContext(ctx).Delete(&row).Error; errDelete != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Delete failed"})
		return
	}
	if errRemove := h.files.Delete(row.Image); errRemove != nil {
		log.WithError(errRemove).Warn("remove gallery file failed")
	}
	c.JSON(http.StatusOK, gin.H{"message": "Image deleted"})
}
