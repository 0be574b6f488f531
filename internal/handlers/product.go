package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/ferixo/storefront/internal/events"
	"github.com/ferixo/storefront/internal/models"
	"github.com/ferixo/storefront/internal/service/search"
	"github.com/ferixo/storefront/internal/util"
)

type ProductHandler struct {
	DB       *gorm.DB
	ES       *elasticsearch.Client
	Index    string
	Producer *events.Producer
}

type productRequest struct {
	Name        string  `json:"name"`
	Series      string  `json:"series"`
	Description string  `json:"description"`
	BasePrice   float64 `json:"base_price"`
	Stock       uint    `json:"stock"`
	Capacity    string  `json:"capacity"`

	Images   []string `json:"images"`
	Features []string `json:"features"`
	Variants []struct {
		Name     string `json:"name"`
		Capacity string `json:"capacity"`
		Stock    uint   `json:"stock"`
	} `json:"variants"`
}

// productView flattens relation rows back to the plain arrays the storefront
// renders.
type productView struct {
	models.Product
	Images   []string `json:"images"`
	Features []string `json:"features"`
}

func newProductView(p models.Product) productView {
	v := productView{Product: p, Images: []string{}, Features: []string{}}
	for _, img := range p.Images {
		v.Images = append(v.Images, img.URL)
	}
	for _, f := range p.Features {
		v.Features = append(v.Features, f.Text)
	}
	v.Product.Images = nil
	v.Product.Features = nil
	return v
}

func (r productRequest) relations() ([]models.ProductImage, []models.ProductFeature, []models.ProductVariant) {
	images := make([]models.ProductImage, 0, len(r.Images))
	for _, url := range r.Images {
		images = append(images, models.ProductImage{URL: url})
	}
	features := make([]models.ProductFeature, 0, len(r.Features))
	for _, text := range r.Features {
		features = append(features, models.ProductFeature{Text: text})
	}
	variants := make([]models.ProductVariant, 0, len(r.Variants))
	for _, v := range r.Variants {
		variants = append(variants, models.ProductVariant{Name: v.Name, Capacity: v.Capacity, Stock: v.Stock})
	}
	return images, features, variants
}

func (h *ProductHandler) reindex(c echo.Context, p *models.Product) {
	if h.ES == nil {
		return
	}
	if err := search.IndexProduct(c.Request().Context(), h.ES, h.Index, p); err != nil {
		c.Logger().Errorf("ES index error: %v", err)
	}
}

func (h *ProductHandler) GetProduct(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var product models.Product
	err = h.DB.Preload("Images").Preload("Features").Preload("Variants").
		First(&product, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "fetch failed")
	}

	return c.JSON(http.StatusOK, newProductView(product))
}

func (h *ProductHandler) GetProducts(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	q := h.DB.Model(&models.Product{})
	if series := c.QueryParam("series"); series != "" {
		q = q.Where("series = ?", series)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "fetch failed")
	}

	var items []models.Product
	if err := q.Preload("Images").Preload("Variants").
		Order("created_at DESC").Offset(offset).Limit(limit).
		Find(&items).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "fetch failed")
	}

	views := make([]productView, 0, len(items))
	for _, p := range items {
		views = append(views, newProductView(p))
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data": views,
		"meta": map[string]any{
			"page":        page,
			"size":        limit,
			"total":       total,
			"total_pages": (total + int64(limit) - 1) / int64(limit),
			"has_prev":    page > 1,
			"has_next":    int64(offset+limit) < total,
		},
	})
}

func (h *ProductHandler) CreateProduct(c echo.Context) error {
	var req productRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Name == "" || req.BasePrice < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid product fields")
	}

	images, features, variants := req.relations()
	prod := models.Product{
		Name:        req.Name,
		Series:      req.Series,
		Description: req.Description,
		BasePrice:   req.BasePrice,
		Stock:       req.Stock,
		Capacity:    req.Capacity,
		Images:      images,
		Features:    features,
		Variants:    variants,
	}

	if err := h.DB.Create(&prod).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "database creation failed")
	}

	h.reindex(c, &prod)
	publish(c, h.Producer, "product_events", map[string]any{
		"type":      "product_created",
		"productID": prod.ID,
		"name":      prod.Name,
	})

	return c.JSON(http.StatusCreated, newProductView(prod))
}

// UpdateProduct replaces the product and its relations wholesale: old
// image/feature/variant rows are dropped and recreated from the request in
// one transaction.
func (h *ProductHandler) UpdateProduct(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var req productRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	var prod models.Product
	txErr := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&prod, id).Error; err != nil {
			return err
		}

		if err := tx.Where("product_id = ?", id).Delete(&models.ProductImage{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&models.ProductFeature{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&models.ProductVariant{}).Error; err != nil {
			return err
		}

		images, features, variants := req.relations()
		prod.Name = req.Name
		prod.Series = req.Series
		prod.Description = req.Description
		prod.BasePrice = req.BasePrice
		prod.Stock = req.Stock
		prod.Capacity = req.Capacity
		prod.Images = images
		prod.Features = features
		prod.Variants = variants

		return tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(&prod).Error
	})
	if txErr != nil {
		if errors.Is(txErr, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "update failed")
	}

	h.reindex(c, &prod)
	publish(c, h.Producer, "product_events", map[string]any{
		"type":      "product_updated",
		"productID": prod.ID,
		"name":      prod.Name,
	})

	return c.JSON(http.StatusOK, newProductView(prod))
}

func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	res := h.DB.Select("Images", "Features", "Variants").Delete(&models.Product{ID: uint(id)})
	if res.Error != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "delete failed")
	}
	if res.RowsAffected == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "product not found")
	}

	if h.ES != nil {
		if err := search.DeleteProduct(c.Request().Context(), h.ES, h.Index, uint(id)); err != nil {
			c.Logger().Errorf("ES delete error: %v", err)
		}
	}
	publish(c, h.Producer, "product_events", map[string]any{
		"type":      "product_deleted",
		"productID": id,
	})

	return c.NoContent(http.StatusNoContent)
}
