package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/closetshop/closet-api/internal/core/domain"
	"github.com/closetshop/closet-api/internal/core/ports"
)

// ProductHandler handles HTTP requests for the product catalog.
type ProductHandler struct {
	service       ports.CatalogService
	maxImageBytes int64
}

func NewProductHandler(service ports.CatalogService, maxImageBytes int64) *ProductHandler {
	return &ProductHandler{service: service, maxImageBytes: maxImageBytes}
}

// List handles GET /products.
//
// @Summary      List products
// @Tags         products
// @Produce      json
// @Param        page            query     int     false  "1-based page number"  default(1)
// @Param        createdByAdmin  query     bool    false  "Only products listed by an admin"
// @Param        featured        query     bool    false  "Only featured products"
// @Param        category        query     string  false  "Exact category"
// @Param        sort            query     string  false  "Sort key"  Enums(high, low, newest)
// @Success      200             {object}  productListResponse
// @Failure      400             {object}  errorResponse
// @Failure      404             {object}  errorResponse
// @Router       /products [get]
func (h *ProductHandler) List(c echo.Context) error {
	page := 1
	if err := echo.QueryParamsBinder(c).Int("page", &page).BindError(); err != nil {
		return domain.NewValidationError(map[string]string{"page": "page must be a number"})
	}
	createdByAdmin, err := optionalBool(c, "createdByAdmin")
	if err != nil {
		return err
	}
	featured, err := optionalBool(c, "featured")
	if err != nil {
		return err
	}

	result, err := h.service.ListProducts(c.Request().Context(), ports.ListProductsInput{
		Page:           page,
		CreatedByAdmin: createdByAdmin,
		Featured:       featured,
		Category:       c.QueryParam("category"),
		Sort:           c.QueryParam("sort"),
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toProductListResponse(result))
}

// optionalBool reads a boolean query parameter; absent means no filter.
func optionalBool(c echo.Context, name string) (*bool, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, domain.NewValidationError(map[string]string{name: name + " must be true or false"})
	}
	return &v, nil
}

// Get handles GET /products/:productId.
//
// @Summary      Get a product
// @Description  An unknown id answers 404 with the not_found error body
// @Description  rather than 200 with a null product.
// @Tags         products
// @Produce      json
// @Param        productId  path      string  true  "Product ID"
// @Success      200        {object}  productResponse
// @Failure      404        {object}  errorResponse
// @Router       /products/{productId} [get]
func (h *ProductHandler) Get(c echo.Context) error {
	p, err := h.service.GetProduct(c.Request().Context(), c.Param("productId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toProductResponse(p))
}

// Create handles POST /products. The body is either JSON with an imageUrl
// or a multipart form with an "image" file.
//
// @Summary      List a new product
// @Tags         products
// @Accept       json,mpfd
// @Produce      json
// @Security     AccessToken
// @Param        body   body      createProductRequest  false  "Product fields (JSON)"
// @Param        image  formData  file                  false  "Product image (multipart)"
// @Success      201    {object}  productResponse
// @Failure      400    {object}  errorResponse
// @Failure      401    {object}  errorResponse
// @Router       /products [post]
func (h *ProductHandler) Create(c echo.Context) error {
	seller, err := ctxUser(c)
	if err != nil {
		return err
	}

	var req createProductRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	input := toCreateProductInput(req, seller)

	if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		file, err := c.FormFile("image")
		if err != nil && !errors.Is(err, http.ErrMissingFile) {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid multipart body")
		}
		if file != nil {
			if file.Size > h.maxImageBytes {
				return domain.NewValidationError(map[string]string{
					"image": fmt.Sprintf("image must be at most %d bytes", h.maxImageBytes),
				})
			}
			src, err := file.Open()
			if err != nil {
				return fmt.Errorf("open upload: %w", err)
			}
			defer src.Close()

			input.Image = &ports.ImageUpload{
				Filename:    file.Filename,
				ContentType: file.Header.Get(echo.HeaderContentType),
				Size:        file.Size,
				Body:        src,
			}
		}
	}

	p, err := h.service.CreateProduct(c.Request().Context(), input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toProductResponse(p))
}

// ToggleSold handles PUT /users/:userId/products/:productId.
//
// @Summary      Toggle the sold flag of a listed product
// @Tags         products
// @Produce      json
// @Security     AccessToken
// @Param        userId     path      string  true  "Seller ID"
// @Param        productId  path      string  true  "Product ID"
// @Success      201        {object}  productResponse
// @Failure      401        {object}  errorResponse
// @Failure      403        {object}  errorResponse
// @Failure      404        {object}  errorResponse
// @Router       /users/{userId}/products/{productId} [put]
func (h *ProductHandler) ToggleSold(c echo.Context) error {
	actor, err := ctxUser(c)
	if err != nil {
		return err
	}

	p, err := h.service.ToggleSold(c.Request().Context(), actor, c.Param("userId"), c.Param("productId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toProductResponse(p))
}

// SetFeatured handles PUT /products/:productId/featured.
//
// @Summary      Feature or unfeature a product
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     AccessToken
// @Param        productId  path      string              true  "Product ID"
// @Param        body       body      setFeaturedRequest  true  "Featured flag"
// @Success      200        {object}  productResponse
// @Failure      400        {object}  errorResponse
// @Failure      403        {object}  errorResponse
// @Failure      404        {object}  errorResponse
// @Router       /products/{productId}/featured [put]
func (h *ProductHandler) SetFeatured(c echo.Context) error {
	var req setFeaturedRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	p, err := h.service.SetFeatured(c.Request().Context(), c.Param("productId"), *req.Featured)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toProductResponse(p))
}

// Image handles GET /images/:imageId.
//
// @Summary      Download a product image
// @Tags         products
// @Produce      jpeg,png
// @Param        imageId  path  string  true  "Image ID"
// @Success      200
// @Failure      404  {object}  errorResponse
// @Router       /images/{imageId} [get]
func (h *ProductHandler) Image(c echo.Context) error {
	img, err := h.service.OpenImage(c.Request().Context(), c.Param("imageId"))
	if err != nil {
		return err
	}
	defer img.Body.Close()

	if img.Size > 0 {
		c.Response().Header().Set(echo.HeaderContentLength, strconv.FormatInt(img.Size, 10))
	}
	c.Response().Header().Set("Cache-Control", "public, max-age=86400")
	return c.Stream(http.StatusOK, img.ContentType, img.Body)
}
