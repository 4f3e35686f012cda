package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

type categoryRequest struct {
	CategoryName string `json:"categoryName" binding:"required"`
}

type productRequest struct {
	ProductName string          `json:"productName" binding:"required,min=3"`
	Description string          `json:"description" binding:"required,min=6"`
	Quantity    int             `json:"quantity" binding:"min=0"`
	Price       decimal.Decimal `json:"price"`
	Discount    decimal.Decimal `json:"discount"`
}

func (r productRequest) spec() domain.ProductSpec {
	return domain.ProductSpec{
		Name:        r.ProductName,
		Description: r.Description,
		Quantity:    r.Quantity,
		Price:       r.Price,
		Discount:    r.Discount,
	}
}

func (h *handlers) listCategories(c *gin.Context) {
	page, err := pageRequest(c)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	res, err := h.deps.CategorySvc.List(c.Request.Context(), page)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *handlers) createCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, h.logger, bindError(err))
		return
	}
	cat, err := h.deps.CategorySvc.Create(c.Request.Context(), req.CategoryName)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, cat)
}

func (h *handlers) updateCategory(c *gin.Context) {
	id, err := pathID(c, "categoryId")
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, h.logger, bindError(err))
		return
	}
	cat, err := h.deps.CategorySvc.Update(c.Request.Context(), id, req.CategoryName)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, cat)
}

func (h *handlers) deleteCategory(c *gin.Context) {
	id, err := pathID(c, "categoryId")
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	cat, err := h.deps.CategorySvc.Delete(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, cat)
}

func (h *handlers) createProduct(c *gin.Context) {
	categoryID, err := pathID(c, "categoryId")
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, h.logger, bindError(err))
		return
	}
	p, err := h.deps.ProductSvc.CreateProduct(c.Request.Context(), categoryID, req.spec())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, h.productView(*p))
}

func (h *handlers) listProducts(c *gin.Context) {
	page, err := pageRequest(c)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	filter := domain.ProductFilter{Keyword: c.Query("keyword")}
	if raw := c.Query("category"); raw != "" {
		id, err := parseID("category", raw)
		if err != nil {
			writeError(c, h.logger, err)
			return
		}
		filter.CategoryID = id
	}
	res, err := h.deps.ProductSvc.ListProducts(c.Request.Context(), filter, page)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, h.productPage(res))
}

func (h *handlers) listProductsByCategory(c *gin.Context) {
	categoryID, err := pathID(c, "categoryId")
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	page, err := pageRequest(c)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	res, err := h.deps.ProductSvc.ListByCategory(c.Request.Context(), categoryID, page)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, h.productPage(res))
}

func (h *handlers) searchProducts(c *gin.Context) {
	page, err := pageRequest(c)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	res, err := h.deps.ProductSvc.SearchByKeyword(c.Request.Context(), c.Param("keyword"), page)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, h.productPage(res))
}

func (h *handlers) updateProduct(c *gin.Context) {
	id, err := pathID(c, "productId")
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, h.logger, bindError(err))
		return
	}
	p, err := h.deps.ProductSvc.UpdateProduct(c.Request.Context(), id, req.spec())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, h.productView(*p))
}

func (h *handlers) deleteProduct(c *gin.Context) {
	id, err := pathID(c, "productId")
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	p, err := h.deps.ProductSvc.DeleteProduct(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, h.productView(*p))
}

// maxImageBytes caps the whole multipart body of an image upload.
const maxImageBytes = 10 << 20

func (h *handlers) updateProductImage(c *gin.Context) {
	id, err := pathID(c, "productId")
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImageBytes)
	fh, err := c.FormFile("image")
	if err != nil {
		writeError(c, h.logger, bindError(err))
		return
	}
	f, err := fh.Open()
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	defer f.Close()

	p, err := h.deps.ProductSvc.UpdateProductImage(c.Request.Context(), id, fh.Filename, f)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, h.productView(*p))
}

func (h *handlers) productView(p domain.Product) domain.Product {
	p.Image = h.deps.ProductSvc.ImageURL(p.Image)
	return p
}

func (h *handlers) productPage(page domain.Page[domain.Product]) domain.Page[domain.Product] {
	content := make([]domain.Product, len(page.Content))
	for i, p := range page.Content {
		content[i] = h.productView(p)
	}
	page.Content = content
	return page
}
