package httpserver

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"storefront-api/internal/domain"
	productrepo "storefront-api/internal/repository/product"
)

func listProductsHandler(products productService) gin.HandlerFunc {
	return func(c *gin.Context) {
		f := productrepo.ListFilter{
			Query:      c.Query("q"),
			CategoryID: c.Query("category"),
			Color:      c.Query("color"),
			Size:       c.Query("size"),
		}
		f.Page, _ = strconv.Atoi(c.Query("page"))
		f.Limit, _ = strconv.Atoi(c.Query("limit"))
		var err error
		if f.MinPriceCents, err = priceParam(c.Query("minPrice")); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid minPrice"})
			return
		}
		if f.MaxPriceCents, err = priceParam(c.Query("maxPrice")); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid maxPrice"})
			return
		}
		res, err := products.List(c.Request.Context(), f)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

// priceParam converts a decimal dollar amount from the query string to cents.
func priceParam(raw string) (int64, error) {
	if raw == "" {
		return 0, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, err
	}
	return d.Shift(2).IntPart(), nil
}

func getProductHandler(products productService) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := products.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

func createProductHandler(products productService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var p domain.Product
		if err := c.ShouldBindJSON(&p); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
			return
		}
		created, err := products.Create(c.Request.Context(), p)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, created)
	}
}

func updateProductHandler(products productService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var p domain.Product
		if err := c.ShouldBindJSON(&p); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
			return
		}
		p.ID = c.Param("id")
		updated, err := products.Update(c.Request.Context(), p)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, updated)
	}
}

func deleteProductHandler(products productService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := products.Delete(c.Request.Context(), c.Param("id")); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
