package httpserver

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"bookworm/internal/apiclient"
)

func listBooksHandler(catalog CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := apiclient.BookListQuery{
			Page:      intQuery(c, "page"),
			PageSize:  intQuery(c, "page_size"),
			SortBy:    c.Query("sort_by"),
			Category:  c.Query("category"),
			Author:    c.Query("author"),
			MinRating: intQuery(c, "min_rating"),
		}
		page, err := catalog.ListBooks(c.Request.Context(), q)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, page)
	}
}

func getBookHandler(catalog CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		book, err := catalog.GetBook(c.Request.Context(), c.Param("bookID"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, book)
	}
}

func featuredBooksHandler(catalog CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		books, err := catalog.FeaturedBooks(c.Request.Context(), c.Query("sort_by"), intQuery(c, "top_k"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": books})
	}
}

func topDiscountedHandler(catalog CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		books, err := catalog.TopDiscountedBooks(c.Request.Context(), intQuery(c, "top_k"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": books})
	}
}

func listReviewsHandler(catalog CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := apiclient.ReviewListQuery{
			Page:     intQuery(c, "page"),
			PageSize: intQuery(c, "page_size"),
			SortBy:   c.Query("sort_by"),
			Rating:   intQuery(c, "rating_star"),
		}
		page, err := catalog.ListReviews(c.Request.Context(), c.Param("bookID"), q)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, page)
	}
}

func createReviewHandler(catalog CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in apiclient.ReviewInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid review"})
			return
		}
		review, err := catalog.CreateReview(c.Request.Context(), c.Param("bookID"), in)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, review)
	}
}

func intQuery(c *gin.Context, key string) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return 0
	}
	return v
}
