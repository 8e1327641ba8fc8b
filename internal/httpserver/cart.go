package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"bookworm/internal/domain"
	"bookworm/internal/service/checkout"
)

type cartResponse struct {
	Lines []domain.CartLine `json:"lines"`
	Count int               `json:"count"`
}

func cartGetHandler(cart CartStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		lines, err := cart.Lines(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		count, err := cart.Count(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		if lines == nil {
			lines = []domain.CartLine{}
		}
		c.JSON(http.StatusOK, cartResponse{Lines: lines, Count: count})
	}
}

func cartCountHandler(cart CartStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		count, err := cart.Count(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"count": count})
	}
}

func cartAddLineHandler(cart CartStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var line domain.CartLine
		if err := c.ShouldBindJSON(&line); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid cart line"})
			return
		}
		clamped, err := cart.AddLine(c.Request.Context(), line)
		if err != nil {
			writeError(c, err)
			return
		}
		count, err := cart.Count(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"clamped": clamped, "count": count})
	}
}

func cartReplaceLineHandler(cart CartStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var line domain.CartLine
		if err := c.ShouldBindJSON(&line); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid cart line"})
			return
		}
		line.BookID = c.Param("bookID")
		if err := cart.ReplaceLine(c.Request.Context(), line); err != nil {
			writeError(c, err)
			return
		}
		count, err := cart.Count(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"count": count})
	}
}

func cartRemoveLineHandler(cart CartStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := cart.RemoveLine(c.Request.Context(), c.Param("bookID")); err != nil {
			writeError(c, err)
			return
		}
		count, err := cart.Count(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"count": count})
	}
}

func cartClearHandler(cart CartStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := cart.Clear(c.Request.Context()); err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"count": 0})
	}
}

func checkoutHandler(sm SessionManager, svc CheckoutService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := sm.Identity()
		if id.IsAnonymous() {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "authentication required"})
			return
		}
		ownerID, err := strconv.ParseInt(id.UserID, 10, 64)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
			return
		}
		err = svc.Submit(c.Request.Context(), ownerID)
		if err == nil {
			c.JSON(http.StatusOK, gin.H{"status": "ordered"})
			return
		}
		var rejected *checkout.RejectedLinesError
		switch {
		case errors.Is(err, checkout.ErrEmptyCart):
			c.JSON(http.StatusBadRequest, gin.H{"message": "cart is empty"})
		case errors.As(err, &rejected):
			c.JSON(http.StatusConflict, gin.H{
				"message":  rejected.Message,
				"book_ids": rejected.BookIDs,
			})
		default:
			writeError(c, err)
		}
	}
}
