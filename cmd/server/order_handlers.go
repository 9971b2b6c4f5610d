package main

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/davilamx/comandas/internal/cart"
	"github.com/davilamx/comandas/internal/feed"
	"github.com/davilamx/comandas/internal/order"
)

func publish(c *gin.Context, pub feed.Publisher, ev feed.Event, err error) {
	if err != nil {
		log.Printf("[orders] event payload: %v", err)
		return
	}
	if err := pub.Publish(c.Request.Context(), ev); err != nil {
		// the mutation already persisted; boards catch up on cold load
		log.Printf("[orders] publish: %v", err)
	}
}

// POST /orders — creates a pending order. Submitted lines pass through the
// cart identity rule so duplicate configurations arrive merged, and the
// daily sequence number is assigned as count-of-today plus one.
func createOrderHandler(repo order.Repository, pub feed.Publisher) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req order.CreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errJSON(c, http.StatusBadRequest, "invalid json")
			return
		}
		if len(req.Items) == 0 {
			errJSON(c, http.StatusBadRequest, "items are required")
			return
		}
		lines := cart.Normalize(req.Items)

		total := decimal.Zero
		if req.Total != nil {
			total = *req.Total
		} else {
			for _, l := range lines {
				total = total.Add(l.Total())
			}
		}
		if total.IsNegative() {
			errJSON(c, http.StatusBadRequest, "total must not be negative")
			return
		}

		name := req.CustomerName
		if name == "" {
			name = order.DefaultCustomerName
		}

		count, err := repo.CountCreatedToday(c.Request.Context())
		if err != nil {
			log.Printf("[orders] count today: %v", err)
			errJSON(c, http.StatusInternalServerError, "internal error")
			return
		}

		o := &order.Order{
			ID:            uuid.NewString(),
			OrderNumber:   count + 1,
			CustomerName:  name,
			Lines:         lines,
			Total:         total,
			Status:        order.StatusPending,
			PaymentMethod: req.PaymentMethod,
		}
		if err := repo.Create(c.Request.Context(), o); err != nil {
			log.Printf("[orders] create: %v", err)
			errJSON(c, http.StatusInternalServerError, "internal error")
			return
		}

		ev, err := feed.ForOrder(feed.TypeInsert, o)
		publish(c, pub, ev, err)
		c.JSON(http.StatusCreated, o)
	}
}

// GET /orders                  → all orders, newest first
// GET /orders?id=X             → one order
// GET /orders?nextNumber=true  → preview of the next daily number (not
// reserved; creation recounts)
func listOrdersHandler(repo order.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		if id := c.Query("id"); id != "" {
			o, err := repo.GetByID(c.Request.Context(), id)
			if err != nil {
				errJSON(c, http.StatusNotFound, "order not found")
				return
			}
			c.JSON(http.StatusOK, o)
			return
		}
		if c.Query("nextNumber") == "true" {
			count, err := repo.CountCreatedToday(c.Request.Context())
			if err != nil {
				log.Printf("[orders] count today: %v", err)
				errJSON(c, http.StatusInternalServerError, "internal error")
				return
			}
			c.JSON(http.StatusOK, gin.H{"nextNumber": count + 1})
			return
		}
		items, err := repo.List(c.Request.Context())
		if err != nil {
			log.Printf("[orders] list: %v", err)
			errJSON(c, http.StatusInternalServerError, "internal error")
			return
		}
		if items == nil {
			items = []order.Order{}
		}
		c.JSON(http.StatusOK, items)
	}
}

// PUT /orders — partial update by id. Status-only transitions are free;
// replacing the lines of an order already past pending requires the typed
// confirmation phrase.
func updateOrderHandler(repo order.Repository, pub feed.Publisher) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req order.UpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errJSON(c, http.StatusBadRequest, "invalid json")
			return
		}
		if req.ID == "" {
			errJSON(c, http.StatusBadRequest, "id is required")
			return
		}
		if req.Status != nil && !req.Status.Valid() {
			errJSON(c, http.StatusBadRequest, "invalid status")
			return
		}

		o, err := repo.GetByID(c.Request.Context(), req.ID)
		if err != nil {
			errJSON(c, http.StatusNotFound, "order not found")
			return
		}

		editsContent := req.Items != nil || req.CustomerName != nil ||
			req.Total != nil || req.PaymentMethod != nil
		if editsContent && o.Status != order.StatusPending &&
			req.Confirm != order.ConfirmPhrase(o.OrderNumber) {
			errJSON(c, http.StatusBadRequest, "confirmation phrase required")
			return
		}

		if req.CustomerName != nil {
			o.CustomerName = *req.CustomerName
		}
		if req.Items != nil {
			// lines are replaced wholesale, never patched
			o.Lines = cart.Normalize(*req.Items)
		}
		if req.Total != nil {
			o.Total = *req.Total
		}
		if req.Status != nil {
			o.Status = *req.Status
		}
		if req.PaymentMethod != nil {
			o.PaymentMethod = *req.PaymentMethod
		}

		if err := repo.Update(c.Request.Context(), o); err != nil {
			log.Printf("[orders] update: %v", err)
			errJSON(c, http.StatusInternalServerError, "internal error")
			return
		}

		ev, err := feed.ForOrder(feed.TypeUpdate, o)
		publish(c, pub, ev, err)
		c.JSON(http.StatusOK, o)
	}
}

// DELETE /orders?id=X — physical delete; past pending it requires the
// confirmation phrase in ?confirm=.
func deleteOrderHandler(repo order.Repository, pub feed.Publisher) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Query("id")
		if id == "" {
			errJSON(c, http.StatusBadRequest, "id is required")
			return
		}
		o, err := repo.GetByID(c.Request.Context(), id)
		if err != nil {
			errJSON(c, http.StatusNotFound, "order not found")
			return
		}
		if o.Status != order.StatusPending &&
			c.Query("confirm") != order.ConfirmPhrase(o.OrderNumber) {
			errJSON(c, http.StatusBadRequest, "confirmation phrase required")
			return
		}
		if _, err := repo.Delete(c.Request.Context(), id); err != nil {
			log.Printf("[orders] delete: %v", err)
			errJSON(c, http.StatusInternalServerError, "internal error")
			return
		}
		publish(c, pub, feed.ForDelete(id), nil)
		c.Status(http.StatusNoContent)
	}
}
