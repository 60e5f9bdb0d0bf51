package mockapi

import (
	"net/http"
	"sort"
	"strconv"

	"github.com/gin-gonic/gin"

	"joyeria_admin/internal/models"
)

func (s *Server) listOrders(c *gin.Context) {
	s.mu.Lock()
	orders := append([]models.Order(nil), s.orders...)
	legacy := s.legacyOrders
	s.mu.Unlock()

	// Plus récentes d'abord
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})

	if legacy {
		c.JSON(http.StatusOK, orders)
		return
	}

	status := models.OrderStatus(c.Query("status"))
	if status != "" {
		filtered := orders[:0:0]
		for _, o := range orders {
			if o.Status == status {
				filtered = append(filtered, o)
			}
		}
		orders = filtered
	}

	page := positiveInt(c.Query("page"), 1)
	limit := positiveInt(c.Query("limit"), 10)
	totalPages := (len(orders) + limit - 1) / limit
	if totalPages < 1 {
		totalPages = 1
	}
	start := (page - 1) * limit
	if start > len(orders) {
		start = len(orders)
	}
	end := start + limit
	if end > len(orders) {
		end = len(orders)
	}

	c.JSON(http.StatusOK, gin.H{
		"orders":     orders[start:end],
		"totalPages": totalPages,
	})
}

func (s *Server) orderStats(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending := 0
	for _, o := range s.orders {
		if o.Status == models.OrderPending {
			pending++
		}
	}
	c.JSON(http.StatusOK, models.OrderStats{
		TotalOrders:   len(s.orders),
		PendingOrders: pending,
		TotalRevenue:  sumRevenue(s.orders),
	})
}

func (s *Server) updateOrderStatus(c *gin.Context) {
	var input struct {
		Status models.OrderStatus `json:"status"`
	}
	if err := c.ShouldBindJSON(&input); err != nil || !input.Status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Estado inválido"})
		return
	}

	id := c.Param("id")
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.orders {
		if s.orders[i].ID == id {
			s.orders[i].Status = input.Status
			c.JSON(http.StatusOK, s.orders[i])
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "Pedido no encontrado"})
}

func positiveInt(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return def
	}
	return n
}
