package mockapi

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"joyeria_admin/internal/models"
)

// Comptes de démonstration semés par Seed
const (
	AdminEmail       = "admin@joyeria.test"
	AdminPassword    = "admin123"
	CustomerEmail    = "cliente@joyeria.test"
	CustomerPassword = "cliente123"
)

// Seed remplit le serveur avec un admin, un client, quelques produits et commandes
func (s *Server) Seed() error {
	if err := s.AddUser(models.User{ID: "u-admin", Name: "Admin", Email: AdminEmail, Role: models.RoleAdmin}, AdminPassword); err != nil {
		return err
	}
	if err := s.AddUser(models.User{ID: "u-client", Name: "Cliente", Email: CustomerEmail, Role: "customer"}, CustomerPassword); err != nil {
		return err
	}

	s.AddProduct(models.Product{
		Name: "Anillo Solitario", SKU: "AN-001", Description: "Oro blanco 18k",
		Price: decimal.RequireFromString("1250.00"), Stock: 3,
		Category: models.CategoryEngagementRings, Status: models.ProductActive,
		Images: []string{"/uploads/an-001.jpg"},
	})
	s.AddProduct(models.Product{
		Name: "Collar Perlas", SKU: "CO-010", Description: "Perlas cultivadas",
		Price: decimal.RequireFromString("320.50"), Stock: 8,
		Category: models.CategoryNecklaces, Status: models.ProductFeatured,
		MainImage: "/uploads/co-010-main.jpg", HoverImage: "/uploads/co-010-hover.jpg",
		Images: []string{"/uploads/co-010.jpg"},
	})

	base := time.Date(2025, 1, 10, 10, 0, 0, 0, time.UTC)
	statuses := []models.OrderStatus{models.OrderPending, models.OrderPaid, models.OrderPending, models.OrderShipped, models.OrderCompleted}
	for i, st := range statuses {
		s.AddOrder(models.Order{
			ID:           fmt.Sprintf("ord-%d", i+1),
			OrderNumber:  fmt.Sprintf("ORD-%05d", 10001+i),
			CustomerName: fmt.Sprintf("Cliente %c", 'A'+i),
			Email:        "c@example.com",
			Items:        []models.OrderItem{{Name: "Anillo", Quantity: 1, Price: decimal.NewFromInt(100)}},
			Total:        decimal.NewFromInt(100),
			Status:       st,
			CreatedAt:    base.Add(time.Duration(i) * time.Hour),
		})
	}
	return nil
}
