// Package mockapi est une implémentation en mémoire de l'API REST de la boutique.
// Elle sert au développement local (cmd/mockapi) et de double de test pour le client gateway.
package mockapi

import (
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"joyeria_admin/internal/models"
)

type account struct {
	user         models.User
	passwordHash []byte
}

type Server struct {
	mu       sync.Mutex
	secret   []byte
	accounts map[string]account // email → compte
	products map[string]models.Product
	orders   []models.Order
	uploads  map[string][]byte // URL → contenu
	hits     map[string]int    // "METHOD /route" → nombre d'appels
	// LegacyOrders fait répondre GET /api/orders par un tableau nu, sans filtre ni pagination
	legacyOrders bool
	now          func() time.Time
	engine       *gin.Engine
}

type Option func(*Server)

func WithSecret(secret string) Option {
	return func(s *Server) { s.secret = []byte(secret) }
}

func WithLegacyOrders() Option {
	return func(s *Server) { s.legacyOrders = true }
}

func New(opts ...Option) *Server {
	s := &Server{
		secret:   []byte("mock_secret"),
		accounts: make(map[string]account),
		products: make(map[string]models.Product),
		uploads:  make(map[string][]byte),
		hits:     make(map[string]int),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.engine = s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.countHits)

	api := r.Group("/api")
	api.POST("/auth/login", s.login)

	api.GET("/products", s.listProducts)
	api.GET("/products/featured", s.listFeatured)
	api.GET("/products/:id", s.getProduct)

	admin := api.Group("", s.requireAdmin)
	admin.POST("/products", s.createProduct)
	admin.PUT("/products/:id", s.updateProduct)
	admin.DELETE("/products/:id", s.deleteProduct)
	admin.GET("/orders", s.listOrders)
	admin.GET("/orders/stats", s.orderStats)
	admin.PUT("/orders/:id", s.updateOrderStatus)

	r.GET("/uploads/:name", s.serveUpload)
	return r
}

func (s *Server) countHits(c *gin.Context) {
	route := c.FullPath()
	if route == "" {
		route = c.Request.URL.Path
	}
	s.mu.Lock()
	s.hits[c.Request.Method+" "+route]++
	s.mu.Unlock()
	c.Next()
}

// Hits retourne le nombre d'appels reçus pour "METHOD /route", ex. "POST /api/products"
func (s *Server) Hits(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[key]
}

// AddUser enregistre un compte ; le mot de passe est haché avec bcrypt
func (s *Server) AddUser(u models.User, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[u.Email] = account{user: u, passwordHash: hash}
	return nil
}

// AddProduct insère un produit tel quel ; l'ID est généré s'il est vide
func (s *Server) AddProduct(p models.Product) models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == "" {
		p.ID = newID()
	}
	s.products[p.ID] = p
	return p
}

func (s *Server) AddOrder(o models.Order) models.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o.ID == "" {
		o.ID = newID()
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = s.now()
	}
	s.orders = append(s.orders, o)
	return o
}

// Product retourne l'état serveur d'un produit (assertions de test)
func (s *Server) Product(id string) (models.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	return p, ok
}

func (s *Server) Upload(url string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.uploads[url]
	return data, ok
}

// sortedProducts : ordre stable par nom puis ID, appelé sous s.mu
func (s *Server) sortedProducts() []models.Product {
	out := make([]models.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func sumRevenue(orders []models.Order) decimal.Decimal {
	total := decimal.Zero
	for _, o := range orders {
		if o.Status == models.OrderCancelled {
			continue
		}
		total = total.Add(o.Total)
	}
	return total
}
