package mockapi

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"joyeria_admin/internal/models"
)

const maxUploadMemory = 32 << 20

func (s *Server) listProducts(c *gin.Context) {
	s.mu.Lock()
	products := s.sortedProducts()
	s.mu.Unlock()
	c.JSON(http.StatusOK, products)
}

func (s *Server) listFeatured(c *gin.Context) {
	s.mu.Lock()
	all := s.sortedProducts()
	s.mu.Unlock()

	featured := []models.Product{}
	for _, p := range all {
		if p.Status == models.ProductFeatured {
			featured = append(featured, p)
		}
	}
	c.JSON(http.StatusOK, featured)
}

func (s *Server) getProduct(c *gin.Context) {
	s.mu.Lock()
	p, ok := s.products[c.Param("id")]
	s.mu.Unlock()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Producto no encontrado"})
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) createProduct(c *gin.Context) {
	p, fieldErr := s.parseProductForm(c)
	if fieldErr != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": fieldErr})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.skuTaken(p.SKU, "") {
		c.JSON(http.StatusConflict, gin.H{"error": "SKU ya existe"})
		return
	}
	p.ID = newID()
	s.products[p.ID] = p
	c.JSON(http.StatusCreated, p)
}

func (s *Server) updateProduct(c *gin.Context) {
	id := c.Param("id")
	s.mu.Lock()
	_, exists := s.products[id]
	s.mu.Unlock()
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "Producto no encontrado"})
		return
	}

	p, fieldErr := s.parseProductForm(c)
	if fieldErr != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": fieldErr})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.skuTaken(p.SKU, id) {
		c.JSON(http.StatusConflict, gin.H{"error": "SKU ya existe"})
		return
	}
	p.ID = id
	s.products[id] = p
	c.JSON(http.StatusOK, p)
}

func (s *Server) deleteProduct(c *gin.Context) {
	id := c.Param("id")
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[id]; !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Producto no encontrado"})
		return
	}
	delete(s.products, id)
	c.JSON(http.StatusOK, gin.H{"message": "Producto eliminado"})
}

func (s *Server) serveUpload(c *gin.Context) {
	data, ok := s.Upload("/uploads/" + c.Param("name"))
	if !ok {
		c.Status(http.StatusNotFound)
		return
	}
	c.Data(http.StatusOK, http.DetectContentType(data), data)
}

// skuTaken est appelé sous s.mu
func (s *Server) skuTaken(sku, exceptID string) bool {
	for id, p := range s.products {
		if id != exceptID && strings.EqualFold(p.SKU, sku) {
			return true
		}
	}
	return false
}

// parseProductForm lit la soumission multipart complète ; retourne un message d'erreur si invalide
func (s *Server) parseProductForm(c *gin.Context) (models.Product, string) {
	if err := c.Request.ParseMultipartForm(maxUploadMemory); err != nil {
		return models.Product{}, "Formulario multipart inválido"
	}
	form := c.Request.MultipartForm

	p := models.Product{
		Name:        strings.TrimSpace(c.PostForm("name")),
		SKU:         strings.TrimSpace(c.PostForm("sku")),
		Description: strings.TrimSpace(c.PostForm("description")),
		Category:    models.Category(c.PostForm("category")),
		Status:      models.ProductStatus(c.PostForm("status")),
		Material:    c.PostForm("material"),
		Color:       c.PostForm("color"),
		Gender:      models.Gender(c.PostForm("gender")),
	}
	for _, required := range []struct{ name, value string }{
		{"name", p.Name}, {"sku", p.SKU}, {"description", p.Description},
	} {
		if required.value == "" {
			return p, fmt.Sprintf("Campo obligatorio: %s", required.name)
		}
	}

	price, err := decimal.NewFromString(c.PostForm("price"))
	if err != nil || price.IsNegative() {
		return p, "Precio inválido"
	}
	p.Price = price
	stock, err := strconv.Atoi(c.PostForm("stock"))
	if err != nil || stock < 0 {
		return p, "Stock inválido"
	}
	p.Stock = stock

	if !p.Category.Valid() {
		return p, "Categoría inválida"
	}
	if !p.Status.Valid() {
		return p, "Estado inválido"
	}
	if !p.Gender.Valid() {
		return p, "Género inválido"
	}

	if p.Status == models.ProductFeatured {
		if p.MainImage, err = s.imageField(form, "mainImage"); err != nil {
			return p, err.Error()
		}
		if p.HoverImage, err = s.imageField(form, "hoverImage"); err != nil {
			return p, err.Error()
		}
		if p.MainImage == "" {
			return p, "Imagen principal obligatoria para productos destacados"
		}
	}

	p.Images = append(p.Images, form.Value["existingImages[]"]...)
	for _, fh := range form.File["images[]"] {
		url, err := s.storeUpload(fh)
		if err != nil {
			return p, err.Error()
		}
		p.Images = append(p.Images, url)
	}
	return p, ""
}

// imageField accepte soit un fichier, soit l'URL d'une image déjà stockée
func (s *Server) imageField(form *multipart.Form, name string) (string, error) {
	if files := form.File[name]; len(files) > 0 {
		return s.storeUpload(files[0])
	}
	if values := form.Value[name]; len(values) > 0 {
		return values[0], nil
	}
	return "", nil
}

func (s *Server) storeUpload(fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("Error leyendo archivo %s", fh.Filename)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return "", fmt.Errorf("Error leyendo archivo %s", fh.Filename)
	}

	url := "/uploads/" + newID() + filepath.Ext(fh.Filename)
	s.mu.Lock()
	s.uploads[url] = data
	s.mu.Unlock()
	return url, nil
}
