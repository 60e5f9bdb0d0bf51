// Commande mockapi : API de boutique en mémoire pour le développement local.
package main

import (
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"joyeria_admin/internal/mockapi"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  Aucun fichier .env trouvé")
	}

	var opts []mockapi.Option
	if secret := os.Getenv("MOCK_JWT_SECRET"); secret != "" {
		opts = append(opts, mockapi.WithSecret(secret))
	}
	if os.Getenv("MOCK_LEGACY_ORDERS") == "true" {
		opts = append(opts, mockapi.WithLegacyOrders())
		log.Println("ℹ️ Commandes renvoyées en tableau nu (mode dégradé)")
	}

	gin.SetMode(gin.ReleaseMode)
	api := mockapi.New(opts...)
	if err := api.Seed(); err != nil {
		log.Fatalf("❌ Données de démonstration: %v", err)
	}

	port := os.Getenv("MOCK_API_PORT")
	if port == "" {
		port = "3001"
	}
	log.Printf("🚀 API de démonstration sur :%s (admin: %s / %s)", port, mockapi.AdminEmail, mockapi.AdminPassword)
	if err := http.ListenAndServe(":"+port, api.Handler()); err != nil {
		log.Fatal(err)
	}
}
