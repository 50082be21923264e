// Package main implements a standalone seed script that populates a running
// Lookali search service with realistic listings spread around São Paulo.
// Listings are pushed in batches through the bulk admin endpoint using a
// locally minted admin token.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const batchSize = 200

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// São Paulo city center; listings are scattered within ~20 km of it.
const (
	centerLat = -23.5505
	centerLon = -46.6333
)

var categories = []string{
	"esportes", "moveis", "eletronicos", "vestuario",
	"brinquedos", "livros", "jardim", "cozinha",
}

var productNames = map[string][]string{
	"esportes":    {"Bicicleta Aro 29", "Bola de Futebol", "Luva de Goleiro", "Tênis de Corrida", "Prancha de Surf"},
	"moveis":      {"Sofá Retrátil", "Mesa de Jantar", "Guarda-Roupa", "Escrivaninha", "Estante de Livros"},
	"eletronicos": {"Fone Bluetooth", "Caixa de Som", "Monitor 24 Polegadas", "Teclado Mecânico", "Carregador Portátil"},
	"vestuario":   {"Jaqueta Jeans", "Vestido Floral", "Camisa Social", "Tênis Casual", "Boné Aba Reta"},
	"brinquedos":  {"Quebra-Cabeça 1000 Peças", "Carrinho de Controle", "Boneca de Pano", "Jogo de Tabuleiro", "Pista de Carrinhos"},
	"livros":      {"Romance Policial", "Livro de Receitas", "Atlas Ilustrado", "Box de Fantasia", "Guia de Viagem"},
	"jardim":      {"Vaso de Cerâmica", "Kit de Ferramentas", "Mangueira Retrátil", "Rede de Descanso", "Churrasqueira Portátil"},
	"cozinha":     {"Panela de Pressão", "Jogo de Facas", "Liquidificador", "Air Fryer", "Conjunto de Potes"},
}

var availabilities = []string{"available", "available", "available", "limited", "out_of_stock"}

type listingPayload struct {
	ID              string   `json:"id"`
	SellerID        string   `json:"seller_id"`
	Name            string   `json:"name"`
	Category        string   `json:"category"`
	Price           int64    `json:"price"`
	Lat             float64  `json:"lat"`
	Lon             float64  `json:"lon"`
	Availability    string   `json:"availability"`
	Rating          float64  `json:"rating"`
	ReviewCount     int      `json:"review_count"`
	IsPromoted      bool     `json:"is_promoted"`
	DeliveryOptions []string `json:"delivery_options"`
}

func randomListing(rng *rand.Rand, n int) listingPayload {
	category := categories[rng.Intn(len(categories))]
	names := productNames[category]

	reviewCount := rng.Intn(200)
	rating := 0.0
	if reviewCount > 0 {
		rating = 2.5 + rng.Float64()*2.5
	}

	delivery := []string{"pickup"}
	if rng.Intn(2) == 0 {
		delivery = append(delivery, "delivery")
	}

	return listingPayload{
		ID:              fmt.Sprintf("seed-lst-%06d", n),
		SellerID:        fmt.Sprintf("seed-seller-%03d", rng.Intn(500)),
		Name:            names[rng.Intn(len(names))],
		Category:        category,
		Price:           int64(500 + rng.Intn(500000)),
		Lat:             centerLat + (rng.Float64()-0.5)*0.36, // ~±20 km
		Lon:             centerLon + (rng.Float64()-0.5)*0.39,
		Availability:    availabilities[rng.Intn(len(availabilities))],
		Rating:          rating,
		ReviewCount:     reviewCount,
		IsPromoted:      rng.Intn(10) == 0,
		DeliveryOptions: delivery,
	}
}

func mintAdminToken(secret string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "seed-script",
		"role": "admin",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	return token.SignedString([]byte(secret))
}

func postBatch(url, token string, batch []listingPayload) error {
	data, err := json.Marshal(map[string]any{"listings": batch})
	if err != nil {
		return fmt.Errorf("marshal batch: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

func main() {
	baseURL := getEnv("LOOKALI_URL", "http://localhost:8010")
	secret := getEnv("JWT_SECRET", "dev-secret-do-not-use")

	total := 10000
	if v := os.Getenv("SEED_COUNT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			log.Fatalf("SEED_COUNT must be a positive integer, got %q", v)
		}
		total = n
	}

	token, err := mintAdminToken(secret)
	if err != nil {
		log.Fatalf("mint admin token: %v", err)
	}

	rng := rand.New(rand.NewSource(42))
	url := baseURL + "/api/v1/listings/bulk"

	start := time.Now()
	for sent := 0; sent < total; {
		size := batchSize
		if remaining := total - sent; remaining < size {
			size = remaining
		}

		batch := make([]listingPayload, 0, size)
		for i := 0; i < size; i++ {
			batch = append(batch, randomListing(rng, sent+i))
		}

		if err := postBatch(url, token, batch); err != nil {
			log.Fatalf("seed batch at offset %d: %v", sent, err)
		}
		sent += size
		log.Printf("seeded %d/%d listings", sent, total)
	}

	log.Printf("done: %d listings in %s", total, time.Since(start).Round(time.Millisecond))
}
