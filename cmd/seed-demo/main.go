// seed-demo loads a small demo catalog and customer base into a running
// backend over its REST API. The store is in-memory, so seeding has to go
// through the server process rather than a database.
//
// Usage:
//   API_URL=http://localhost:8080 go run ./cmd/seed-demo
package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/pos_backend/models"
	"bitbucket.org/mmdatafocus/pos_backend/utils"
	"github.com/shopspring/decimal"
)

func apiURL() string {
	url := strings.TrimSpace(os.Getenv("API_URL"))
	if url == "" {
		url = "http://localhost:8080"
	}
	return strings.TrimRight(url, "/")
}

func post(client *http.Client, path string, body any) error {
	payload, err := utils.MarshalToJSON(body)
	if err != nil {
		return err
	}
	resp, err := client.Post(apiURL()+path, "application/json", strings.NewReader(payload))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("POST %s: %s: %s", path, resp.Status, strings.TrimSpace(string(data)))
	}
	return nil
}

func main() {
	client := &http.Client{Timeout: 10 * time.Second}

	products := []models.NewProduct{
		{Sku: "ESP-001", Name: "Espresso beans 1kg", Category: "coffee", UnitPrice: decimal.NewFromFloat(18.50), VatRate: decimal.NewFromInt(6), StockQty: decimal.NewFromInt(120)},
		{Sku: "GRN-010", Name: "Hand grinder", Category: "equipment", UnitPrice: decimal.NewFromFloat(64.00), VatRate: decimal.NewFromInt(21), StockQty: decimal.NewFromInt(25)},
		{Sku: "CUP-250", Name: "Ceramic cup 250ml", Category: "accessories", UnitPrice: decimal.NewFromFloat(9.90), VatRate: decimal.NewFromInt(21), StockQty: decimal.NewFromInt(300)},
		{Sku: "FLT-V60", Name: "Paper filters V60 x100", Category: "accessories", UnitPrice: decimal.NewFromFloat(5.40), VatRate: decimal.NewFromInt(21), StockQty: decimal.NewFromInt(80)},
		{Sku: "GFT-025", Name: "Gift card 25", Category: "vouchers", UnitPrice: decimal.NewFromInt(25), VatRate: decimal.Zero, StockQty: decimal.NewFromInt(50)},
	}
	for _, p := range products {
		if err := post(client, "/api/products", p); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	customers := []models.NewCustomer{
		{Name: "Maison Dubois SPRL", VatNumber: "BE0123456789", Email: "compta@maisondubois.be", Address: "Rue du Commerce 12, 1000 Bruxelles"},
		{Name: "Café Lumière", VatNumber: "BE0987654321", Email: "hello@cafelumiere.be", Address: "Grand Place 3, 4000 Liège"},
		{Name: "Particulier - comptoir", Email: "", Address: ""},
	}
	for _, c := range customers {
		if err := post(client, "/api/customers", c); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	fmt.Printf("seeded %d products and %d customers at %s\n", len(products), len(customers), apiURL())
}
