package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"bitbucket.org/mmdatafocus/pos_backend/config"
	"bitbucket.org/mmdatafocus/pos_backend/models"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	models.ResetStore()
	return newRouter(config.GetLogger())
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAPI_DocumentLifecycle(t *testing.T) {
	r := setupRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/products", `{
		"sku": "SKU-API",
		"name": "API product",
		"unit_price": "10",
		"vat_rate": "21",
		"stock_qty": "100"
	}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var product models.Product
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &product))

	w = doJSON(t, r, http.MethodPost, "/api/documents", `{
		"doc_type": "quote",
		"items": [{"product_id": `+strconv.Itoa(product.ID)+`, "qty": "5"}]
	}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var quote models.Document
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &quote))
	require.True(t, strings.HasPrefix(quote.Number, "DEV-"), quote.Number)

	w = doJSON(t, r, http.MethodPost, "/api/documents/"+strconv.Itoa(quote.ID)+"/convert", `{"target_type": "invoice"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var invoice models.Document
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &invoice))
	require.True(t, strings.HasPrefix(invoice.Number, "FAC-"), invoice.Number)
	require.Equal(t, quote.ID, invoice.SourceDocumentId)

	// direct conversion to invoice decremented the stock
	w = doJSON(t, r, http.MethodGet, "/api/products/"+strconv.Itoa(product.ID), "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &product))
	require.Equal(t, "95", product.StockQty.String())

	// invoice total is 60.5 (50 base + 21% VAT); a partial payment first
	w = doJSON(t, r, http.MethodPost, "/api/documents/"+strconv.Itoa(invoice.ID)+"/pay", `{"method": "card", "amount": "30"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &invoice))
	require.Equal(t, models.DocumentStatusPartiallyPaid, invoice.CurrentStatus)

	w = doJSON(t, r, http.MethodGet, "/api/documents?doc_type=invoice", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []models.Document
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
}

func TestAPI_ErrorMapping(t *testing.T) {
	r := setupRouter(t)

	w := doJSON(t, r, http.MethodGet, "/api/documents/999", "")
	require.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/documents", `{
		"doc_type": "quote",
		"items": [{"description": "x", "qty": "1", "unit_price": "10"}]
	}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var quote models.Document
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &quote))

	w = doJSON(t, r, http.MethodPost, "/api/documents/"+strconv.Itoa(quote.ID)+"/convert", `{"target_type": "facture"}`)
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

	// duplicate sku is a business-rule conflict
	w = doJSON(t, r, http.MethodPost, "/api/products", `{"sku": "DUP-1", "name": "first"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = doJSON(t, r, http.MethodPost, "/api/products", `{"sku": "DUP-1", "name": "second"}`)
	require.Equal(t, http.StatusConflict, w.Code, w.Body.String())

	// binding failures surface field names
	w = doJSON(t, r, http.MethodPost, "/api/products", `{"name": "no sku"}`)
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
}

func TestAPI_ReturnsOverCreditRejected(t *testing.T) {
	r := setupRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/documents", `{
		"doc_type": "invoice",
		"items": [{"description": "lamp", "qty": "4", "unit_price": "25", "vat_rate": "21"}]
	}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var invoice models.Document
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &invoice))
	lineId := strconv.Itoa(invoice.Items[0].ID)
	invoiceId := strconv.Itoa(invoice.ID)

	w = doJSON(t, r, http.MethodGet, "/api/invoices/"+invoiceId+"/returnable", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, r, http.MethodPost, "/api/returns", `{
		"invoice_id": `+invoiceId+`,
		"lines": [{"invoice_line_id": `+lineId+`, "qty": "3"}]
	}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, r, http.MethodPost, "/api/returns", `{
		"invoice_id": `+invoiceId+`,
		"lines": [{"invoice_line_id": `+lineId+`, "qty": "3"}]
	}`)
	require.Equal(t, http.StatusConflict, w.Code, w.Body.String())
}

func TestAPI_CorrelationIdHeader(t *testing.T) {
	r := setupRouter(t)

	w := doJSON(t, r, http.MethodGet, "/api/documents", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NotEmpty(t, w.Header().Get("X-Correlation-Id"))

	req, err := http.NewRequest(http.MethodGet, "/api/documents", nil)
	require.NoError(t, err)
	req.Header.Set("X-Correlation-Id", "fixed-cid")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, "fixed-cid", w.Header().Get("X-Correlation-Id"))
}
