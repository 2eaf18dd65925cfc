package main

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"bitbucket.org/mmdatafocus/pos_backend/config"
	"bitbucket.org/mmdatafocus/pos_backend/models"
	"bitbucket.org/mmdatafocus/pos_backend/utils"
	"bitbucket.org/mmdatafocus/pos_backend/workflow"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// respondError maps the error taxonomy onto HTTP statuses. Internal errors
// are logged with the correlation id and returned as an opaque body so
// callers never see internals.
func respondError(c *gin.Context, moduleName string, funcName string, err error) {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, utils.ErrorRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, utils.ErrorInvalidArgument):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, utils.ErrorBusinessRule):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &validationErrors):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": utils.ProcessValidationErrors(err)})
	default:
		logger := config.GetLogger()
		config.LogError(logger, moduleName, funcName, "internal error", nil, err)
		cid, _ := utils.GetCorrelationIdFromContext(c.Request.Context())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error", "correlation_id": cid})
	}
}

func bindJSONError(c *gin.Context, moduleName string, funcName string, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": utils.ProcessValidationErrors(err)})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
}

func idParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

// --- documents ---

func createDocumentHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewDocument
		if err := c.ShouldBindJSON(&input); err != nil {
			bindJSONError(c, "handlers.go", "createDocumentHandler", err)
			return
		}
		doc, err := workflow.CreateDocument(c.Request.Context(), &input)
		if err != nil {
			respondError(c, "handlers.go", "createDocumentHandler", err)
			return
		}
		c.JSON(http.StatusCreated, doc)
	}
}

func listDocumentsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var docType *models.DocumentType
		if raw := strings.TrimSpace(c.Query("doc_type")); raw != "" {
			parsed, err := models.ParseDocumentType(raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "unknown doc_type " + strconv.Quote(raw)})
				return
			}
			docType = &parsed
		}
		limit := 0
		if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
				return
			}
			limit = n
		}
		docs, err := models.GetDocuments(c.Request.Context(), docType, limit)
		if err != nil {
			respondError(c, "handlers.go", "listDocumentsHandler", err)
			return
		}
		c.JSON(http.StatusOK, docs)
	}
}

func getDocumentHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		doc, err := models.GetDocument(c.Request.Context(), id)
		if err != nil {
			respondError(c, "handlers.go", "getDocumentHandler", err)
			return
		}
		c.JSON(http.StatusOK, doc)
	}
}

type convertRequest struct {
	TargetType string `json:"target_type" binding:"required"`
}

func convertDocumentHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		var req convertRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindJSONError(c, "handlers.go", "convertDocumentHandler", err)
			return
		}
		doc, err := workflow.ConvertDocument(c.Request.Context(), id, req.TargetType)
		if err != nil {
			respondError(c, "handlers.go", "convertDocumentHandler", err)
			return
		}
		c.JSON(http.StatusCreated, doc)
	}
}

func duplicateDocumentHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		doc, err := models.DuplicateDocument(c.Request.Context(), id)
		if err != nil {
			respondError(c, "handlers.go", "duplicateDocumentHandler", err)
			return
		}
		c.JSON(http.StatusCreated, doc)
	}
}

func payDocumentHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		var input workflow.NewPayment
		if err := c.ShouldBindJSON(&input); err != nil {
			bindJSONError(c, "handlers.go", "payDocumentHandler", err)
			return
		}
		doc, err := workflow.AddPayment(c.Request.Context(), id, &input)
		if err != nil {
			respondError(c, "handlers.go", "payDocumentHandler", err)
			return
		}
		c.JSON(http.StatusOK, doc)
	}
}

func vatBreakdownHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		doc, err := models.GetDocument(c.Request.Context(), id)
		if err != nil {
			respondError(c, "handlers.go", "vatBreakdownHandler", err)
			return
		}
		breakdown := models.CalculateVATBreakdown(doc.Items, doc.GlobalDiscountType, doc.GlobalDiscountValue)
		c.JSON(http.StatusOK, gin.H{
			"document_id": doc.ID,
			"number":      doc.Number,
			"lines":       breakdown,
		})
	}
}

// --- returns ---

func createReturnHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewReturn
		if err := c.ShouldBindJSON(&input); err != nil {
			bindJSONError(c, "handlers.go", "createReturnHandler", err)
			return
		}
		ret, err := workflow.CreateReturn(c.Request.Context(), &input)
		if err != nil {
			respondError(c, "handlers.go", "createReturnHandler", err)
			return
		}
		c.JSON(http.StatusCreated, ret)
	}
}

func listReturnsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var invoiceId *int
		if raw := strings.TrimSpace(c.Query("invoice_id")); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid invoice_id"})
				return
			}
			invoiceId = &n
		}
		returns, err := models.GetReturns(c.Request.Context(), invoiceId)
		if err != nil {
			respondError(c, "handlers.go", "listReturnsHandler", err)
			return
		}
		c.JSON(http.StatusOK, returns)
	}
}

func getReturnHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		ret, err := models.GetReturn(c.Request.Context(), id)
		if err != nil {
			respondError(c, "handlers.go", "getReturnHandler", err)
			return
		}
		c.JSON(http.StatusOK, ret)
	}
}

func cancelReturnHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		ret, err := models.CancelReturn(c.Request.Context(), id)
		if err != nil {
			respondError(c, "handlers.go", "cancelReturnHandler", err)
			return
		}
		c.JSON(http.StatusOK, ret)
	}
}

func getReturnableHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		result, err := workflow.GetReturnableInvoice(c.Request.Context(), id)
		if err != nil {
			respondError(c, "handlers.go", "getReturnableHandler", err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// --- products ---

func createProductHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewProduct
		if err := c.ShouldBindJSON(&input); err != nil {
			bindJSONError(c, "handlers.go", "createProductHandler", err)
			return
		}
		product, err := models.CreateProduct(c.Request.Context(), &input)
		if err != nil {
			respondError(c, "handlers.go", "createProductHandler", err)
			return
		}
		c.JSON(http.StatusCreated, product)
	}
}

func listProductsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var name *string
		if raw := strings.TrimSpace(c.Query("name")); raw != "" {
			name = &raw
		}
		products, err := models.GetProducts(c.Request.Context(), name)
		if err != nil {
			respondError(c, "handlers.go", "listProductsHandler", err)
			return
		}
		c.JSON(http.StatusOK, products)
	}
}

func getProductHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		product, err := models.GetProduct(c.Request.Context(), id)
		if err != nil {
			respondError(c, "handlers.go", "getProductHandler", err)
			return
		}
		c.JSON(http.StatusOK, product)
	}
}

func updateProductHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		var input models.NewProduct
		if err := c.ShouldBindJSON(&input); err != nil {
			bindJSONError(c, "handlers.go", "updateProductHandler", err)
			return
		}
		product, err := models.UpdateProduct(c.Request.Context(), id, &input)
		if err != nil {
			respondError(c, "handlers.go", "updateProductHandler", err)
			return
		}
		c.JSON(http.StatusOK, product)
	}
}

// --- customers ---

func createCustomerHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewCustomer
		if err := c.ShouldBindJSON(&input); err != nil {
			bindJSONError(c, "handlers.go", "createCustomerHandler", err)
			return
		}
		customer, err := models.CreateCustomer(c.Request.Context(), &input)
		if err != nil {
			respondError(c, "handlers.go", "createCustomerHandler", err)
			return
		}
		c.JSON(http.StatusCreated, customer)
	}
}

func listCustomersHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var name *string
		if raw := strings.TrimSpace(c.Query("name")); raw != "" {
			name = &raw
		}
		customers, err := models.GetCustomers(c.Request.Context(), name)
		if err != nil {
			respondError(c, "handlers.go", "listCustomersHandler", err)
			return
		}
		c.JSON(http.StatusOK, customers)
	}
}

func getCustomerHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		customer, err := models.GetCustomer(c.Request.Context(), id)
		if err != nil {
			respondError(c, "handlers.go", "getCustomerHandler", err)
			return
		}
		c.JSON(http.StatusOK, customer)
	}
}

func updateCustomerHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		var input models.NewCustomer
		if err := c.ShouldBindJSON(&input); err != nil {
			bindJSONError(c, "handlers.go", "updateCustomerHandler", err)
			return
		}
		customer, err := models.UpdateCustomer(c.Request.Context(), id, &input)
		if err != nil {
			respondError(c, "handlers.go", "updateCustomerHandler", err)
			return
		}
		c.JSON(http.StatusOK, customer)
	}
}

// --- POS checkout & shifts ---

func posCheckoutHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input workflow.NewPosCheckout
		if err := c.ShouldBindJSON(&input); err != nil {
			bindJSONError(c, "handlers.go", "posCheckoutHandler", err)
			return
		}
		result, err := workflow.PosCheckout(c.Request.Context(), &input)
		if err != nil {
			respondError(c, "handlers.go", "posCheckoutHandler", err)
			return
		}
		c.JSON(http.StatusCreated, result)
	}
}

func openShiftHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewRegisterShift
		if err := c.ShouldBindJSON(&input); err != nil {
			bindJSONError(c, "handlers.go", "openShiftHandler", err)
			return
		}
		shift, err := models.OpenRegisterShift(c.Request.Context(), &input)
		if err != nil {
			respondError(c, "handlers.go", "openShiftHandler", err)
			return
		}
		c.JSON(http.StatusCreated, shift)
	}
}

func closeShiftHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.CloseRegisterShift
		if err := c.ShouldBindJSON(&input); err != nil {
			bindJSONError(c, "handlers.go", "closeShiftHandler", err)
			return
		}
		shift, err := models.CloseShift(c.Request.Context(), &input)
		if err != nil {
			respondError(c, "handlers.go", "closeShiftHandler", err)
			return
		}
		c.JSON(http.StatusOK, shift)
	}
}

func currentShiftHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		registerId := strings.TrimSpace(c.Query("register_id"))
		if registerId == "" {
			registerId, _ = utils.GetRegisterIdFromContext(c.Request.Context())
		}
		if registerId == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "register_id is required"})
			return
		}
		shift, err := models.GetCurrentShift(c.Request.Context(), registerId)
		if err != nil {
			respondError(c, "handlers.go", "currentShiftHandler", err)
			return
		}
		c.JSON(http.StatusOK, shift)
	}
}

// --- settings ---

func getSettingsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		settings, err := config.LoadSettings()
		if err != nil {
			respondError(c, "handlers.go", "getSettingsHandler", err)
			return
		}
		c.JSON(http.StatusOK, settings)
	}
}

func updateSettingsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input config.Settings
		if err := c.ShouldBindJSON(&input); err != nil {
			bindJSONError(c, "handlers.go", "updateSettingsHandler", err)
			return
		}
		if err := config.SaveSettings(&input); err != nil {
			respondError(c, "handlers.go", "updateSettingsHandler", err)
			return
		}
		c.JSON(http.StatusOK, &input)
	}
}
