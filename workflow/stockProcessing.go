package workflow

import (
	"context"
	"fmt"

	"bitbucket.org/mmdatafocus/pos_backend/config"
	"bitbucket.org/mmdatafocus/pos_backend/models"
	"bitbucket.org/mmdatafocus/pos_backend/utils"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// ProcessOutgoingStock decrements stock for every document line with a
// resolvable product id. Stock adjustment is best-effort per line: a line
// whose product cannot be resolved is skipped and logged, not fatal, unless
// STOCK_FAIL_ON_MISSING_PRODUCT is set.
func ProcessOutgoingStock(ctx context.Context, logger *logrus.Logger, doc *models.Document) error {
	for _, item := range doc.Items {
		if item.ProductId <= 0 {
			// free-text line, no catalog product
			continue
		}
		if _, ok := models.AdjustProductStock(ctx, item.ProductId, item.Qty.Neg()); !ok {
			if config.FailOnMissingStockProduct() {
				return fmt.Errorf("%w: product %d on %s line %d", utils.ErrorRecordNotFound, item.ProductId, doc.Number, item.ID)
			}
			logger.WithFields(logrus.Fields{
				"module":     "workflow",
				"funcName":   "ProcessOutgoingStock",
				"document":   doc.Number,
				"line_id":    item.ID,
				"product_id": item.ProductId,
			}).Warn("product not found during stock decrement; line skipped")
		}
	}
	return nil
}

// ProcessIncomingStock puts qty back into sellable inventory (restocked
// return lines). Same skip semantics as the outgoing path.
func ProcessIncomingStock(ctx context.Context, logger *logrus.Logger, reference string, productId int, qty decimal.Decimal) error {
	if productId <= 0 {
		return nil
	}
	if _, ok := models.AdjustProductStock(ctx, productId, qty); !ok {
		if config.FailOnMissingStockProduct() {
			return fmt.Errorf("%w: product %d on %s", utils.ErrorRecordNotFound, productId, reference)
		}
		logger.WithFields(logrus.Fields{
			"module":     "workflow",
			"funcName":   "ProcessIncomingStock",
			"reference":  reference,
			"product_id": productId,
		}).Warn("product not found during restock; line skipped")
	}
	return nil
}
