package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rookgm/streetmart/internal/logger"
	"github.com/rookgm/streetmart/internal/metrics"
	"github.com/rookgm/streetmart/internal/models"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// CatalogItemInput is new catalog item data
type CatalogItemInput struct {
	Name              string
	Category          string
	Unit              string
	Price             decimal.Decimal
	Stock             int
	MinOrderQuantity  int
	LowStockThreshold int
}

// CatalogService implements CatalogService interface
type CatalogService struct {
	base
	tx       Transactor
	repo     CatalogRepository
	notifier Notifier
	metrics  *metrics.Metrics
}

// NewCatalogService creates new CatalogService instance
func NewCatalogService(tx Transactor, repo CatalogRepository, notifier Notifier, m *metrics.Metrics, opts ...Option) *CatalogService {
	return &CatalogService{
		base:     newBase(opts),
		tx:       tx,
		repo:     repo,
		notifier: notifier,
		metrics:  m,
	}
}

// CreateItem creates catalog item owned by principal
func (cs *CatalogService) CreateItem(ctx context.Context, p models.Principal, in CatalogItemInput) (*models.CatalogItem, error) {
	if !p.Can(models.CapManageCatalog) {
		return nil, models.NewAuthorizationError("manage catalog")
	}

	name := strings.TrimSpace(in.Name)
	switch {
	case name == "":
		return nil, models.NewValidationError("name", "is required")
	case strings.TrimSpace(in.Unit) == "":
		return nil, models.NewValidationError("unit", "is required")
	case !in.Price.IsPositive():
		return nil, models.NewValidationError("price", "must be positive")
	case in.Stock < 0:
		return nil, models.NewValidationError("stock", "must not be negative")
	case in.MinOrderQuantity < 0:
		return nil, models.NewValidationError("min_order_quantity", "must not be negative")
	case in.LowStockThreshold < 0:
		return nil, models.NewValidationError("low_stock_threshold", "must not be negative")
	}

	moq := in.MinOrderQuantity
	if moq == 0 {
		moq = 1
	}

	now := cs.now()
	item := models.CatalogItem{
		ID:                cs.newID(),
		OwnerID:           p.ActorID,
		Name:              name,
		Category:          strings.TrimSpace(in.Category),
		Unit:              strings.TrimSpace(in.Unit),
		Price:             in.Price.Round(2),
		Stock:             in.Stock,
		MinOrderQuantity:  moq,
		LowStockThreshold: in.LowStockThreshold,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	err := cs.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := cs.repo.CreateItem(ctx, &item); err != nil {
			return err
		}
		return cs.checkLowStock(ctx, &item)
	})
	if err != nil {
		return nil, err
	}

	return &item, nil
}

// GetItem returns catalog item by id
func (cs *CatalogService) GetItem(ctx context.Context, id string) (*models.CatalogItem, error) {
	return cs.repo.GetItem(ctx, id)
}

// ListAvailable returns orderable items. Unavailable items are listed only with IncludeUnavailable.
func (cs *CatalogService) ListAvailable(ctx context.Context, filter models.CatalogFilter) ([]models.CatalogItem, error) {
	switch filter.Sort {
	case "", models.SortNewest, models.SortPriceAsc, models.SortPriceDesc, models.SortName:
	default:
		return nil, models.NewValidationError("sort", "unknown sort order")
	}
	if filter.MaxPrice != nil && filter.MaxPrice.IsNegative() {
		return nil, models.NewValidationError("max_price", "must not be negative")
	}
	return cs.repo.ListItems(ctx, filter)
}

// ListOwned returns every item of principal including unavailable ones
func (cs *CatalogService) ListOwned(ctx context.Context, p models.Principal, filter models.CatalogFilter) ([]models.CatalogItem, error) {
	if !p.Can(models.CapManageCatalog) {
		return nil, models.NewAuthorizationError("manage catalog")
	}
	filter.OwnerID = p.ActorID
	filter.IncludeUnavailable = true
	return cs.ListAvailable(ctx, filter)
}

// DecrementStock subtracts quantity from item stock, InsufficientStockError if stock is short
func (cs *CatalogService) DecrementStock(ctx context.Context, id string, quantity int) (*models.CatalogItem, error) {
	if quantity <= 0 {
		return nil, models.NewValidationError("quantity", "must be positive")
	}

	var item *models.CatalogItem
	err := cs.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		item, err = cs.repo.DecrementStock(ctx, id, quantity, cs.now())
		if err != nil {
			return err
		}
		return cs.checkLowStock(ctx, item)
	})
	if err != nil {
		return nil, err
	}

	return item, nil
}

// SetStock sets stock of item owned by principal
func (cs *CatalogService) SetStock(ctx context.Context, p models.Principal, id string, stock int) (*models.CatalogItem, error) {
	if stock < 0 {
		return nil, models.NewValidationError("stock", "must not be negative")
	}
	return cs.ownerUpdate(ctx, p, id, "set stock", func(ctx context.Context) (*models.CatalogItem, error) {
		item, err := cs.repo.UpdateStock(ctx, id, stock, cs.now())
		if err != nil {
			return nil, err
		}
		return item, cs.checkLowStock(ctx, item)
	})
}

// SetPrice sets price of item owned by principal
func (cs *CatalogService) SetPrice(ctx context.Context, p models.Principal, id string, price decimal.Decimal) (*models.CatalogItem, error) {
	if !price.IsPositive() {
		return nil, models.NewValidationError("price", "must be positive")
	}
	return cs.ownerUpdate(ctx, p, id, "set price", func(ctx context.Context) (*models.CatalogItem, error) {
		return cs.repo.UpdatePrice(ctx, id, price.Round(2), cs.now())
	})
}

// SetAvailability soft-disables or re-enables item owned by principal
func (cs *CatalogService) SetAvailability(ctx context.Context, p models.Principal, id string, available bool) (*models.CatalogItem, error) {
	return cs.ownerUpdate(ctx, p, id, "set availability", func(ctx context.Context) (*models.CatalogItem, error) {
		return cs.repo.UpdateDisabled(ctx, id, !available, cs.now())
	})
}

func (cs *CatalogService) ownerUpdate(ctx context.Context, p models.Principal, id, action string,
	update func(ctx context.Context) (*models.CatalogItem, error)) (*models.CatalogItem, error) {
	ctx, span := cs.tracer.Start(ctx, "catalog."+strings.ReplaceAll(action, " ", "_"),
		trace.WithAttributes(attribute.String("item.id", id)))

	var item *models.CatalogItem
	err := cs.tx.WithinTx(ctx, func(ctx context.Context) error {
		cur, err := cs.repo.GetItem(ctx, id)
		if err != nil {
			return err
		}
		if !p.Can(models.CapManageCatalog) || cur.OwnerID != p.ActorID {
			return models.NewAuthorizationError(action)
		}

		item, err = update(ctx)
		return err
	})
	endSpan(span, err)
	if err != nil {
		return nil, err
	}

	return item, nil
}

// checkLowStock notifies owner when stock is at or below threshold
func (cs *CatalogService) checkLowStock(ctx context.Context, item *models.CatalogItem) error {
	if !item.LowStock() {
		return nil
	}

	logger.Log.Debug("low stock", zap.String("item", item.ID), zap.Int("stock", item.Stock))
	cs.metrics.LowStock()

	_, err := cs.notifier.Emit(ctx, models.NotificationInput{
		RecipientID:    item.OwnerID,
		Category:       models.CategoryInventory,
		Topic:          models.TopicInventoryLowStock,
		Priority:       models.PriorityHigh,
		Title:          "Low stock",
		Message:        fmt.Sprintf("%s is running low: %d %s left", item.Name, item.Stock, item.Unit),
		ActionRequired: true,
	})
	return err
}
