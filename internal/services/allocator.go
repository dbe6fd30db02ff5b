package services

import (
	"errors"
	"sync"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/VyacheslavShrot/interview-task/internal/models"
)

// Result describes one allocation run. Shortfall > 0 means the candidate
// batches ran out before the request was satisfied; the caller decides
// whether to accept the under-fulfilment or retry later with a recomputed
// quantity.
type Result struct {
	TotalCost decimal.Decimal `json:"total_cost"`
	Requested int             `json:"requested"`
	Allocated int             `json:"allocated"`
	Shortfall int             `json:"shortfall"`
}

// Allocator walks a product's open order batches oldest production date
// first and consumes stock until the requested quantity is covered.
type Allocator struct {
	DB *gorm.DB

	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

func NewAllocator(db *gorm.DB) *Allocator {
	return &Allocator{DB: db, locks: map[uint]*sync.Mutex{}}
}

// productLock serializes sells against one product; two overlapping calls
// would otherwise read the same batch amounts and double-allocate stock.
func (a *Allocator) productLock(productID uint) *sync.Mutex {
	a.mu.Lock()
	defer a.mu.Unlock()
	l, ok := a.locks[productID]
	if !ok {
		l = &sync.Mutex{}
		a.locks[productID] = l
	}
	return l
}

// Sell depletes the batches of the order's product in FIFO order and returns
// the accumulated cost. Each consumed batch commits in its own transaction,
// so a failure mid-run leaves the already processed batches durably applied
// and only the remainder outstanding.
//
// Running out of stock is not an error: the loop consumes whatever is
// available and reports the rest as Result.Shortfall.
func (a *Allocator) Sell(orderID uint, quantity int) (Result, error) {
	res := Result{TotalCost: decimal.Zero, Requested: quantity, Shortfall: quantity}
	if quantity <= 0 {
		return res, ErrInvalidQuantity
	}

	var order models.Order
	if err := a.DB.Preload("Invoice").First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return res, ErrOrderNotFound
		}
		return res, err
	}
	if order.ProductID == 0 {
		return res, ErrProductNotFound
	}
	var exists int64
	if err := a.DB.Model(&models.Product{}).Where("id = ?", order.ProductID).Count(&exists).Error; err != nil {
		return res, err
	}
	if exists == 0 {
		return res, ErrProductNotFound
	}

	lock := a.productLock(order.ProductID)
	lock.Lock()
	defer lock.Unlock()

	var batches []models.Order
	if err := a.DB.Preload("Product").
		Where("product_id = ? AND amount > 0", order.ProductID).
		Order("production_date asc, id asc").
		Find(&batches).Error; err != nil {
		return res, err
	}

	remaining := quantity
	for i := range batches {
		batch := &batches[i]
		toSell := batch.Amount
		if remaining < toSell {
			toSell = remaining
		}
		batch.Amount -= toSell
		if batch.Amount == 0 {
			batch.Completed = true
		}
		// Source-system quirk kept as-is: the selling order's invoice tracks
		// the remainder of whichever batch was just touched, not a billing
		// amount.
		order.Invoice.Amount = batch.Amount

		err := a.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&models.Order{}).Where("id = ?", batch.ID).
				Updates(map[string]any{"amount": batch.Amount, "completed": batch.Completed}).Error; err != nil {
				return err
			}
			return tx.Model(&models.Invoice{}).Where("order_id = ?", order.ID).
				Update("amount", order.Invoice.Amount).Error
		})
		if err != nil {
			// this batch's mutation rolled back; report only what committed
			res.Allocated = quantity - remaining
			res.Shortfall = remaining
			return res, err
		}
		res.TotalCost = res.TotalCost.Add(batch.Product.Price.Mul(decimal.NewFromInt(int64(toSell))))
		remaining -= toSell
		if remaining == 0 {
			break
		}
	}
	res.Allocated = quantity - remaining
	res.Shortfall = remaining
	return res, nil
}
