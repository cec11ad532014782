package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrInvalidQuantity = errors.New("item quantity must be positive")
)

// StoreTransaction is a receipt-sourced financial event with itemized
// children. Its amount is derived: recomputed as the sum of the loaded
// items' totals on every save, never set independently. Item mutations must
// go through the store repository so the parent is re-saved in the same
// database transaction.
type StoreTransaction struct {
	ID              uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	UserID          uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	StoreName       string          `gorm:"type:varchar(200);index" json:"store_name"`
	Description     string          `gorm:"type:text" json:"description"`
	TransactionDate time.Time       `gorm:"not null;index" json:"transaction_date"`
	Amount          decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	CreatedAt       time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"not null" json:"updated_at"`

	Items []StoreItem `gorm:"foreignKey:TransactionID" json:"items,omitempty"`
	User  User        `gorm:"foreignKey:UserID" json:"-"`
}

func (t *StoreTransaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}

	now := time.Now()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = now
	}

	t.RecomputeAmount()
	return t.Validate()
}

func (t *StoreTransaction) BeforeUpdate(tx *gorm.DB) error {
	if tx.Statement.Dest != nil {
		if _, ok := tx.Statement.Dest.(map[string]interface{}); ok {
			return nil
		}
	}
	t.UpdatedAt = time.Now()
	t.RecomputeAmount()
	return t.Validate()
}

// RecomputeAmount refreshes the derived amount from the loaded items.
// A transaction saved without its items loaded keeps its stored amount.
func (t *StoreTransaction) RecomputeAmount() {
	if len(t.Items) == 0 {
		return
	}

	total := decimal.Zero
	for i := range t.Items {
		total = total.Add(t.Items[i].ComputedTotal())
	}
	t.Amount = total
}

func (t *StoreTransaction) Validate() error {
	if t.UserID == uuid.Nil {
		return errors.New("user ID is required")
	}

	if t.TransactionDate.IsZero() {
		return ErrMissingTransactionDate
	}

	return nil
}

// TableName returns the table name for StoreTransaction
func (t *StoreTransaction) TableName() string {
	return "store_transactions"
}

func (t *StoreTransaction) TransactionID() uuid.UUID { return t.ID }
func (t *StoreTransaction) Owner() uuid.UUID         { return t.UserID }
func (t *StoreTransaction) Notes() string            { return t.Description }
func (t *StoreTransaction) Date() time.Time          { return t.TransactionDate }
func (t *StoreTransaction) Value() decimal.Decimal   { return t.Amount }
func (t *StoreTransaction) Source() string           { return TransactionSourceStore }

// Type is always expense: receipts record money spent.
func (t *StoreTransaction) Type() string { return TransactionTypeExpense }

func (t *StoreTransaction) MerchantName() string {
	if t.StoreName == "" {
		return UnknownMerchant
	}
	return t.StoreName
}

// CategoryNames returns the union of item tags, preserving item order and
// dropping duplicates.
func (t *StoreTransaction) CategoryNames() []string {
	seen := make(map[string]struct{})
	var names []string
	for i := range t.Items {
		for _, sc := range t.Items[i].Subcategories {
			if _, ok := seen[sc.Name]; ok {
				continue
			}
			seen[sc.Name] = struct{}{}
			names = append(names, sc.Name)
		}
	}
	return names
}

func (t *StoreTransaction) PrimaryCategoryID() (uint, bool) {
	for i := range t.Items {
		if len(t.Items[i].Subcategories) > 0 {
			return t.Items[i].Subcategories[0].CategoryID, true
		}
	}
	return 0, false
}

// StoreItem is one line of a StoreTransaction. TotalAmount is derived as
// quantity times unit price on save. Items carry their own subcategory tags
// because a single receipt can mix categories.
type StoreItem struct {
	ID            uint            `gorm:"primary_key" json:"id"`
	TransactionID uuid.UUID       `gorm:"type:uuid;not null;index" json:"transaction_id"`
	Name          string          `gorm:"type:varchar(100);not null" json:"name"`
	Quantity      int             `gorm:"not null" json:"quantity"`
	UnitPrice     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_amount"`

	Subcategories []SubCategory `gorm:"many2many:store_item_subcategories" json:"subcategories,omitempty"`
}

func (i *StoreItem) BeforeSave(tx *gorm.DB) error {
	if i.Quantity <= 0 {
		return ErrInvalidQuantity
	}

	if i.Name == "" {
		return errors.New("item name is required")
	}

	i.TotalAmount = i.ComputedTotal()
	return nil
}

// ComputedTotal returns quantity times unit price
func (i *StoreItem) ComputedTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// TableName returns the table name for StoreItem
func (i *StoreItem) TableName() string {
	return "store_items"
}
