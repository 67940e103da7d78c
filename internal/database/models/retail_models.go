package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Branch rows are seeded by hand when a store opens; ids are small stable
// integers, never allocated by the application.
type Branch struct {
	ID      int32  `gorm:"primaryKey;autoIncrement:false"`
	Name    string `gorm:"type:varchar(128);not null"`
	Address string `gorm:"type:varchar(255)"`
	Phone   string `gorm:"type:varchar(50)"`
	City    string `gorm:"type:varchar(100)"`
}

// Product is the global catalog, shared by every branch.
type Product struct {
	ID    int32           `gorm:"primaryKey;autoIncrement:false"`
	Name  string          `gorm:"type:varchar(128);not null"`
	Brand string          `gorm:"type:varchar(64)"`
	Price decimal.Decimal `gorm:"type:decimal(10,2);not null"`
}

// Inventory holds one branch's stock of one product. Rows are created
// lazily on the first stock assignment.
type Inventory struct {
	BranchID  int32 `gorm:"primaryKey;autoIncrement:false"`
	ProductID int32 `gorm:"primaryKey;autoIncrement:false"`
	Quantity  int32 `gorm:"not null"`
}

func (Inventory) TableName() string { return "inventory" }

type Client struct {
	ID       int32  `gorm:"primaryKey;autoIncrement:false"`
	Name     string `gorm:"type:varchar(128);not null"`
	Address  string `gorm:"type:varchar(255)"`
	Phone    string `gorm:"type:varchar(50)"`
	Email    string `gorm:"type:varchar(128);index"`
	BranchID int32  `gorm:"not null"`
}

type Employee struct {
	ID       int32  `gorm:"primaryKey;autoIncrement:false"`
	Name     string `gorm:"type:varchar(128);not null"`
	Address  string `gorm:"type:varchar(255)"`
	Phone    string `gorm:"type:varchar(50)"`
	Email    string `gorm:"type:varchar(128)"`
	BranchID int32  `gorm:"not null"`
}

// Invoice numbering is local per branch, so the branch id is part of the
// key.
type Invoice struct {
	ID       int32           `gorm:"primaryKey;autoIncrement:false"`
	BranchID int32           `gorm:"primaryKey;autoIncrement:false"`
	Date     time.Time       `gorm:"not null"`
	Total    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	ClientID int32           `gorm:"not null"`
}

type InvoiceDetail struct {
	InvoiceID int32           `gorm:"primaryKey;autoIncrement:false"`
	ProductID int32           `gorm:"primaryKey;autoIncrement:false"`
	BranchID  int32           `gorm:"primaryKey;autoIncrement:false"`
	Quantity  int32           `gorm:"not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Subtotal  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}

func MigrateRetailDB(db *gorm.DB) error {
	return db.AutoMigrate(
		&Branch{},
		&Product{},
		&Inventory{},
		&Client{},
		&Employee{},
		&Invoice{},
		&InvoiceDetail{},
	)
}
