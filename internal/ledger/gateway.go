package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// FieldKind is the semantic type a gateway column accepts.
type FieldKind int

const (
	KindInt FieldKind = iota
	KindString
	KindDecimal
	KindDate
)

type Field struct {
	Kind     FieldKind
	Required bool
}

// TableSpec declares what the gateway may do with one table: its
// columns, its id column, and its capabilities. Dispatch-by-table-name
// lives here instead of in scattered conditionals.
type TableSpec struct {
	IDColumn      string
	Fields        map[string]Field
	CascadeDelete bool
	// BranchScopedID marks tables whose ids are allocated per branch.
	BranchScopedID bool
}

// tableOrder fixes the menu ordering; tableSpecs is the allow-list.
var tableOrder = []string{
	"branches", "products", "inventory",
	"clients", "employees", "invoices", "invoice_details",
}

var tableSpecs = map[string]TableSpec{
	"branches": {
		IDColumn: "id",
		Fields: map[string]Field{
			"id":      {Kind: KindInt, Required: true},
			"name":    {Kind: KindString, Required: true},
			"address": {Kind: KindString},
			"phone":   {Kind: KindString},
			"city":    {Kind: KindString},
		},
	},
	"products": {
		IDColumn:      "id",
		CascadeDelete: true,
		Fields: map[string]Field{
			"id":    {Kind: KindInt, Required: true},
			"name":  {Kind: KindString, Required: true},
			"brand": {Kind: KindString},
			"price": {Kind: KindDecimal, Required: true},
		},
	},
	"inventory": {
		IDColumn: "product_id",
		Fields: map[string]Field{
			"branch_id":  {Kind: KindInt, Required: true},
			"product_id": {Kind: KindInt, Required: true},
			"quantity":   {Kind: KindInt, Required: true},
		},
	},
	"clients": {
		IDColumn: "id",
		Fields: map[string]Field{
			"id":        {Kind: KindInt, Required: true},
			"name":      {Kind: KindString, Required: true},
			"address":   {Kind: KindString},
			"phone":     {Kind: KindString},
			"email":     {Kind: KindString},
			"branch_id": {Kind: KindInt, Required: true},
		},
	},
	"employees": {
		IDColumn: "id",
		Fields: map[string]Field{
			"id":        {Kind: KindInt, Required: true},
			"name":      {Kind: KindString, Required: true},
			"address":   {Kind: KindString},
			"phone":     {Kind: KindString},
			"email":     {Kind: KindString},
			"branch_id": {Kind: KindInt, Required: true},
		},
	},
	"invoices": {
		IDColumn:       "id",
		BranchScopedID: true,
		Fields: map[string]Field{
			"id":        {Kind: KindInt, Required: true},
			"branch_id": {Kind: KindInt, Required: true},
			"date":      {Kind: KindDate, Required: true},
			"total":     {Kind: KindDecimal, Required: true},
			"client_id": {Kind: KindInt, Required: true},
		},
	},
	"invoice_details": {
		IDColumn: "invoice_id",
		Fields: map[string]Field{
			"invoice_id": {Kind: KindInt, Required: true},
			"product_id": {Kind: KindInt, Required: true},
			"branch_id":  {Kind: KindInt, Required: true},
			"quantity":   {Kind: KindInt, Required: true},
			"unit_price": {Kind: KindDecimal, Required: true},
			"subtotal":   {Kind: KindDecimal, Required: true},
		},
	},
}

// Gateway runs parameterized CRUD against the allow-listed tables. Table
// and column names come from the static specs above, never from the
// caller, so the SQL it builds cannot be injected into.
type Gateway struct {
	db        *gorm.DB
	inventory *Inventory
	enabled   map[string]bool
}

// NewGateway wires the gateway for one node. enabledTables is the node's
// menu (nil means every allow-listed table); tables outside the
// allow-list are ignored even when listed.
func NewGateway(db *gorm.DB, enabledTables []string) *Gateway {
	var enabled map[string]bool
	if enabledTables != nil {
		enabled = make(map[string]bool, len(enabledTables))
		for _, t := range enabledTables {
			enabled[t] = true
		}
	}
	return &Gateway{db: db, inventory: NewInventory(db), enabled: enabled}
}

// Tables lists the tables this node exposes, in menu order.
func (g *Gateway) Tables() []string {
	out := make([]string, 0, len(tableOrder))
	for _, t := range tableOrder {
		if g.enabled == nil || g.enabled[t] {
			out = append(out, t)
		}
	}
	return out
}

func (g *Gateway) spec(table string) (TableSpec, error) {
	spec, ok := tableSpecs[table]
	if !ok {
		return TableSpec{}, &AccessDeniedError{Table: table}
	}
	if g.enabled != nil && !g.enabled[table] {
		return TableSpec{}, &AccessDeniedError{Table: table}
	}
	return spec, nil
}

func (f Field) accepts(value interface{}) bool {
	if value == nil {
		return false
	}
	switch f.Kind {
	case KindInt:
		switch value.(type) {
		case int, int32, int64, float64:
			return true
		}
	case KindString:
		_, ok := value.(string)
		return ok
	case KindDecimal:
		switch value.(type) {
		case float64, int, int32, int64, string, decimal.Decimal:
			return true
		}
	case KindDate:
		switch value.(type) {
		case string, time.Time:
			return true
		}
	}
	return false
}

func (g *Gateway) validateFields(spec TableSpec, fields map[string]interface{}, requireAll bool) error {
	for name, value := range fields {
		field, ok := spec.Fields[name]
		if !ok {
			return &InvalidInputError{Field: name, Reason: "unknown column"}
		}
		if !field.accepts(value) {
			return &InvalidInputError{Field: name, Reason: "wrong type"}
		}
	}
	if requireAll {
		for name, field := range spec.Fields {
			if field.Required {
				if _, ok := fields[name]; !ok {
					return &InvalidInputError{Field: name, Reason: "is required"}
				}
			}
		}
	}
	return nil
}

// Fetch returns the column names and every row of an allow-listed table.
func (g *Gateway) Fetch(ctx context.Context, table string) ([]string, [][]interface{}, error) {
	if _, err := g.spec(table); err != nil {
		return nil, nil, err
	}

	rows, err := g.db.WithContext(ctx).Table(table).Rows()
	if err != nil {
		return nil, nil, translateErr("fetch "+table, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, nil, translateErr("fetch "+table, err)
	}

	var result [][]interface{}
	for rows.Next() {
		values := make([]interface{}, len(columns))
		ptrs := make([]interface{}, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, translateErr("fetch "+table, err)
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		result = append(result, values)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, translateErr("fetch "+table, err)
	}

	return columns, result, nil
}

// Insert writes one row. Every column must belong to the table's schema
// and every required column must be present; nothing reaches the
// database otherwise.
func (g *Gateway) Insert(ctx context.Context, table string, fields map[string]interface{}) error {
	spec, err := g.spec(table)
	if err != nil {
		return err
	}
	if len(fields) == 0 {
		return &InvalidInputError{Field: table, Reason: "no fields to insert"}
	}
	if err := g.validateFields(spec, fields, true); err != nil {
		return err
	}

	if err := g.db.WithContext(ctx).Table(table).Create(fields).Error; err != nil {
		return translateErr("insert into "+table, err)
	}
	return nil
}

// Update rewrites the given columns of one row. The id column is only
// ever used in the WHERE clause: if present in fields it is dropped from
// the SET clause, never reassigned.
func (g *Gateway) Update(ctx context.Context, table string, fields map[string]interface{}, idColumn string, idValue interface{}) error {
	spec, err := g.spec(table)
	if err != nil {
		return err
	}
	if _, ok := spec.Fields[idColumn]; !ok {
		return &InvalidInputError{Field: idColumn, Reason: "unknown column"}
	}

	toUpdate := make(map[string]interface{}, len(fields))
	for name, value := range fields {
		if name == idColumn {
			continue
		}
		toUpdate[name] = value
	}
	if len(toUpdate) == 0 {
		return &InvalidInputError{Field: table, Reason: "no fields to update"}
	}
	if err := g.validateFields(spec, toUpdate, false); err != nil {
		return err
	}

	res := g.db.WithContext(ctx).Table(table).
		Where(idColumn+" = ?", idValue).
		Updates(toUpdate)
	if res.Error != nil {
		return translateErr("update "+table, res.Error)
	}
	return nil
}

// Delete removes rows matching the id. Product deletes cascade through
// inventory first so no orphaned stock rows survive.
func (g *Gateway) Delete(ctx context.Context, table string, idColumn string, idValue interface{}) error {
	spec, err := g.spec(table)
	if err != nil {
		return err
	}
	if _, ok := spec.Fields[idColumn]; !ok {
		return &InvalidInputError{Field: idColumn, Reason: "unknown column"}
	}

	if spec.CascadeDelete {
		id, ok := toInt32(idValue)
		if !ok {
			return &InvalidInputError{Field: idColumn, Reason: "wrong type"}
		}
		return g.inventory.DeleteProduct(ctx, id)
	}

	res := g.db.WithContext(ctx).Exec("DELETE FROM "+table+" WHERE "+idColumn+" = ?", idValue)
	if res.Error != nil {
		return translateErr("delete from "+table, res.Error)
	}
	return nil
}

// NextID exposes the allocator for an allow-listed table, scoping to the
// branch for tables with branch-local numbering. Per the allocator's
// contract it never fails outward.
func (g *Gateway) NextID(ctx context.Context, table string, branchID int32) (int32, error) {
	spec, err := g.spec(table)
	if err != nil {
		return 0, err
	}
	alloc := NewAllocator(g.db)
	if spec.BranchScopedID {
		return alloc.NextID(ctx, table, spec.IDColumn, branchID), nil
	}
	return alloc.NextID(ctx, table, spec.IDColumn), nil
}

func toInt32(v interface{}) (int32, bool) {
	switch n := v.(type) {
	case int:
		return int32(n), true
	case int32:
		return n, true
	case int64:
		return int32(n), true
	case float64:
		return int32(n), true
	}
	return 0, false
}
