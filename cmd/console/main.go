package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/shopspring/decimal"

	"techstore-system/config"
	"techstore-system/internal/database"
	"techstore-system/internal/database/models"
	"techstore-system/internal/ledger"
)

var reader = bufio.NewReader(os.Stdin)

func main() {
	cfg := config.LoadConfig()
	node := config.CurrentNode()

	db, err := database.NewConnection(cfg.DB.DSN(node.DBName))
	if err != nil {
		log.Fatalf("Failed to connect to database %s: %v", node.DBName, err)
	}
	if err := models.MigrateRetailDB(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	gateway := ledger.NewGateway(db, node.Tables)
	inventory := ledger.NewInventory(db)
	sales := ledger.NewSales(db)

	fmt.Printf("TechStore console, node %s (%s), branch %d\n", node.Key, node.Role, node.BranchID)

	for {
		fmt.Println("\n1: Browse table")
		fmt.Println("2: Insert row")
		fmt.Println("3: Update row")
		fmt.Println("4: Delete row")
		fmt.Println("5: Preview next id")
		fmt.Println("6: Add product with stock")
		fmt.Println("7: Get / set stock")
		fmt.Println("8: Record sale")
		fmt.Println("X: Exit")
		fmt.Print("Enter choice: ")
		choice, _ := reader.ReadString('\n')
		choice = strings.TrimSpace(choice)

		ctx, cancel := context.WithTimeout(context.Background(), cfg.StatementTimeout)

		switch strings.ToUpper(choice) {
		case "1":
			table := chooseTable(gateway)
			columns, rows, err := gateway.Fetch(ctx, table)
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				break
			}
			fmt.Println(strings.Join(columns, " | "))
			for _, row := range rows {
				parts := make([]string, len(row))
				for i, v := range row {
					parts[i] = fmt.Sprintf("%v", v)
				}
				fmt.Println(strings.Join(parts, " | "))
			}
			fmt.Printf("(%d rows)\n", len(rows))

		case "2":
			table := chooseTable(gateway)
			fields := readFields()
			if err := gateway.Insert(ctx, table, fields); err != nil {
				fmt.Printf("Error: %v\n", err)
			} else {
				fmt.Println("Row inserted.")
			}

		case "3":
			table := chooseTable(gateway)
			idColumn := readLine("Id column: ")
			id := readInt("Id value: ")
			fields := readFields()
			if err := gateway.Update(ctx, table, fields, idColumn, id); err != nil {
				fmt.Printf("Error: %v\n", err)
			} else {
				fmt.Println("Row updated.")
			}

		case "4":
			table := chooseTable(gateway)
			idColumn := readLine("Id column: ")
			id := readInt("Id value: ")
			if err := gateway.Delete(ctx, table, idColumn, id); err != nil {
				fmt.Printf("Error: %v\n", err)
			} else {
				fmt.Println("Row deleted.")
			}

		case "5":
			table := chooseTable(gateway)
			id, err := gateway.NextID(ctx, table, node.BranchID)
			if err != nil {
				fmt.Printf("Error: %v\n", err)
			} else {
				fmt.Printf("Next id for %s: %d\n", table, id)
			}

		case "6":
			name := readLine("Name: ")
			brand := readLine("Brand: ")
			price := readDecimal("Price: ")
			qty := readInt("Initial quantity: ")
			productID, err := inventory.CreateProduct(ctx, ledger.ProductInput{
				Name:  name,
				Brand: brand,
				Price: price,
			}, int32(qty), node.BranchID)
			if err != nil {
				fmt.Printf("Error: %v\n", err)
			} else {
				fmt.Printf("Product created with id %d\n", productID)
			}

		case "7":
			productID := int32(readInt("Product id: "))
			current := inventory.GetQuantity(ctx, productID, node.BranchID)
			fmt.Printf("Current stock: %d\n", current)
			if readBool("Change it? (y/n): ") {
				qty := readInt("New quantity: ")
				if err := inventory.SetQuantity(ctx, productID, node.BranchID, int32(qty)); err != nil {
					fmt.Printf("Error: %v\n", err)
				} else {
					fmt.Println("Stock updated.")
				}
			}

		case "8":
			clientID := int32(readInt("Client id: "))
			var cart []ledger.CartLine
			for {
				productID := readInt("Product id (0 to finish): ")
				if productID == 0 {
					break
				}
				qty := readInt("Quantity: ")
				cart = append(cart, ledger.CartLine{ProductID: int32(productID), Quantity: int32(qty)})
			}
			invoiceID, err := sales.Checkout(ctx, clientID, node.BranchID, cart)
			if err != nil {
				fmt.Printf("Error: %v\n", err)
			} else {
				fmt.Printf("Sale recorded, invoice %d\n", invoiceID)
			}

		case "X":
			cancel()
			fmt.Println("Bye.")
			return

		default:
			fmt.Println("Unknown choice.")
		}

		cancel()
	}
}

func chooseTable(gateway *ledger.Gateway) string {
	tables := gateway.Tables()
	for i, t := range tables {
		fmt.Printf("%d: %s\n", i+1, t)
	}
	idx := readInt("Table: ")
	if idx >= 1 && idx <= len(tables) {
		return tables[idx-1]
	}
	return readLine("Table name: ")
}

// readFields reads column=value pairs until a blank line. Numeric values
// are passed through as ints, everything else as strings; the gateway's
// schema validation decides what is acceptable.
func readFields() map[string]interface{} {
	fields := make(map[string]interface{})
	fmt.Println("Enter column=value pairs, blank line to finish:")
	for {
		line := readLine("> ")
		if line == "" {
			return fields
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			fmt.Println("Expected column=value")
			continue
		}
		name := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if n, err := decimal.NewFromString(value); err == nil && n.IsInteger() {
			fields[name] = int(n.IntPart())
		} else {
			fields[name] = value
		}
	}
}

func readLine(caption string) string {
	fmt.Print(caption)
	text, _ := reader.ReadString('\n')
	return strings.TrimSpace(text)
}

func readInt(caption string) int {
	fmt.Print(caption)
	var i int
	fmt.Scanln(&i)
	return i
}

func readBool(prompt string) bool {
	var b string
	fmt.Print(prompt)
	fmt.Scanln(&b)
	return strings.ToLower(b) == "y" || strings.ToLower(b) == "yes"
}

func readDecimal(caption string) decimal.Decimal {
	for {
		text := readLine(caption)
		d, err := decimal.NewFromString(text)
		if err == nil {
			return d
		}
		fmt.Println("Invalid number.")
	}
}
