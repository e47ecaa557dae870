package testutil

import (
	"github.com/leengari/stripetable/internal/domain/table"
)

// CreateTestTable creates an empty table with common column titles
func CreateTestTable(name string) *table.Table {
	t := table.New(name)
	if err := t.SetColumnTitles("id", "name", "email", "age"); err != nil {
		panic(err)
	}
	return t
}

// CreateUsersTable creates a users table with sample data for testing
func CreateUsersTable() *table.Table {
	return mustTable("users", []any{"id", "username", "email"}, [][]any{
		{int64(1), "alice", "alice@example.com"},
		{int64(2), "bob", "bob@example.com"},
		{int64(3), "charlie", "charlie@example.com"},
	})
}

// CreateOrdersTable creates an orders table with sample data for testing
func CreateOrdersTable() *table.Table {
	return mustTable("orders", []any{"id", "user_id", "product", "amount"}, [][]any{
		{int64(1), int64(1), "Laptop", 999.99},
		{int64(2), int64(1), "Mouse", 25.50},
		{int64(3), int64(2), "Keyboard", 75.00},
		// Note: user_id 3 (charlie) has no orders
	})
}

// CreateLettersTable creates a single untitled column holding b,a,b,d,f,c,e,e
func CreateLettersTable() *table.Table {
	return table.NewFromRows("letters", [][]any{
		{"b"}, {"a"}, {"b"}, {"d"}, {"f"}, {"c"}, {"e"}, {"e"},
	})
}

func mustTable(name string, titles []any, rows [][]any) *table.Table {
	t := table.NewFromRows(name, rows)
	if err := t.SetColumnTitles(titles...); err != nil {
		panic(err)
	}
	return t
}
