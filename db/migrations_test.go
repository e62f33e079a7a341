package db

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Every table the repositories touch must be created by the embedded
// migrations.
func TestMigrations_CoverAllTables(t *testing.T) {
	entries, err := Migrations.ReadDir("migrations")
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	var all strings.Builder
	for _, e := range entries {
		data, err := Migrations.ReadFile("migrations/" + e.Name())
		require.NoError(t, err)
		all.Write(data)
	}
	ddl := all.String()

	for _, table := range []string{
		"cat_pharmacies", "users",
		"cat_customers", "cat_suppliers", "cat_products",
		"inv_items",
		"doc_purchases", "doc_purchase_items",
		"doc_bills", "doc_bill_items",
		"global_medicines",
		"sys_sequences", "sys_audit", "sys_idempotency",
	} {
		assert.Contains(t, ddl, "CREATE TABLE "+table, "missing DDL for %s", table)
	}
}

func TestMigrations_GooseSections(t *testing.T) {
	entries, err := Migrations.ReadDir("migrations")
	require.NoError(t, err)

	for _, e := range entries {
		data, err := Migrations.ReadFile("migrations/" + e.Name())
		require.NoError(t, err)
		assert.Contains(t, string(data), "-- +goose Up", e.Name())
		assert.Contains(t, string(data), "-- +goose Down", e.Name())
	}
}
