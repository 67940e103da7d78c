package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCurrentNodeHonorsNodeKeyOverride(t *testing.T) {
	t.Setenv("NODE_KEY", "quito")

	node := CurrentNode()
	assert.Equal(t, "QUITO", node.Key)
	assert.Equal(t, int32(2), node.BranchID)
	assert.NotContains(t, node.Tables, "employees")
}

func TestCurrentNodeFallsBackToMainOffice(t *testing.T) {
	t.Setenv("NODE_KEY", "UNKNOWN")

	node := CurrentNode()
	assert.Equal(t, "GUAYAQUIL", node.Key)
	assert.Equal(t, int32(1), node.BranchID)
	assert.Contains(t, node.Tables, "employees")
}

func TestDSNIncludesBranchDatabase(t *testing.T) {
	db := DBConfig{Host: "localhost", Port: "5432", User: "postgres", Password: "secret"}
	dsn := db.DSN("techstore_quito")
	assert.Contains(t, dsn, "dbname=techstore_quito")
	assert.Contains(t, dsn, "host=localhost")
}
