package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOperationOf(t *testing.T) {
	assert.Equal(t, "insert", operationOf("\n\tINSERT INTO triage_outcomes VALUES ($1)"))
	assert.Equal(t, "select", operationOf("select 1"))
	assert.Equal(t, "unknown", operationOf("   "))
}
