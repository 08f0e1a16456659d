package s0_load

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wonny/clv/internal/contracts"
	"github.com/wonny/clv/pkg/logger"
)

func TestTableNamePattern(t *testing.T) {
	valid := []string{"online_retail", "retail.transactions", "T2011"}
	invalid := []string{"", "online retail", "x;DROP TABLE y", "a.b.c", "retail.", `"quoted"`}

	for _, name := range valid {
		assert.True(t, tableNamePattern.MatchString(name), name)
	}
	for _, name := range invalid {
		assert.False(t, tableNamePattern.MatchString(name), name)
	}
}

func TestSQLSources_RejectInvalidTable(t *testing.T) {
	ctx := context.Background()

	_, err := NewMySQLSource(nil, "x;DROP TABLE y", logger.Nop()).Read(ctx)
	assert.ErrorIs(t, err, contracts.ErrDataLoad)

	_, err = NewPostgresSource(nil, "x;DROP TABLE y", logger.Nop()).Read(ctx)
	assert.ErrorIs(t, err, contracts.ErrDataLoad)
}

func TestSourceNames(t *testing.T) {
	assert.Equal(t, "mysql:online_retail", NewMySQLSource(nil, "online_retail", logger.Nop()).Name())
	assert.Equal(t, "postgres:online_retail", NewPostgresSource(nil, "online_retail", logger.Nop()).Name())
	assert.Equal(t, "csv:OnlineRetail.csv", NewCSVSource("OnlineRetail.csv", "", logger.Nop()).Name())
}
