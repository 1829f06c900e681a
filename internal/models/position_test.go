package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNewPosition(t *testing.T) {
	pos := NewPosition("test-account", "AAPL")

	assert.NotEqual(t, uuid.Nil, pos.PositionID)
	assert.Equal(t, "test-account", pos.AccountID)
	assert.Equal(t, "AAPL", pos.Symbol)
	assert.True(t, pos.Qty.IsZero())
	assert.True(t, pos.AvgCost.IsZero())
	assert.True(t, pos.IsClosed())
	assert.False(t, pos.UpdatedAt.IsZero())
}

func TestPosition_Direction(t *testing.T) {
	long := NewPosition("test-account", "AAPL")
	long.Qty = decimal.NewFromInt(100)
	assert.True(t, long.IsLong())
	assert.False(t, long.IsShort())
	assert.True(t, long.IsOpen())
	assert.False(t, long.IsClosed())

	short := NewPosition("test-account", "TSLA")
	short.Qty = decimal.NewFromInt(-50)
	assert.True(t, short.IsShort())
	assert.False(t, short.IsLong())
	assert.True(t, short.IsOpen())
}

func TestPosition_NotionalValue(t *testing.T) {
	pos := NewPosition("test-account", "AAPL")
	pos.Qty = decimal.NewFromInt(100)
	assert.True(t, pos.NotionalValue(decimal.NewFromInt(10)).Equal(decimal.NewFromInt(1000)))

	pos.Qty = decimal.NewFromInt(-200)
	assert.True(t, pos.NotionalValue(decimal.NewFromInt(5)).Equal(decimal.NewFromInt(-1000)))
}

func TestPosition_UnrealizedPnL(t *testing.T) {
	pos := NewPosition("test-account", "AAPL")
	assert.True(t, pos.UnrealizedPnL(decimal.NewFromInt(150)).IsZero())

	pos.Qty = decimal.NewFromInt(100)
	pos.AvgCost = decimal.NewFromInt(150)
	assert.True(t, pos.UnrealizedPnL(decimal.NewFromInt(160)).Equal(decimal.NewFromInt(1000)))
	assert.True(t, pos.UnrealizedPnL(decimal.NewFromInt(140)).Equal(decimal.NewFromInt(-1000)))

	// Shorts gain when the price drops below cost.
	pos.Qty = decimal.NewFromInt(-100)
	pos.AvgCost = decimal.NewFromInt(50)
	assert.True(t, pos.UnrealizedPnL(decimal.NewFromInt(40)).Equal(decimal.NewFromInt(1000)))
}
