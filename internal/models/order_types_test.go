package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidStatus(t *testing.T) {
	for _, s := range []string{
		StatusOrderPlaced,
		StatusProcessing,
		StatusShipped,
		StatusOutForDelivery,
		StatusDelivered,
		StatusCancelled,
	} {
		assert.True(t, ValidStatus(s), s)
	}

	for _, s := range []string{
		"",
		"order placed", // case matters: these are wire values
		"Returned",
		"DELIVERED",
	} {
		assert.False(t, ValidStatus(s), s)
	}
}
