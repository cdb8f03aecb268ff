package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestListing_HasEnded(t *testing.T) {
	now := time.Now()

	open := &Listing{}
	assert.False(t, open.HasEnded(now), "listings without an end date never expire")

	future := now.Add(time.Hour)
	assert.False(t, (&Listing{EndDate: &future}).HasEnded(now))

	past := now.Add(-time.Hour)
	assert.True(t, (&Listing{EndDate: &past}).HasEnded(now))
}

func TestListing_Odds(t *testing.T) {
	assert.Equal(t, 0.1, (&Listing{ThresholdCount: 10}).Odds())
	assert.Equal(t, float64(0), (&Listing{}).Odds())
}

func TestTicketRange_Contains(t *testing.T) {
	r := &TicketRange{StartTicket: 6, EndTicket: 8}

	assert.False(t, r.Contains(5))
	assert.True(t, r.Contains(6))
	assert.True(t, r.Contains(7))
	assert.True(t, r.Contains(8))
	assert.False(t, r.Contains(9))

	assert.Equal(t, 3, r.Size())
}
