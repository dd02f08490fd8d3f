package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPayoutStatus(t *testing.T) {
	for _, s := range []string{PayoutStatusPending, PayoutStatusProcessing, PayoutStatusCompleted, PayoutStatusRejected} {
		assert.True(t, IsValidPayoutStatus(s))
	}
	assert.False(t, IsValidPayoutStatus("cancelled"))

	assert.False(t, (&PayoutRequest{Status: PayoutStatusPending}).Terminal())
	assert.False(t, (&PayoutRequest{Status: PayoutStatusProcessing}).Terminal())
	assert.True(t, (&PayoutRequest{Status: PayoutStatusCompleted}).Terminal())
	assert.True(t, (&PayoutRequest{Status: PayoutStatusRejected}).Terminal())
}
