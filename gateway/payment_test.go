package gateway

import (
	"context"
	"testing"

	"raffler/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPaymentGateway_SelectsProvider(t *testing.T) {
	gw, err := NewPaymentGateway("stub")
	assert.NoError(t, err)
	assert.NotNil(t, gw)

	gw, err = NewPaymentGateway("braintree")
	assert.Error(t, err)
	assert.Nil(t, gw)
	assert.Contains(t, err.Error(), "braintree")
}

func TestStubPaymentGateway_CaptureConfirmRefund(t *testing.T) {
	ctx := context.Background()
	gw := NewStubPaymentGateway()

	ref, err := gw.AuthorizeAndCapture(ctx, "listing-1", "buyer-1", 2, 1000)
	require.NoError(t, err)
	require.NotEmpty(t, ref)

	status, err := gw.Confirm(ctx, ref)
	assert.NoError(t, err)
	assert.Equal(t, models.PaymentStatusConfirmed, status)

	status, err = gw.Confirm(ctx, "no-such-ref")
	assert.Error(t, err)
	assert.Equal(t, models.PaymentStatusFailed, status)

	assert.NoError(t, gw.Refund(ctx, ref, "listing cancelled"))
	assert.Error(t, gw.Refund(ctx, ref, "listing cancelled"))
}
