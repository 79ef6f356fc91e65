package mercadopago

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNotification(t *testing.T) {
	n, err := ParseNotification([]byte(`{"id":123,"type":"subscription_preapproval","action":"updated","data":{"id":"pre-1"}}`))
	require.NoError(t, err)
	assert.Equal(t, "pre-1", n.Data.ID)
	assert.True(t, n.IsPreapproval())

	_, err = ParseNotification([]byte(`{"type":"payment","action":"created","data":{}}`))
	assert.ErrorIs(t, err, ErrInvalidNotification)

	_, err = ParseNotification([]byte(`not json`))
	assert.ErrorIs(t, err, ErrInvalidNotification)
}

func TestVerifySignature(t *testing.T) {
	sig := Sign("secret", "req-1", "pre-1", "1700000000")
	header := "ts=1700000000,v1=" + sig

	assert.NoError(t, VerifySignature("secret", header, "req-1", "pre-1"))
	assert.ErrorIs(t, VerifySignature("other", header, "req-1", "pre-1"), ErrInvalidSignature)
	assert.ErrorIs(t, VerifySignature("secret", header, "req-2", "pre-1"), ErrInvalidSignature)
	assert.ErrorIs(t, VerifySignature("secret", "garbage", "req-1", "pre-1"), ErrInvalidSignature)
}
