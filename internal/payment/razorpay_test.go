package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewRazorpayMissingCredentials(t *testing.T) {
	_, err := NewRazorpay("", "secret")
	require.ErrorIs(t, err, ErrConfigMissing)

	_, err = NewRazorpay("rzp_test_key", "")
	require.ErrorIs(t, err, ErrConfigMissing)
}

func TestNewRazorpayKeyID(t *testing.T) {
	gw, err := NewRazorpay("rzp_test_key", "secret")
	require.NoError(t, err)
	require.Equal(t, "rzp_test_key", gw.KeyID())
}

func TestVerifySignature(t *testing.T) {
	gw, err := NewRazorpay("rzp_test_key", "secret")
	require.NoError(t, err)

	mac := hmac.New(sha256.New, []byte("secret"))
	mac.Write([]byte("order_abc|pay_xyz"))
	valid := hex.EncodeToString(mac.Sum(nil))

	require.True(t, gw.VerifySignature("order_abc", "pay_xyz", valid))
	require.False(t, gw.VerifySignature("order_abc", "pay_xyz", "tampered"))
	require.False(t, gw.VerifySignature("order_other", "pay_xyz", valid))
}
