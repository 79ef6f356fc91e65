package mercadopago

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrInvalidSignature is returned when the x-signature header does not match.
	ErrInvalidSignature = errors.New("mercadopago: invalid webhook signature")
	// ErrInvalidNotification is returned when the payload does not match the schema.
	ErrInvalidNotification = errors.New("mercadopago: invalid webhook payload")
)

var validate = validator.New()

// ParseNotification decodes and validates a webhook body.
func ParseNotification(body []byte) (*Notification, error) {
	var n Notification
	if err := json.Unmarshal(body, &n); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidNotification, err)
	}
	if err := validate.Struct(&n); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidNotification, err)
	}
	return &n, nil
}

// VerifySignature checks the x-signature header ("ts=<unix>,v1=<hex hmac>") against
// the manifest "id:<dataID>;request-id:<requestID>;ts:<ts>;" signed with secret.
func VerifySignature(secret, signatureHeader, requestID, dataID string) error {
	var ts, v1 string
	for _, part := range strings.Split(signatureHeader, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch key {
		case "ts":
			ts = value
		case "v1":
			v1 = value
		}
	}
	if ts == "" || v1 == "" {
		return fmt.Errorf("%w: malformed header", ErrInvalidSignature)
	}

	expected := Sign(secret, requestID, strings.ToLower(dataID), ts)
	if !hmac.Equal([]byte(expected), []byte(strings.ToLower(v1))) {
		return ErrInvalidSignature
	}
	return nil
}

// Sign returns the hex HMAC-SHA256 of the webhook manifest.
func Sign(secret, requestID, dataID, ts string) string {
	var manifest strings.Builder
	if dataID != "" {
		manifest.WriteString("id:" + dataID + ";")
	}
	if requestID != "" {
		manifest.WriteString("request-id:" + requestID + ";")
	}
	manifest.WriteString("ts:" + ts + ";")

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(manifest.String()))
	return hex.EncodeToString(mac.Sum(nil))
}
