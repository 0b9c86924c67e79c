package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	SignatureHeader = "X-Notify-Signature"
	TimestampHeader = "X-Notify-Timestamp"
	DeliveryHeader  = "X-Notify-Delivery"

	signaturePrefix = "sha256="
	maxClockSkew    = time.Minute
)

// Signature authenticates one delivery.
// Value is hex(HMAC-SHA256(secret, timestamp + "." + payload)).
type Signature struct {
	Value     string
	Timestamp int64
	ID        string
}

// Apply writes the signature headers to h.
func (s Signature) Apply(h http.Header) {
	h.Set(SignatureHeader, signaturePrefix+s.Value)
	h.Set(TimestampHeader, strconv.FormatInt(s.Timestamp, 10))
	h.Set(DeliveryHeader, s.ID)
}

// Sign computes the signature of payload at the given time with a fresh delivery id.
func Sign(secret string, payload []byte, at time.Time) (Signature, error) {
	if secret == "" {
		return Signature{}, fmt.Errorf("%w: secret is required", ErrInvalidConfiguration)
	}
	if len(payload) == 0 {
		return Signature{}, fmt.Errorf("%w: payload cannot be empty", ErrInvalidPayload)
	}
	ts := at.Unix()
	return Signature{
		Value:     computeMAC(secret, ts, payload),
		Timestamp: ts,
		ID:        uuid.NewString(),
	}, nil
}

// Verify checks the signature headers of a received delivery.
// A positive maxAge rejects timestamps older than maxAge or more than a minute ahead of now.
func Verify(secret string, payload []byte, h http.Header, maxAge time.Duration, now time.Time) error {
	if secret == "" {
		return fmt.Errorf("%w: secret is required", ErrInvalidConfiguration)
	}
	value, ok := strings.CutPrefix(h.Get(SignatureHeader), signaturePrefix)
	if !ok || value == "" {
		return fmt.Errorf("%w: missing signature", ErrInvalidSignature)
	}
	ts, err := strconv.ParseInt(h.Get(TimestampHeader), 10, 64)
	if err != nil {
		return fmt.Errorf("%w: invalid timestamp", ErrInvalidSignature)
	}

	if maxAge > 0 {
		age := now.Sub(time.Unix(ts, 0))
		if age > maxAge {
			return fmt.Errorf("%w: timestamp too old: %v", ErrInvalidSignature, age)
		}
		if age < -maxClockSkew {
			return fmt.Errorf("%w: timestamp is in the future", ErrInvalidSignature)
		}
	}

	if !hmac.Equal([]byte(computeMAC(secret, ts, payload)), []byte(value)) {
		return fmt.Errorf("%w: signature mismatch", ErrInvalidSignature)
	}
	return nil
}

func computeMAC(secret string, ts int64, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strconv.FormatInt(ts, 10)))
	mac.Write([]byte{'.'})
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}
