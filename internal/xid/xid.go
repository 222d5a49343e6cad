package xid

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

func New(prefix string) string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
	}
	return fmt.Sprintf("%s-%d-%s", prefix, time.Now().UnixNano(), hex.EncodeToString(buf))
}

// Code builds a short human-readable document code, e.g. ORD-20260901-3F9A2C.
// Receipts and packing slips print these, so they stay under 20 characters.
func Code(prefix string) string {
	buf := make([]byte, 3)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("%s-%d", strings.ToUpper(prefix), time.Now().Unix())
	}
	return fmt.Sprintf("%s-%s-%s",
		strings.ToUpper(prefix),
		time.Now().UTC().Format("20060102"),
		strings.ToUpper(hex.EncodeToString(buf)))
}
