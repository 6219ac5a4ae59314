package qr

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

const renderBaseURL = "https://api.qrserver.com/v1/create-qr-code/"

// ProfilePayload is the string encoded into a student's profile QR. Organizers
// scan it to mark event attendance.
func ProfilePayload(userID uuid.UUID) string {
	return fmt.Sprintf("ECOCAMPUS-USER-%s", userID)
}

// RedemptionPayload is the string encoded into a storefront redemption QR.
// Store staff scan it at the counter to fulfill the order.
func RedemptionPayload(userID, productID uuid.UUID) string {
	return fmt.Sprintf("REDEEM-%s-%s", userID, productID)
}

// RenderURL returns an image URL that renders the payload as a QR code.
func RenderURL(payload string, size int) string {
	if size <= 0 {
		size = 200
	}
	query := url.Values{}
	query.Set("size", fmt.Sprintf("%dx%d", size, size))
	query.Set("data", payload)
	return renderBaseURL + "?" + query.Encode()
}

// ParseProfilePayload extracts the user ID from a scanned profile QR.
func ParseProfilePayload(payload string) (uuid.UUID, error) {
	const prefix = "ECOCAMPUS-USER-"
	if !strings.HasPrefix(payload, prefix) {
		return uuid.Nil, fmt.Errorf("not a profile payload")
	}
	id, err := uuid.Parse(strings.TrimPrefix(payload, prefix))
	if err != nil {
		return uuid.Nil, fmt.Errorf("malformed profile payload: %w", err)
	}
	return id, nil
}
