package middleware

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/shopspring/decimal"

	"github.com/mayar-kabaja/gaza-price-sub000/internal/model"
)

// Field length limits matching database schema constraints.
const (
	MaxContributorIDLen = 64 // contributors.contributor_id VARCHAR(64)
	MaxRefLen           = 64 // product/store/area reference slugs
	MinStoreNameLen     = 2
	MaxStoreNameLen     = 60 // reports.store_name VARCHAR(60)
	MaxReasonLen        = 200
	MaxProductNameLen   = 80
)

var (
	// contributorIDRe matches hashed contributor IDs handed over by the
	// identity collaborator.
	contributorIDRe = regexp.MustCompile(`^[0-9a-f]+$`)
	// refRe matches product/store/area reference slugs.
	refRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	// uuidRe matches report and suggestion identifiers.
	uuidRe = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)
)

// ErrorResponse is a helper that returns a standard API error response.
func ErrorResponse(c fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    code,
			"message": message,
		},
	})
}

// RateLimitedResponse returns the standard 429 payload for a denied
// decision, including the conservative whole-window retry-after.
func RateLimitedResponse(c fiber.Ctx, retryAfterSeconds int) error {
	c.Set("Retry-After", strconv.Itoa(retryAfterSeconds))
	return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
		"error": fiber.Map{
			"code":       "RATE_LIMITED",
			"message":    "Too many attempts. Try again later.",
			"retryAfter": retryAfterSeconds,
		},
	})
}

// ValidateContributorID checks that a contributor ID is a valid hex hash.
func ValidateContributorID(id string) (string, string) {
	id = strings.TrimSpace(strings.ToLower(id))
	if id == "" {
		return "", "contributorId is required"
	}
	if len(id) > MaxContributorIDLen {
		return "", "contributorId must be at most 64 characters"
	}
	if !contributorIDRe.MatchString(id) {
		return "", "contributorId must be a hexadecimal hash"
	}
	return id, ""
}

// ValidateRef checks a product/store/area reference slug. name is used in
// the error message.
func ValidateRef(ref, name string) (string, string) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", name + " is required"
	}
	if len(ref) > MaxRefLen {
		return "", name + " must be at most 64 characters"
	}
	if !refRe.MatchString(ref) {
		return "", name + " contains invalid characters"
	}
	return ref, ""
}

// ValidateOptionalRef is ValidateRef for fields that may be empty.
func ValidateOptionalRef(ref, name string) (string, string) {
	if strings.TrimSpace(ref) == "" {
		return "", ""
	}
	return ValidateRef(ref, name)
}

// ValidateReportID checks a report identifier (UUID).
func ValidateReportID(id string) (string, string) {
	id = strings.TrimSpace(strings.ToLower(id))
	if id == "" {
		return "", "reportId is required"
	}
	if !uuidRe.MatchString(id) {
		return "", "reportId is not a valid identifier"
	}
	return id, ""
}

// ValidatePrice parses a price string into a positive decimal with at most
// 2 fractional digits.
func ValidatePrice(raw string) (decimal.Decimal, string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, "price is required"
	}
	price, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, "price must be a decimal number"
	}
	if !price.IsPositive() {
		return decimal.Zero, "price must be greater than zero"
	}
	if price.Exponent() < -2 {
		return decimal.Zero, "price must have at most 2 decimal places"
	}
	if price.GreaterThan(decimal.NewFromInt(1_000_000)) {
		return decimal.Zero, "price is out of range"
	}
	return price, ""
}

// ValidateCurrency checks the three-letter currency code.
func ValidateCurrency(cur string) (string, string) {
	cur = strings.ToUpper(strings.TrimSpace(cur))
	if cur == "" {
		return "", "currency is required"
	}
	if !model.ValidCurrencies[cur] {
		return "", "currency must be one of: ILS, USD, EGP"
	}
	return cur, ""
}

// ValidateStoreName trims and bounds a free-text store name. Empty is
// allowed (the store reference may be set instead).
func ValidateStoreName(name string) (string, string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ""
	}
	if len(name) < MinStoreNameLen {
		return "", "storeName must be at least 2 characters"
	}
	if len(name) > MaxStoreNameLen {
		return "", "storeName must be at most 60 characters"
	}
	return name, ""
}

// ValidateReason trims and truncates a flag reason.
func ValidateReason(reason string) string {
	reason = strings.TrimSpace(reason)
	if len(reason) > MaxReasonLen {
		reason = reason[:MaxReasonLen]
	}
	return reason
}

// ValidateProductName checks a suggested product name.
func ValidateProductName(name string) (string, string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", "productName is required"
	}
	if len(name) > MaxProductNameLen {
		return "", "productName must be at most 80 characters"
	}
	return name, ""
}
