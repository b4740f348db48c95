package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/tgienger/taskflow/internal/models"
)

// fullNameClaim is the custom claim the backend puts the display name in
const fullNameClaim = "fullName"

// ErrNoToken is returned when decoding an empty token
var ErrNoToken = errors.New("no token")

// DecodeIdentity reads the identity out of a token's payload.
// The header, signature and expiry are NOT checked: the backend remains the only authority.
func DecodeIdentity(token string) (*models.Identity, error) {
	if token == "" {
		return nil, ErrNoToken
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("decode token: %w", jwt.ErrTokenMalformed)
	}
	payload, err := jwt.NewParser().DecodeSegment(parts[1])
	if err != nil {
		return nil, fmt.Errorf("decode token payload: %w", err)
	}

	claims := jwt.MapClaims{}
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, fmt.Errorf("decode token claims: %w", err)
	}

	email := claimString(claims, "sub")
	if email == "" {
		return nil, fmt.Errorf("decode token subject: %w", jwt.ErrTokenInvalidSubject)
	}

	return &models.Identity{Email: email, FullName: claimString(claims, fullNameClaim)}, nil
}

// claimString reads a claim as text whatever JSON type it was sent as
func claimString(claims jwt.MapClaims, name string) string {
	switch v := claims[name].(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		// json numbers arrive as float64; print them without an exponent
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
