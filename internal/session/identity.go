package session

import (
	"github.com/golang-jwt/jwt/v5"
)

// PlaceholderIdentity is assumed for a restored credential whose claims can't be read
var PlaceholderIdentity = Identity{Email: "admin"}

// IdentityFromToken derives a display identity from the credential's claims.
// The signature is NOT verified: the result is for display only and the
// backend remains the authority on what the credential may do.
func IdentityFromToken(token string) Identity {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return PlaceholderIdentity
	}

	identity := Identity{
		Email: stringClaim(claims, "email"),
		Name:  stringClaim(claims, "name"),
		Role:  stringClaim(claims, "role"),
	}
	if identity.Role == "" {
		if isAdmin, ok := claims["isAdmin"].(bool); ok && isAdmin {
			identity.Role = "admin"
		}
	}
	if identity.Email == "" && identity.Name == "" {
		identity.Email = PlaceholderIdentity.Email
	}

	return identity
}

func stringClaim(claims jwt.MapClaims, key string) string {
	v, _ := claims[key].(string)
	return v
}
