package dojot

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

//ErrMissingTenant is returned when a request does not carry a token with a tenant
var ErrMissingTenant = errors.New("no tenant found in authorization token")

//AgentUsername is the username the agent presents to the platform services
const AgentUsername = "iotagent-sigfox"

//TenantClaims are the claims the platform puts in its access tokens
type TenantClaims struct {
	jwt.RegisteredClaims
	Service  string `json:"service"`
	Username string `json:"username,omitempty"`
}

//NewTenantToken mints an unsigned token for internal calls on behalf of a tenant.
//The platform gateway is responsible for signature checks, internal services only
//read the claims.
func NewTenantToken(tenant string) (string, error) {
	claims := TenantClaims{
		Service:  tenant,
		Username: AgentUsername,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodNone, claims)
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		return "", fmt.Errorf("signing tenant token: %w", err)
	}
	return signed, nil
}

//TenantFromAuthorization extracts the tenant from an "Authorization: Bearer <jwt>"
//header value. The signature has already been verified by the platform gateway.
func TenantFromAuthorization(header string) (string, error) {
	tokenString := strings.TrimSpace(header)
	if len(tokenString) > 7 && strings.EqualFold(tokenString[:7], "bearer ") {
		tokenString = strings.TrimSpace(tokenString[7:])
	}

	if tokenString == "" {
		return "", ErrMissingTenant
	}

	claims := &TenantClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return "", fmt.Errorf("%w: %s", ErrMissingTenant, err.Error())
	}

	if claims.Service == "" {
		return "", ErrMissingTenant
	}

	return claims.Service, nil
}
