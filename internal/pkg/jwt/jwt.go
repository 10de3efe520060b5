package jwt

import (
	"crypto/rsa"
	"net/http"

	gojwt "github.com/golang-jwt/jwt/v5"

	"github.com/culturepass/cp-stock/pkg/errors"
	"github.com/culturepass/cp-stock/pkg/status"
)

type JSONWebToken struct {
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
}

func NewJSONWebToken(privateKeyPem, publicKeyPem []byte) *JSONWebToken {
	j := &JSONWebToken{}

	if len(privateKeyPem) > 0 {
		if pk, err := gojwt.ParseRSAPrivateKeyFromPEM(privateKeyPem); err == nil {
			j.privateKey = pk
		}
	}
	if len(publicKeyPem) > 0 {
		if pub, err := gojwt.ParseRSAPublicKeyFromPEM(publicKeyPem); err == nil {
			j.publicKey = pub
		}
	}

	return j
}

func (j *JSONWebToken) Sign(claims gojwt.Claims) (string, error) {
	if j.privateKey == nil {
		return "", errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "signing key is not configured")
	}

	return gojwt.NewWithClaims(gojwt.SigningMethodRS256, claims).SignedString(j.privateKey)
}

func (j *JSONWebToken) Parse(tokenString string, claims gojwt.Claims) error {
	if j.publicKey == nil {
		return errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "verification key is not configured")
	}

	token, err := gojwt.ParseWithClaims(tokenString, claims, func(t *gojwt.Token) (interface{}, error) {
		return j.publicKey, nil
	}, gojwt.WithValidMethods([]string{gojwt.SigningMethodRS256.Alg()}))
	if err != nil || !token.Valid {
		return errors.New(http.StatusUnauthorized, status.UNAUTHORIZED, "invalid token")
	}

	return nil
}
