package auth

import (
	"pairlink/pkg/logger"
	"pairlink/pkg/models"
	"pairlink/pkg/store"
)

// Directory resolves an identity to its current directory record. The
// production implementation reads the user rows the pairing service
// maintains; tests substitute fakes.
type Directory interface {
	ResolveIdentity(email string) (models.User, bool, error)
}

// StoreDirectory is the pebble-backed Directory.
type StoreDirectory struct{}

func (StoreDirectory) ResolveIdentity(email string) (models.User, bool, error) {
	return store.GetUser(email)
}

// Authorize confirms, against current directory state, that the identity
// from verified claims is paired under the requested conversation key.
// Token freshness does not imply current pairing state; a pairing can
// change after token issuance, so the embedded claim is never trusted on
// its own.
func Authorize(dir Directory, claims Claims, conversationKey string) (models.User, error) {
	u, found, err := dir.ResolveIdentity(claims.Email)
	if err != nil {
		logger.Error("directory_lookup_failed", "identity", claims.Email, "error", err)
		return models.User{}, ErrUnauthorized
	}
	if !found {
		logger.Warn("identity_not_found", "identity", claims.Email)
		return models.User{}, ErrUnauthorized
	}
	if !u.Paired || u.PairCode != conversationKey {
		logger.Warn("pairing_mismatch", "identity", claims.Email, "requested", conversationKey)
		return models.User{}, ErrUnauthorized
	}
	return u, nil
}
