package auth

import (
	"errors"
	"testing"

	"pairlink/pkg/models"
)

type fakeDir map[string]models.User

func (d fakeDir) ResolveIdentity(email string) (models.User, bool, error) {
	u, ok := d[email]
	return u, ok, nil
}

type failingDir struct{}

func (failingDir) ResolveIdentity(string) (models.User, bool, error) {
	return models.User{}, false, errors.New("directory unavailable")
}

func TestAuthorizePairedUser(t *testing.T) {
	dir := fakeDir{
		"alice@example.com": {Email: "alice@example.com", Name: "Alice", PairCode: "ABC123", Paired: true},
	}
	u, err := Authorize(dir, Claims{Email: "alice@example.com", PairCode: "ABC123"}, "ABC123")
	if err != nil {
		t.Fatalf("authorize: %v", err)
	}
	if u.Name != "Alice" {
		t.Fatalf("unexpected user: %+v", u)
	}
}

func TestAuthorizeUnknownIdentity(t *testing.T) {
	_, err := Authorize(fakeDir{}, Claims{Email: "ghost@example.com"}, "ABC123")
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestAuthorizePairCodeMismatch(t *testing.T) {
	dir := fakeDir{
		"alice@example.com": {Email: "alice@example.com", PairCode: "XYZ999", Paired: true},
	}
	// the claim says ABC123 but the directory disagrees; the directory wins
	_, err := Authorize(dir, Claims{Email: "alice@example.com", PairCode: "ABC123"}, "ABC123")
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestAuthorizeUnpairedUser(t *testing.T) {
	dir := fakeDir{
		"alice@example.com": {Email: "alice@example.com", PairCode: "ABC123", Paired: false},
	}
	_, err := Authorize(dir, Claims{Email: "alice@example.com"}, "ABC123")
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestAuthorizeDirectoryFailure(t *testing.T) {
	_, err := Authorize(failingDir{}, Claims{Email: "alice@example.com"}, "ABC123")
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}
