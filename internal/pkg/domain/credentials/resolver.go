//Package credentials resolves the Sigfox API password of a platform tenant user
package credentials

import (
	"context"
	"errors"
	"fmt"
)

var (
	//ErrNotFound is returned by a Store when no password is stored under a key
	ErrNotFound = errors.New("credential not found")
	//ErrResolutionFailed wraps every failure to resolve a credential
	ErrResolutionFailed = errors.New("credential resolution failed")
)

//KeySeparator joins tenant and username into a store key
const KeySeparator = "-"

//Store is an external key/value store with atomic reads and writes
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

//Key returns the store key of a tenant user. The namespace is flat: tenant "a-b"
//with user "c" and tenant "a" with user "b-c" share a key.
func Key(tenant, username string) string {
	return tenant + KeySeparator + username
}

//Resolver maps (tenant, username) to a Sigfox API password
type Resolver struct {
	store Store
}

//NewResolver creates a resolver on top of store
func NewResolver(store Store) *Resolver {
	return &Resolver{store: store}
}

//Resolve looks up the password of a tenant user. ErrNotFound is preserved in
//the returned error chain when the store reports it.
func (r *Resolver) Resolve(ctx context.Context, tenant, username string) (string, error) {
	if tenant == "" || username == "" {
		return "", fmt.Errorf("%w: tenant and username are required", ErrResolutionFailed)
	}

	password, err := r.store.Get(ctx, Key(tenant, username))
	if err != nil {
		return "", fmt.Errorf("%w for user %s in tenant %s: %w", ErrResolutionFailed, username, tenant, err)
	}

	return password, nil
}

//Upsert stores the password of a tenant user, replacing any earlier value
func (r *Resolver) Upsert(ctx context.Context, tenant, username, password string) error {
	if tenant == "" || username == "" {
		return errors.New("tenant and username are required")
	}

	if err := r.store.Set(ctx, Key(tenant, username), password); err != nil {
		return fmt.Errorf("failed to store credential for user %s in tenant %s: %w", username, tenant, err)
	}

	return nil
}
