// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

package auth

import (
	"context"
	"fmt"
)

// TokenType selects which token's claims an accessor reads.
type TokenType string

const (
	AccessTokenType TokenType = "access_token"
	IdTokenType     TokenType = "id_token"
)

// UserDetails is the projection of the id_token saved with the session.
type UserDetails struct {
	Id         string `json:"id"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	Email      string `json:"email"`
	Picture    string `json:"picture"`
}

// userFromClaims defaults missing claims to "".
func userFromClaims(claims map[string]interface{}) *UserDetails {
	return &UserDetails{
		Id:         claimString(claims, "sub"),
		GivenName:  claimString(claims, "given_name"),
		FamilyName: claimString(claims, "family_name"),
		Email:      claimString(claims, "email"),
		Picture:    claimString(claims, "picture"),
	}
}

// Permissions are the access token's permissions and the organization they
// apply to.
type Permissions struct {
	OrgCode     string
	Permissions []string
}

// Permission reports whether a single permission is granted.
type Permission struct {
	OrgCode   string
	IsGranted bool
}

// Organization is the organization the user signed in to.
type Organization struct {
	OrgCode string
}

// UserOrganizations are every organization the user belongs to.
type UserOrganizations struct {
	OrgCodes []string
}

// claimOptions is the set of available options for the claim accessors
type claimOptions struct {
	withTokenType TokenType
}

func claimDefaults() claimOptions {
	return claimOptions{
		withTokenType: AccessTokenType,
	}
}

func getClaimOpts(opt ...Option) claimOptions {
	opts := claimDefaults()
	ApplyOpts(&opts, opt...)
	return opts
}

// WithTokenType selects the token read by GetClaims and GetClaim. The
// default is AccessTokenType.
func WithTokenType(tt TokenType) Option {
	return func(o interface{}) {
		if o, ok := o.(*claimOptions); ok {
			o.withTokenType = tt
		}
	}
}

// claims returns the decoded claims of the session's token. The session
// must be authenticated and the token must decode.
func (c *Client) claims(ctx context.Context, sid string, tt TokenType) (map[string]interface{}, error) {
	var key string
	switch tt {
	case AccessTokenType:
		key = KeyAccessToken
	case IdTokenType:
		key = KeyIdToken
	default:
		return nil, fmt.Errorf("token type %q is not access_token or id_token: %w", tt, ErrInvalidParameter)
	}
	if err := c.requireAuthenticated(ctx, sid); err != nil {
		return nil, err
	}
	raw, err := c.getString(ctx, sid, key)
	if err != nil {
		return nil, err
	}
	claims := decodeClaims(raw)
	if claims == nil {
		return nil, fmt.Errorf("%s has no claims: %w", tt, ErrMissingCredential)
	}
	return claims, nil
}

func (c *Client) requireAuthenticated(ctx context.Context, sid string) error {
	if sid == "" {
		return fmt.Errorf("session id is empty: %w", ErrInvalidParameter)
	}
	authed, err := c.IsAuthenticated(ctx, sid)
	if err != nil {
		return err
	}
	if !authed {
		return ErrMissingCredential
	}
	return nil
}

// GetClaims returns every claim of the session's access token, or of its id
// token with WithTokenType(IdTokenType).
func (c *Client) GetClaims(ctx context.Context, sid string, opt ...Option) (map[string]interface{}, error) {
	const op = "Client.GetClaims"
	opts := getClaimOpts(opt...)
	claims, err := c.claims(ctx, sid, opts.withTokenType)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return claims, nil
}

// GetClaim returns a single claim. An absent claim is ErrNotFound.
func (c *Client) GetClaim(ctx context.Context, sid, name string, opt ...Option) (interface{}, error) {
	const op = "Client.GetClaim"
	claims, err := c.GetClaims(ctx, sid, opt...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	v, ok := claims[name]
	if !ok {
		return nil, fmt.Errorf("%s: claim %q: %w", op, name, ErrNotFound)
	}
	return v, nil
}

// GetPermissions returns the access token's permissions and org_code claims.
func (c *Client) GetPermissions(ctx context.Context, sid string) (*Permissions, error) {
	const op = "Client.GetPermissions"
	claims, err := c.claims(ctx, sid, AccessTokenType)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Permissions{
		OrgCode:     claimString(claims, "org_code"),
		Permissions: claimStrings(claims, "permissions"),
	}, nil
}

// GetPermission reports whether name is in the access token's permissions
// claim.
func (c *Client) GetPermission(ctx context.Context, sid, name string) (*Permission, error) {
	const op = "Client.GetPermission"
	p, err := c.GetPermissions(ctx, sid)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	granted := false
	for _, v := range p.Permissions {
		if v == name {
			granted = true
			break
		}
	}
	return &Permission{OrgCode: p.OrgCode, IsGranted: granted}, nil
}

// GetOrganization returns the access token's org_code claim.
func (c *Client) GetOrganization(ctx context.Context, sid string) (*Organization, error) {
	const op = "Client.GetOrganization"
	claims, err := c.claims(ctx, sid, AccessTokenType)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Organization{OrgCode: claimString(claims, "org_code")}, nil
}

// GetUserOrganizations returns the id token's org_codes claim.
func (c *Client) GetUserOrganizations(ctx context.Context, sid string) (*UserOrganizations, error) {
	const op = "Client.GetUserOrganizations"
	claims, err := c.claims(ctx, sid, IdTokenType)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &UserOrganizations{OrgCodes: claimStrings(claims, "org_codes")}, nil
}

// GetUserDetails returns the user saved with the session's tokens. A session
// whose tokens had no id token has no user and returns ErrNotFound.
func (c *Client) GetUserDetails(ctx context.Context, sid string) (*UserDetails, error) {
	const op = "Client.GetUserDetails"
	if err := c.requireAuthenticated(ctx, sid); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var u UserDetails
	found, err := c.getJSON(ctx, sid, KeyUser, &u)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !found {
		return nil, fmt.Errorf("%s: user: %w", op, ErrNotFound)
	}
	return &u, nil
}
