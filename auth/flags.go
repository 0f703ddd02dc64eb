// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

package auth

import (
	"context"
	"fmt"
	"math"
)

// FlagType is the type of a feature flag's value.
type FlagType string

const (
	StringFlag  FlagType = "string"
	BooleanFlag FlagType = "boolean"
	IntegerFlag FlagType = "integer"
)

// flagTags maps the single letter type tags of the feature_flags claim.
var flagTags = map[string]FlagType{
	"s": StringFlag,
	"b": BooleanFlag,
	"i": IntegerFlag,
}

// storedFlag is one entry of the feature_flags claim.
type storedFlag struct {
	T string      `json:"t"`
	V interface{} `json:"v"`
}

// Flag is the result of a flag lookup. IsDefault is true when the provided
// default was returned because the token has no value for the flag.
type Flag struct {
	Code      string
	Type      FlagType
	Value     interface{}
	IsDefault bool
}

// flagsFromClaims extracts the feature_flags claim, skipping malformed
// entries. It returns nil when there are none.
func flagsFromClaims(claims map[string]interface{}) map[string]storedFlag {
	raw, ok := claims["feature_flags"].(map[string]interface{})
	if !ok {
		return nil
	}
	flags := make(map[string]storedFlag, len(raw))
	for code, v := range raw {
		entry, ok := v.(map[string]interface{})
		if !ok {
			continue
		}
		t, _ := entry["t"].(string)
		flags[code] = storedFlag{T: t, V: entry["v"]}
	}
	if len(flags) == 0 {
		return nil
	}
	return flags
}

// flagOptions is the set of available options for GetFlag
type flagOptions struct {
	withDefaultValue interface{}
	withFlagType     FlagType
}

func getFlagOpts(opt ...Option) flagOptions {
	var opts flagOptions
	ApplyOpts(&opts, opt...)
	return opts
}

// WithDefaultValue provides the value returned by GetFlag when the token has
// no value for the flag. A nil value means no default.
func WithDefaultValue(v interface{}) Option {
	return func(o interface{}) {
		if o, ok := o.(*flagOptions); ok {
			o.withDefaultValue = v
		}
	}
}

// WithFlagType requires the flag to be of the given type.
func WithFlagType(t FlagType) Option {
	return func(o interface{}) {
		if o, ok := o.(*flagOptions); ok {
			o.withFlagType = t
		}
	}
}

// typeOfValue returns the flag type of a Go value, or "" when it has none.
func typeOfValue(v interface{}) FlagType {
	switch v.(type) {
	case string:
		return StringFlag
	case bool:
		return BooleanFlag
	case int, int32, int64, float64:
		return IntegerFlag
	default:
		return ""
	}
}

// normalizeFlagValue converts JSON numbers of integer flags to int64.
func normalizeFlagValue(t FlagType, v interface{}) interface{} {
	if t != IntegerFlag {
		return v
	}
	switch n := v.(type) {
	case float64:
		if n == math.Trunc(n) {
			return int64(n)
		}
	case int:
		return int64(n)
	case int32:
		return int64(n)
	}
	return v
}

// GetFlag looks up a feature flag in the session's feature_flags. A flag
// without a value returns the WithDefaultValue default, or ErrFlagNotFound
// when there's no default. With WithFlagType a flag stored as another type
// fails with a *FlagTypeMismatchError.
func (c *Client) GetFlag(ctx context.Context, sid, code string, opt ...Option) (*Flag, error) {
	const op = "Client.GetFlag"
	if code == "" {
		return nil, fmt.Errorf("%s: flag code is empty: %w", op, ErrInvalidParameter)
	}
	if err := c.requireAuthenticated(ctx, sid); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	opts := getFlagOpts(opt...)

	var flags map[string]storedFlag
	if _, err := c.getJSON(ctx, sid, KeyFeatureFlags, &flags); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	stored, found := flags[code]
	storedType := flagTags[stored.T]
	if found && opts.withFlagType != "" && storedType != "" && storedType != opts.withFlagType {
		return nil, fmt.Errorf("%s: %w", op, &FlagTypeMismatchError{Code: code, Requested: opts.withFlagType, Stored: storedType})
	}
	if found && stored.V != nil {
		return &Flag{
			Code:  code,
			Type:  storedType,
			Value: normalizeFlagValue(storedType, stored.V),
		}, nil
	}
	if opts.withDefaultValue == nil {
		return nil, fmt.Errorf("%s: flag %q has no value and no default was provided: %w", op, code, ErrFlagNotFound)
	}
	t := storedType
	if t == "" {
		t = opts.withFlagType
	}
	if t == "" {
		t = typeOfValue(opts.withDefaultValue)
	}
	return &Flag{
		Code:      code,
		Type:      t,
		Value:     normalizeFlagValue(t, opts.withDefaultValue),
		IsDefault: true,
	}, nil
}

// GetBooleanFlag returns a boolean flag's value. It supports
// WithDefaultValue.
func (c *Client) GetBooleanFlag(ctx context.Context, sid, code string, opt ...Option) (bool, error) {
	const op = "Client.GetBooleanFlag"
	f, err := c.GetFlag(ctx, sid, code, append(opt[:len(opt):len(opt)], WithFlagType(BooleanFlag))...)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	v, ok := f.Value.(bool)
	if !ok {
		return false, fmt.Errorf("%s: %w", op, &FlagTypeMismatchError{Code: code, Requested: BooleanFlag, Stored: typeOfValue(f.Value)})
	}
	return v, nil
}

// GetStringFlag returns a string flag's value. It supports WithDefaultValue.
func (c *Client) GetStringFlag(ctx context.Context, sid, code string, opt ...Option) (string, error) {
	const op = "Client.GetStringFlag"
	f, err := c.GetFlag(ctx, sid, code, append(opt[:len(opt):len(opt)], WithFlagType(StringFlag))...)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	v, ok := f.Value.(string)
	if !ok {
		return "", fmt.Errorf("%s: %w", op, &FlagTypeMismatchError{Code: code, Requested: StringFlag, Stored: typeOfValue(f.Value)})
	}
	return v, nil
}

// GetIntegerFlag returns an integer flag's value. It supports
// WithDefaultValue.
func (c *Client) GetIntegerFlag(ctx context.Context, sid, code string, opt ...Option) (int64, error) {
	const op = "Client.GetIntegerFlag"
	f, err := c.GetFlag(ctx, sid, code, append(opt[:len(opt):len(opt)], WithFlagType(IntegerFlag))...)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	v, ok := f.Value.(int64)
	if !ok {
		return 0, fmt.Errorf("%s: %w", op, &FlagTypeMismatchError{Code: code, Requested: IntegerFlag, Stored: typeOfValue(f.Value)})
	}
	return v, nil
}
