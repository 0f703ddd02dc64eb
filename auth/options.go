// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

package auth

// Option defines a common functional options type
type Option func(interface{})

// ApplyOpts takes a pointer to the options struct as a set of default options
// and applies the slice of opts as overrides.
func ApplyOpts(opts interface{}, opt ...Option) {
	for _, o := range opt {
		if o == nil {
			continue
		}
		o(opts)
	}
}

// WithAudience provides an optional audience for: Config, Login, Register and
// CreateOrg.
func WithAudience(aud string) Option {
	return func(o interface{}) {
		switch v := o.(type) {
		case *configOptions:
			v.withAudience = aud
		case *requestOptions:
			v.withAudience = aud
		}
	}
}

// WithScope provides an optional space delimited scope for: Config and the
// client credentials Login.
func WithScope(scope string) Option {
	return func(o interface{}) {
		switch v := o.(type) {
		case *configOptions:
			v.withScope = scope
		case *requestOptions:
			v.withScope = scope
		}
	}
}
