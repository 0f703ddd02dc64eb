// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

package auth

import (
	"time"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/text/language"
)

// clientOptions is the set of available options for NewClient
type clientOptions struct {
	withLogger    hclog.Logger
	withTransport Transport
	withMetrics   *Metrics
	withNow       func() time.Time
}

// clientDefaults is a handy way to get the defaults at runtime and during
// unit tests.
func clientDefaults() clientOptions {
	return clientOptions{
		withLogger: hclog.NewNullLogger(),
		withNow:    time.Now,
	}
}

// getClientOpts gets the defaults and applies the opt overrides passed in.
func getClientOpts(opt ...Option) clientOptions {
	opts := clientDefaults()
	ApplyOpts(&opts, opt...)
	return opts
}

// WithLogger provides an optional logger for the Client.
func WithLogger(l hclog.Logger) Option {
	return func(o interface{}) {
		if o, ok := o.(*clientOptions); ok && l != nil {
			o.withLogger = l
		}
	}
}

// WithTransport provides an optional Transport for the Client's token
// requests.
func WithTransport(t Transport) Option {
	return func(o interface{}) {
		if o, ok := o.(*clientOptions); ok {
			o.withTransport = t
		}
	}
}

// WithMetrics provides optional metrics for the Client's token requests.
func WithMetrics(m *Metrics) Option {
	return func(o interface{}) {
		if o, ok := o.(*clientOptions); ok {
			o.withMetrics = m
		}
	}
}

// WithNow provides an optional func for determining what the current time it
// is.
func WithNow(now func() time.Time) Option {
	return func(o interface{}) {
		if o, ok := o.(*clientOptions); ok && now != nil {
			o.withNow = now
		}
	}
}

// requestOptions is the set of available options for Login, Register and
// CreateOrg.
type requestOptions struct {
	withState        string
	withOrgCode      string
	withOrgName      string
	withLang         language.Tag
	withLoginHint    string
	withConnectionId string
	withAudience     string
	withScope        string
}

func requestDefaults() requestOptions {
	return requestOptions{
		withLang: language.Und,
	}
}

// getRequestOpts gets the defaults and applies the opt overrides passed in.
func getRequestOpts(opt ...Option) requestOptions {
	opts := requestDefaults()
	ApplyOpts(&opts, opt...)
	return opts
}

// WithState provides the state for an authorization request instead of
// generating one.
func WithState(state string) Option {
	return func(o interface{}) {
		if o, ok := o.(*requestOptions); ok {
			o.withState = state
		}
	}
}

// WithOrgCode selects the organization to sign in to.
func WithOrgCode(code string) Option {
	return func(o interface{}) {
		if o, ok := o.(*requestOptions); ok {
			o.withOrgCode = code
		}
	}
}

// WithOrgName names the organization created by CreateOrg.
func WithOrgName(name string) Option {
	return func(o interface{}) {
		if o, ok := o.(*requestOptions); ok {
			o.withOrgName = name
		}
	}
}

// WithLang selects the language of the provider's pages.
func WithLang(tag language.Tag) Option {
	return func(o interface{}) {
		if o, ok := o.(*requestOptions); ok {
			o.withLang = tag
		}
	}
}

// WithLoginHint prefills the user's identifier on the provider's pages.
func WithLoginHint(hint string) Option {
	return func(o interface{}) {
		if o, ok := o.(*requestOptions); ok {
			o.withLoginHint = hint
		}
	}
}

// WithConnectionId skips the provider's connection choice and uses the
// identified one.
func WithConnectionId(id string) Option {
	return func(o interface{}) {
		if o, ok := o.(*requestOptions); ok {
			o.withConnectionId = id
		}
	}
}
