// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

// kinde provides a collection of related packages which sign users and
// machines in to the Kinde identity provider:
//
//   - auth: configuration, grants and the session backed Client
//   - auth/callback: net/http handlers for the redirect flows
//   - session: the session store contract, with memory and redis backends
//   - config: YAML and environment configuration for the command and the
//     example web app
//
// See README.md
package kinde
