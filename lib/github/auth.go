// Copyright 2026 The Grouplist Authors
// SPDX-License-Identifier: Apache-2.0

package github

import "github.com/riskful/grouplist/lib/secret"

// bearerAuth renders the Authorization header from a token kept in
// locked memory. The header string exists only for one request.
type bearerAuth struct {
	token *secret.Buffer
}

func (auth bearerAuth) header() string {
	return "Bearer " + auth.token.String()
}
