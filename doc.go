// Copyright 2022 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

// Package archive implements the client side of XEP-0136: Message Archiving.
//
// Requests are built as IQ stanzas and sent over anything that can transmit a
// token stream (normally an *xmpp.Session).
// Each request function returns the ID of the IQ it sent so that the results,
// which are delivered asynchronously, can be matched to the request:
//
//	id, err := archive.RequestCollections(ctx, archive.Query{
//		With: jid.MustParse("juliet@example.com"),
//	}, session)
//
// Responses are delivered to a Handler, either by registering it on a
// multiplexer with Handle or by passing each inbound IQ to Handler.Take.
// Every callback receives the ID of the IQ that triggered it.
//
// The package does not keep track of outstanding requests, and it does not
// implement timeouts or retries.
// Error responses from the server are consumed but not decoded.
package archive // import "mellium.im/archive"

import (
	"mellium.im/xmpp/paging"
)

// The namespaces used by this package, provided as a convenience.
const (
	NS    = `urn:xmpp:archive`
	NSRSM = paging.NS
)
