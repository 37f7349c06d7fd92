// Copyright 2022 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package archive

import (
	"context"
	"encoding/xml"
	"time"

	"mellium.im/archive/internal/attr"
	"mellium.im/xmlstream"
	"mellium.im/xmpp/jid"
	"mellium.im/xmpp/stanza"
)

// Sender transmits stanzas.
// It is satisfied by *xmpp.Session.
type Sender interface {
	Send(ctx context.Context, r xml.TokenReader) error
}

// Query selects collections from the archive.
// When retrieving a single collection With and Start identify it.
// Zero values are omitted from the request.
type Query struct {
	With  jid.JID
	Start time.Time
	End   time.Time

	// After is the last item of the previous page, as reported in RSMInfo.
	After string
}

// Next returns a query for the page following the one described by info.
// If the page was the last one, ok is false.
func (q Query) Next(info RSMInfo) (next Query, ok bool) {
	if info.Last == "" || info.Last == q.After {
		return q, false
	}
	q.After = info.Last
	return q, true
}

func (q Query) wrap(local string) xml.TokenReader {
	start := xml.StartElement{Name: xml.Name{Space: NS, Local: local}}
	if !q.With.Equal(jid.JID{}) {
		start.Attr = attr.Set(start.Attr, "with", q.With.String())
	}
	if !q.Start.IsZero() {
		start.Attr = attr.Set(start.Attr, "start", q.Start.UTC().Format(time.RFC3339Nano))
	}
	if !q.End.IsZero() {
		start.Attr = attr.Set(start.Attr, "end", q.End.UTC().Format(time.RFC3339Nano))
	}
	return xmlstream.Wrap(Cursor(q.After), start)
}

func withID(iq stanza.IQ, typ stanza.IQType) stanza.IQ {
	iq.Type = typ
	if iq.ID == "" {
		iq.ID = attr.RandomID()
	}
	return iq
}

// PrefsRequest returns an IQ asking for the archiving preferences.
// The type of the IQ is always set to get.
func PrefsRequest(iq stanza.IQ) xml.TokenReader {
	iq.Type = stanza.GetIQ
	return iq.Wrap(xmlstream.Wrap(nil, xml.StartElement{
		Name: xml.Name{Space: NS, Local: "pref"},
	}))
}

// PrefsUpdate returns an IQ that changes a single archiving preference.
// The type of the IQ is always set to set.
// The preference is not validated; see UpdatePrefIQ.
func PrefsUpdate(iq stanza.IQ, p Pref) xml.TokenReader {
	iq.Type = stanza.SetIQ
	return iq.Wrap(xmlstream.Wrap(p.TokenReader(), xml.StartElement{
		Name: xml.Name{Space: NS, Local: "pref"},
	}))
}

// CollectionsRequest returns an IQ that lists the collections matching q.
// The type of the IQ is always set to get.
func CollectionsRequest(iq stanza.IQ, q Query) xml.TokenReader {
	iq.Type = stanza.GetIQ
	return iq.Wrap(q.wrap("list"))
}

// ChatRequest returns an IQ that retrieves the messages of the collection
// identified by q.
// The type of the IQ is always set to get.
func ChatRequest(iq stanza.IQ, q Query) xml.TokenReader {
	iq.Type = stanza.GetIQ
	return iq.Wrap(q.wrap("retrieve"))
}

// RequestPrefs asks the server for the archiving preferences.
// The preferences are delivered to a Handler.
func RequestPrefs(ctx context.Context, s Sender) (string, error) {
	return RequestPrefsIQ(ctx, stanza.IQ{}, s)
}

// RequestPrefsIQ is like RequestPrefs except that it lets you customize the
// IQ.
// If the IQ has no ID a random one is generated.
// Changing the type of the provided IQ has no effect.
func RequestPrefsIQ(ctx context.Context, iq stanza.IQ, s Sender) (string, error) {
	iq = withID(iq, stanza.GetIQ)
	return iq.ID, s.Send(ctx, PrefsRequest(iq))
}

// RequestCollections asks the server for a page of collections.
// The collections are delivered to a Handler.
func RequestCollections(ctx context.Context, q Query, s Sender) (string, error) {
	return RequestCollectionsIQ(ctx, stanza.IQ{}, q, s)
}

// RequestCollectionsIQ is like RequestCollections except that it lets you
// customize the IQ.
// If the IQ has no ID a random one is generated.
// Changing the type of the provided IQ has no effect.
func RequestCollectionsIQ(ctx context.Context, iq stanza.IQ, q Query, s Sender) (string, error) {
	iq = withID(iq, stanza.GetIQ)
	return iq.ID, s.Send(ctx, CollectionsRequest(iq, q))
}

// RequestCollection asks the server for a page of messages from one
// collection.
// The messages are delivered to a Handler.
func RequestCollection(ctx context.Context, q Query, s Sender) (string, error) {
	return RequestCollectionIQ(ctx, stanza.IQ{}, q, s)
}

// RequestCollectionIQ is like RequestCollection except that it lets you
// customize the IQ.
// If the IQ has no ID a random one is generated.
// Changing the type of the provided IQ has no effect.
func RequestCollectionIQ(ctx context.Context, iq stanza.IQ, q Query, s Sender) (string, error) {
	iq = withID(iq, stanza.GetIQ)
	return iq.ID, s.Send(ctx, ChatRequest(iq, q))
}

// UpdateDefault changes the default archiving preference.
func UpdateDefault(ctx context.Context, s Sender, p Default) (string, error) {
	return UpdatePrefIQ(ctx, stanza.IQ{}, s, p)
}

// UpdateAuto enables or disables automatic archiving.
func UpdateAuto(ctx context.Context, s Sender, p Auto) (string, error) {
	return UpdatePrefIQ(ctx, stanza.IQ{}, s, p)
}

// UpdateStorage changes the preference for an archiving method.
func UpdateStorage(ctx context.Context, s Sender, p Method) (string, error) {
	return UpdatePrefIQ(ctx, stanza.IQ{}, s, p)
}

// UpdatePrefIQ sends a preference update using a custom IQ.
// If the IQ has no ID a random one is generated.
// Changing the type of the provided IQ has no effect.
// A preference with out of range values is not sent and results in an error
// wrapping ErrMalformedPref.
func UpdatePrefIQ(ctx context.Context, iq stanza.IQ, s Sender, p Pref) (string, error) {
	if err := p.validate(); err != nil {
		return "", err
	}
	iq = withID(iq, stanza.SetIQ)
	return iq.ID, s.Send(ctx, PrefsUpdate(iq, p))
}
