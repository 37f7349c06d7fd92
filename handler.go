// Copyright 2022 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package archive

import (
	"encoding/xml"

	"mellium.im/xmlstream"
	"mellium.im/xmpp/mux"
	"mellium.im/xmpp/stanza"
)

// Payloads that may be echoed back in result or error IQs.
var payloads = [...]string{
	"pref",
	"list",
	"chat",
	"retrieve",
	"save",
	"remove",
	"itemremove",
	"sessionremove",
}

// Handle returns an option that registers a Handler for the results of archive
// requests and for preference changes pushed by the server.
func Handle(h Handler) mux.Option {
	return func(m *mux.ServeMux) {
		for _, local := range payloads {
			name := xml.Name{Space: NS, Local: local}
			mux.IQ(stanza.ResultIQ, name, h)(m)
			mux.IQ(stanza.ErrorIQ, name, h)(m)
		}
		mux.IQ(stanza.SetIQ, xml.Name{Space: NS, Local: "pref"}, h)(m)
	}
}

// HandleIQ satisfies mux.IQHandler.
// Pushed preference changes are acknowledged, or rejected with a bad-request
// error if any of the preferences were invalid.
func (h Handler) HandleIQ(iq stanza.IQ, t xmlstream.TokenReadEncoder, start *xml.StartElement) error {
	if start == nil {
		return nil
	}
	d := xml.NewTokenDecoder(xmlstream.MultiReader(xmlstream.Token(*start), t))
	if _, err := d.Token(); err != nil {
		return err
	}
	ok := h.take(iq, start, d)
	if iq.Type != stanza.SetIQ {
		return nil
	}

	reply := stanza.IQ{
		ID:   iq.ID,
		To:   iq.From,
		From: iq.To,
		Type: stanza.ResultIQ,
	}
	if ok {
		_, err := xmlstream.Copy(t, reply.Wrap(nil))
		return err
	}
	reply.Type = stanza.ErrorIQ
	e := stanza.Error{
		Type:      stanza.Modify,
		Condition: stanza.BadRequest,
	}
	_, err := xmlstream.Copy(t, reply.Wrap(e.TokenReader()))
	return err
}
