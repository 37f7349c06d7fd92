// Copyright 2022 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package archive

import (
	"encoding/xml"
	"errors"

	"mellium.im/archive/internal/attr"
	"mellium.im/xmpp/jid"
	"mellium.im/xmpp/stanza"
)

// Handler receives the results of archive requests.
// Each callback is passed the ID of the IQ that contained the result so that
// it can be matched with the request.
// Nil callbacks are ignored.
type Handler struct {
	// AutoArchiving is called when an automatic archiving preference is
	// received.
	AutoArchiving func(enabled bool, scope AutoScope, id string)

	// DefaultChanged is called when the default preference is received.
	DefaultChanged func(p Default, id string)

	// MethodChanged is called once for each archiving method preference that is
	// received.
	MethodChanged func(p Method, id string)

	// Collections is called with a page of collections.
	Collections func(chats []ChatInfo, info RSMInfo, id string)

	// Chat is called with a page of messages from a single collection.
	Chat func(items []ChatItem, info RSMInfo, id string)
}

// route is the action taken for an IQ based on its type and payload.
type route uint8

const (
	routeUnknown route = iota
	routeAck
	routeSkip
	routeSet
	routeResult
	routeError
)

// Result payloads that carry nothing we decode.
var ackPayloads = map[string]struct{}{
	"save":          {},
	"remove":        {},
	"itemremove":    {},
	"sessionremove": {},
}

func classify(typ stanza.IQType, local string) route {
	switch typ {
	case stanza.GetIQ:
		return routeSkip
	case stanza.SetIQ:
		if local == "pref" {
			return routeSet
		}
	case stanza.ResultIQ:
		if _, ok := ackPayloads[local]; ok {
			return routeAck
		}
		return routeResult
	case stanza.ErrorIQ:
		return routeError
	}
	return routeUnknown
}

// Take reads a single IQ stanza from r and reports whether it was handled.
//
// If the first child of the IQ is not in the archive namespace, Take returns
// false without reading any further and without calling any callbacks.
// Get type IQs are never handled.
// Error type IQs are always reported as handled but the error is not decoded
// and no callback is called.
// Malformed payloads result in false, although any preferences that were
// valid will already have been passed to their callbacks.
func (h Handler) Take(r xml.TokenReader) bool {
	d := xml.NewTokenDecoder(r)
	start, err := nextStart(d)
	if err != nil || start == nil || start.Name.Local != "iq" {
		return false
	}
	iq, err := iqFromStart(*start)
	if err != nil {
		return false
	}
	payload, err := nextStart(d)
	if err != nil {
		return false
	}
	return h.take(iq, payload, d)
}

// take dispatches an IQ payload.
// The payload start element must already have been consumed from d.
func (h Handler) take(iq stanza.IQ, start *xml.StartElement, d *xml.Decoder) bool {
	if start == nil || start.Name.Space != NS {
		return false
	}
	switch classify(iq.Type, start.Name.Local) {
	case routeAck, routeError:
		return true
	case routeSet:
		return h.prefs(iq.ID, d)
	case routeResult:
		return h.result(iq.ID, start.Name.Local, d)
	}
	return false
}

func (h Handler) result(id, local string, d *xml.Decoder) bool {
	switch local {
	case "pref":
		return h.prefs(id, d)
	case "list":
		chats, info, err := decodeList(d)
		if err != nil {
			return false
		}
		if h.Collections != nil {
			h.Collections(chats, info, id)
		}
		return true
	case "chat":
		items, info, err := decodeChat(d)
		if err != nil {
			return false
		}
		if h.Chat != nil {
			h.Chat(items, info, id)
		}
		return true
	}
	return false
}

// prefs decodes every preference in a pref element.
// Each preference is handled on its own and the result is true only if all of
// them were valid.
func (h Handler) prefs(id string, d *xml.Decoder) bool {
	ok := true
	err := eachChild(d, func(start xml.StartElement) error {
		valid, err := h.pref(id, d, start)
		if errors.Is(err, ErrMalformedPref) {
			ok = false
			return nil
		}
		if !valid {
			ok = false
		}
		return err
	})
	return ok && err == nil
}

func (h Handler) pref(id string, d *xml.Decoder, start xml.StartElement) (bool, error) {
	if start.Name.Space != NS {
		return false, d.Skip()
	}
	switch start.Name.Local {
	case "auto":
		var p Auto
		if err := d.DecodeElement(&p, &start); err != nil {
			return false, err
		}
		if h.AutoArchiving != nil {
			h.AutoArchiving(p.Save, p.Scope, id)
		}
		return true, nil
	case "default":
		var p Default
		if err := d.DecodeElement(&p, &start); err != nil {
			return false, err
		}
		if h.DefaultChanged != nil {
			h.DefaultChanged(p, id)
		}
		return true, nil
	case "method":
		var p Method
		if err := d.DecodeElement(&p, &start); err != nil {
			return false, err
		}
		if h.MethodChanged != nil {
			h.MethodChanged(p, id)
		}
		return true, nil
	case "item", "session":
		return true, d.Skip()
	}
	return false, d.Skip()
}

// nextStart returns the next start element from d, or nil if an end element
// is reached first.
func nextStart(d *xml.Decoder) (*xml.StartElement, error) {
	for {
		tok, err := d.Token()
		if err != nil {
			return nil, err
		}
		switch tok := tok.(type) {
		case xml.StartElement:
			return &tok, nil
		case xml.EndElement:
			return nil, nil
		}
	}
}

func iqFromStart(start xml.StartElement) (stanza.IQ, error) {
	iq := stanza.IQ{
		ID:   attr.Get(start.Attr, "id"),
		Type: stanza.IQType(attr.Get(start.Attr, "type")),
	}
	var err error
	if to, ok := attr.Lookup(start.Attr, "to"); ok {
		iq.To, err = jid.Parse(to.Value)
		if err != nil {
			return iq, err
		}
	}
	if from, ok := attr.Lookup(start.Attr, "from"); ok {
		iq.From, err = jid.Parse(from.Value)
		if err != nil {
			return iq, err
		}
	}
	return iq, nil
}
