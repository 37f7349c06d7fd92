// Copyright 2022 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package archive

import (
	"encoding/xml"
	"errors"
	"fmt"
	"time"

	"mellium.im/archive/internal/attr"
	"mellium.im/xmpp/jid"
)

// ErrMalformedEntry is returned (possibly wrapped) when a collection or message
// in a result has an attribute that cannot be parsed.
// Such entries are left out of the results passed to a Handler.
var ErrMalformedEntry = errors.New("archive: malformed archive entry")

// ChatInfo identifies a single collection in the archive.
type ChatInfo struct {
	With  jid.JID
	Start time.Time
}

// UnmarshalXML satisfies the xml.Unmarshaler interface.
func (c *ChatInfo) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	if err := d.Skip(); err != nil {
		return err
	}
	with, err := jid.Parse(attr.Get(start.Attr, "with"))
	if err != nil {
		return fmt.Errorf("%w: bad collection JID: %v", ErrMalformedEntry, err)
	}
	t, err := time.Parse(time.RFC3339, attr.Get(start.Attr, "start"))
	if err != nil {
		return fmt.Errorf("%w: bad collection start: %v", ErrMalformedEntry, err)
	}
	c.With = with
	c.Start = t
	return nil
}

// decodeList decodes the children of a list element whose start element has
// already been consumed.
// Malformed collections are skipped.
func decodeList(d *xml.Decoder) ([]ChatInfo, RSMInfo, error) {
	var (
		chats []ChatInfo
		info  RSMInfo
	)
	err := eachChild(d, func(start xml.StartElement) (err error) {
		switch {
		case start.Name.Local == "chat" && start.Name.Space == NS:
			var c ChatInfo
			err = d.DecodeElement(&c, &start)
			switch {
			case err == nil:
				chats = append(chats, c)
			case errors.Is(err, ErrMalformedEntry):
				err = nil
			}
		case isSet(start.Name):
			info, err = decodeSet(d, &start)
		default:
			err = d.Skip()
		}
		return err
	})
	return chats, info, err
}

// eachChild calls f for every child element of the current element until the
// end element is reached.
// f must consume the child it is called with.
func eachChild(d *xml.Decoder, f func(xml.StartElement) error) error {
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch tok := tok.(type) {
		case xml.StartElement:
			if err := f(tok); err != nil {
				return err
			}
		case xml.EndElement:
			return nil
		}
	}
}
