// Copyright 2022 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package archive

import (
	"encoding/xml"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// ChatItem is a single archived message.
type ChatItem struct {
	Time time.Time
	Body string

	// Incoming is true for messages received by the user (from elements) and
	// false for messages sent by the user (to elements).
	Incoming bool
}

// UnmarshalXML satisfies the xml.Unmarshaler interface.
// The time is read from the utc attribute if present and from the secs
// attribute as seconds since the Unix epoch otherwise.
func (c *ChatItem) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	s := struct {
		Secs string  `xml:"secs,attr"`
		UTC  string  `xml:"utc,attr"`
		Body *string `xml:"body"`
		Text string  `xml:",chardata"`
	}{}
	err := d.DecodeElement(&s, &start)
	if err != nil {
		return err
	}

	var t time.Time
	switch {
	case s.UTC != "":
		t, err = time.Parse(time.RFC3339, s.UTC)
		if err != nil {
			return fmt.Errorf("%w: bad message time: %v", ErrMalformedEntry, err)
		}
	case s.Secs != "":
		secs, err := strconv.ParseInt(s.Secs, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: bad message time: %v", ErrMalformedEntry, err)
		}
		t = time.Unix(secs, 0).UTC()
	}

	c.Time = t
	c.Incoming = start.Name.Local != "to"
	c.Body = s.Text
	if s.Body != nil {
		c.Body = *s.Body
	}
	return nil
}

// decodeChat decodes the messages in a chat element whose start element has
// already been consumed.
// Messages with an unparsable time are skipped.
func decodeChat(d *xml.Decoder) ([]ChatItem, RSMInfo, error) {
	var (
		items []ChatItem
		info  RSMInfo
	)
	err := eachChild(d, func(start xml.StartElement) (err error) {
		switch {
		case (start.Name.Local == "to" || start.Name.Local == "from") && start.Name.Space == NS:
			var item ChatItem
			err = d.DecodeElement(&item, &start)
			switch {
			case err == nil:
				items = append(items, item)
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
	return items, info, err
}
