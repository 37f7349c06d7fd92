// Copyright 2022 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

// Package archivetest provides utilities for testing archive requests and
// responses without a network connection.
package archivetest // import "mellium.im/archive/internal/archivetest"

import (
	"context"
	"encoding/xml"
	"io"
	"strings"

	"mellium.im/xmlstream"
	"mellium.im/xmpp"
)

// Tokens is a slice of XML tokens that can also act as an xml.TokenReader by
// popping tokens from itself.
// It is useful for streams that an xml.Decoder would refuse to produce.
type Tokens []xml.Token

// Token satisfies the xml.TokenReader interface.
func (r *Tokens) Token() (xml.Token, error) {
	if len(*r) == 0 {
		return nil, io.EOF
	}

	var t xml.Token
	t, *r = (*r)[0], (*r)[1:]
	return t, nil
}

// Sender records every stanza sent through it.
// If Err is set, Send records nothing and returns Err.
type Sender struct {
	Err  error
	Sent []string
}

// Send satisfies the archive.Sender interface.
func (s *Sender) Send(_ context.Context, r xml.TokenReader) error {
	if s.Err != nil {
		return s.Err
	}
	var buf strings.Builder
	e := xml.NewEncoder(&buf)
	if _, err := xmlstream.Copy(e, r); err != nil {
		return err
	}
	if err := e.Flush(); err != nil {
		return err
	}
	s.Sent = append(s.Sent, buf.String())
	return nil
}

// Serve passes the first element of in to h as if it had been read from a
// session and returns everything that h wrote in response.
func Serve(h xmpp.Handler, in string) (string, error) {
	d := xml.NewDecoder(strings.NewReader(in))
	tok, err := d.Token()
	if err != nil {
		return "", err
	}
	start, ok := tok.(xml.StartElement)
	if !ok {
		return "", io.ErrUnexpectedEOF
	}

	var buf strings.Builder
	e := xml.NewEncoder(&buf)
	err = h.HandleXMPP(struct {
		xml.TokenReader
		*xml.Encoder
	}{
		TokenReader: xmlstream.Inner(d),
		Encoder:     e,
	}, &start)
	if err != nil {
		return "", err
	}
	if err := e.Flush(); err != nil {
		return "", err
	}
	return buf.String(), nil
}
