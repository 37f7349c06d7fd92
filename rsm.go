// Copyright 2022 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package archive

import (
	"encoding/xml"
	"io"

	"mellium.im/xmpp/paging"
)

// PageSize is the maximum number of items requested in a single page.
const PageSize = 100

// RSMInfo is the paging information returned along with collections and
// messages.
// If the server did not include any paging information, RSMInfo is the zero
// value.
type RSMInfo struct {
	First string
	Last  string
	Count uint64
}

func rsmFromSet(s paging.Set) RSMInfo {
	info := RSMInfo{
		First: s.First.ID,
		Last:  s.Last,
	}
	if s.Count != nil {
		info.Count = *s.Count
	}
	return info
}

// Cursor returns a result set request for a page of PageSize items after the
// provided item.
// If after is empty the first page is requested.
func Cursor(after string) xml.TokenReader {
	return (&paging.RequestNext{
		Max:   PageSize,
		After: after,
	}).TokenReader()
}

func isSet(name xml.Name) bool {
	return name.Local == "set" && name.Space == NSRSM
}

func decodeSet(d *xml.Decoder, start *xml.StartElement) (RSMInfo, error) {
	var set paging.Set
	err := d.DecodeElement(&set, start)
	if err != nil {
		return RSMInfo{}, err
	}
	return rsmFromSet(set), nil
}

// DecodeCursor reads the first element from r and returns the paging
// information in it.
// The element may either be a result set or contain one as a direct child.
// A missing result set is not an error, it results in an empty RSMInfo.
func DecodeCursor(r xml.TokenReader) (RSMInfo, error) {
	d := xml.NewTokenDecoder(r)
	var start xml.StartElement
	for {
		tok, err := d.Token()
		switch {
		case err == io.EOF:
			return RSMInfo{}, nil
		case err != nil:
			return RSMInfo{}, err
		}
		if s, ok := tok.(xml.StartElement); ok {
			start = s
			break
		}
	}
	if isSet(start.Name) {
		return decodeSet(d, &start)
	}

	var info RSMInfo
	var found bool
	for {
		tok, err := d.Token()
		if err != nil {
			if err == io.EOF {
				return info, nil
			}
			return RSMInfo{}, err
		}
		switch tok := tok.(type) {
		case xml.StartElement:
			if !found && isSet(tok.Name) {
				info, err = decodeSet(d, &tok)
				if err != nil {
					return RSMInfo{}, err
				}
				found = true
				continue
			}
			if err := d.Skip(); err != nil {
				return RSMInfo{}, err
			}
		case xml.EndElement:
			return info, nil
		}
	}
}
