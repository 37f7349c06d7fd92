// Copyright 2022 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

// Package attr contains helpers for reading the attributes of archive payloads
// and for generating stanza IDs.
package attr // import "mellium.im/archive/internal/attr"

import (
	"encoding/xml"
)

// Lookup returns the first unprefixed attribute with the provided local name
// and whether it was present at all.
// Attributes in a namespace (eg. xml:lang) are never matched.
func Lookup(attr []xml.Attr, local string) (xml.Attr, bool) {
	for _, a := range attr {
		if a.Name.Space == "" && a.Name.Local == local {
			return a, true
		}
	}
	return xml.Attr{}, false
}

// Get is like Lookup but only returns the value, or an empty string if the
// attribute does not exist.
func Get(attr []xml.Attr, local string) string {
	a, _ := Lookup(attr, local)
	return a.Value
}

// Set returns attr with an unprefixed attribute added if value is not empty.
func Set(attr []xml.Attr, local, value string) []xml.Attr {
	if value == "" {
		return attr
	}
	return append(attr, xml.Attr{Name: xml.Name{Local: local}, Value: value})
}
