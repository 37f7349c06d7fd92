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

	"mellium.im/archive/internal/attr"
	"mellium.im/xmlstream"
)

// ErrMalformedPref is returned (possibly wrapped) when a preference payload is
// missing a mandatory attribute or has an attribute with an invalid value.
var ErrMalformedPref = errors.New("archive: malformed preference")

// Special values of Default.Expire.
const (
	// NeverExpire omits the expire attribute so that archived messages are kept
	// forever.
	NeverExpire time.Duration = 0

	// ExpireNow asks the server to remove archived messages immediately.
	// It is sent as an expire of zero seconds.
	ExpireNow time.Duration = -1
)

// Pref is a single archiving preference that can be sent to the server in an
// update.
// It is implemented by Auto, Default, and Method.
type Pref interface {
	xmlstream.Marshaler
	xmlstream.WriterTo
	validate() error
}

var (
	_ Pref = Auto{}
	_ Pref = Default{}
	_ Pref = Method{}
)

// Auto is the automatic archiving preference.
type Auto struct {
	Save  bool
	Scope AutoScope
}

func (a Auto) validate() error {
	_, err := a.Scope.MarshalXMLAttr(xml.Name{Local: "scope"})
	return err
}

// TokenReader satisfies the xmlstream.Marshaler interface.
// It does not validate the preference; use WriteXML or MarshalXML to reject
// out of range values.
func (a Auto) TokenReader() xml.TokenReader {
	return xmlstream.Wrap(nil, xml.StartElement{
		Name: xml.Name{Local: "auto"},
		Attr: []xml.Attr{
			{Name: xml.Name{Local: "save"}, Value: strconv.FormatBool(a.Save)},
			{Name: xml.Name{Local: "scope"}, Value: a.Scope.String()},
		},
	})
}

// WriteXML satisfies the xmlstream.WriterTo interface.
// It is like MarshalXML except it writes tokens to w.
func (a Auto) WriteXML(w xmlstream.TokenWriter) (int, error) {
	if err := a.validate(); err != nil {
		return 0, err
	}
	return xmlstream.Copy(w, a.TokenReader())
}

// MarshalXML satisfies the xml.Marshaler interface.
func (a Auto) MarshalXML(e *xml.Encoder, _ xml.StartElement) error {
	_, err := a.WriteXML(e)
	return err
}

// UnmarshalXML satisfies the xml.Unmarshaler interface.
// The auto element must be empty and must have a save attribute.
// A missing or unknown scope is treated as ScopeGlobal.
func (a *Auto) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	children, err := skipChildren(d)
	if err != nil {
		return err
	}
	if children > 0 {
		return fmt.Errorf("%w: auto must not have children", ErrMalformedPref)
	}
	saveAttr, ok := attr.Lookup(start.Attr, "save")
	if !ok {
		return fmt.Errorf("%w: auto is missing save", ErrMalformedPref)
	}
	save, err := parseBool(saveAttr.Value)
	if err != nil {
		return err
	}
	scope := ScopeGlobal
	if scopeAttr, ok := attr.Lookup(start.Attr, "scope"); ok {
		if err := scope.UnmarshalXMLAttr(scopeAttr); err != nil {
			scope = ScopeGlobal
		}
	}
	a.Save = save
	a.Scope = scope
	return nil
}

// Default is the default archiving preference that applies to contacts with no
// more specific item preference.
type Default struct {
	Save DefaultSave
	OTR  DefaultOtr

	// Expire is the time after which archived messages may be removed.
	// It is sent in whole seconds, rounded up.
	// The zero value (NeverExpire) omits it and any negative value is sent as
	// ExpireNow.
	Expire time.Duration
}

func (p Default) validate() error {
	if _, err := p.Save.MarshalXMLAttr(xml.Name{Local: "save"}); err != nil {
		return err
	}
	_, err := p.OTR.MarshalXMLAttr(xml.Name{Local: "otr"})
	return err
}

// TokenReader satisfies the xmlstream.Marshaler interface.
// It does not validate the preference; use WriteXML or MarshalXML to reject
// out of range values.
func (p Default) TokenReader() xml.TokenReader {
	start := xml.StartElement{
		Name: xml.Name{Local: "default"},
		Attr: []xml.Attr{
			{Name: xml.Name{Local: "save"}, Value: p.Save.String()},
			{Name: xml.Name{Local: "otr"}, Value: p.OTR.String()},
		},
	}
	switch {
	case p.Expire < 0:
		start.Attr = attr.Set(start.Attr, "expire", "0")
	case p.Expire > 0:
		secs := (p.Expire + time.Second - 1) / time.Second
		start.Attr = attr.Set(start.Attr, "expire", strconv.FormatInt(int64(secs), 10))
	}
	return xmlstream.Wrap(nil, start)
}

// WriteXML satisfies the xmlstream.WriterTo interface.
// It is like MarshalXML except it writes tokens to w.
func (p Default) WriteXML(w xmlstream.TokenWriter) (int, error) {
	if err := p.validate(); err != nil {
		return 0, err
	}
	return xmlstream.Copy(w, p.TokenReader())
}

// MarshalXML satisfies the xml.Marshaler interface.
func (p Default) MarshalXML(e *xml.Encoder, _ xml.StartElement) error {
	_, err := p.WriteXML(e)
	return err
}

// UnmarshalXML satisfies the xml.Unmarshaler interface.
// Both the save and otr attributes are required.
func (p *Default) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	if err := d.Skip(); err != nil {
		return err
	}
	var (
		save DefaultSave
		otr  DefaultOtr
	)
	if err := requireAttr(start, "save", &save); err != nil {
		return err
	}
	if err := requireAttr(start, "otr", &otr); err != nil {
		return err
	}
	expire := NeverExpire
	if expireAttr, ok := attr.Lookup(start.Attr, "expire"); ok {
		secs, err := strconv.ParseUint(expireAttr.Value, 10, 32)
		if err != nil {
			return fmt.Errorf("%w: invalid expire %q", ErrMalformedPref, expireAttr.Value)
		}
		expire = time.Duration(secs) * time.Second
		if secs == 0 {
			expire = ExpireNow
		}
	}
	p.Save = save
	p.OTR = otr
	p.Expire = expire
	return nil
}

// Method is the preference for one archiving method.
type Method struct {
	Type MethodType
	Use  MethodUse
}

func (m Method) validate() error {
	if _, err := m.Type.MarshalXMLAttr(xml.Name{Local: "type"}); err != nil {
		return err
	}
	_, err := m.Use.MarshalXMLAttr(xml.Name{Local: "use"})
	return err
}

// TokenReader satisfies the xmlstream.Marshaler interface.
// It does not validate the preference; use WriteXML or MarshalXML to reject
// out of range values.
func (m Method) TokenReader() xml.TokenReader {
	return xmlstream.Wrap(nil, xml.StartElement{
		Name: xml.Name{Local: "method"},
		Attr: []xml.Attr{
			{Name: xml.Name{Local: "type"}, Value: m.Type.String()},
			{Name: xml.Name{Local: "use"}, Value: m.Use.String()},
		},
	})
}

// WriteXML satisfies the xmlstream.WriterTo interface.
// It is like MarshalXML except it writes tokens to w.
func (m Method) WriteXML(w xmlstream.TokenWriter) (int, error) {
	if err := m.validate(); err != nil {
		return 0, err
	}
	return xmlstream.Copy(w, m.TokenReader())
}

// MarshalXML satisfies the xml.Marshaler interface.
func (m Method) MarshalXML(e *xml.Encoder, _ xml.StartElement) error {
	_, err := m.WriteXML(e)
	return err
}

// UnmarshalXML satisfies the xml.Unmarshaler interface.
// Both the type and use attributes are required.
func (m *Method) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	if err := d.Skip(); err != nil {
		return err
	}
	var (
		typ MethodType
		use MethodUse
	)
	if err := requireAttr(start, "type", &typ); err != nil {
		return err
	}
	if err := requireAttr(start, "use", &use); err != nil {
		return err
	}
	m.Type = typ
	m.Use = use
	return nil
}

func requireAttr(start xml.StartElement, local string, v xml.UnmarshalerAttr) error {
	a, ok := attr.Lookup(start.Attr, local)
	if !ok {
		return fmt.Errorf("%w: %s is missing %s", ErrMalformedPref, start.Name.Local, local)
	}
	return v.UnmarshalXMLAttr(a)
}

// parseBool parses an xs:boolean.
func parseBool(s string) (bool, error) {
	switch s {
	case "true", "1":
		return true, nil
	case "false", "0":
		return false, nil
	}
	return false, fmt.Errorf("%w: invalid boolean %q", ErrMalformedPref, s)
}

// skipChildren consumes the remainder of the current element and reports how
// many child elements it had.
func skipChildren(d *xml.Decoder) (int, error) {
	var n int
	for {
		tok, err := d.Token()
		if err != nil {
			return n, err
		}
		switch tok.(type) {
		case xml.StartElement:
			n++
			if err := d.Skip(); err != nil {
				return n, err
			}
		case xml.EndElement:
			return n, nil
		}
	}
}
