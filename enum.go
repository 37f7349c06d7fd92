// Copyright 2022 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package archive

import (
	"encoding/xml"
	"fmt"
)

// AutoScope is the scope of an automatic archiving preference.
type AutoScope uint8

// A list of possible automatic archiving scopes.
const (
	// ScopeGlobal applies the setting to all of the user's resources and is
	// remembered by the server.
	ScopeGlobal AutoScope = iota

	// ScopeStream applies the setting to the current stream only.
	ScopeStream
)

// DefaultSave is the default save mode for messages.
type DefaultSave uint8

// A list of possible save modes.
const (
	SaveFalse DefaultSave = iota
	SaveBody
	SaveMessage
	SaveStream
)

// DefaultOtr is the default off-the-record policy.
type DefaultOtr uint8

// A list of possible off-the-record policies.
const (
	OtrConcede DefaultOtr = iota
	OtrPrefer
	OtrForbid
	OtrApprove
	OtrOppose
	OtrRequire
)

// MethodType is an archiving method.
type MethodType uint8

// A list of possible archiving methods.
const (
	// MethodAuto is automatic archiving on the server.
	MethodAuto MethodType = iota

	// MethodLocal is archiving in local storage on the client.
	MethodLocal

	// MethodManual is manual archiving to the server by the client.
	MethodManual
)

// MethodUse is how strongly an archiving method should be used.
type MethodUse uint8

// A list of possible method uses.
const (
	UseConcede MethodUse = iota
	UsePrefer
	UseForbid
)

// The wire literals of each enumeration, indexed by value.
var (
	autoScopes   = [...]string{ScopeGlobal: "global", ScopeStream: "stream"}
	defaultSaves = [...]string{SaveFalse: "false", SaveBody: "body", SaveMessage: "message", SaveStream: "stream"}
	defaultOtrs  = [...]string{
		OtrConcede: "concede",
		OtrPrefer:  "prefer",
		OtrForbid:  "forbid",
		OtrApprove: "approve",
		OtrOppose:  "oppose",
		OtrRequire: "require",
	}
	methodTypes = [...]string{MethodAuto: "auto", MethodLocal: "local", MethodManual: "manual"}
	methodUses  = [...]string{UseConcede: "concede", UsePrefer: "prefer", UseForbid: "forbid"}
)

func literal[T ~uint8](table []string, v T) string {
	if int(v) >= len(table) {
		return ""
	}
	return table[v]
}

func parseLiteral[T ~uint8](table []string, attr xml.Attr) (T, error) {
	for i, s := range table {
		if s == attr.Value {
			return T(i), nil
		}
	}
	return 0, fmt.Errorf("%w: invalid %s %q", ErrMalformedPref, attr.Name.Local, attr.Value)
}

func marshalLiteral[T ~uint8](table []string, v T, name xml.Name) (xml.Attr, error) {
	s := literal(table, v)
	if s == "" {
		return xml.Attr{}, fmt.Errorf("%w: unknown %s value %d", ErrMalformedPref, name.Local, v)
	}
	return xml.Attr{Name: name, Value: s}, nil
}

// String returns the wire representation of the scope.
func (s AutoScope) String() string { return literal(autoScopes[:], s) }

// MarshalXMLAttr satisfies xml.MarshalerAttr.
func (s AutoScope) MarshalXMLAttr(name xml.Name) (xml.Attr, error) {
	return marshalLiteral(autoScopes[:], s, name)
}

// UnmarshalXMLAttr satisfies xml.UnmarshalerAttr.
func (s *AutoScope) UnmarshalXMLAttr(attr xml.Attr) (err error) {
	*s, err = parseLiteral[AutoScope](autoScopes[:], attr)
	return err
}

// String returns the wire representation of the save mode.
func (s DefaultSave) String() string { return literal(defaultSaves[:], s) }

// MarshalXMLAttr satisfies xml.MarshalerAttr.
func (s DefaultSave) MarshalXMLAttr(name xml.Name) (xml.Attr, error) {
	return marshalLiteral(defaultSaves[:], s, name)
}

// UnmarshalXMLAttr satisfies xml.UnmarshalerAttr.
func (s *DefaultSave) UnmarshalXMLAttr(attr xml.Attr) (err error) {
	*s, err = parseLiteral[DefaultSave](defaultSaves[:], attr)
	return err
}

// String returns the wire representation of the policy.
func (o DefaultOtr) String() string { return literal(defaultOtrs[:], o) }

// MarshalXMLAttr satisfies xml.MarshalerAttr.
func (o DefaultOtr) MarshalXMLAttr(name xml.Name) (xml.Attr, error) {
	return marshalLiteral(defaultOtrs[:], o, name)
}

// UnmarshalXMLAttr satisfies xml.UnmarshalerAttr.
func (o *DefaultOtr) UnmarshalXMLAttr(attr xml.Attr) (err error) {
	*o, err = parseLiteral[DefaultOtr](defaultOtrs[:], attr)
	return err
}

// String returns the wire representation of the method.
func (t MethodType) String() string { return literal(methodTypes[:], t) }

// MarshalXMLAttr satisfies xml.MarshalerAttr.
func (t MethodType) MarshalXMLAttr(name xml.Name) (xml.Attr, error) {
	return marshalLiteral(methodTypes[:], t, name)
}

// UnmarshalXMLAttr satisfies xml.UnmarshalerAttr.
func (t *MethodType) UnmarshalXMLAttr(attr xml.Attr) (err error) {
	*t, err = parseLiteral[MethodType](methodTypes[:], attr)
	return err
}

// String returns the wire representation of the use.
func (u MethodUse) String() string { return literal(methodUses[:], u) }

// MarshalXMLAttr satisfies xml.MarshalerAttr.
func (u MethodUse) MarshalXMLAttr(name xml.Name) (xml.Attr, error) {
	return marshalLiteral(methodUses[:], u, name)
}

// UnmarshalXMLAttr satisfies xml.UnmarshalerAttr.
func (u *MethodUse) UnmarshalXMLAttr(attr xml.Attr) (err error) {
	*u, err = parseLiteral[MethodUse](methodUses[:], attr)
	return err
}
