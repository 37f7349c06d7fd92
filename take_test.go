// Copyright 2022 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package archive_test

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
	"testing"
	"time"

	"mellium.im/archive"
	"mellium.im/archive/internal/archivetest"
)

// recorder returns a handler that logs every callback to calls.
func recorder(calls *[]string) archive.Handler {
	return archive.Handler{
		AutoArchiving: func(enabled bool, scope archive.AutoScope, id string) {
			*calls = append(*calls, fmt.Sprintf("auto %t %s %s", enabled, scope, id))
		},
		DefaultChanged: func(p archive.Default, id string) {
			*calls = append(*calls, fmt.Sprintf("default %s %s %v %s", p.Save, p.OTR, p.Expire, id))
		},
		MethodChanged: func(p archive.Method, id string) {
			*calls = append(*calls, fmt.Sprintf("method %s %s %s", p.Type, p.Use, id))
		},
		Collections: func(chats []archive.ChatInfo, info archive.RSMInfo, id string) {
			var s []string
			for _, c := range chats {
				s = append(s, c.With.String()+"@"+c.Start.Format(time.RFC3339))
			}
			*calls = append(*calls, fmt.Sprintf("collections %v %+v %s", s, info, id))
		},
		Chat: func(items []archive.ChatItem, info archive.RSMInfo, id string) {
			var s []string
			for _, item := range items {
				dir := "out"
				if item.Incoming {
					dir = "in"
				}
				s = append(s, fmt.Sprintf("%s|%s|%s", dir, item.Time.Format(time.RFC3339), item.Body))
			}
			*calls = append(*calls, fmt.Sprintf("chat %v %+v %s", s, info, id))
		},
	}
}

var takeTests = [...]struct {
	in    string
	ok    bool
	calls []string
}{
	0: {
		in:    `<iq type="result" id="42"><pref xmlns="urn:xmpp:archive"><auto save="true" scope="stream"/></pref></iq>`,
		ok:    true,
		calls: []string{"auto true stream 42"},
	},
	1: {
		in: `<iq type="result" id="7"><list xmlns="urn:xmpp:archive">` +
			`<chat with="bob@example.com" start="2020-01-01T00:00:00Z"/>` +
			`<set xmlns="http://jabber.org/protocol/rsm"><first>a</first><last>a</last><count>1</count></set>` +
			`</list></iq>`,
		ok:    true,
		calls: []string{"collections [bob@example.com@2020-01-01T00:00:00Z] {First:a Last:a Count:1} 7"},
	},
	2: {
		in: `<iq type="result" id="9"><pref xmlns="urn:xmpp:archive"><default save="bogus" otr="concede"/></pref></iq>`,
	},
	3: {
		// Not ours.
		in: `<iq type="result" id="1"><query xmlns="jabber:iq:roster"><item jid="juliet@example.com"/></query></iq>`,
	},
	4: {
		in: `<iq type="result" id="1"/>`,
	},
	5: {
		in: `<iq type="get" id="2"><pref xmlns="urn:xmpp:archive"/></iq>`,
	},
	6: {
		in: `<iq type="error" id="3"><pref xmlns="urn:xmpp:archive"/>` +
			`<error type="cancel"><feature-not-implemented xmlns="urn:ietf:params:xml:ns:xmpp-stanzas"/></error></iq>`,
		ok: true,
	},
	7: {
		in:    `<iq type="set" id="push1" from="romeo@montague.net"><pref xmlns="urn:xmpp:archive"><default save="body" otr="concede" expire="3600"/></pref></iq>`,
		ok:    true,
		calls: []string{"default body concede 1h0m0s push1"},
	},
	8: {
		// Every preference is evaluated even after an invalid one.
		in: `<iq type="result" id="4"><pref xmlns="urn:xmpp:archive">` +
			`<auto save="true"/>` +
			`<default save="bogus" otr="concede"/>` +
			`<method type="local" use="forbid"/>` +
			`</pref></iq>`,
		calls: []string{"auto true global 4", "method local forbid 4"},
	},
	9: {
		in:    `<iq type="result" id="5"><pref xmlns="urn:xmpp:archive"><foo/><default save="false" otr="oppose"/></pref></iq>`,
		calls: []string{"default false oppose 0s 5"},
	},
	10: {
		in: `<iq type="result" id="6"><pref xmlns="urn:xmpp:archive">` +
			`<item jid="juliet@capulet.com" save="body"/><session thread="123" save="false"/>` +
			`<method type="auto" use="concede"/><method type="manual" use="prefer"/>` +
			`</pref></iq>`,
		ok:    true,
		calls: []string{"method auto concede 6", "method manual prefer 6"},
	},
	11: {
		in: `<iq type="result" id="8"><save xmlns="urn:xmpp:archive"><chat with="juliet@capulet.com" start="2020-01-01T00:00:00Z"/></save></iq>`,
		ok: true,
	},
	12: {
		in: `<iq type="result" id="10"><chat xmlns="urn:xmpp:archive" with="juliet@capulet.com/chamber" start="1469-07-21T02:56:15Z">` +
			`<from secs="0"><body>Art thou not Romeo, and a Montague?</body></from>` +
			`<to secs="11"><body>Neither, fair saint, if either thee dislike.</body></to>` +
			`<note utc="1469-07-21T03:04:35Z">I think she might fancy me.</note>` +
			`<from utc="1469-07-21T02:56:40Z" secs="7">How cam'st thou hither?</from>` +
			`<set xmlns="http://jabber.org/protocol/rsm"><first index="0">0</first><last>2</last><count>3</count></set>` +
			`</chat></iq>`,
		ok: true,
		calls: []string{"chat [" +
			"in|1970-01-01T00:00:00Z|Art thou not Romeo, and a Montague? " +
			"out|1970-01-01T00:00:11Z|Neither, fair saint, if either thee dislike. " +
			"in|1469-07-21T02:56:40Z|How cam'st thou hither?" +
			"] {First:0 Last:2 Count:3} 10"},
	},
	13: {
		in:    `<iq type="result" id="11"><list xmlns="urn:xmpp:archive"><chat with="bob@example.com" start="yesterday"/></list></iq>`,
		ok:    true,
		calls: []string{"collections [] {First: Last: Count:0} 11"},
	},
	14: {
		in:    `<iq type="result" id="12"><chat xmlns="urn:xmpp:archive"><to secs="soon"><body>Hi</body></to></chat></iq>`,
		ok:    true,
		calls: []string{"chat [] {First: Last: Count:0} 12"},
	},
	15: {
		in: `<message type="chat" id="13"><body>Hi</body></message>`,
	},
	16: {
		in: `<iq type="set" id="14"><list xmlns="urn:xmpp:archive"/></iq>`,
	},
	17: {
		in: `<iq id="15"><pref xmlns="urn:xmpp:archive"><auto save="true"/></pref></iq>`,
	},
	18: {
		in: `<iq type="result" id="16"><retrieve xmlns="urn:xmpp:archive"/></iq>`,
	},
	19: {
		in:    `<iq type="result" id="17"><list xmlns="urn:xmpp:archive"/></iq>`,
		ok:    true,
		calls: []string{"collections [] {First: Last: Count:0} 17"},
	},
	20: {
		in:    `<iq type="result" id="18"><pref xmlns="urn:xmpp:archive"><auto save="true"/></pref></iq>`,
		ok:    true,
		calls: []string{"auto true global 18"},
	},
	21: {
		// Malformed collections are left out but the rest of the page is kept.
		in: `<iq type="result" id="19"><list xmlns="urn:xmpp:archive">` +
			`<chat with="bob@example.com" start="2020-01-01T00:00:00Z"/>` +
			`<chat with="@" start="2020-01-02T00:00:00Z"/>` +
			`<chat with="carol@example.com" start="not a time"><note>child</note></chat>` +
			`<chat with="dave@example.com" start="2020-01-03T00:00:00Z"/>` +
			`<set xmlns="http://jabber.org/protocol/rsm"><first>a</first><last>d</last><count>4</count></set>` +
			`</list></iq>`,
		ok:    true,
		calls: []string{"collections [bob@example.com@2020-01-01T00:00:00Z dave@example.com@2020-01-03T00:00:00Z] {First:a Last:d Count:4} 19"},
	},
	22: {
		in: `<iq type="result" id="20"><chat xmlns="urn:xmpp:archive">` +
			`<from secs="1"><body>one</body></from>` +
			`<to secs="two"><body>two</body></to>` +
			`<from utc="yesterday"><body>three</body></from>` +
			`<to secs="4"><body>four</body></to>` +
			`</chat></iq>`,
		ok:    true,
		calls: []string{"chat [in|1970-01-01T00:00:01Z|one out|1970-01-01T00:00:04Z|four] {First: Last: Count:0} 20"},
	},
}

func TestTake(t *testing.T) {
	for i, tc := range takeTests {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			var calls []string
			h := recorder(&calls)
			ok := h.Take(xml.NewDecoder(strings.NewReader(tc.in)))
			if ok != tc.ok {
				t.Errorf("wrong result: want=%t, got=%t", tc.ok, ok)
			}
			if len(calls) != len(tc.calls) {
				t.Fatalf("wrong callbacks:\nwant=%q,\n got=%q", tc.calls, calls)
			}
			for i, call := range tc.calls {
				if calls[i] != call {
					t.Errorf("wrong callback %d:\nwant=%q,\n got=%q", i, call, calls[i])
				}
			}
		})
	}
}

func TestTakeNilCallbacks(t *testing.T) {
	for i, tc := range takeTests {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			ok := archive.Handler{}.Take(xml.NewDecoder(strings.NewReader(tc.in)))
			if ok != tc.ok {
				t.Errorf("wrong result: want=%t, got=%t", tc.ok, ok)
			}
		})
	}
}

func TestTakeTokens(t *testing.T) {
	iq := xml.StartElement{
		Name: xml.Name{Local: "iq"},
		Attr: []xml.Attr{
			{Name: xml.Name{Local: "type"}, Value: "result"},
			{Name: xml.Name{Local: "id"}, Value: "abc"},
		},
	}
	pref := xml.StartElement{Name: xml.Name{Space: "urn:xmpp:archive", Local: "pref"}}
	method := xml.StartElement{
		Name: xml.Name{Space: "urn:xmpp:archive", Local: "method"},
		Attr: []xml.Attr{
			{Name: xml.Name{Local: "type"}, Value: "local"},
			{Name: xml.Name{Local: "use"}, Value: "prefer"},
		},
	}
	toks := archivetest.Tokens{
		iq,
		xml.CharData("\n\t"),
		pref,
		method,
		method.End(),
		pref.End(),
		iq.End(),
	}

	var calls []string
	if !recorder(&calls).Take(&toks) {
		t.Errorf("expected tokens to be handled")
	}
	if len(calls) != 1 || calls[0] != "method local prefer abc" {
		t.Errorf("wrong callbacks: %q", calls)
	}
}

func TestTakeOnlyFirstPayload(t *testing.T) {
	in := `<iq type="result" id="1"><query xmlns="jabber:iq:version"/><pref xmlns="urn:xmpp:archive"><auto save="true"/></pref></iq>`
	var calls []string
	if recorder(&calls).Take(xml.NewDecoder(strings.NewReader(in))) {
		t.Errorf("did not expect a foreign payload to be handled")
	}
	if len(calls) != 0 {
		t.Errorf("unexpected callbacks: %q", calls)
	}
}
