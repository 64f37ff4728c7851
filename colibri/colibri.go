// Package colibri defines the colibri control payloads exchanged with a
// conference focus: the graceful-shutdown command and the stats query.
package colibri

import (
	"encoding/xml"
	"strconv"

	"mellium.im/xmlstream"
)

// NS is the colibri protocol namespace.
const NS = "http://jitsi.org/protocol/colibri"

// ConferenceStat is the stats counter holding the number of conferences
// still in progress.
const ConferenceStat = "conferences"

// CountUnknown is returned when a stats response carries no usable
// conference counter. It must never be mistaken for a drained service.
const CountUnknown = -1

// GracefulShutdown is the zero-payload graceful-shutdown command,
// sent as an IQ set.
type GracefulShutdown struct {
	XMLName xml.Name `xml:"http://jitsi.org/protocol/colibri graceful-shutdown"`
}

// TokenReader satisfies xmlstream.Marshaler so the payload can be
// wrapped into an outgoing IQ.
func (GracefulShutdown) TokenReader() xml.TokenReader {
	return xmlstream.Wrap(nil, xml.StartElement{
		Name: xml.Name{Space: NS, Local: "graceful-shutdown"},
	})
}

// Stats is the colibri stats element. The request form is empty; the
// response form carries one stat child per counter.
type Stats struct {
	XMLName xml.Name `xml:"http://jitsi.org/protocol/colibri stats"`
	Stats   []Stat   `xml:"stat"`
}

// Stat is a single named counter. Values are transported as strings.
type Stat struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

// TokenReader satisfies xmlstream.Marshaler for the empty request form.
func (Stats) TokenReader() xml.TokenReader {
	return xmlstream.Wrap(nil, xml.StartElement{
		Name: xml.Name{Space: NS, Local: "stats"},
	})
}

// ConferenceCount extracts the conference counter. The scan is
// order-independent over the stat children. Returns CountUnknown when
// the counter is absent or its value is not an integer.
func (s Stats) ConferenceCount() int {
	for _, stat := range s.Stats {
		if stat.Name != ConferenceStat {
			continue
		}
		n, err := strconv.Atoi(stat.Value)
		if err != nil {
			return CountUnknown
		}
		return n
	}
	return CountUnknown
}
