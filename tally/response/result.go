// Package response reads Tally replies. All functions take a tree produced by
// xmltree.Parse, accept every known variant of a reply shape and never panic
// on missing elements.
package response

import (
	"strconv"
	"strings"

	"github.com/vouchrit/tally/tally/xmltree"
)

// MissingMastersMessage is the DescribeError text for EXCEPTIONS=1, which
// Tally reports when a voucher names a ledger or stock item it does not know.
const MissingMastersMessage = "Tally rejected the voucher: one or more ledger or stock item names do not exist in the company"

const unspecifiedError = "Tally reported an unspecified error"

// Result holds the counters of an import reply.
type Result struct {
	Created    int    `json:"created"`
	Altered    int    `json:"altered"`
	Deleted    int    `json:"deleted"`
	Combined   int    `json:"combined"`
	Ignored    int    `json:"ignored"`
	Errors     int    `json:"errors"`
	Cancelled  int    `json:"cancelled"`
	Exceptions int    `json:"exceptions"`
	LastVchID  string `json:"lastVchId,omitempty"`
}

// resultNode finds the element holding the import counters: RESPONSE for the
// short reply, ENVELOPE/BODY/DATA/IMPORTRESULT for the enveloped one.
func resultNode(doc *xmltree.Node) *xmltree.Node {
	if n := doc.Find("RESPONSE"); n != nil {
		return n
	}
	return doc.Find("ENVELOPE", "BODY", "DATA", "IMPORTRESULT")
}

// ImportResult reads the counters of an import reply. Missing or
// non-numeric counters are zero.
func ImportResult(doc *xmltree.Node) Result {
	n := resultNode(doc)
	return Result{
		Created:    count(n, "CREATED"),
		Altered:    count(n, "ALTERED"),
		Deleted:    count(n, "DELETED"),
		Combined:   count(n, "COMBINED"),
		Ignored:    count(n, "IGNORED"),
		Errors:     count(n, "ERRORS"),
		Cancelled:  count(n, "CANCELLED"),
		Exceptions: count(n, "EXCEPTIONS"),
		LastVchID:  n.ChildValue("LASTVCHID"),
	}
}

func count(n *xmltree.Node, name string) int {
	v, err := strconv.Atoi(n.ChildValue(name))
	if err != nil {
		return 0
	}
	return v
}

// status is RESPONSE/STATUS, or the envelope header status when the reply
// carries no import counters. The header status of an import reply only says
// the request was read, not that anything was created.
func status(doc *xmltree.Node) string {
	if s := doc.Find("RESPONSE", "STATUS"); s != nil {
		return s.Value()
	}
	if doc.Find("ENVELOPE", "BODY", "DATA", "IMPORTRESULT") != nil {
		return ""
	}
	return doc.Find("ENVELOPE", "HEADER", "STATUS").Value()
}

// IsSuccess reports CREATED > 0 or STATUS == "1".
func IsSuccess(doc *xmltree.Node) bool {
	return ImportResult(doc).Created > 0 || status(doc) == "1"
}

// DescribeError returns a message for a failed reply. It always returns a
// displayable string.
func DescribeError(doc *xmltree.Node) string {
	n := resultNode(doc)
	if n.ChildValue("EXCEPTIONS") == "1" {
		return MissingMastersMessage
	}

	candidates := []*xmltree.Node{
		doc.Find("RESPONSE", "LINEERROR"),
		doc.Find("ENVELOPE", "BODY", "DATA", "LINEERROR"),
		doc.Find("ENVELOPE", "BODY", "DATA", "IMPORTRESULT", "LINEERROR"),
		doc.Find("RESPONSE", "DESC"),
		doc.Find("ENVELOPE", "BODY", "DESC"),
	}
	for _, c := range candidates {
		if msg := textOf(c); msg != "" {
			return msg
		}
	}
	if msg := doc.Find("RESPONSE").Value(); msg != "" {
		return msg
	}
	if msg := doc.Find("ENVELOPE", "BODY", "DATA").Value(); msg != "" {
		return msg
	}
	return unspecifiedError
}

// textOf is the element's own text, or the joined text of its leaves when
// the element only wraps other elements (DESC often does).
func textOf(n *xmltree.Node) string {
	if n == nil {
		return ""
	}
	if v := n.Value(); v != "" {
		return v
	}
	var parts []string
	n.Walk(func(c *xmltree.Node) bool {
		if len(c.Children) == 0 {
			if v := c.Value(); v != "" {
				parts = append(parts, v)
			}
		}
		return true
	})
	return strings.Join(parts, "; ")
}
