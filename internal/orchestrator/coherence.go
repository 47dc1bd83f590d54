package orchestrator

import (
	"fmt"

	"github.com/dusk-indust/cdrhelper/internal/generator"
)

// IssueKind classifies a CoherenceIssue.
type IssueKind string

const (
	IssueSelfCall          IssueKind = "self-call"
	IssueUnknownNumber     IssueKind = "unknown-number"
	IssueNotAnEdge         IssueKind = "not-an-edge"
	IssueMissingAttributes IssueKind = "missing-attributes"
	IssueDuplicateNumber   IssueKind = "duplicate-number"
	IssueUnknownAttribute  IssueKind = "unknown-attribute"
)

// CoherenceIssue describes one inconsistency between the tables of a
// dataset.
type CoherenceIssue struct {
	Kind        IssueKind
	Description string
}

// CheckCoherence cross-checks a generated dataset: every call must join two
// distinct subscribers that are linked in the caller network (in either
// direction, since calls may be reciprocated), and the attribute table must
// hold exactly one row per subscriber. A nil graph skips the network checks.
func CheckCoherence(ds *generator.Dataset) []CoherenceIssue {
	var issues []CoherenceIssue
	add := func(kind IssueKind, format string, args ...any) {
		issues = append(issues, CoherenceIssue{Kind: kind, Description: fmt.Sprintf(format, args...)})
	}

	g := ds.Graph
	for i, c := range ds.Calls {
		if c.ANum == c.BNum {
			add(IssueSelfCall, "call %d on %s: %d calls itself", i, c.Date, c.ANum)
			continue
		}
		if g == nil {
			continue
		}
		if !g.HasNode(c.ANum) || !g.HasNode(c.BNum) {
			add(IssueUnknownNumber, "call %d on %s: %d -> %d not in network", i, c.Date, c.ANum, c.BNum)
			continue
		}
		if !g.HasEdge(c.ANum, c.BNum) && !g.HasEdge(c.BNum, c.ANum) {
			add(IssueNotAnEdge, "call %d on %s: %d -> %d is not a network link", i, c.Date, c.ANum, c.BNum)
		}
	}

	if g == nil || ds.Attributes == nil {
		return issues
	}
	seen := make(map[int64]bool, len(ds.Attributes))
	for _, a := range ds.Attributes {
		if seen[a.Number] {
			add(IssueDuplicateNumber, "subscriber %d has more than one attribute row", a.Number)
			continue
		}
		seen[a.Number] = true
		if !g.HasNode(a.Number) {
			add(IssueUnknownAttribute, "attribute row for %d which is not in network", a.Number)
		}
	}
	for _, n := range g.Nodes() {
		if !seen[n] {
			add(IssueMissingAttributes, "subscriber %d has no attribute row", n)
		}
	}
	return issues
}
