package graph

// --- Enums ---

// NodeKind classifies nodes in a persisted call graph.
type NodeKind string

const (
	NodeKindSubscriber NodeKind = "subscriber"
	NodeKindComponent  NodeKind = "component"
)

// EdgeKind classifies relationships between persisted nodes.
type EdgeKind string

const (
	EdgeKindCalls    EdgeKind = "CALLS"
	EdgeKindMemberOf EdgeKind = "MEMBER_OF"
)

// --- Models ---

// SubscriberNode is a phone number and its attributes. Empty strings and a
// zero age mean the value is missing.
type SubscriberNode struct {
	Number   int64  `json:"number"`
	Postcode string `json:"postcode,omitempty"`
	Gender   string `json:"gender,omitempty"`
	Age      int    `json:"age,omitempty"`
}

// CallEdge is the aggregated traffic from one subscriber to another.
type CallEdge struct {
	From  int64     `json:"from"`
	To    int64     `json:"to"`
	Attrs EdgeAttrs `json:"attrs"`
}

// ComponentNode is a weakly connected group of subscribers.
type ComponentNode struct {
	Name         string  `json:"name"`
	RelativeSize float64 `json:"relativeSize"` // members / all subscribers
	Members      []int64 `json:"members"`
}

// SubscriberQuery filters QuerySubscribers. Zero values disable a filter.
type SubscriberQuery struct {
	Gender         string `json:"gender,omitempty"`
	MinAge         int    `json:"minAge,omitempty"`
	MaxAge         int    `json:"maxAge,omitempty"`
	PostcodePrefix string `json:"postcodePrefix,omitempty"`
	Limit          int    `json:"limit,omitempty"`
}

// StoreStats summarizes a persisted call graph.
type StoreStats struct {
	SubscriberCount int     `json:"subscriberCount"`
	CallEdgeCount   int     `json:"callEdgeCount"`
	ComponentCount  int     `json:"componentCount"`
	TotalCalls      float64 `json:"totalCalls"`
	TotalMinutes    float64 `json:"totalMinutes"`
	TotalSMS        float64 `json:"totalSms"`
	TotalMMS        float64 `json:"totalMms"`
}

// ContactChain is a path of subscribers reached by following calls.
type ContactChain struct {
	Numbers []int64 `json:"numbers"`
	Depth   int     `json:"depth"`
}
