// api/pdp/model/decision.go
package model

// Decision reasons for the short-circuit pipeline stages. Rule-based
// decisions carry the matched rule's description instead.
const (
	ReasonUnauthenticated = "unauthenticated"
	ReasonAdmin           = "admin"
	ReasonOwnerManager    = "owner/manager"
	ReasonRolePermission  = "role permission"
	ReasonDefaultDeny     = "no matching permission found"
)

// Decision is the engine's answer to one AccessRequest.
type Decision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason"`
}

func Allow(reason string) Decision {
	return Decision{Allowed: true, Reason: reason}
}

func Deny(reason string) Decision {
	return Decision{Allowed: false, Reason: reason}
}
