// Package policy holds the request-scoped authorization rules: who may act
// on which resource. Every rule is a pure predicate that returns a Decision;
// nothing in this package raises past its boundary. Internal failures during
// evaluation are logged and surface as a deny.
package policy

import "net/http"

// Decision is the tagged outcome of a policy evaluation: Allow, or
// Deny(reason) with the policy's fixed user-facing message.
type Decision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

func Allow() Decision {
	return Decision{Allowed: true}
}

func Deny(reason string) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// safeMethods are read methods; policies that are read-open allow these
// unconditionally, even for anonymous principals.
var safeMethods = map[string]bool{
	http.MethodGet:     true,
	http.MethodHead:    true,
	http.MethodOptions: true,
}

func IsSafeMethod(method string) bool {
	return safeMethods[method]
}
