// Package checkout composes the cart store and session manager: it reads the
// cart summary and authentication state and decides whether checkout can
// proceed, must wait for sign-in, or has nothing to check out.
package checkout

import (
	"net/url"

	"github.com/example/homeware-storefront/internal/cart"
)

// Pages the decision routes to.
const (
	CheckoutPage = "checkout.html"
	LoginPage    = "login.html"
	SignupPage   = "signup.html"
)

// Action is the outcome of a checkout attempt.
type Action int

const (
	// ActionEmptyCart means there is nothing to check out.
	ActionEmptyCart Action = iota
	// ActionSignIn means the buyer must authenticate first; Decision
	// carries both sign-in and sign-up targets with a return parameter
	// back to checkout.
	ActionSignIn
	// ActionProceed means checkout can continue.
	ActionProceed
)

// Decision tells the navigation layer where to go next.
type Decision struct {
	Action       Action
	Target       string
	LoginTarget  string
	SignupTarget string
}

// Decide gates checkout on cart contents and authentication state.
func Decide(summary cart.Summary, authenticated bool) Decision {
	if summary.IsEmpty {
		return Decision{Action: ActionEmptyCart}
	}
	if !authenticated {
		ret := url.Values{"return": {CheckoutPage}}.Encode()
		return Decision{
			Action:       ActionSignIn,
			LoginTarget:  LoginPage + "?" + ret,
			SignupTarget: SignupPage + "?" + ret,
		}
	}
	return Decision{Action: ActionProceed, Target: CheckoutPage}
}
