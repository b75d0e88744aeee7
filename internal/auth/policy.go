package auth

import "github.com/inkpost/inkpost/internal/model"

// Operation names an action on a post.
type Operation string

const (
	OpList    Operation = "list"
	OpView    Operation = "view"
	OpEdit    Operation = "edit"
	OpUpdate  Operation = "update"
	OpDestroy Operation = "destroy"
)

// IsMutating reports whether the operation needs an ownership check.
// Unknown operations are treated as mutating.
func (o Operation) IsMutating() bool {
	switch o {
	case OpList, OpView:
		return false
	default:
		return true
	}
}

// Decision is the outcome of Authorize. Deny is a value, not an error.
type Decision int

const (
	Deny Decision = iota
	Allow
)

func (d Decision) String() string {
	if d == Allow {
		return "allow"
	}
	return "deny"
}

// Authorize decides whether user may perform op on post.
// Reads are open to everyone. Mutations require the caller to own the post,
// compared by persistent user ID.
func Authorize(user *model.CurrentUser, post *model.Post, op Operation) Decision {
	if !op.IsMutating() {
		return Allow
	}
	if user == nil || post == nil {
		return Deny
	}
	if post.OwnedBy(user.ID) {
		return Allow
	}
	return Deny
}
