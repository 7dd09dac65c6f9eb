package domain

import "time"

// Subscription tiers.
const (
	TierFree         = "free"
	TierSubscription = "subscription"
)

// Access levels reported to clients, from weakest to strongest.
const (
	AccessFree         = "free"
	AccessPurchased    = "purchased"
	AccessSubscription = "subscription"
)

// Subscription plan types accepted by the subscribe endpoints.
const (
	PlanMonthly = "monthly"
	PlanYearly  = "yearly"
)

// User represents a registered account. Password-based accounts carry a
// bcrypt hash; accounts created through the identity bridge carry the
// provider's subject ID instead and an empty hash.
type User struct {
	ID               string    `json:"id"`
	Email            string    `json:"email"`
	Name             string    `json:"name"`
	PasswordHash     string    `json:"-"`
	Picture          string    `json:"picture,omitempty"`
	ProviderID       string    `json:"-"`
	SubscriptionTier string    `json:"subscription_tier"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// HasSubscription reports whether the user is on a paid subscription tier.
func (u *User) HasSubscription() bool {
	return u.SubscriptionTier == TierSubscription
}

// Purchase is one row in the grid purchase ledger.
type Purchase struct {
	UserID      string    `json:"user_id"`
	GridID      string    `json:"grid_id"`
	Status      string    `json:"status"`
	PurchasedAt time.Time `json:"purchased_at"`
}

// Purchase statuses.
const (
	PurchaseStatusCompleted = "completed"
)

// Access summarizes what a user can reach: their effective level and the
// grid IDs they own.
type Access struct {
	Level          string   `json:"access"`
	PurchasedGrids []string `json:"purchasedGrids"`
}

// AccessLevel derives the effective level from the tier and owned grids.
// A subscription outranks individual purchases.
func AccessLevel(tier string, purchasedGrids []string) string {
	if tier == TierSubscription {
		return AccessSubscription
	}
	if len(purchasedGrids) > 0 {
		return AccessPurchased
	}
	return AccessFree
}

// ValidPlanType reports whether the plan type is one we sell.
func ValidPlanType(plan string) bool {
	return plan == PlanMonthly || plan == PlanYearly
}

// SubscriptionApplication is a pre-sales request captured from the public
// application form before any account exists.
type SubscriptionApplication struct {
	ID          int64     `json:"id"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Email       string    `json:"email"`
	Institution string    `json:"institution"`
	JobTitle    string    `json:"job_title"`
	Purpose     string    `json:"purpose"`
	CreatedAt   time.Time `json:"created_at"`
}

// FullName joins the applicant's first and last names.
func (a *SubscriptionApplication) FullName() string {
	if a.LastName == "" {
		return a.FirstName
	}
	return a.FirstName + " " + a.LastName
}
