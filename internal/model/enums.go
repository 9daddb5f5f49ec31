package model

import (
	"encoding/json"
	"strings"
)

// PaymentMethod: CASH | CARD | MOBILE_MONEY
type PaymentMethod string

const (
	PaymentCash        PaymentMethod = "CASH"
	PaymentCard        PaymentMethod = "CARD"
	PaymentMobileMoney PaymentMethod = "MOBILE_MONEY"
)

// UnmarshalJSON accepts lower-case values and the backend's "MOMO" alias.
func (m *PaymentMethod) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*m = ParsePaymentMethod(s)
	return nil
}

// ParsePaymentMethod normalizes a wire value. Unknown values default to CASH.
func ParsePaymentMethod(s string) PaymentMethod {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "CARD":
		return PaymentCard
	case "MOMO", "MOBILE_MONEY", "MOBILE MONEY":
		return PaymentMobileMoney
	default:
		return PaymentCash
	}
}

// TransactionType: SALE | PURCHASE | RETURN
type TransactionType string

const (
	TransactionSale     TransactionType = "SALE"
	TransactionPurchase TransactionType = "PURCHASE"
	TransactionReturn   TransactionType = "RETURN"
)

func (t *TransactionType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*t = TransactionType(strings.ToUpper(strings.TrimSpace(s)))
	return nil
}

// Role: SELLER | MANAGER | BOSS
type Role string

const (
	RoleSeller  Role = "SELLER"
	RoleManager Role = "MANAGER"
	RoleBoss    Role = "BOSS"
)

func (r *Role) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*r = Role(strings.ToUpper(strings.TrimSpace(s)))
	return nil
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleSeller || r == RoleManager || r == RoleBoss
}
