// Package identity normalizes raw ledger identities into canonical node IDs.
//
// Every transaction row names two parties, either as a (bank, account) pair
// or as a bare entity name. This package turns those raw strings into an [ID]
// value with explicit equality: two IDs are equal when their normalized
// fields are equal, independent of any separator used to print them. An
// account number containing "|" therefore never collides with another bank.
//
// Degenerate input never fails. Empty strings and the placeholders "-",
// "EMPTY" and "NAN" (and the textual nulls "NULL", "NONE", "<NA>") collapse
// into a single sentinel cash node, so every row yields a valid endpoint.
package identity

import "strings"

// Mode selects how a ledger row is mapped to graph endpoints.
type Mode int

const (
	// ModeAccount identifies parties by (bank, account).
	ModeAccount Mode = iota
	// ModeEntity identifies parties by owner / counterparty name.
	ModeEntity
)

// String returns the mode name used in flags and cache keys.
func (m Mode) String() string {
	if m == ModeEntity {
		return "entity"
	}
	return "account"
}

// ParseMode parses "account" or "entity". Unknown values return false.
func ParseMode(s string) (Mode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "account":
		return ModeAccount, true
	case "entity":
		return ModeEntity, true
	}
	return ModeAccount, false
}

// Cash returns the sentinel node for the mode.
func (m Mode) Cash() ID {
	if m == ModeEntity {
		return EntityCash
	}
	return Cash
}

// ID is a canonical node identity.
//
// Account identities carry both Bank and Account. Entity identities carry
// only Account, which then holds the entity name; Bank is empty.
// The zero value is not a valid identity.
type ID struct {
	Bank    string
	Account string
}

// Sentinels absorbing all unidentifiable counterparties.
var (
	// Cash is the sentinel in account mode, printed as "CASH|KAS_BESAR".
	Cash = ID{Bank: "CASH", Account: "KAS_BESAR"}
	// EntityCash is the sentinel in entity mode, printed as "KAS BESAR".
	EntityCash = ID{Account: "KAS BESAR"}
)

// Separator joins bank and account in the printed form of an account ID.
const Separator = "|"

var placeholders = map[string]bool{
	"":      true,
	"-":     true,
	"EMPTY": true,
	"NAN":   true,
	"NULL":  true,
	"NONE":  true,
	"<NA>":  true,
}

// Normalize trims and uppercases s.
func Normalize(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// IsPlaceholder reports whether s is empty or a missing-value marker
// after normalization.
func IsPlaceholder(s string) bool {
	return placeholders[Normalize(s)]
}

// Resolve maps a (bank, account) pair to an account identity.
// If either side is a placeholder the result is [Cash].
func Resolve(bank, account string) ID {
	if IsPlaceholder(bank) || IsPlaceholder(account) {
		return Cash
	}
	return ID{Bank: Normalize(bank), Account: Normalize(account)}
}

// ResolveEntity maps a name to an entity identity.
// A placeholder name resolves to [EntityCash].
func ResolveEntity(name string) ID {
	if IsPlaceholder(name) {
		return EntityCash
	}
	return ID{Account: Normalize(name)}
}

// Parse rebuilds an ID from its printed form. Text before the first
// separator is the bank; text without a separator is an entity name.
// Parse normalizes both parts but does not apply placeholder collapsing.
func Parse(s string) ID {
	bank, account, ok := strings.Cut(s, Separator)
	if !ok {
		return ID{Account: Normalize(s)}
	}
	return ID{Bank: Normalize(bank), Account: Normalize(account)}
}

// String prints the ID as "BANK|ACCOUNT" or as the bare entity name.
func (id ID) String() string {
	if id.Bank == "" {
		return id.Account
	}
	return id.Bank + Separator + id.Account
}

// Prefix returns the style lookup key: the bank for account identities,
// the whole name for entity identities.
func (id ID) Prefix() string {
	if id.Bank == "" {
		return id.Account
	}
	return id.Bank
}

// IsEntity reports whether the ID is an entity name rather than an account.
func (id ID) IsEntity() bool { return id.Bank == "" }

// IsCash reports whether the ID is one of the cash sentinels.
func (id ID) IsCash() bool { return id == Cash || id == EntityCash }

// IsZero reports whether the ID is the zero value.
func (id ID) IsZero() bool { return id == ID{} }

// Compare orders IDs by bank, then account. It is used wherever output
// must be deterministic.
func Compare(a, b ID) int {
	if c := strings.Compare(a.Bank, b.Bank); c != 0 {
		return c
	}
	return strings.Compare(a.Account, b.Account)
}

// MarshalText implements encoding.TextMarshaler so IDs can key JSON maps.
func (id ID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *ID) UnmarshalText(b []byte) error {
	*id = Parse(string(b))
	return nil
}
