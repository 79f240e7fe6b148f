package repetition

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// IdentifierKind tells which column an Identifier refers to.
type IdentifierKind int

const (
	ByScheduleItemID IdentifierKind = iota + 1
	ByItemID
	BySlug
)

func (k IdentifierKind) String() string {
	switch k {
	case ByScheduleItemID:
		return "schedule item id"
	case ByItemID:
		return "item id"
	case BySlug:
		return "slug"
	default:
		return "unknown"
	}
}

// Identifier is a parsed reference to a schedule item given by a caller.
type Identifier struct {
	Kind           IdentifierKind
	ScheduleItemID string
	ItemID         int64
	Slug           string
}

// ParseIdentifier resolves raw into a schedule item id when it is a UUID, an
// item id when it is all digits, and a slug otherwise.
func ParseIdentifier(raw string) (Identifier, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Identifier{}, fmt.Errorf("empty identifier: %w", ErrInvalidArgument)
	}
	if id, err := uuid.Parse(raw); err == nil {
		return Identifier{Kind: ByScheduleItemID, ScheduleItemID: id.String()}, nil
	}
	if isDigits(raw) {
		itemID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || itemID <= 0 {
			return Identifier{}, fmt.Errorf("item id %q: %w", raw, ErrInvalidArgument)
		}
		return Identifier{Kind: ByItemID, ItemID: itemID}, nil
	}
	return Identifier{Kind: BySlug, Slug: raw}, nil
}

// ItemIdentifier builds an identifier for a reviewable item id.
func ItemIdentifier(itemID int64) Identifier {
	return Identifier{Kind: ByItemID, ItemID: itemID}
}

func (id Identifier) String() string {
	switch id.Kind {
	case ByScheduleItemID:
		return id.ScheduleItemID
	case ByItemID:
		return strconv.FormatInt(id.ItemID, 10)
	default:
		return id.Slug
	}
}

// Matches reports whether ref is the reviewable item the identifier points at.
// Schedule item ids never match a catalog reference.
func (id Identifier) Matches(ref ReviewableRef) bool {
	switch id.Kind {
	case ByItemID:
		return ref.ItemID == id.ItemID
	case BySlug:
		return ref.Slug == id.Slug
	default:
		return false
	}
}

// ValidateRef rejects catalog references whose slug could be mistaken for
// another kind of identifier.
func ValidateRef(ref ReviewableRef) error {
	if ref.ItemID <= 0 {
		return fmt.Errorf("item id %d must be positive: %w", ref.ItemID, ErrInvalidArgument)
	}
	if ref.Slug == "" {
		return fmt.Errorf("item %d has an empty slug: %w", ref.ItemID, ErrInvalidArgument)
	}
	if isDigits(ref.Slug) {
		return fmt.Errorf("slug %q must not be numeric: %w", ref.Slug, ErrInvalidArgument)
	}
	if _, err := uuid.Parse(ref.Slug); err == nil {
		return fmt.Errorf("slug %q must not be a UUID: %w", ref.Slug, ErrInvalidArgument)
	}
	return nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
