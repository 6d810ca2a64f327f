package domain

import (
	"errors"

	"github.com/google/uuid"
)

// ErrInvalidID is returned when an id string is empty, malformed, or the nil UUID.
var ErrInvalidID = errors.New("invalid id")

// Typed ids prevent cross-entity assignment at compile time. A MeldingID can
// never be passed where an AssetID is expected, which matters in a codebase
// where most operations take two or three ids side by side.

type MeldingID uuid.UUID

func NewMeldingID() MeldingID { return MeldingID(uuid.New()) }

func (id MeldingID) String() string { return uuid.UUID(id).String() }
func (id MeldingID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

func ParseMeldingID(s string) (MeldingID, error) {
	u, err := parse(s)
	return MeldingID(u), err
}

type ClassificationID uuid.UUID

func NewClassificationID() ClassificationID { return ClassificationID(uuid.New()) }

func (id ClassificationID) String() string { return uuid.UUID(id).String() }
func (id ClassificationID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

func ParseClassificationID(s string) (ClassificationID, error) {
	u, err := parse(s)
	return ClassificationID(u), err
}

type AssetID uuid.UUID

func NewAssetID() AssetID { return AssetID(uuid.New()) }

func (id AssetID) String() string { return uuid.UUID(id).String() }
func (id AssetID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

func ParseAssetID(s string) (AssetID, error) {
	u, err := parse(s)
	return AssetID(u), err
}

type AssetTypeID uuid.UUID

func NewAssetTypeID() AssetTypeID { return AssetTypeID(uuid.New()) }

func (id AssetTypeID) String() string { return uuid.UUID(id).String() }
func (id AssetTypeID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

func ParseAssetTypeID(s string) (AssetTypeID, error) {
	u, err := parse(s)
	return AssetTypeID(u), err
}

type AttachmentID uuid.UUID

func NewAttachmentID() AttachmentID { return AttachmentID(uuid.New()) }

func (id AttachmentID) String() string { return uuid.UUID(id).String() }
func (id AttachmentID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

func ParseAttachmentID(s string) (AttachmentID, error) {
	u, err := parse(s)
	return AttachmentID(u), err
}

// MarshalText/UnmarshalText make the typed ids JSON and text round-trippable
// as canonical UUID strings.

func (id MeldingID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *MeldingID) UnmarshalText(b []byte) error {
	parsed, err := ParseMeldingID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id ClassificationID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *ClassificationID) UnmarshalText(b []byte) error {
	parsed, err := ParseClassificationID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id AssetID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *AssetID) UnmarshalText(b []byte) error {
	parsed, err := ParseAssetID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id AssetTypeID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *AssetTypeID) UnmarshalText(b []byte) error {
	parsed, err := ParseAssetTypeID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id AttachmentID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *AttachmentID) UnmarshalText(b []byte) error {
	parsed, err := ParseAttachmentID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// parse enforces the shared invariant: ids must be valid, non-nil UUIDs.
func parse(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, ErrInvalidID
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, errors.Join(ErrInvalidID, err)
	}
	if u == uuid.Nil {
		return uuid.Nil, ErrInvalidID
	}
	return u, nil
}
