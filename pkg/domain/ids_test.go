package domain

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestParseID_Invariants validates the parsing invariant:
// "ids must be valid, non-empty, non-nil UUIDs".
func TestParseID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseMeldingID("")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidID))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseMeldingID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidID))
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParseMeldingID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidID))
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		validUUID := uuid.New()
		id, err := ParseMeldingID(validUUID.String())
		require.NoError(t, err)
		assert.Equal(t, MeldingID(validUUID), id)
	})
}

// TestTypeDistinction verifies the compiler enforces type safety.
// This is a compile-time check - if this compiles, the invariant holds.
func TestTypeDistinction(t *testing.T) {
	meldingID := MeldingID(uuid.New())
	assetID := AssetID(uuid.New())

	// These would fail to compile if types were interchangeable:
	// var _ MeldingID = assetID  // compile error
	// var _ AssetID = meldingID  // compile error

	assert.NotEqual(t, uuid.UUID(meldingID), uuid.UUID(assetID))
}

// TestAllIDTypes_ConsistentBehavior ensures all id types parse identically.
// Inconsistent validation across id types would make guard checks unreliable.
func TestAllIDTypes_ConsistentBehavior(t *testing.T) {
	valid := uuid.New().String()

	t.Run("all types accept a valid UUID", func(t *testing.T) {
		_, err := ParseMeldingID(valid)
		assert.NoError(t, err)
		_, err = ParseClassificationID(valid)
		assert.NoError(t, err)
		_, err = ParseAssetID(valid)
		assert.NoError(t, err)
		_, err = ParseAssetTypeID(valid)
		assert.NoError(t, err)
		_, err = ParseAttachmentID(valid)
		assert.NoError(t, err)
	})

	t.Run("all types reject garbage identically", func(t *testing.T) {
		for _, input := range []string{"", "garbage", uuid.Nil.String()} {
			_, err := ParseMeldingID(input)
			assert.ErrorIs(t, err, ErrInvalidID, "MeldingID input %q", input)
			_, err = ParseClassificationID(input)
			assert.ErrorIs(t, err, ErrInvalidID, "ClassificationID input %q", input)
			_, err = ParseAssetID(input)
			assert.ErrorIs(t, err, ErrInvalidID, "AssetID input %q", input)
			_, err = ParseAssetTypeID(input)
			assert.ErrorIs(t, err, ErrInvalidID, "AssetTypeID input %q", input)
			_, err = ParseAttachmentID(input)
			assert.ErrorIs(t, err, ErrInvalidID, "AttachmentID input %q", input)
		}
	})
}

func TestID_IsNilAndString(t *testing.T) {
	var zero MeldingID
	assert.True(t, zero.IsNil())

	id := NewMeldingID()
	assert.False(t, id.IsNil())
	assert.Equal(t, uuid.UUID(id).String(), id.String())
}
