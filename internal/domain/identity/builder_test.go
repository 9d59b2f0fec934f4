package identity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adhikag24/unified-pricing-layer-mvp/internal/domain/fault"
	"github.com/adhikag24/unified-pricing-layer-mvp/internal/domain/identity"
)

func TestSemanticID_SortsDimensionKeys(t *testing.T) {
	dims, err := identity.CanonicalDimensions(map[string]any{
		"order_detail_id": "OD-001",
		"night":           "N2",
	})
	require.NoError(t, err)

	id, err := identity.SemanticID("ORD-9001", "", dims, "RoomRate")
	require.NoError(t, err)
	assert.Equal(t, "cs-ORD-9001-night-N2-order_detail_id-OD-001-RoomRate", id)
}

func TestSemanticID_StableUnderInsertionOrder(t *testing.T) {
	a, err := identity.CanonicalDimensions(map[string]any{"b": "2", "a": "1", "c": "3"})
	require.NoError(t, err)
	b, err := identity.CanonicalDimensions(map[string]any{"c": "3", "a": "1", "b": "2"})
	require.NoError(t, err)

	idA, err := identity.SemanticID("ORD-1", "", a, "Tax")
	require.NoError(t, err)
	idB, err := identity.SemanticID("ORD-1", "", b, "Tax")
	require.NoError(t, err)
	assert.Equal(t, idA, idB)
}

func TestSemanticID_EmptyDimensionsIsOrderLevel(t *testing.T) {
	id, err := identity.SemanticID("ORD-9001", "", nil, "Markup")
	require.NoError(t, err)
	assert.Equal(t, "cs-ORD-9001-Markup", id)
}

func TestSemanticID_RefundIncludesRefundID(t *testing.T) {
	id, err := identity.SemanticID("ORD-9001", "RFD-001", map[string]string{"order_detail_id": "OD-001"}, "RoomRate")
	require.NoError(t, err)
	assert.Equal(t, "cs-ORD-9001-RFD-001-order_detail_id-OD-001-RoomRate", id)
}

func TestSemanticID_MissingComponentType(t *testing.T) {
	_, err := identity.SemanticID("ORD-9001", "", nil, "")
	require.Error(t, err)
	assert.True(t, fault.Is(err, fault.KindIdentity))
}

func TestCanonicalDimensions_DropsEmptyAndNull(t *testing.T) {
	dims, err := identity.CanonicalDimensions(map[string]any{
		"keep": "v", "empty": "", "null": nil,
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"keep": "v"}, dims)
}

func TestCanonicalDimensions_NumbersRenderWithoutTrailingZero(t *testing.T) {
	dims, err := identity.CanonicalDimensions(map[string]any{"pax": float64(2), "rate": 1.5, "flag": true})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"pax": "2", "rate": "1.5", "flag": "true"}, dims)
}

func TestCanonicalDimensions_RejectsNonScalar(t *testing.T) {
	_, err := identity.CanonicalDimensions(map[string]any{"nested": map[string]any{"a": 1}})
	require.Error(t, err)
	assert.True(t, fault.Is(err, fault.KindIdentity))

	_, err = identity.CanonicalDimensions(map[string]any{"list": []any{"a"}})
	require.Error(t, err)
	assert.True(t, fault.Is(err, fault.KindIdentity))
}

func TestInstanceID_Properties(t *testing.T) {
	a := identity.InstanceID("cs-ORD-1-Tax", "snap-1")
	b := identity.InstanceID("cs-ORD-1-Tax", "snap-2")
	c := identity.InstanceID("cs-ORD-1-Tax", "snap-1")

	assert.Len(t, a, identity.InstanceIDHexLen)
	assert.NotEqual(t, a, b, "different snapshots must yield different instance ids")
	assert.Equal(t, a, c, "instance id must be deterministic")
}

func TestInstanceID_SeparatorPreventsAmbiguity(t *testing.T) {
	// "ab"+"c" and "a"+"bc" must not collide.
	assert.NotEqual(t, identity.InstanceID("ab", "c"), identity.InstanceID("a", "bc"))
}
