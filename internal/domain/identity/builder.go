// Package identity derives the dual identity of pricing components: a
// semantic id that is stable across re-emissions and repricings, and an
// instance id unique to one snapshot occurrence.
package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/adhikag24/unified-pricing-layer-mvp/internal/domain/fault"
)

// InstanceIDHexLen is the truncation length of the instance digest.
const InstanceIDHexLen = 16

// CanonicalDimensions flattens a dimensions map to sorted string pairs.
// Empty and null values are dropped; non-scalar values are an
// IdentityError. Booleans and numbers are rendered the way JSON renders
// them so the result is serializer-independent.
func CanonicalDimensions(dims map[string]any) (map[string]string, error) {
	out := make(map[string]string, len(dims))
	for k, v := range dims {
		s, err := scalarString(v)
		if err != nil {
			return nil, fault.New(fault.KindIdentity, "dimension %q: %v", k, err)
		}
		if s == "" {
			continue
		}
		out[k] = s
	}
	return out, nil
}

func scalarString(v any) (string, error) {
	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		return t, nil
	case bool:
		return strconv.FormatBool(t), nil
	case float64:
		// JSON numbers decode as float64; render integers without a
		// trailing ".0" so 2 and 2.0 canonicalize identically.
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10), nil
		}
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	case json.Number:
		return t.String(), nil
	case int:
		return strconv.Itoa(t), nil
	case int64:
		return strconv.FormatInt(t, 10), nil
	default:
		return "", fmt.Errorf("non-scalar value of type %T", v)
	}
}

// CanonicalJSON serializes canonical dimensions with sorted keys and no
// insignificant whitespace, suitable for content-addressed storage.
func CanonicalJSON(dims map[string]string) json.RawMessage {
	// encoding/json sorts map keys, which is exactly the canonical form.
	b, _ := json.Marshal(dims)
	return b
}

// SemanticID builds the deterministic component identity:
//
//	cs-{order_id}[-{refund_id}]-{k1-v1-k2-v2...}-{component_type}
//
// with dimension keys sorted lexicographically. Components with no
// dimensions are order-level: cs-{order_id}-{component_type}.
func SemanticID(orderID, refundID string, dims map[string]string, componentType string) (string, error) {
	if componentType == "" {
		return "", fault.New(fault.KindIdentity, "component_type is required")
	}
	if orderID == "" {
		return "", fault.New(fault.KindIdentity, "order_id is required")
	}

	parts := []string{"cs", orderID}
	if refundID != "" {
		parts = append(parts, refundID)
	}

	keys := make([]string, 0, len(dims))
	for k := range dims {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		parts = append(parts, k, dims[k])
	}

	parts = append(parts, componentType)
	return strings.Join(parts, "-"), nil
}

// InstanceID derives the snapshot-unique identity: a truncated SHA-256
// digest over semantic id and snapshot id separated by a NUL byte. The
// separator prevents ambiguous concatenations from colliding.
func InstanceID(semanticID, pricingSnapshotID string) string {
	h := sha256.Sum256([]byte(semanticID + "\x00" + pricingSnapshotID))
	return hex.EncodeToString(h[:])[:InstanceIDHexLen]
}
