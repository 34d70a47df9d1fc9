package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// CategoryDistribution maps category names to desired question counts.
// Allocation order matters to the sampler, so it is kept as an ordered slice
// rather than a Go map; UnmarshalJSON preserves the JSON object's key order.
type CategoryDistribution []CategoryQuota

// Count returns the quota for a category, or 0 if absent.
func (d CategoryDistribution) Count(category string) int {
	for _, q := range d {
		if q.Category == category {
			return q.Count
		}
	}
	return 0
}

// Total returns the sum of all quotas.
func (d CategoryDistribution) Total() int {
	sum := 0
	for _, q := range d {
		sum += q.Count
	}
	return sum
}

// UnmarshalJSON decodes a JSON object token by token so the insertion order
// of its keys survives the round trip.
func (d *CategoryDistribution) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*d = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("categoryDistribution: expected JSON object, got %v", tok)
	}

	var out CategoryDistribution
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("categoryDistribution: non-string key %v", keyTok)
		}
		valTok, err := dec.Token()
		if err != nil {
			return err
		}
		num, ok := valTok.(json.Number)
		if !ok {
			return fmt.Errorf("categoryDistribution: count for %q is not a number", key)
		}
		n, err := num.Int64()
		if err != nil {
			return fmt.Errorf("categoryDistribution: count for %q: %w", key, err)
		}
		out = append(out, CategoryQuota{Category: key, Count: int(n)})
	}
	if _, err := dec.Token(); err != nil { // closing brace
		return err
	}
	*d = out
	return nil
}

// MarshalJSON writes the distribution back as an object in allocation order.
func (d CategoryDistribution) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, q := range d {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(q.Category)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		fmt.Fprintf(&buf, ":%d", q.Count)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
