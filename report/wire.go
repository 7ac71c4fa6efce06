// Package report defines the serialized forms of dispatch profiles and
// benchmark results, encoded as canonical CBOR for deterministic bytes.
package report

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// cborEncMode holds CBOR encoding options with canonical mode for
// deterministic encoding.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("report: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// ProfileEntry is one profiled dispatch target.
type ProfileEntry struct {
	Type        string `cbor:"type"`
	Method      string `cbor:"method"`
	Invocations uint64 `cbor:"invocations"`
}

// ProfileReport is a snapshot of dispatch counts.
type ProfileReport struct {
	CreatedAt int64          `cbor:"created_at"` // Unix seconds
	Entries   []ProfileEntry `cbor:"entries"`
}

// BenchResult is one benchmark scenario outcome.
type BenchResult struct {
	Scenario   string  `cbor:"scenario"`
	Iterations int     `cbor:"iterations"`
	NsPerOp    float64 `cbor:"ns_per_op"`
	TotalNs    int64   `cbor:"total_ns"`
}

// BenchReport is one full benchmark run.
type BenchReport struct {
	CreatedAt int64         `cbor:"created_at"` // Unix seconds
	Results   []BenchResult `cbor:"results"`
}

// MarshalProfile serializes a ProfileReport to CBOR bytes.
func MarshalProfile(r *ProfileReport) ([]byte, error) {
	return cborEncMode.Marshal(r)
}

// UnmarshalProfile deserializes a ProfileReport from CBOR bytes.
func UnmarshalProfile(data []byte) (*ProfileReport, error) {
	var r ProfileReport
	if err := cbor.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("report: unmarshal profile: %w", err)
	}
	return &r, nil
}

// MarshalBench serializes a BenchReport to CBOR bytes.
func MarshalBench(r *BenchReport) ([]byte, error) {
	return cborEncMode.Marshal(r)
}

// UnmarshalBench deserializes a BenchReport from CBOR bytes.
func UnmarshalBench(data []byte) (*BenchReport, error) {
	var r BenchReport
	if err := cbor.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("report: unmarshal bench: %w", err)
	}
	return &r, nil
}
