package filter

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

var (
	ErrNoBuckets     = errors.New("partition has no buckets")
	ErrInvalidBucket = errors.New("bucket min exceeds max")
	ErrBucketGap     = errors.New("buckets overlap or leave a gap")
	ErrBucketName    = errors.New("bucket name repeated")
)

// Bucket is a named, inclusive score range.
type Bucket struct {
	Name string
	Min  int
	Max  int
}

// Contains reports whether score lies within the bucket.
func (b Bucket) Contains(score int) bool {
	return score >= b.Min && score <= b.Max
}

// Partition is an ordered set of contiguous, non-overlapping buckets.
// Every score inside the covered range falls in exactly one bucket.
type Partition struct {
	buckets []Bucket
}

// NewPartition sorts buckets by Min and validates them.
func NewPartition(buckets ...Bucket) (Partition, error) {
	if len(buckets) == 0 {
		return Partition{}, ErrNoBuckets
	}
	sorted := append([]Bucket(nil), buckets...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Min < sorted[j].Min })

	names := make(map[string]struct{}, len(sorted))
	for i, b := range sorted {
		if b.Min > b.Max {
			return Partition{}, fmt.Errorf("%w: %s [%d, %d]", ErrInvalidBucket, b.Name, b.Min, b.Max)
		}
		if _, dup := names[b.Name]; dup {
			return Partition{}, fmt.Errorf("%w: %s", ErrBucketName, b.Name)
		}
		names[b.Name] = struct{}{}
		if i > 0 && sorted[i-1].Max+1 != b.Min {
			return Partition{}, fmt.Errorf("%w: %s then %s", ErrBucketGap, sorted[i-1].Name, b.Name)
		}
	}
	return Partition{buckets: sorted}, nil
}

// MustPartition is NewPartition for package-level partitions.
func MustPartition(buckets ...Bucket) Partition {
	p, err := NewPartition(buckets...)
	if err != nil {
		panic(err)
	}
	return p
}

// Classify returns the bucket containing score.
func (p Partition) Classify(score int) (Bucket, bool) {
	for _, b := range p.buckets {
		if b.Contains(score) {
			return b, true
		}
	}
	return Bucket{}, false
}

// Lookup returns the bucket called name.
func (p Partition) Lookup(name string) (Bucket, bool) {
	for _, b := range p.buckets {
		if b.Name == name {
			return b, true
		}
	}
	return Bucket{}, false
}

// Names lists bucket names from lowest to highest range.
func (p Partition) Names() []string {
	names := make([]string, len(p.buckets))
	for i, b := range p.buckets {
		names[i] = b.Name
	}
	return names
}

// InBucket matches records whose score falls in the named bucket.
// An unset name imposes no constraint; an unknown name matches nothing.
func InBucket[T any](p Partition, name string, score func(T) int) Criterion[T] {
	if Unset(name) {
		return nil
	}
	b, ok := p.Lookup(name)
	if !ok {
		return func(T) bool { return false }
	}
	return func(r T) bool {
		return b.Contains(score(r))
	}
}

// Risk bucket sets. Each page keeps its own boundaries.
var (
	// KYCRisk: low <= 40, medium 41-60, high > 60.
	KYCRisk = MustPartition(
		Bucket{Name: "low", Min: math.MinInt, Max: 40},
		Bucket{Name: "medium", Min: 41, Max: 60},
		Bucket{Name: "high", Min: 61, Max: math.MaxInt},
	)

	// FingerprintRisk: low 0-40, medium 41-60, high 61-100.
	FingerprintRisk = MustPartition(
		Bucket{Name: "low", Min: 0, Max: 40},
		Bucket{Name: "medium", Min: 41, Max: 60},
		Bucket{Name: "high", Min: 61, Max: 100},
	)

	// CompensationRisk: low < 60, medium 60-80, high > 80. Shared by
	// compensation orders and chargebacks.
	CompensationRisk = MustPartition(
		Bucket{Name: "low", Min: math.MinInt, Max: 59},
		Bucket{Name: "medium", Min: 60, Max: 80},
		Bucket{Name: "high", Min: 81, Max: math.MaxInt},
	)

	// PatternSeverity: low < 60, medium 60-80, high > 80.
	PatternSeverity = MustPartition(
		Bucket{Name: "low", Min: math.MinInt, Max: 59},
		Bucket{Name: "medium", Min: 60, Max: 80},
		Bucket{Name: "high", Min: 81, Max: math.MaxInt},
	)
)
