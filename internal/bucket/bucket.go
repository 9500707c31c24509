// Package bucket computes rating buckets and bucket keys. It exists as a
// single shared definition so Admission and the Matcher can never disagree
// on STEP — the source repository this was distilled from had two different
// bucket widths in different modules; this package is the one place that
// constant lives.
package bucket

import (
	"fmt"
	"math"
)

// Of floors rating to the nearest multiple of step, toward negative
// infinity (mathematical floor, not truncation toward zero), so that bucket
// membership stays monotone for negative ratings.
func Of(rating, step int) int {
	return int(math.Floor(float64(rating)/float64(step))) * step
}

// Key builds the BucketKey string "<time_control>#<bucket>" used to
// partition the Queue Index.
func Key(timeControl string, bucket int) string {
	return fmt.Sprintf("%s#%d", timeControl, bucket)
}
