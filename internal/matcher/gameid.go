package matcher

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
)

// GameID computes the deterministic, commutative game identifier for the
// unordered pair {p1, p2} at epochSeconds: hex(sha256(sorted(p1,p2) + "#" +
// epochSeconds))[:16 bytes]. Sorting the pair makes the id independent of
// argument order; the 128-bit prefix is sufficient collision resistance at
// the expected pairing rate.
func GameID(p1, p2 string, epochSeconds int64) string {
	ids := []string{p1, p2}
	sort.Strings(ids)
	input := fmt.Sprintf("%s#%s#%d", ids[0], ids[1], epochSeconds)
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:16])
}
