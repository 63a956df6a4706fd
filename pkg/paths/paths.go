// Package paths implements the hierarchical naming grammar used by the
// registry: slash-delimited distinguished names (DNs), entity segment
// extraction, and the reversible id <-> dn character substitution.
package paths

import (
	"regexp"
	"strings"
)

var (
	// Ordered ladder: the inner patterns must win over the bare ones so that
	// membership paths (.../services/x/nodes/...) resolve to the cluster DN
	// and not to a peer entity DN.
	clusterPatterns = []*regexp.Regexp{
		regexp.MustCompile(`^(.+)/services/[^/]+/nodes`),
		regexp.MustCompile(`^(.+)/nodes/[^/]+/services`),
		regexp.MustCompile(`^(.+)/services`),
		regexp.MustCompile(`^(.+)/nodes`),
	}

	nodePattern    = regexp.MustCompile(`^(.*/nodes/[^/]+)`)
	servicePattern = regexp.MustCompile(`^(.*/services/[^/]+)`)
	diskPattern    = regexp.MustCompile(`^(.*/disks/[^/]+)`)
	networkPattern = regexp.MustCompile(`^(.*/networks/[^/]+)`)
)

// LastSegment returns everything after the final slash of p. Trailing
// slashes are stripped first.
func LastSegment(p string) string {
	p = strings.TrimRight(p, "/")
	if i := strings.LastIndex(p, "/"); i >= 0 {
		return p[i+1:]
	}
	return p
}

// ClusterDN extracts the cluster DN enclosing p. The second return value is
// false when p does not descend from a cluster subtree.
func ClusterDN(p string) (string, bool) {
	return matchFirst(p, clusterPatterns...)
}

// NodeDN extracts the node DN prefix of p.
func NodeDN(p string) (string, bool) {
	return matchFirst(p, nodePattern)
}

// ServiceDN extracts the service DN prefix of p.
func ServiceDN(p string) (string, bool) {
	return matchFirst(p, servicePattern)
}

// DiskDN extracts the disk DN prefix of p.
func DiskDN(p string) (string, bool) {
	return matchFirst(p, diskPattern)
}

// NetworkDN extracts the network DN prefix of p.
func NetworkDN(p string) (string, bool) {
	return matchFirst(p, networkPattern)
}

func matchFirst(p string, patterns ...*regexp.Regexp) (string, bool) {
	p = strings.TrimRight(p, "/")
	for _, re := range patterns {
		if m := re.FindStringSubmatch(p); m != nil {
			return m[1], true
		}
	}
	return "", false
}

// IDFromDN converts a DN into an identifier that survives as a single path
// segment: "/" becomes "--" and "." becomes "__".
func IDFromDN(dn string) string {
	id := strings.ReplaceAll(dn, "/", "--")
	return strings.ReplaceAll(id, ".", "__")
}

// DNFromID reverses IDFromDN. The round trip is exact for DNs whose
// segments contain neither "--" nor "__".
func DNFromID(id string) string {
	dn := strings.ReplaceAll(id, "__", ".")
	return strings.ReplaceAll(dn, "--", "/")
}

// Join concatenates DN fragments with single slashes, trimming redundant
// separators between them.
func Join(elems ...string) string {
	parts := make([]string, 0, len(elems))
	for _, e := range elems {
		e = strings.Trim(e, "/")
		if e != "" {
			parts = append(parts, e)
		}
	}
	return strings.Join(parts, "/")
}
