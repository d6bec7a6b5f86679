package kernel

import (
	"regexp"
	"strings"
)

const commonSuffix = "-common"

// platformTail matches the trailing per-architecture segment of a
// kernel version, e.g. "-amd64", "-generic", "-2712".
var platformTail = regexp.MustCompile(`-[a-z0-9]+$`)

// MatchHeaders returns the header packages whose kernel version is
// not protected, preserving input order. Regular header packages must
// match a protected version exactly. Packages ending in "-common"
// back every per-architecture build of a release, so they match
// against the protected versions with their platform segment
// stripped.
func MatchHeaders(headers []string, protectedVersions map[string]struct{}) []string {
	protectedBases := make(map[string]struct{}, len(protectedVersions))
	for v := range protectedVersions {
		protectedBases[platformTail.ReplaceAllString(v, "")] = struct{}{}
	}

	obsolete := []string{}
	for _, header := range headers {
		token := strings.TrimPrefix(header, HeaderPrefix)

		if strings.HasSuffix(token, commonSuffix) {
			base := strings.TrimSuffix(token, commonSuffix)
			if _, ok := protectedBases[base]; !ok {
				obsolete = append(obsolete, header)
			}
			continue
		}

		if _, ok := protectedVersions[token]; !ok {
			obsolete = append(obsolete, header)
		}
	}
	return obsolete
}
