package detect

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/quay/claircore/osrelease"
)

// Distribution families whose kernel packaging kernsweep understands.
const (
	OSTypeDebian   = "debian"
	OSTypeUbuntu   = "ubuntu"
	OSTypeRaspbian = "raspbian"
)

// osReleasePath is where systemd distributions describe themselves.
// Overridable in tests.
var osReleasePath = "/etc/os-release"

// OSInfo contains the host OS type and version information.
type OSInfo struct {
	Type    string
	Version string
	// Like holds ID_LIKE, the parent distributions a derivative
	// claims compatibility with.
	Like string
}

// DebianFamily reports whether the distribution manages kernels with
// dpkg the way kernsweep expects. Derivatives such as Mint or Kali
// qualify through ID_LIKE.
func (o *OSInfo) DebianFamily() bool {
	switch o.Type {
	case OSTypeDebian, OSTypeUbuntu, OSTypeRaspbian:
		return true
	}
	return strings.Contains(o.Like, OSTypeDebian) || strings.Contains(o.Like, OSTypeUbuntu)
}

// HostOS identifies the host distribution from os-release data.
func HostOS(ctx context.Context) (*OSInfo, error) {
	f, err := os.Open(osReleasePath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read os-release")
	}
	defer f.Close()
	return parseOSRelease(ctx, f)
}

func parseOSRelease(ctx context.Context, r io.Reader) (*OSInfo, error) {
	osData, err := osrelease.Parse(ctx, r)
	if err != nil {
		return nil, errors.Wrap(err, "unable to parse os-release data")
	}

	osType := strings.ToLower(osData["NAME"])
	var normalizedType string
	switch {
	case strings.Contains(osType, OSTypeUbuntu):
		normalizedType = OSTypeUbuntu
	case strings.Contains(osType, OSTypeRaspbian):
		normalizedType = OSTypeRaspbian
	case strings.Contains(osType, OSTypeDebian):
		normalizedType = OSTypeDebian
	default:
		normalizedType = strings.ToLower(osData["ID"])
	}

	return &OSInfo{
		Type:    normalizedType,
		Version: osData["VERSION_ID"],
		Like:    strings.ToLower(osData["ID_LIKE"]),
	}, nil
}
