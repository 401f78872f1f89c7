package ir

import "fmt"

// Version is the format compatibility token, packed as major<<16 | minor.
type Version uint32

// CurrentVersion is the newest version this package reads and writes.
const CurrentVersion = Version(0<<16 | 1)

func MakeVersion(major, minor uint16) Version {
	return Version(uint32(major)<<16 | uint32(minor))
}

func (v Version) Major() uint16 { return uint16(v >> 16) }
func (v Version) Minor() uint16 { return uint16(v) }

// Supported reports whether modules of version v can be read. Only the major
// component decides; minor revisions are additive.
func (v Version) Supported() bool {
	return v.Major() == CurrentVersion.Major()
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major(), v.Minor())
}
