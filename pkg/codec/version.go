package codec

import "fmt"

// versionNone is the reserved raw value meaning "no version".
const versionNone = 0xFFFF

// Version is a software version as GCD descriptors carry it: a uint16 in
// packed decimal, the low two decimal digits being the minor part. 380
// decodes as v3.80. The value 0xFFFF is reserved and means no version.
type Version struct {
	raw uint16
}

// VersionFromRaw builds a Version from its wire value.
func VersionFromRaw(v uint16) Version { return Version{raw: v} }

// NewVersion builds a Version from major and minor parts. minor must be
// below 100 to survive a round-trip through the packed form.
func NewVersion(major uint16, minor uint8) Version {
	return Version{raw: major*100 + uint16(minor)}
}

// IsNone reports whether the version is the reserved "no version" value.
func (v Version) IsNone() bool { return v.raw == versionNone }

// Raw returns the wire value.
func (v Version) Raw() uint16 { return v.raw }

// Major returns the major part, 0 for IsNone versions.
func (v Version) Major() uint16 {
	if v.IsNone() {
		return 0
	}
	return v.raw / 100
}

// Minor returns the minor part, 0 for IsNone versions.
func (v Version) Minor() uint8 {
	if v.IsNone() {
		return 0
	}
	return uint8(v.raw % 100)
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major(), v.Minor())
}
