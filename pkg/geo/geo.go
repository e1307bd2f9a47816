// Package geo converts geodetic coordinates to points on a sphere.
package geo

import (
	"fmt"

	"github.com/chewxy/math32"

	"github.com/Faultbox/globe/pkg/math"
)

// Axis selects which world axis the poles lie on.
type Axis int

const (
	// AxisZ puts the north pole on +Z and the equator in the XY plane.
	AxisZ Axis = iota
	// AxisY puts the north pole on +Y and the equator in the XZ plane.
	AxisY
)

// ParseAxis parses "z" or "y".
func ParseAxis(s string) (Axis, error) {
	switch s {
	case "z", "Z", "":
		return AxisZ, nil
	case "y", "Y":
		return AxisY, nil
	default:
		return AxisZ, fmt.Errorf("unknown up axis %q (want z or y)", s)
	}
}

func (a Axis) String() string {
	if a == AxisY {
		return "y"
	}
	return "z"
}

// DegToRad converts degrees to radians.
func DegToRad(deg float32) float32 {
	return deg * math32.Pi / 180
}

// RadToDeg converts radians to degrees.
func RadToDeg(rad float32) float32 {
	return rad * 180 / math32.Pi
}

// ToCartesian maps latitude and longitude in degrees onto a sphere of radius height,
// with the pole on +Z:
//
//	x = h·cos(lat)·cos(lon)
//	y = h·cos(lat)·sin(lon)
//	z = h·sin(lat)
//
// Out-of-range angles are not validated; they wrap through the trigonometry.
func ToCartesian(lat, lon, height float32) math.Vec3 {
	sinLat, cosLat := math32.Sincos(DegToRad(lat))
	sinLon, cosLon := math32.Sincos(DegToRad(lon))
	return math.Vec3{
		X: height * cosLat * cosLon,
		Y: height * cosLat * sinLon,
		Z: height * sinLat,
	}
}

// ToCartesianUp is ToCartesian with an explicit pole axis. For AxisY the Z-up point is
// rotated -90° about X, which keeps the frame right-handed: (x, y, z) -> (x, z, -y).
func ToCartesianUp(lat, lon, height float32, up Axis) math.Vec3 {
	p := ToCartesian(lat, lon, height)
	if up == AxisY {
		return math.Vec3{X: p.X, Y: p.Z, Z: -p.Y}
	}
	return p
}

// ToGeodetic is the inverse of ToCartesianUp. The origin maps to (0, 0, 0).
func ToGeodetic(p math.Vec3, up Axis) (lat, lon, height float32) {
	if up == AxisY {
		p = math.Vec3{X: p.X, Y: -p.Z, Z: p.Y}
	}
	height = p.Length()
	if height == 0 {
		return 0, 0, 0
	}
	lat = RadToDeg(math32.Asin(p.Z / height))
	lon = RadToDeg(math32.Atan2(p.Y, p.X))
	return lat, lon, height
}
