package geo

import (
	"fmt"
	"math"
)

const earthRadiusM = 6371000.0

type PointLatLon struct {
	Lat float64
	Lon float64
}

func (p PointLatLon) String() string {
	return fmt.Sprintf("%.5f %.5f", p.Lat, p.Lon)
}

// DistanceM returns the great-circle distance between two points in metres.
func DistanceM(a PointLatLon, b PointLatLon) float64 {
	latA := a.Lat * math.Pi / 180
	latB := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(latA)*math.Cos(latB)*math.Sin(dLon/2)*math.Sin(dLon/2)

	return 2 * earthRadiusM * math.Asin(math.Sqrt(h))
}

// BearingDeg returns the initial bearing from a to b in degrees, 0 = north,
// clockwise.
func BearingDeg(a PointLatLon, b PointLatLon) float64 {
	latA := a.Lat * math.Pi / 180
	latB := b.Lat * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	y := math.Sin(dLon) * math.Cos(latB)
	x := math.Cos(latA)*math.Sin(latB) - math.Sin(latA)*math.Cos(latB)*math.Cos(dLon)

	deg := math.Atan2(y, x) * 180 / math.Pi
	if deg < 0 {
		deg += 360
	}
	return deg
}

// TurnAngleDeg returns the signed turn angle between an inbound and an
// outbound bearing, normalised to (-180, 180]. Positive is a right turn.
func TurnAngleDeg(inbound float64, outbound float64) float64 {
	angle := outbound - inbound
	for angle > 180 {
		angle -= 360
	}
	for angle <= -180 {
		angle += 360
	}
	return angle
}

type RectLatLon struct {
	MinLat float64
	MinLon float64
	MaxLat float64
	MaxLon float64
}

func (r RectLatLon) Contains(p PointLatLon) bool {
	return p.Lat >= r.MinLat && p.Lat <= r.MaxLat && p.Lon >= r.MinLon && p.Lon <= r.MaxLon
}

func (r RectLatLon) Intersects(o RectLatLon) bool {
	return r.MinLat <= o.MaxLat && o.MinLat <= r.MaxLat && r.MinLon <= o.MaxLon && o.MinLon <= r.MaxLon
}

func (r RectLatLon) Center() PointLatLon {
	return PointLatLon{Lat: (r.MinLat + r.MaxLat) / 2, Lon: (r.MinLon + r.MaxLon) / 2}
}

// RectByCenterAndSizeM builds a rectangle of the given side length in metres
// centred on p.
func RectByCenterAndSizeM(p PointLatLon, sideM float64) RectLatLon {
	halfLat := (sideM / 2) / earthRadiusM * 180 / math.Pi
	halfLon := halfLat / math.Cos(p.Lat*math.Pi/180)
	return RectLatLon{
		MinLat: p.Lat - halfLat,
		MinLon: p.Lon - halfLon,
		MaxLat: p.Lat + halfLat,
		MaxLon: p.Lon + halfLon,
	}
}
