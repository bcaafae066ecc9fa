package rnxopt

import "math"

// WGS84 ellipsoid constants, grounded on the teacher's RE_WGS84/FE_WGS84.
const (
	wgs84A = 6378137.0
	wgs84F = 1.0 / 298.257223563
)

// AntennaDelta derives an antenna-delta triple {h, e, n} (metres) from a
// station-info record, grounded on the teacher's SetOptSta antenna-delta
// branch: ENU deltas remap directly, XYZ deltas are converted through the
// station's ECEF position via geodetic latitude/longitude. Falls back to
// the bare antenna height when no delta vector is present at all.
func AntennaDelta(del [3]float64, delType int, pos [3]float64, hgt float64) [3]float64 {
	if norm3(del) == 0 {
		return [3]float64{hgt, 0, 0}
	}
	if delType == 0 {
		return [3]float64{del[2], del[0], del[1]} // enu -> h,e,n
	}
	if norm3(pos) == 0 {
		return [3]float64{hgt, 0, 0}
	}
	lat, lon, _ := ecef2Pos(pos)
	enu := ecef2Enu(lat, lon, del)
	return [3]float64{enu[2], enu[0], enu[1]} // h,e,n
}

func norm3(v [3]float64) float64 {
	return math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
}

// ecef2Pos converts an ECEF position to geodetic {lat, lon, height}
// (radians, radians, metres) by the same iterative solve as Ecef2Pos.
func ecef2Pos(r [3]float64) (lat, lon, h float64) {
	e2 := wgs84F * (2.0 - wgs84F)
	r2 := r[0]*r[0] + r[1]*r[1]
	v := wgs84A
	var z, zk float64
	z = r[2]
	for math.Abs(z-zk) >= 1e-4 {
		zk = z
		sinp := z / math.Sqrt(r2+z*z)
		v = wgs84A / math.Sqrt(1.0-e2*sinp*sinp)
		z = r[2] + v*e2*sinp
	}
	switch {
	case r2 > 1e-12:
		lat = math.Atan(z / math.Sqrt(r2))
	case r[2] > 0:
		lat = math.Pi / 2
	default:
		lat = -math.Pi / 2
	}
	if r2 > 1e-12 {
		lon = math.Atan2(r[1], r[0])
	}
	h = math.Sqrt(r2+z*z) - v
	return lat, lon, h
}

// ecef2Enu rotates an ECEF vector into the local {e,n,u} tangent frame at
// geodetic (lat, lon), the same rotation as XYZ2Enu/Ecef2Enu.
func ecef2Enu(lat, lon float64, r [3]float64) [3]float64 {
	sinp, cosp := math.Sin(lat), math.Cos(lat)
	sinl, cosl := math.Sin(lon), math.Cos(lon)
	return [3]float64{
		-sinl*r[0] + cosl*r[1],
		-sinp*cosl*r[0] - sinp*sinl*r[1] + cosp*r[2],
		cosp*cosl*r[0] + cosp*sinl*r[1] + sinp*r[2],
	}
}
