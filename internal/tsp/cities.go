package tsp

import "math"

// City is a named location on the globe.
type City struct {
	Name string
	Lat  float64
	Lon  float64
}

// Capitals lists the 32 Mexican state capitals (counting Mexico City),
// the tour instance posed by the course assignment.
var Capitals = []City{
	{"Aguascalientes", 21.8853, -102.2916},
	{"Mexicali", 32.6245, -115.4523},
	{"La Paz", 24.1426, -110.3128},
	{"Campeche", 19.8301, -90.5349},
	{"Saltillo", 25.4383, -100.9737},
	{"Colima", 19.2452, -103.7241},
	{"Tuxtla Gutiérrez", 16.7516, -93.1029},
	{"Chihuahua", 28.6320, -106.0691},
	{"Ciudad de México", 19.4326, -99.1332},
	{"Durango", 24.0277, -104.6532},
	{"Guanajuato", 21.0190, -101.2574},
	{"Chilpancingo", 17.5514, -99.5006},
	{"Pachuca", 20.1011, -98.7591},
	{"Guadalajara", 20.6597, -103.3496},
	{"Toluca", 19.2826, -99.6557},
	{"Morelia", 19.7060, -101.1950},
	{"Cuernavaca", 18.9242, -99.2216},
	{"Tepic", 21.5041, -104.8942},
	{"Monterrey", 25.6866, -100.3161},
	{"Oaxaca", 17.0732, -96.7266},
	{"Puebla", 19.0414, -98.2063},
	{"Querétaro", 20.5888, -100.3899},
	{"Chetumal", 18.5001, -88.2960},
	{"San Luis Potosí", 22.1565, -100.9855},
	{"Culiacán", 24.8091, -107.3940},
	{"Hermosillo", 29.0730, -110.9559},
	{"Villahermosa", 17.9895, -92.9475},
	{"Ciudad Victoria", 23.7369, -99.1411},
	{"Tlaxcala", 19.3139, -98.2404},
	{"Xalapa", 19.5438, -96.9102},
	{"Mérida", 20.9674, -89.5926},
	{"Zacatecas", 22.7709, -102.5832},
}

const earthRadiusKm = 6371.0

// Haversine returns the great-circle distance between two cities in
// kilometers.
func Haversine(a, b City) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}

// DistanceMatrix precomputes pairwise distances between the given cities.
func DistanceMatrix(cities []City) [][]float64 {
	n := len(cities)
	m := make([][]float64, n)
	for i := range m {
		m[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := Haversine(cities[i], cities[j])
			m[i][j] = d
			m[j][i] = d
		}
	}
	return m
}
