package api

import (
	"sort"

	"golang.org/x/exp/maps"
)

// RegionNames maps the codes accepted by elencoStazioni and returned by the
// regione endpoint to human-readable region names.
var RegionNames = map[int]string{
	0:  "Italia",
	1:  "Lombardia",
	2:  "Liguria",
	3:  "Piemonte",
	4:  "Valle d'Aosta",
	5:  "Lazio",
	6:  "Umbria",
	7:  "Molise",
	8:  "Emilia Romagna",
	9:  "Trentino-Alto Adige",
	10: "Friuli-Venezia Giulia",
	11: "Marche",
	12: "Veneto",
	13: "Toscana",
	14: "Sicilia",
	15: "Basilicata",
	16: "Puglia",
	17: "Calabria",
	18: "Campania",
	19: "Abruzzo",
	20: "Sardegna",
	21: "Provincia autonoma di Trento",
	22: "Provincia autonoma di Bolzano",
}

// MaxRegion is the highest valid region code.
const MaxRegion = 22

// RegionCodes returns every region code in ascending order.
func RegionCodes() []int {
	codes := maps.Keys(RegionNames)
	sort.Ints(codes)
	return codes
}
