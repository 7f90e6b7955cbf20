package geo

import (
	"fmt"
)

// ReferenceSet is a named, static collection of anchor points. Labeled sets
// (Labels non-empty) also report which member is nearest.
type ReferenceSet struct {
	Name   string
	Points []GeoPoint
	Labels []string

	// DistanceColumn and LabelColumn name the output columns. Empty values
	// fall back to min_distance_to_<Name> and nearest_<Name>_label.
	DistanceColumn string
	LabelColumn    string
}

// Labeled reports whether the set carries a label per point.
func (s ReferenceSet) Labeled() bool { return len(s.Labels) > 0 }

// DistanceColumnName returns the output column for the set's minimum distance.
func (s ReferenceSet) DistanceColumnName() string {
	if s.DistanceColumn != "" {
		return s.DistanceColumn
	}
	return fmt.Sprintf("min_distance_to_%s", s.Name)
}

// LabelColumnName returns the output column for the nearest member's label.
func (s ReferenceSet) LabelColumnName() string {
	if s.LabelColumn != "" {
		return s.LabelColumn
	}
	return fmt.Sprintf("nearest_%s_label", s.Name)
}

// goldenQuadrilateral lists the major-city anchors in a fixed order; ties in
// nearest-city lookup resolve to the earlier entry.
var goldenQuadrilateral = []struct {
	name string
	pt   GeoPoint
}{
	{"Delhi", GeoPoint{28.6139, 77.2090}},
	{"Mumbai", GeoPoint{19.0760, 72.8777}},
	{"Kolkata", GeoPoint{22.5726, 88.3639}},
	{"Chennai", GeoPoint{13.0827, 80.2707}},
	{"Ahmedabad", GeoPoint{23.0225, 72.5714}},
	{"Pune", GeoPoint{18.5204, 73.8567}},
	{"Surat", GeoPoint{21.1702, 72.8311}},
	{"Vadodara", GeoPoint{22.3072, 73.1812}},
	{"Jaipur", GeoPoint{26.9124, 75.7873}},
	{"Udaipur", GeoPoint{24.5854, 73.7125}},
	{"Nagpur", GeoPoint{21.1458, 79.0882}},
	{"Varanasi", GeoPoint{25.3176, 82.9739}},
	{"Allahabad", GeoPoint{25.4358, 81.8463}},
	{"Kanpur", GeoPoint{26.4499, 80.3319}},
	{"Agra", GeoPoint{27.1767, 78.0081}},
	{"Gwalior", GeoPoint{26.2183, 78.1828}},
	{"Ranchi", GeoPoint{23.3441, 85.3096}},
	{"Bhubaneswar", GeoPoint{20.2961, 85.8245}},
	{"Vishakhapatnam", GeoPoint{17.6868, 83.2185}},
}

var delhiMeerutExpressway = []GeoPoint{
	{28.6139, 77.2090},
	{28.6270, 77.2773},
	{28.7440, 77.4995},
	{28.9845, 77.7064},
	{29.0832, 77.7109},
}

// Western Dedicated Freight Corridor.
var westernDFC = []GeoPoint{
	{28.7041, 77.1025},
	{27.0238, 74.2179},
	{26.9124, 75.7873},
	{25.4358, 78.5685},
	{22.7196, 75.8577},
	{23.2599, 77.4126},
	{21.1702, 72.8311},
	{19.0760, 72.8777},
}

// Eastern Dedicated Freight Corridor: Ludhiana, Kanpur, Sonnagar.
var easternDFC = []GeoPoint{
	{30.9000, 75.8573},
	{26.4499, 80.3319},
	{24.9807, 84.0374},
}

// DefaultReferenceSets returns fresh copies of the built-in city and
// corridor sets in their canonical order.
func DefaultReferenceSets() []ReferenceSet {
	gq := ReferenceSet{
		Name:           "GQ",
		DistanceColumn: "min_distance_to_GQ",
		LabelColumn:    "nearest_city_to_GQ",
	}
	for _, c := range goldenQuadrilateral {
		gq.Points = append(gq.Points, c.pt)
		gq.Labels = append(gq.Labels, c.name)
	}

	return []ReferenceSet{
		gq,
		{Name: "Delhi_Meerut", Points: clonePoints(delhiMeerutExpressway), DistanceColumn: "distance_to_Delhi_Meerut"},
		{Name: "WDFC", Points: clonePoints(westernDFC), DistanceColumn: "distance_to_WDFC"},
		{Name: "EDFC", Points: clonePoints(easternDFC), DistanceColumn: "distance_to_EDFC"},
	}
}

func clonePoints(src []GeoPoint) []GeoPoint {
	out := make([]GeoPoint, len(src))
	copy(out, src)
	return out
}
