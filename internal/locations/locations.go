// Package locations serves the static geography and language lists backing
// the request form. The data ships with the binary; it changes rarely enough
// that a table is not worth it.
package locations

import "sort"

var districtsByState = map[string][]string{
	"andhra pradesh": {"Anantapur", "Chittoor", "Guntur", "Krishna", "Visakhapatnam"},
	"delhi":          {"Central Delhi", "East Delhi", "New Delhi", "North Delhi", "South Delhi", "West Delhi"},
	"gujarat":        {"Ahmedabad", "Rajkot", "Surat", "Vadodara"},
	"karnataka":      {"Bengaluru Urban", "Bengaluru Rural", "Dharwad", "Mysuru", "Mangaluru"},
	"kerala":         {"Ernakulam", "Kozhikode", "Thiruvananthapuram", "Thrissur"},
	"maharashtra":    {"Mumbai", "Mumbai Suburban", "Nagpur", "Nashik", "Pune", "Thane"},
	"rajasthan":      {"Ajmer", "Jaipur", "Jodhpur", "Kota", "Udaipur"},
	"tamil nadu":     {"Chennai", "Coimbatore", "Madurai", "Salem", "Tiruchirappalli"},
	"telangana":      {"Hyderabad", "Karimnagar", "Rangareddy", "Warangal"},
	"uttar pradesh":  {"Agra", "Allahabad", "Ghaziabad", "Kanpur", "Lucknow", "Varanasi"},
	"west bengal":    {"Darjeeling", "Howrah", "Kolkata", "Murshidabad"},
}

var languages = []string{
	"Assamese", "Bengali", "English", "Gujarati", "Hindi", "Kannada",
	"Malayalam", "Marathi", "Odia", "Punjabi", "Tamil", "Telugu", "Urdu",
}

var displayNames = map[string]string{
	"andhra pradesh": "Andhra Pradesh",
	"delhi":          "Delhi",
	"gujarat":        "Gujarat",
	"karnataka":      "Karnataka",
	"kerala":         "Kerala",
	"maharashtra":    "Maharashtra",
	"rajasthan":      "Rajasthan",
	"tamil nadu":     "Tamil Nadu",
	"telangana":      "Telangana",
	"uttar pradesh":  "Uttar Pradesh",
	"west bengal":    "West Bengal",
}

// States returns the supported state names, sorted.
func States() []string {
	out := make([]string, 0, len(displayNames))
	for _, name := range displayNames {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Districts returns the districts of a state, or ok=false for an unknown
// state. Lookup is by the lowercased name the matching engine stores.
func Districts(state string) ([]string, bool) {
	districts, ok := districtsByState[state]
	if !ok {
		return nil, false
	}
	out := make([]string, len(districts))
	copy(out, districts)
	return out, true
}

// Languages returns the supported exam languages.
func Languages() []string {
	out := make([]string, len(languages))
	copy(out, languages)
	return out
}
