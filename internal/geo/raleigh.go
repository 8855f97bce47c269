package geo

// RaleighDowntown is the reference point for transit scoring.
var RaleighDowntown = LatLng{Lat: 35.7796, Lng: -78.6382}

// RaleighZoneCenters are the approximate zip code centers, in lookup order.
var RaleighZoneCenters = []ZoneCenter{
	{ID: "27601", Lat: 35.7796, Lng: -78.6382, Radius: 0.02},
	{ID: "27603", Lat: 35.7350, Lng: -78.6650, Radius: 0.04},
	{ID: "27604", Lat: 35.8050, Lng: -78.5800, Radius: 0.04},
	{ID: "27605", Lat: 35.7950, Lng: -78.6550, Radius: 0.025},
	{ID: "27606", Lat: 35.7600, Lng: -78.7100, Radius: 0.04},
	{ID: "27607", Lat: 35.8100, Lng: -78.6800, Radius: 0.03},
	{ID: "27608", Lat: 35.8050, Lng: -78.6350, Radius: 0.02},
	{ID: "27609", Lat: 35.8400, Lng: -78.6300, Radius: 0.04},
	{ID: "27610", Lat: 35.7500, Lng: -78.5500, Radius: 0.05},
	{ID: "27612", Lat: 35.8450, Lng: -78.7050, Radius: 0.04},
	{ID: "27613", Lat: 35.8900, Lng: -78.7500, Radius: 0.05},
	{ID: "27614", Lat: 35.9500, Lng: -78.6500, Radius: 0.05},
	{ID: "27615", Lat: 35.8700, Lng: -78.6200, Radius: 0.04},
	{ID: "27616", Lat: 35.8650, Lng: -78.5350, Radius: 0.05},
	{ID: "27617", Lat: 35.9000, Lng: -78.8000, Radius: 0.04},
}

// RaleighUrbanRings assigns each Raleigh zip to a ring.
var RaleighUrbanRings = RingTable{
	"27601": RingDowntown,
	"27603": RingNearDowntown,
	"27604": RingNearDowntown,
	"27605": RingNearDowntown,
	"27607": RingNearDowntown,
	"27608": RingNearDowntown,
	"27606": RingInnerSuburb,
	"27609": RingInnerSuburb,
	"27610": RingInnerSuburb,
	"27612": RingInnerSuburb,
	"27615": RingInnerSuburb,
	"27616": RingInnerSuburb,
	"27613": RingOuterSuburb,
	"27614": RingOuterSuburb,
	"27617": RingOuterSuburb,
}

// RaleighCorridors are the planned bus rapid transit lines.
var RaleighCorridors = []Corridor{
	{Name: "New Bern Ave (Eastern)", Waypoints: []LatLng{{35.7796, -78.6382}, {35.7800, -78.5500}}},
	{Name: "Capital Blvd (Southern)", Waypoints: []LatLng{{35.7796, -78.6382}, {35.7000, -78.6300}}},
	{Name: "Western Blvd", Waypoints: []LatLng{{35.7796, -78.6382}, {35.7600, -78.7500}}},
}
