package maps

// Default map view, centred on Exeter.
const (
	DefaultLatitude  = 50.7184
	DefaultLongitude = -3.5339
	DefaultZoom      = 13
)

// ReverseRequest carries the pin to look up.
type ReverseRequest struct {
	Lat string `form:"lat" binding:"required"`
	Lng string `form:"lng" binding:"required"`
}

// LookupRequest represents the address search query.
type LookupRequest struct {
	Query string `form:"q" binding:"required,min=3"`
}

// Address is a resolved location returned to the report form.
type Address struct {
	DisplayName string  `json:"displayName"`
	Street      string  `json:"street,omitempty"`
	HouseNumber string  `json:"houseNumber,omitempty"`
	Postcode    string  `json:"postcode,omitempty"`
	Town        string  `json:"town,omitempty"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
}

// MapConfig is the initial map view for the frontend.
type MapConfig struct {
	Center struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
	} `json:"center"`
	Zoom int `json:"zoom"`
}

type nominatimAddress struct {
	Road         string `json:"road"`
	HouseNumber  string `json:"house_number"`
	Postcode     string `json:"postcode"`
	City         string `json:"city"`
	Town         string `json:"town"`
	Village      string `json:"village"`
	Municipality string `json:"municipality"`
	Hamlet       string `json:"hamlet"`
}

// nominatimResponse mirrors the relevant parts of the OSM payloads.
type nominatimResponse struct {
	DisplayName string           `json:"display_name"`
	Lat         string           `json:"lat"`
	Lon         string           `json:"lon"`
	Address     nominatimAddress `json:"address"`
	Error       string           `json:"error"`
}
