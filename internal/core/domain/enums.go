package domain

import "strings"

// TransportMode is the kind of vehicle serving a transport offer.
type TransportMode string

const (
	ModeBus   TransportMode = "bus"
	ModePlane TransportMode = "plane"
	ModeCar   TransportMode = "car"
	ModeShip  TransportMode = "ship"
	ModeTrain TransportMode = "train"
)

// Legacy catalog exports label modes in Russian.
var transportModeAliases = map[string]TransportMode{
	"bus":        ModeBus,
	"plane":      ModePlane,
	"car":        ModeCar,
	"ship":       ModeShip,
	"train":      ModeTrain,
	"ferry":      ModeShip,
	"автобус":    ModeBus,
	"самолет":    ModePlane,
	"самолёт":    ModePlane,
	"автомобиль": ModeCar,
	"пароход":    ModeShip,
	"поезд":      ModeTrain,
}

// ParseTransportMode maps a label onto a canonical mode.
func ParseTransportMode(s string) (TransportMode, error) {
	if m, ok := transportModeAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return m, nil
	}
	return "", Invalidf("unknown transport mode %q", s)
}

// TravelStatus is the lifecycle state of a travel.
type TravelStatus string

const (
	StatusInProgress TravelStatus = "in_progress"
	StatusCompleted  TravelStatus = "completed"
	StatusProcessing TravelStatus = "processing"
)

var travelStatusAliases = map[string]TravelStatus{
	"in_progress": StatusInProgress,
	"completed":   StatusCompleted,
	"processing":  StatusProcessing,
	"в процессе":  StatusInProgress,
	"завершен":    StatusCompleted,
	"завершён":    StatusCompleted,
	"в обработке": StatusProcessing,
	// the legacy database spells this one with a latin B
	"b обработке": StatusProcessing,
}

// ParseTravelStatus maps a label onto a canonical status.
func ParseTravelStatus(s string) (TravelStatus, error) {
	if st, ok := travelStatusAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return st, nil
	}
	return "", Invalidf("unknown travel status %q", s)
}
