package domain

// LocationStatus is the overall state of the simulated GPS fix.
type LocationStatus int

const (
	LocationIdle LocationStatus = iota
	LocationAcquiring
	LocationVerified
)

func (s LocationStatus) String() string {
	switch s {
	case LocationIdle:
		return "Idle"
	case LocationAcquiring:
		return "Acquiring"
	case LocationVerified:
		return "Verified"
	default:
		return "Unknown"
	}
}

// LocationPhase is the step inside an acquisition.
type LocationPhase int

const (
	PhaseSearching LocationPhase = iota
	PhaseTriangulating
	PhaseGeofence
)

// LocationPhaseCount is the number of phases visited before Verified.
const LocationPhaseCount = 3

func (p LocationPhase) String() string {
	switch p {
	case PhaseSearching:
		return "Searching for Satellites..."
	case PhaseTriangulating:
		return "Triangulating Signal..."
	case PhaseGeofence:
		return "Verifying Geofence..."
	default:
		return "Unknown"
	}
}

// LocationCheck is the location sub-flow state. Phase is meaningful only
// while Status is LocationAcquiring.
type LocationCheck struct {
	Status LocationStatus
	Phase  LocationPhase
}

// IsVerified reports whether the geofence check has passed.
func (l LocationCheck) IsVerified() bool {
	return l.Status == LocationVerified
}
