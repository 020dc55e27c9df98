package traffic

// SpeedGroup is a bucket for the ratio of the speed of moving traffic to the
// posted speed limit. G0 is the slowest real group, G5 free flow. TempBlock
// marks a temporarily impassable segment and is treated as worse than any
// real group.
type SpeedGroup uint8

const (
	G0 SpeedGroup = iota
	G1
	G2
	G3
	G4
	G5
	TempBlock
	Unknown
)

// Upper bound, in percent of the posted limit, for each group G0..G5.
var speedGroupThresholdPercentage = [...]float64{8, 16, 26, 40, 60, 100}

// GetSpeedGroupByPercentage converts the ratio between the speed of flowing
// traffic and the posted limit (expressed in percent) to a SpeedGroup.
// A value on a bucket boundary belongs to the slower bucket.
func GetSpeedGroupByPercentage(p float64) SpeedGroup {
	for group := G0; group <= G5; group++ {
		if p <= speedGroupThresholdPercentage[group] {
			return group
		}
	}
	return G5
}

// WorseThan reports whether g indicates more severe congestion than other.
// TempBlock is worse than everything else, Unknown is never worse.
func (g SpeedGroup) WorseThan(other SpeedGroup) bool {
	if g == Unknown {
		return false
	}
	if other == Unknown {
		return true
	}
	if g == TempBlock {
		return other != TempBlock
	}
	if other == TempBlock {
		return false
	}
	return g < other
}

func (g SpeedGroup) String() string {
	switch g {
	case G0:
		return "G0"
	case G1:
		return "G1"
	case G2:
		return "G2"
	case G3:
		return "G3"
	case G4:
		return "G4"
	case G5:
		return "G5"
	case TempBlock:
		return "TEMP_BLOCK"
	case Unknown:
		return "UNKNOWN"
	}
	return "UNKNOWN"
}

// ParseSpeedGroup is the inverse of String.
func ParseSpeedGroup(s string) (SpeedGroup, bool) {
	switch s {
	case "G0":
		return G0, true
	case "G1":
		return G1, true
	case "G2":
		return G2, true
	case "G3":
		return G3, true
	case "G4":
		return G4, true
	case "G5":
		return G5, true
	case "TEMP_BLOCK":
		return TempBlock, true
	case "UNKNOWN":
		return Unknown, true
	}
	return Unknown, false
}
