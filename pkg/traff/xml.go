package traff

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"

	"github.com/rs/zerolog/log"
	"github.com/traffgo/traffgo/pkg/geo"
	"github.com/traffgo/traffgo/pkg/mwm"
	"github.com/traffgo/traffgo/pkg/traffic"
)

// Raw document structure. Attributes are kept as strings so that a malformed
// value drops just the node it belongs to, never the whole document.

type xmlFeed struct {
	XMLName  xml.Name     `xml:"feed"`
	Messages []xmlMessage `xml:"message"`
}

type xmlMessage struct {
	ID             string          `xml:"id,attr"`
	ReceiveTime    string          `xml:"receive_time,attr"`
	UpdateTime     string          `xml:"update_time,attr"`
	ExpirationTime string          `xml:"expiration_time,attr"`
	StartTime      string          `xml:"start_time,attr,omitempty"`
	EndTime        string          `xml:"end_time,attr,omitempty"`
	Cancellation   string          `xml:"cancellation,attr"`
	Forecast       string          `xml:"forecast,attr"`
	Merge          *xmlMerge       `xml:"merge"`
	Location       *xmlLocation    `xml:"location"`
	Events         *xmlEvents      `xml:"events"`
	MwmColoring    *xmlMwmColoring `xml:"mwm_coloring"`
}

type xmlMerge struct {
	Replaces []xmlReplaces `xml:"replaces"`
}

type xmlReplaces struct {
	ID string `xml:"id,attr"`
}

type xmlPoint struct {
	JunctionName string `xml:"junction_name,attr,omitempty"`
	JunctionRef  string `xml:"junction_ref,attr,omitempty"`
	Distance     string `xml:"distance,attr,omitempty"`
	Coordinates  string `xml:",chardata"`
}

type xmlLocation struct {
	Country        string    `xml:"country,attr,omitempty"`
	Destination    string    `xml:"destination,attr,omitempty"`
	Direction      string    `xml:"direction,attr,omitempty"`
	Directionality string    `xml:"directionality,attr"`
	Fuzziness      string    `xml:"fuzziness,attr,omitempty"`
	Origin         string    `xml:"origin,attr,omitempty"`
	Ramps          string    `xml:"ramps,attr,omitempty"`
	RoadClass      string    `xml:"road_class,attr,omitempty"`
	RoadRef        string    `xml:"road_ref,attr,omitempty"`
	RoadName       string    `xml:"road_name,attr,omitempty"`
	Territory      string    `xml:"territory,attr,omitempty"`
	Town           string    `xml:"town,attr,omitempty"`
	From           *xmlPoint `xml:"from"`
	At             *xmlPoint `xml:"at"`
	Via            *xmlPoint `xml:"via"`
	NotVia         *xmlPoint `xml:"not_via"`
	To             *xmlPoint `xml:"to"`
}

type xmlEvents struct {
	Events []xmlEvent `xml:"event"`
}

type xmlEvent struct {
	Class       string `xml:"class,attr"`
	Type        string `xml:"type,attr"`
	Length      string `xml:"length,attr,omitempty"`
	Probability string `xml:"probability,attr,omitempty"`
	QDuration   string `xml:"q_duration,attr,omitempty"`
	Speed       string `xml:"speed,attr,omitempty"`
}

type xmlMwmColoring struct {
	Colorings []xmlColoring `xml:"coloring"`
}

type xmlColoring struct {
	CountryName string       `xml:"country_name,attr"`
	Version     string       `xml:"version,attr"`
	Segments    []xmlSegment `xml:"segment"`
}

type xmlSegment struct {
	Fid        string `xml:"fid,attr"`
	Idx        string `xml:"idx,attr"`
	Dir        string `xml:"dir,attr"`
	SpeedGroup string `xml:"speed_group,attr"`
}

var latLonRegex = regexp.MustCompile(`([+-]?[0-9]*\.?[0-9]+)\s+([+-]?[0-9]*\.?[0-9]+)`)

func pointFromXml(raw *xmlPoint, name string) *Point {
	if raw == nil {
		return nil
	}

	match := latLonRegex.FindStringSubmatch(raw.Coordinates)
	if match == nil {
		log.Warn().Msgf("%s has no coordinates, ignoring", name)
		return nil
	}
	lat, errLat := strconv.ParseFloat(match[1], 64)
	lon, errLon := strconv.ParseFloat(match[2], 64)
	if errLat != nil || errLon != nil {
		log.Warn().Msgf("Not a valid coordinate pair: %q", raw.Coordinates)
		return nil
	}

	point := &Point{
		Coordinates:  geo.PointLatLon{Lat: lat, Lon: lon},
		JunctionName: raw.JunctionName,
		JunctionRef:  raw.JunctionRef,
	}
	if raw.Distance != "" {
		if distance, err := strconv.ParseFloat(raw.Distance, 64); err == nil {
			point.Distance = &distance
		}
	}
	return point
}

func locationFromXml(raw *xmlLocation) *Location {
	if raw == nil {
		return nil
	}

	location := &Location{
		From:        pointFromXml(raw.From, "from"),
		At:          pointFromXml(raw.At, "at"),
		Via:         pointFromXml(raw.Via, "via"),
		NotVia:      pointFromXml(raw.NotVia, "not_via"),
		To:          pointFromXml(raw.To, "to"),
		Country:     raw.Country,
		Territory:   raw.Territory,
		Town:        raw.Town,
		Destination: raw.Destination,
		Direction:   raw.Direction,
		Origin:      raw.Origin,
		RoadName:    raw.RoadName,
		RoadRef:     raw.RoadRef,
	}

	if !location.IsValid() {
		log.Warn().Msg("Fewer than 2 points of from/to/at specified, ignoring location")
		return nil
	}

	if raw.Directionality == "BOTH_DIRECTIONS" {
		location.Directionality = BothDirections
	}
	if raw.Fuzziness == "LOW_RES" {
		location.Fuzziness = LowRes
	}
	switch raw.Ramps {
	case "ALL_RAMPS":
		location.Ramps = RampsAll
	case "ENTRY_RAMP":
		location.Ramps = RampsEntry
	case "EXIT_RAMP":
		location.Ramps = RampsExit
	}
	switch raw.RoadClass {
	case "MOTORWAY":
		location.RoadClass = roadClassPtr(Motorway)
	case "TRUNK":
		location.RoadClass = roadClassPtr(Trunk)
	case "PRIMARY":
		location.RoadClass = roadClassPtr(Primary)
	case "SECONDARY":
		location.RoadClass = roadClassPtr(Secondary)
	case "TERTIARY":
		location.RoadClass = roadClassPtr(Tertiary)
	case "OTHER":
		location.RoadClass = roadClassPtr(OtherRoad)
	}

	return location
}

func roadClassPtr(class RoadClass) *RoadClass {
	return &class
}

func intAttr(value string) *int {
	if value == "" {
		return nil
	}
	if number, err := strconv.Atoi(value); err == nil {
		return &number
	}
	return nil
}

func eventFromXml(raw xmlEvent) (Event, bool) {
	if raw.Class == "" {
		log.Warn().Msg("No event class specified, ignoring")
		return Event{}, false
	}
	class := EventClass(raw.Class)
	if !knownEventClasses[class] {
		log.Warn().Msgf("Unknown event class %q, ignoring", raw.Class)
		return Event{}, false
	}

	if raw.Type == "" {
		log.Warn().Msg("No event type specified, ignoring")
		return Event{}, false
	}
	if len(raw.Type) <= len(raw.Class) || raw.Type[:len(raw.Class)+1] != raw.Class+"_" {
		log.Warn().Msgf("Event type %q does not match event class %q (ignoring)", raw.Type, raw.Class)
		return Event{}, false
	}
	eventType := EventType(raw.Type)
	if !knownEventTypes[eventType] {
		log.Warn().Msgf("Unknown event type %q, ignoring", raw.Type)
		return Event{}, false
	}

	event := Event{
		Class:       class,
		Type:        eventType,
		Length:      intAttr(raw.Length),
		Probability: intAttr(raw.Probability),
		Speed:       intAttr(raw.Speed),
	}
	if raw.QDuration != "" {
		if minutes, err := ParseDurationMins(raw.QDuration); err == nil {
			event.DurationMins = &minutes
		} else {
			log.Info().Msg(err.Error())
		}
	}
	return event, true
}

func coloringFromXml(raw *xmlMwmColoring) MultiMwmColoring {
	if raw == nil || len(raw.Colorings) == 0 {
		return nil
	}

	result := MultiMwmColoring{}
	for _, rawColoring := range raw.Colorings {
		if rawColoring.CountryName == "" {
			continue
		}
		version, err := strconv.ParseInt(rawColoring.Version, 10, 64)
		if err != nil {
			continue
		}

		coloring := traffic.Coloring{}
		valid := true
		for _, rawSegment := range rawColoring.Segments {
			fid, errFid := strconv.ParseUint(rawSegment.Fid, 10, 32)
			idx, errIdx := strconv.ParseUint(rawSegment.Idx, 10, 16)
			dir, errDir := strconv.ParseUint(rawSegment.Dir, 10, 8)
			group, groupOk := traffic.ParseSpeedGroup(rawSegment.SpeedGroup)
			if errFid != nil || errIdx != nil || errDir != nil || !groupOk || dir > 1 {
				valid = false
				break
			}
			coloring[traffic.RoadSegmentId{Fid: uint32(fid), Idx: uint16(idx), Dir: uint8(dir)}] = group
		}
		// A single bad segment discards the whole coloring; it will be
		// regenerated from scratch by the decoder.
		if !valid {
			log.Warn().Msgf("Discarding stored coloring for %s", rawColoring.CountryName)
			continue
		}
		result[mwm.ID{Name: rawColoring.CountryName, Version: version}] = coloring
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

func boolAttr(value string, defaultValue bool) bool {
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func messageFromXml(raw xmlMessage) (Message, bool) {
	message := Message{ID: raw.ID}
	if message.ID == "" {
		log.Warn().Msg("Message has no id")
		return message, false
	}

	var err error
	if message.ReceiveTime, err = ParseIsoTime(raw.ReceiveTime); err != nil {
		log.Warn().Msgf("Message %s has no receive_time", message.ID)
		return message, false
	}
	if message.UpdateTime, err = ParseIsoTime(raw.UpdateTime); err != nil {
		log.Warn().Msgf("Message %s has no update_time", message.ID)
		return message, false
	}
	if message.ExpirationTime, err = ParseIsoTime(raw.ExpirationTime); err != nil {
		log.Warn().Msgf("Message %s has no expiration_time", message.ID)
		return message, false
	}

	if raw.StartTime != "" {
		if startTime, err := ParseIsoTime(raw.StartTime); err == nil {
			message.StartTime = &startTime
		}
	}
	if raw.EndTime != "" {
		if endTime, err := ParseIsoTime(raw.EndTime); err == nil {
			message.EndTime = &endTime
		}
	}

	message.Cancellation = boolAttr(raw.Cancellation, false)
	message.Forecast = boolAttr(raw.Forecast, false)

	if raw.Merge != nil {
		for _, replaces := range raw.Merge.Replaces {
			if replaces.ID != "" {
				message.Replaces = append(message.Replaces, replaces.ID)
			} else {
				log.Warn().Msg("Could not parse merge element, skipping")
			}
		}
	}

	// Cancellation messages carry no location or events.
	if !message.Cancellation {
		message.Location = locationFromXml(raw.Location)
		if message.Location == nil {
			log.Warn().Msgf("Message %s has no location but is not a cancellation message", message.ID)
			return message, false
		}
		message.Decoded = coloringFromXml(raw.MwmColoring)

		if raw.Events != nil {
			for _, rawEvent := range raw.Events.Events {
				if event, ok := eventFromXml(rawEvent); ok {
					message.Events = append(message.Events, event)
				} else {
					log.Warn().Msg("Could not parse event, skipping")
				}
			}
		}
		if len(message.Events) == 0 {
			log.Warn().Msgf("Message %s has no events but is not a cancellation message", message.ID)
			return message, false
		}
	}

	return message, true
}

func feedFromXml(raw xmlFeed) (Feed, error) {
	if len(raw.Messages) == 0 {
		return Feed{}, nil
	}

	feed := Feed{}
	for _, rawMessage := range raw.Messages {
		if message, ok := messageFromXml(rawMessage); ok {
			feed = append(feed, message)
		} else {
			log.Warn().Msg("Could not parse message, skipping")
		}
	}
	// Parsing fails only if every message present failed.
	if len(feed) == 0 {
		return nil, errors.New("no valid messages in feed")
	}
	return feed, nil
}

// ParseFeed reads a TraFF feed document. Malformed points, events and
// messages are skipped individually; a document with zero messages is a
// valid empty feed. ParseFeed never panics on malformed input.
func ParseFeed(reader io.Reader) (Feed, error) {
	var raw xmlFeed
	decoder := xml.NewDecoder(reader)
	if err := decoder.Decode(&raw); err != nil {
		return nil, fmt.Errorf("parsing feed document: %w", err)
	}
	return feedFromXml(raw)
}

func pointToXml(point *Point) *xmlPoint {
	if point == nil {
		return nil
	}
	raw := &xmlPoint{
		Coordinates:  fmt.Sprintf("%+.5f %+.5f", point.Coordinates.Lat, point.Coordinates.Lon),
		JunctionName: point.JunctionName,
		JunctionRef:  point.JunctionRef,
	}
	if point.Distance != nil {
		raw.Distance = strconv.FormatFloat(*point.Distance, 'f', -1, 64)
	}
	return raw
}

func intAttrString(value *int) string {
	if value == nil {
		return ""
	}
	return strconv.Itoa(*value)
}

func messageToXml(message Message) xmlMessage {
	raw := xmlMessage{
		ID:             message.ID,
		ReceiveTime:    FormatIsoTime(message.ReceiveTime),
		UpdateTime:     FormatIsoTime(message.UpdateTime),
		ExpirationTime: FormatIsoTime(message.ExpirationTime),
		Cancellation:   strconv.FormatBool(message.Cancellation),
		Forecast:       strconv.FormatBool(message.Forecast),
	}
	if message.StartTime != nil {
		raw.StartTime = FormatIsoTime(*message.StartTime)
	}
	if message.EndTime != nil {
		raw.EndTime = FormatIsoTime(*message.EndTime)
	}

	if len(message.Replaces) > 0 {
		raw.Merge = &xmlMerge{}
		for _, id := range message.Replaces {
			raw.Merge.Replaces = append(raw.Merge.Replaces, xmlReplaces{ID: id})
		}
	}

	if message.Location != nil {
		location := message.Location
		rawLocation := &xmlLocation{
			Country:     location.Country,
			Destination: location.Destination,
			Direction:   location.Direction,
			Origin:      location.Origin,
			Territory:   location.Territory,
			Town:        location.Town,
			RoadName:    location.RoadName,
			RoadRef:     location.RoadRef,
			From:        pointToXml(location.From),
			At:          pointToXml(location.At),
			Via:         pointToXml(location.Via),
			NotVia:      pointToXml(location.NotVia),
			To:          pointToXml(location.To),
		}
		rawLocation.Directionality = location.Directionality.String()
		if location.Fuzziness == LowRes {
			rawLocation.Fuzziness = location.Fuzziness.String()
		}
		if location.Ramps != RampsNone {
			rawLocation.Ramps = location.Ramps.String()
		}
		if location.RoadClass != nil {
			rawLocation.RoadClass = location.RoadClass.String()
		}
		raw.Location = rawLocation
	}

	if len(message.Events) > 0 {
		raw.Events = &xmlEvents{}
		for _, event := range message.Events {
			rawEvent := xmlEvent{
				Class:       string(event.Class),
				Type:        string(event.Type),
				Length:      intAttrString(event.Length),
				Probability: intAttrString(event.Probability),
				Speed:       intAttrString(event.Speed),
			}
			if event.DurationMins != nil {
				rawEvent.QDuration = FormatDurationMins(*event.DurationMins)
			}
			raw.Events.Events = append(raw.Events.Events, rawEvent)
		}
	}

	if len(message.Decoded) > 0 {
		raw.MwmColoring = &xmlMwmColoring{}
		for mwmID, coloring := range message.Decoded {
			rawColoring := xmlColoring{
				CountryName: mwmID.Name,
				Version:     strconv.FormatInt(mwmID.Version, 10),
			}
			for segment, group := range coloring {
				rawColoring.Segments = append(rawColoring.Segments, xmlSegment{
					Fid:        strconv.FormatUint(uint64(segment.Fid), 10),
					Idx:        strconv.FormatUint(uint64(segment.Idx), 10),
					Dir:        strconv.FormatUint(uint64(segment.Dir), 10),
					SpeedGroup: group.String(),
				})
			}
			raw.MwmColoring.Colorings = append(raw.MwmColoring.Colorings, rawColoring)
		}
	}

	return raw
}

// ToXml renders the feed as a TraFF document. The output is the structural
// inverse of ParseFeed, not necessarily byte-identical to the input.
func (f Feed) ToXml() ([]byte, error) {
	raw := xmlFeed{}
	for _, message := range f {
		raw.Messages = append(raw.Messages, messageToXml(message))
	}
	return xml.MarshalIndent(raw, "", "  ")
}
