package traff

import (
	"bytes"
	"strings"
	"testing"

	"github.com/traffgo/traffgo/pkg/mwm"
	"github.com/traffgo/traffgo/pkg/traffic"
)

const validMessageXml = `
<message id="msg-1"
  receive_time="2021-04-12T16:37:02Z"
  update_time="2021-04-12T16:37:02Z"
  expiration_time="2021-04-12T17:37:02Z">
  <location directionality="ONE_DIRECTION" road_class="MOTORWAY">
    <from junction_name="Aachen">+50.77661 +6.08752</from>
    <to>+50.79388 +6.10973</to>
  </location>
  <events>
    <event class="CONGESTION" type="CONGESTION_QUEUE" length="2000"/>
  </events>
</message>`

func wrapFeed(messages ...string) string {
	return "<feed>" + strings.Join(messages, "\n") + "</feed>"
}

func TestParseFeed(t *testing.T) {
	feed, err := ParseFeed(strings.NewReader(wrapFeed(validMessageXml)))
	if err != nil {
		t.Fatalf("ParseFeed failed: %v", err)
	}
	if len(feed) != 1 {
		t.Fatalf("expected 1 message, got %d", len(feed))
	}

	message := feed[0]
	if message.ID != "msg-1" {
		t.Errorf("id = %q", message.ID)
	}
	if message.Location == nil || message.Location.From == nil || message.Location.To == nil {
		t.Fatal("location not parsed")
	}
	if message.Location.From.Coordinates.Lat != 50.77661 {
		t.Errorf("from lat = %v", message.Location.From.Coordinates.Lat)
	}
	if message.Location.From.JunctionName != "Aachen" {
		t.Errorf("junction name = %q", message.Location.From.JunctionName)
	}
	if message.Location.RoadClass == nil || *message.Location.RoadClass != Motorway {
		t.Error("road class not parsed")
	}
	if len(message.Events) != 1 || message.Events[0].Type != CongestionQueue {
		t.Fatalf("events = %v", message.Events)
	}
	if message.Events[0].Length == nil || *message.Events[0].Length != 2000 {
		t.Error("event length not parsed")
	}
}

func TestParseFeedEmptyDocument(t *testing.T) {
	feed, err := ParseFeed(strings.NewReader("<feed/>"))
	if err != nil {
		t.Fatalf("empty feed should parse: %v", err)
	}
	if len(feed) != 0 {
		t.Errorf("expected empty feed, got %d messages", len(feed))
	}
}

func TestParseFeedAllMessagesInvalid(t *testing.T) {
	broken := `<message id="msg-broken"
	  receive_time="2021-04-12T16:37:02Z"
	  update_time="2021-04-12T16:37:02Z"
	  expiration_time="2021-04-12T17:37:02Z"/>`

	if _, err := ParseFeed(strings.NewReader(wrapFeed(broken))); err == nil {
		t.Error("feed with only invalid messages should fail to parse")
	}
}

func TestParseFeedSkipsBrokenMessage(t *testing.T) {
	missingTimes := `<message id="msg-no-times"/>`

	feed, err := ParseFeed(strings.NewReader(wrapFeed(missingTimes, validMessageXml)))
	if err != nil {
		t.Fatalf("ParseFeed failed: %v", err)
	}
	if len(feed) != 1 || feed[0].ID != "msg-1" {
		t.Errorf("expected just the valid message, got %v", feed)
	}
}

func TestParseFeedDropsLocationWithBadPoint(t *testing.T) {
	// The from point has no coordinates, so only one valid reference point
	// remains and the whole message is dropped.
	badPoint := `<message id="msg-2"
	  receive_time="2021-04-12T16:37:02Z"
	  update_time="2021-04-12T16:37:02Z"
	  expiration_time="2021-04-12T17:37:02Z">
	  <location directionality="ONE_DIRECTION">
	    <from junction_name="Aachen"></from>
	    <to>+50.79388 +6.10973</to>
	  </location>
	  <events>
	    <event class="CONGESTION" type="CONGESTION_QUEUE"/>
	  </events>
	</message>`

	if _, err := ParseFeed(strings.NewReader(wrapFeed(badPoint))); err == nil {
		t.Error("message with an invalid location should be dropped")
	}
}

func TestParseFeedSkipsUnknownEvents(t *testing.T) {
	mixedEvents := `<message id="msg-3"
	  receive_time="2021-04-12T16:37:02Z"
	  update_time="2021-04-12T16:37:02Z"
	  expiration_time="2021-04-12T17:37:02Z">
	  <location directionality="ONE_DIRECTION">
	    <from>+50.77661 +6.08752</from>
	    <to>+50.79388 +6.10973</to>
	  </location>
	  <events>
	    <event class="CONGESTION" type="CONGESTION_TELEPORTATION"/>
	    <event class="CONGESTION" type="RESTRICTION_CLOSED"/>
	    <event class="CONGESTION" type="CONGESTION_QUEUE"/>
	  </events>
	</message>`

	feed, err := ParseFeed(strings.NewReader(wrapFeed(mixedEvents)))
	if err != nil {
		t.Fatalf("ParseFeed failed: %v", err)
	}
	// The unknown type and the class/type mismatch are skipped.
	if len(feed[0].Events) != 1 || feed[0].Events[0].Type != CongestionQueue {
		t.Errorf("events = %v", feed[0].Events)
	}
}

func TestParseFeedCancellation(t *testing.T) {
	cancellation := `<message id="msg-4"
	  receive_time="2021-04-12T16:37:02Z"
	  update_time="2021-04-12T16:37:02Z"
	  expiration_time="2021-04-12T17:37:02Z"
	  cancellation="true">
	  <merge>
	    <replaces id="msg-1"/>
	    <replaces id="msg-2"/>
	  </merge>
	</message>`

	feed, err := ParseFeed(strings.NewReader(wrapFeed(cancellation)))
	if err != nil {
		t.Fatalf("cancellation without location should parse: %v", err)
	}
	message := feed[0]
	if !message.Cancellation {
		t.Error("cancellation flag not parsed")
	}
	if len(message.Replaces) != 2 || message.Replaces[0] != "msg-1" {
		t.Errorf("replaces = %v", message.Replaces)
	}
}

func TestParseFeedStoredColoring(t *testing.T) {
	withColoring := `<message id="msg-5"
	  receive_time="2021-04-12T16:37:02Z"
	  update_time="2021-04-12T16:37:02Z"
	  expiration_time="2021-04-12T17:37:02Z">
	  <location directionality="ONE_DIRECTION">
	    <from>+50.77661 +6.08752</from>
	    <to>+50.79388 +6.10973</to>
	  </location>
	  <events>
	    <event class="CONGESTION" type="CONGESTION_QUEUE"/>
	  </events>
	  <mwm_coloring>
	    <coloring country_name="Germany_NRW" version="210412">
	      <segment fid="12" idx="3" dir="0" speed_group="G2"/>
	      <segment fid="12" idx="4" dir="0" speed_group="G2"/>
	    </coloring>
	    <coloring country_name="Germany_RLP" version="210412">
	      <segment fid="7" idx="0" dir="9" speed_group="G2"/>
	    </coloring>
	  </mwm_coloring>
	</message>`

	feed, err := ParseFeed(strings.NewReader(wrapFeed(withColoring)))
	if err != nil {
		t.Fatalf("ParseFeed failed: %v", err)
	}

	decoded := feed[0].Decoded
	if len(decoded) != 1 {
		t.Fatalf("expected 1 coloring (the one with the bad segment discarded), got %d", len(decoded))
	}
	coloring := decoded[mwm.ID{Name: "Germany_NRW", Version: 210412}]
	if len(coloring) != 2 {
		t.Fatalf("coloring = %v", coloring)
	}
	segment := traffic.RoadSegmentId{Fid: 12, Idx: 3, Dir: traffic.ForwardDirection}
	if coloring[segment] != traffic.G2 {
		t.Errorf("segment group = %v", coloring[segment])
	}
}

func TestParseFeedGarbage(t *testing.T) {
	if _, err := ParseFeed(strings.NewReader("this is not xml")); err == nil {
		t.Error("garbage input should fail to parse")
	}
}

func TestFeedRoundTrip(t *testing.T) {
	coloring := `<message id="msg-6"
	  receive_time="2021-04-12T16:37:02Z"
	  update_time="2021-04-12T16:37:02Z"
	  expiration_time="2021-04-12T17:37:02Z"
	  end_time="2021-04-12T20:00:00Z"
	  forecast="true">
	  <location directionality="BOTH_DIRECTIONS" fuzziness="LOW_RES" road_class="PRIMARY" road_ref="B57" town="Baesweiler">
	    <from distance="12.5">+50.77661 +6.08752</from>
	    <via>+50.78500 +6.09800</via>
	    <to junction_ref="5">+50.79388 +6.10973</to>
	  </location>
	  <events>
	    <event class="DELAY" type="DELAY_DELAY" q_duration="00:30"/>
	    <event class="RESTRICTION" type="RESTRICTION_SPEED_LIMIT" speed="60"/>
	  </events>
	  <mwm_coloring>
	    <coloring country_name="Germany_NRW" version="210412">
	      <segment fid="12" idx="3" dir="1" speed_group="TempBlock"/>
	    </coloring>
	  </mwm_coloring>
	</message>`

	original, err := ParseFeed(strings.NewReader(wrapFeed(coloring)))
	if err != nil {
		t.Fatalf("ParseFeed failed: %v", err)
	}

	rendered, err := original.ToXml()
	if err != nil {
		t.Fatalf("ToXml failed: %v", err)
	}

	reparsed, err := ParseFeed(bytes.NewReader(rendered))
	if err != nil {
		t.Fatalf("reparsing rendered feed failed: %v", err)
	}
	if len(reparsed) != 1 {
		t.Fatalf("expected 1 message, got %d", len(reparsed))
	}

	a, b := original[0], reparsed[0]
	if a.ID != b.ID || !a.UpdateTime.Equal(b.UpdateTime) || !a.ExpirationTime.Equal(b.ExpirationTime) {
		t.Error("message attributes did not survive the round trip")
	}
	if b.EndTime == nil || !a.EndTime.Equal(*b.EndTime) {
		t.Error("end time did not survive the round trip")
	}
	if a.Forecast != b.Forecast {
		t.Error("forecast flag did not survive the round trip")
	}
	if !a.Location.Equal(b.Location) {
		t.Error("location points did not survive the round trip")
	}
	if b.Location.Directionality != BothDirections || b.Location.Fuzziness != LowRes {
		t.Error("location hints did not survive the round trip")
	}
	if b.Location.RoadClass == nil || *b.Location.RoadClass != Primary {
		t.Error("road class did not survive the round trip")
	}
	if b.Location.From.Distance == nil || *b.Location.From.Distance != 12.5 {
		t.Error("point distance did not survive the round trip")
	}
	if len(b.Events) != 2 {
		t.Fatalf("events = %v", b.Events)
	}
	if b.Events[0].DurationMins == nil || *b.Events[0].DurationMins != 30 {
		t.Error("event duration did not survive the round trip")
	}
	if b.Events[1].Speed == nil || *b.Events[1].Speed != 60 {
		t.Error("event speed did not survive the round trip")
	}
	segment := traffic.RoadSegmentId{Fid: 12, Idx: 3, Dir: traffic.ReverseDirection}
	if b.Decoded[mwm.ID{Name: "Germany_NRW", Version: 210412}][segment] != traffic.TempBlock {
		t.Error("stored coloring did not survive the round trip")
	}
}
