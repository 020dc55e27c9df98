package traff

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/traffgo/traffgo/pkg/geo"
)

// ResponseStatus is the status a source reports for a request.
type ResponseStatus int

const (
	// StatusInvalid means the response itself could not be parsed. It is
	// never sent on the wire.
	StatusInvalid ResponseStatus = iota
	// StatusOk means the operation was successful.
	StatusOk
	// StatusInvalidOperation means the source rejected the operation as
	// invalid, e.g. a nonexistent operation or incomplete data. The wire
	// value is INVALID; renamed here to set it apart from StatusInvalid.
	StatusInvalidOperation
	// StatusSubscriptionRejected means the source refused the subscription,
	// e.g. because the filtered region is too large.
	StatusSubscriptionRejected
	// StatusNotCovered means the source covers none of the filtered area.
	StatusNotCovered
	// StatusPartiallyCovered means the source covers some of the filtered
	// area; the subscription is accepted for the covered part.
	StatusPartiallyCovered
	// StatusSubscriptionUnknown means the subscription ID is not known to
	// the source, e.g. after the source was restarted.
	StatusSubscriptionUnknown
	// StatusPushRejected means the source accepts the subscription but will
	// not push feeds; the subscriber has to poll.
	StatusPushRejected
	// StatusInternalError means the source failed internally.
	StatusInternalError
)

func (s ResponseStatus) String() string {
	switch s {
	case StatusOk:
		return "Ok"
	case StatusInvalidOperation:
		return "InvalidOperation"
	case StatusSubscriptionRejected:
		return "SubscriptionRejected"
	case StatusNotCovered:
		return "NotCovered"
	case StatusPartiallyCovered:
		return "PartiallyCovered"
	case StatusSubscriptionUnknown:
		return "SubscriptionUnknown"
	case StatusPushRejected:
		return "PushRejected"
	case StatusInternalError:
		return "InternalError"
	}
	return "Invalid"
}

func parseResponseStatus(value string) ResponseStatus {
	switch value {
	case "OK":
		return StatusOk
	case "INVALID":
		return StatusInvalidOperation
	case "SUBSCRIPTION_REJECTED":
		return StatusSubscriptionRejected
	case "NOT_COVERED":
		return StatusNotCovered
	case "PARTIALLY_COVERED":
		return StatusPartiallyCovered
	case "SUBSCRIPTION_UNKNOWN":
		return StatusSubscriptionUnknown
	case "PUSH_REJECTED":
		return StatusPushRejected
	case "INTERNAL_ERROR":
		return StatusInternalError
	}
	return StatusInvalid
}

// Response is a source's answer to a request.
type Response struct {
	Status ResponseStatus

	// SubscriptionID is the ID the source assigned to the subscriber.
	// Required in responses to a subscription request.
	SubscriptionID string

	// Timeout is the poll interval in seconds suggested by the source,
	// 0 if the source did not suggest one.
	Timeout int

	// Feed is an optional feed embedded in the response.
	Feed Feed
}

type xmlResponse struct {
	XMLName        xml.Name `xml:"response"`
	Status         string   `xml:"status,attr"`
	SubscriptionID string   `xml:"subscription_id,attr,omitempty"`
	Timeout        string   `xml:"timeout,attr,omitempty"`
	Feed           *xmlFeed `xml:"feed"`
}

// ParseResponse parses a TraFF response document. An unparseable document
// yields a response with StatusInvalid rather than an error, as transport
// code treats the two the same way.
func ParseResponse(responseXml []byte) Response {
	result := Response{Status: StatusInvalid}

	var raw xmlResponse
	if err := xml.Unmarshal(responseXml, &raw); err != nil {
		return result
	}
	if raw.Status == "" {
		return result
	}
	result.Status = parseResponseStatus(raw.Status)
	result.SubscriptionID = raw.SubscriptionID
	if raw.Timeout != "" {
		if timeout, err := strconv.Atoi(raw.Timeout); err == nil {
			result.Timeout = timeout
		}
	}

	log.Debug().Msgf("Response, status: %v, subscription ID: %s, timeout: %d",
		result.Status, result.SubscriptionID, result.Timeout)

	if raw.Feed != nil {
		feed, err := feedFromXml(*raw.Feed)
		if err != nil {
			log.Warn().Msgf("Discarding feed embedded in response: %v", err)
		} else {
			log.Debug().Msgf("Feed received, number of messages: %d", len(feed))
			result.Feed = feed
		}
	}

	return result
}

// FiltersToXml renders a list of bounding boxes as TraFF filter elements,
// suitable for embedding in a filter_list element.
func FiltersToXml(bboxRects []geo.RectLatLon) string {
	var builder strings.Builder
	for _, rect := range bboxRects {
		fmt.Fprintf(&builder, "<filter bbox=\"%v %v %v %v\"/>\n",
			rect.MinLat, rect.MinLon, rect.MaxLat, rect.MaxLon)
	}
	return builder.String()
}

// SubscribeRequest builds the document establishing a new subscription for
// the filtered area.
func SubscribeRequest(filterList string) string {
	return "<request operation=\"SUBSCRIBE\">\n<filter_list>\n" +
		filterList +
		"</filter_list>\n</request>"
}

// SubscriptionChangeRequest builds the document replacing the filtered area
// of an existing subscription.
func SubscriptionChangeRequest(subscriptionID string, filterList string) string {
	return "<request operation=\"SUBSCRIPTION_CHANGE\" subscription_id=\"" + subscriptionID + "\">\n" +
		"<filter_list>\n" +
		filterList +
		"</filter_list>\n</request>"
}

// UnsubscribeRequest builds the document cancelling a subscription.
func UnsubscribeRequest(subscriptionID string) string {
	return "<request operation=\"UNSUBSCRIBE\" subscription_id=\"" + subscriptionID + "\"/>"
}

// PollRequest builds the document requesting the current feed for a
// subscription.
func PollRequest(subscriptionID string) string {
	return "<request operation=\"POLL\" subscription_id=\"" + subscriptionID + "\"/>"
}
