package mqtt

import "strings"

// Topic segments for the winter supplement exchange.
const (
	// InputSegment follows the namespace on every request topic.
	InputSegment = "calculateWinterSupplementInput"

	// OutputSegment follows the namespace on every result topic.
	OutputSegment = "calculateWinterSupplementOutput"

	// DefaultNamespace is the first topic segment used when none is configured.
	DefaultNamespace = "BRE"
)

// Topics builds the request and result topics for one namespace.
//
//	topics := mqtt.Topics{Namespace: "BRE"}
//	topics.InputFilter()                                    // "BRE/calculateWinterSupplementInput/#"
//	topics.OutputTopic("BRE/calculateWinterSupplementInput/abc123") // "BRE/calculateWinterSupplementOutput/abc123"
type Topics struct {
	Namespace string
}

func (t Topics) namespace() string {
	if t.Namespace == "" {
		return DefaultNamespace
	}
	return t.Namespace
}

// InputFilter returns the multi-level wildcard filter covering every request topic.
func (t Topics) InputFilter() string {
	return t.namespace() + "/" + InputSegment + "/#"
}

// OutputTopic derives the result topic from the topic a request arrived on.
// The suffix is the input topic's last segment, or the whole topic when it
// contains no "/".
func (t Topics) OutputTopic(inputTopic string) string {
	suffix := inputTopic
	if i := strings.LastIndexByte(inputTopic, '/'); i >= 0 {
		suffix = inputTopic[i+1:]
	}
	return t.namespace() + "/" + OutputSegment + "/" + suffix
}
