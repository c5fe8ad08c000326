package mqtt

import "fmt"

// Topic prefixes for the Outpost MQTT hierarchy.
//
// All topics live under outpost/: state fan-out for outputs, input
// transitions, and the system status heartbeat.
const (
	// TopicPrefix is the base for all Outpost topics.
	TopicPrefix = "outpost"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "outpost/system"
)

// Topics provides builders for Outpost MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
type Topics struct{}

// OutputState returns the topic for output state updates.
//
// Example: outpost/output/output01
func (Topics) OutputState(name string) string {
	return fmt.Sprintf("%s/output/%s", TopicPrefix, name)
}

// InputEvent returns the topic for input line transitions.
//
// Example: outpost/input/input01
func (Topics) InputEvent(name string) string {
	return fmt.Sprintf("%s/input/%s", TopicPrefix, name)
}

// SystemStatus returns the topic for panel online/offline status.
//
// Example: outpost/system/status
func (Topics) SystemStatus() string {
	return TopicPrefixSystem + "/status"
}
