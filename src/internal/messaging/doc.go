// Package messaging bridges the poller to an MQTT broker or a Kafka cluster.
//
// After every successful polling cycle the bridge publishes one state message
// and one presence message per tracked device. Control commands arrive on the
// command topic as JSON:
//
//	{"id": "42", "action": "switch.arp_filter.on"}
//	{"id": "43", "request": {"func_name": "reboots", "action": "reboots"}}
//
// and the outcome of each is published to the command topic plus "/result".
// Kafka topic names are derived from the same templates with "/" replaced by ".".
package messaging
