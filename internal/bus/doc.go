// Package bus adapts the gateway onto its MQTT event substrate: connection
// lifecycle, typed channel/call/return observations, agent presence via
// retained identity topics, and the raft message transport. One client
// carries one agent identity; reconfiguring identity means a new client.
package bus
