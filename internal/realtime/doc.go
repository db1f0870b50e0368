// Package realtime delivers task events to connected websocket clients.
//
// Clients connect to the socket endpoint and send
//
//	{"event":"joinRoom","data":"<userId>"}
//
// to subscribe to a user's room. The Hub registered as an events.EventHandler
// forwards every task event to the room named after the task owner as a
// {"event":..., "data":...} text frame. Delivery is best-effort: events for a
// room with no members are discarded, and a session whose outbound queue is
// full misses the message.
package realtime
